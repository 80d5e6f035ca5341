package scheduler

import (
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Cron specs for the scheduled work. Times are in the host timezone, the
// same clock the community schedule is written against.
const (
	SpecClassify     = "*/5 * * * *" // classification pass
	SpecMondayPost   = "0 10 * * 1"  // Monday 10:00 goals and blockers
	SpecFridayDigest = "0 19 * * 5"  // Friday 19:00 weekly digest
	SpecCleanup      = "0 3 * * *"   // daily retention cleanup
)

// Jobs are the callbacks fired on the schedule
type Jobs struct {
	Classify     func()
	MondayPost   func()
	FridayDigest func()
	Cleanup      func()
}

// Start launches the cron scheduler. Job panics are recovered so a single
// bad run does not kill the schedule.
func Start(jobs Jobs) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.PrintfLogger(log.StandardLogger())),
	))

	entries := []struct {
		spec string
		name string
		fn   func()
	}{
		{SpecClassify, "classify", jobs.Classify},
		{SpecMondayPost, "monday_post", jobs.MondayPost},
		{SpecFridayDigest, "friday_digest", jobs.FridayDigest},
		{SpecCleanup, "cleanup", jobs.Cleanup},
	}

	for _, e := range entries {
		if e.fn == nil {
			continue
		}
		if _, err := c.AddFunc(e.spec, e.fn); err != nil {
			return nil, errors.Wrapf(err, "could not schedule %s", e.name)
		}
	}

	c.Start()
	log.Info("scheduler started")
	return c, nil
}
