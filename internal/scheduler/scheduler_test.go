package scheduler

import (
	"testing"
	"time"

	"github.com/robfig/cron/v3"
)

func TestSchedulesParse(t *testing.T) {
	specs := map[string]string{
		"classify":      SpecClassify,
		"monday post":   SpecMondayPost,
		"friday digest": SpecFridayDigest,
		"cleanup":       SpecCleanup,
	}

	for name, spec := range specs {
		if _, err := cron.ParseStandard(spec); err != nil {
			t.Errorf("%s schedule %q does not parse: %v", name, spec, err)
		}
	}
}

func TestMondayPostFiresOnMonday(t *testing.T) {
	sched, err := cron.ParseStandard(SpecMondayPost)
	if err != nil {
		t.Fatalf("failed to parse schedule: %v", err)
	}

	// Wednesday 2026-08-26, so the next run lands on the following Monday.
	from := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	next := sched.Next(from)

	if next.Weekday() != time.Monday {
		t.Errorf("next run on %v, expected a Monday", next.Weekday())
	}
	if next.Hour() != 10 || next.Minute() != 0 {
		t.Errorf("next run at %02d:%02d, expected 10:00", next.Hour(), next.Minute())
	}
}

func TestFridayDigestFiresOnFridayEvening(t *testing.T) {
	sched, err := cron.ParseStandard(SpecFridayDigest)
	if err != nil {
		t.Fatalf("failed to parse schedule: %v", err)
	}

	from := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	next := sched.Next(from)

	if next.Weekday() != time.Friday {
		t.Errorf("next run on %v, expected a Friday", next.Weekday())
	}
	if next.Hour() != 19 {
		t.Errorf("next run at hour %d, expected 19", next.Hour())
	}
}

func TestStartRegistersAllJobs(t *testing.T) {
	ran := func() {}
	cr, err := Start(Jobs{Classify: ran, MondayPost: ran, FridayDigest: ran, Cleanup: ran})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer cr.Stop()

	if got := len(cr.Entries()); got != 4 {
		t.Errorf("expected 4 scheduled jobs, got %d", got)
	}
}
