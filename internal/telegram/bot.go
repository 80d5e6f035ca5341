package telegram

import (
	"time"

	"weekly-digest-bot/internal/ai"
	"weekly-digest-bot/internal/classify"
	"weekly-digest-bot/internal/digest"
	"weekly-digest-bot/internal/metrics"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

// NewBot creates new telegram bot
func NewBot(c BotConfig) (*Bot, error) {
	timeout := c.UpdatesTimeout
	if timeout <= 0 {
		timeout = 60
	}

	bot, err := tele.NewBot(tele.Settings{
		Token:   c.Token,
		Poller:  &tele.LongPoller{Timeout: time.Duration(timeout) * time.Second},
		Verbose: c.Debug,
		OnError: func(err error, c tele.Context) {
			log.Errorf("handler error: %v", err)
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not create telegram bot")
	}

	return &Bot{
		Bot:         bot,
		Config:      c,
		editTargets: make(map[int]int64),
	}, nil
}

// Setup wires the services and registers all handlers
func (b *Bot) Setup(aiClient *ai.Client, posting *digest.Service, classifier *classify.Service) {
	b.AI = aiClient
	b.Posting = posting
	b.Classifier = classifier

	b.Bot.Use(middleware.Recover())

	b.registerCommandHandlers()
	b.registerTopicHandlers()
	b.registerCaptureHandlers()
}

// Start begins long polling and blocks until Stop is called
func (b *Bot) Start() {
	log.Infof("bot started as @%s", b.Bot.Me.Username)
	b.Bot.Start()
}

func (b *Bot) Stop() {
	b.Bot.Stop()
}

// command wraps a handler with the processed-commands counter
func command(fn tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		metrics.Default.CommandsProcessed.Inc()
		return fn(c)
	}
}

// reply answers in the chat and topic the command came from
func reply(c tele.Context, text string) error {
	return c.Send(text, &tele.SendOptions{
		ThreadID:  c.Message().ThreadID,
		ParseMode: tele.ModeHTML,
	})
}
