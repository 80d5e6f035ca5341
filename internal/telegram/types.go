package telegram

import (
	"sync"

	"weekly-digest-bot/internal/ai"
	"weekly-digest-bot/internal/classify"
	"weekly-digest-bot/internal/digest"

	tele "gopkg.in/telebot.v4"
)

// BotConfig configuration of the bot
type BotConfig struct {
	Token          string
	MainChatID     int64
	AdminChatID    int64
	RetentionDays  int
	Debug          bool
	UpdatesTimeout int
}

// Bot telegram interaction client
type Bot struct {
	Bot        *tele.Bot
	Config     BotConfig
	AI         *ai.Client
	Posting    *digest.Service
	Classifier *classify.Service

	// editTargets maps the id of an edit prompt message to the draft
	// row id its reply should replace
	mu          sync.Mutex
	editTargets map[int]int64
}
