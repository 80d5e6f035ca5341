package digest

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"weekly-digest-bot/internal/ai"
	"weekly-digest-bot/internal/chart"
	"weekly-digest-bot/internal/database"
	"weekly-digest-bot/internal/metrics"
	"weekly-digest-bot/internal/types"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v4"
)

// Inline button uniques on the Monday review post. The telegram package
// registers handlers for these.
const (
	BtnPublishUnique = "publish_post"
	BtnEditUnique    = "edit_post"
)

// maxThreadContextMessages bounds per-thread context in the Monday prompt
const maxThreadContextMessages = 5

// maxDigestContextMessages bounds the Friday digest prompt
const maxDigestContextMessages = 20

// Config posting service configuration
type Config struct {
	MainChatID    int64
	AdminChatID   int64
	RetentionDays int
}

// Service generates and publishes the scheduled posts
type Service struct {
	bot *tele.Bot
	ai  *ai.Client
	cfg Config
}

func NewService(bot *tele.Bot, client *ai.Client, cfg Config) *Service {
	return &Service{bot: bot, ai: client, cfg: cfg}
}

// CreateMondayPost generates the goals-and-blockers post and sends it to
// the admin chat for review with publish/edit buttons.
func (s *Service) CreateMondayPost(ctx context.Context) error {
	conductor, err := database.GetSystemTopic(types.TopicConductor)
	if err != nil {
		return errors.Wrap(err, "could not load conductor topic")
	}
	if conductor == nil {
		return errors.New("conductor topic is not configured")
	}

	threads, err := database.GetActiveThreadsWithMessages(s.cfg.RetentionDays)
	if err != nil {
		return errors.Wrap(err, "could not load active threads")
	}
	if len(threads) == 0 {
		log.Info("no active threads for the Monday post")
		return nil
	}

	prompt, err := database.GetPrompt(types.PromptAnnounce)
	if err != nil {
		return errors.Wrap(err, "could not load announce prompt")
	}
	if prompt == "" {
		return errors.New("announce prompt is not configured")
	}

	postText, err := s.ai.Complete(ctx, prompt+"\n\n"+prepareThreadContext(threads))
	if err != nil {
		return errors.Wrap(err, "could not generate Monday post")
	}

	// Store the draft first so the review buttons can reference it
	rowID, err := database.SaveMessage(types.ChatMessage{
		TopicID:        conductor.TopicID,
		Text:           postText,
		Classification: types.ClassificationConductor,
		Processed:      true,
	})
	if err != nil {
		return errors.Wrap(err, "could not store Monday post draft")
	}

	markup := &tele.ReplyMarkup{}
	btnPublish := markup.Data("✅ Publish", BtnPublishUnique, fmt.Sprintf("%d", rowID))
	btnEdit := markup.Data("✏️ Edit", BtnEditUnique, fmt.Sprintf("%d", rowID))
	markup.Inline(markup.Row(btnPublish, btnEdit))

	if _, err := s.bot.Send(tele.ChatID(s.cfg.AdminChatID), postText, markup); err != nil {
		return errors.Wrap(err, "could not send Monday post for review")
	}

	log.Info("Monday post sent for review")
	return nil
}

// PublishPost sends a reviewed draft into the conductor topic
func (s *Service) PublishPost(rowID int64) error {
	msg, err := database.GetMessageByRowID(rowID)
	if err != nil {
		return errors.Wrap(err, "could not load post draft")
	}
	if msg == nil {
		return errors.Errorf("post draft %d not found", rowID)
	}

	sent, err := s.bot.Send(tele.ChatID(s.cfg.MainChatID), msg.Text, &tele.SendOptions{
		ThreadID: int(msg.TopicID),
	})
	if err != nil {
		return errors.Wrap(err, "could not publish post")
	}

	if _, err := database.UpdateTelegramMessageID(rowID, int64(sent.ID)); err != nil {
		log.Errorf("failed to record published message id: %v", err)
	}

	metrics.Default.DigestsPosted.Inc()
	log.Infof("Monday post %d published to topic %d", rowID, msg.TopicID)
	return nil
}

// UpdatePostText replaces a draft's text after an edit reply
func (s *Service) UpdatePostText(rowID int64, text string) error {
	updated, err := database.UpdateMessageText(rowID, text)
	if err != nil {
		return errors.Wrap(err, "could not update post draft")
	}
	if !updated {
		return errors.Errorf("post draft %d not found", rowID)
	}
	return nil
}

// CreateFridayDigest generates the weekly digest and posts it into the
// announcements topic with an activity chart.
func (s *Service) CreateFridayDigest(ctx context.Context) error {
	announcements, err := database.GetSystemTopic(types.TopicAnnouncements)
	if err != nil {
		return errors.Wrap(err, "could not load announcements topic")
	}
	if announcements == nil {
		return errors.New("announcements topic is not configured")
	}

	recent, err := database.GetMessagesForPeriod(s.cfg.RetentionDays)
	if err != nil {
		return errors.Wrap(err, "could not load recent messages")
	}
	if len(recent) == 0 {
		log.Info("no messages for the Friday digest")
		return nil
	}

	prompt, err := database.GetPrompt(types.PromptDigest)
	if err != nil {
		return errors.Wrap(err, "could not load digest prompt")
	}
	if prompt == "" {
		return errors.New("digest prompt is not configured")
	}

	postText, err := s.ai.Complete(ctx, prompt+"\n\n"+prepareDigestContext(recent))
	if err != nil {
		return errors.Wrap(err, "could not generate Friday digest")
	}

	opts := &tele.SendOptions{
		ThreadID:  int(announcements.TopicID),
		ParseMode: tele.ModeHTML,
	}
	if _, err := s.bot.Send(tele.ChatID(s.cfg.MainChatID), postText, opts); err != nil {
		return errors.Wrap(err, "could not post Friday digest")
	}

	if photo, err := s.ActivityChart(); err != nil {
		log.Warnf("skipping digest activity chart: %v", err)
	} else {
		photo.Caption = "Weekly activity"
		if _, err := s.bot.Send(tele.ChatID(s.cfg.MainChatID), photo, &tele.SendOptions{ThreadID: int(announcements.TopicID)}); err != nil {
			log.Errorf("failed to send digest activity chart: %v", err)
		}
	}

	metrics.Default.DigestsPosted.Inc()
	log.Info("Friday digest posted")
	return nil
}

// ActivityChart renders the messages-per-day chart for the retention window
func (s *Service) ActivityChart() (*tele.Photo, error) {
	data, err := chart.RenderActivityCached("activity", 5*time.Minute, func() ([]byte, error) {
		counts, err := database.GetMessagesPerDay(s.cfg.RetentionDays)
		if err != nil {
			return nil, errors.Wrap(err, "could not load daily message counts")
		}
		return chart.RenderActivity(counts)
	})
	if err != nil {
		return nil, err
	}
	return &tele.Photo{File: tele.FromReader(bytes.NewReader(data))}, nil
}

// CreateTestPost triggers a scheduled post on demand for /test_post
func (s *Service) CreateTestPost(ctx context.Context, kind string) error {
	switch kind {
	case "monday":
		return s.CreateMondayPost(ctx)
	case "friday":
		return s.CreateFridayDigest(ctx)
	default:
		return errors.Errorf("unknown post type: %s", kind)
	}
}

// prepareThreadContext renders active threads for the Monday prompt
func prepareThreadContext(threads []types.ThreadWithMessages) string {
	var parts []string
	for _, t := range threads {
		if len(t.Messages) == 0 {
			continue
		}
		msgs := t.Messages
		if len(msgs) > maxThreadContextMessages {
			msgs = msgs[:maxThreadContextMessages]
		}
		parts = append(parts, fmt.Sprintf("Thread %q (%s): %s", t.Title, t.Classification, strings.Join(msgs, "; ")))
	}
	return "Active discussions:\n" + strings.Join(parts, "\n")
}

// prepareDigestContext renders recent messages for the Friday prompt
func prepareDigestContext(messages []types.ChatMessage) string {
	var texts []string
	for _, m := range messages {
		if m.Text == "" {
			continue
		}
		texts = append(texts, m.Text)
		if len(texts) == maxDigestContextMessages {
			break
		}
	}
	return "Messages from the topics:\n" + strings.Join(texts, "\n")
}
