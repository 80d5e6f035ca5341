package telegram

import (
	"path/filepath"
	"strings"
	"testing"

	"weekly-digest-bot/internal/database"
	"weekly-digest-bot/internal/types"

	tele "gopkg.in/telebot.v4"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	if err := database.InitDB(filepath.Join(t.TempDir(), "bot.db")); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { database.CloseDB() })
}

// stubContext records outgoing sends for handlers that only need the
// message and a way to answer
type stubContext struct {
	tele.Context
	msg  *tele.Message
	sent []string
}

func (s *stubContext) Message() *tele.Message { return s.msg }

func (s *stubContext) Send(what interface{}, _ ...interface{}) error {
	if text, ok := what.(string); ok {
		s.sent = append(s.sent, text)
	}
	return nil
}

func outsideTopic() *stubContext {
	return &stubContext{msg: &tele.Message{ID: 10, Chat: &tele.Chat{ID: 1}}}
}

func TestTopicCommandsRejectedOutsideForumTopic(t *testing.T) {
	setupTestDB(t)
	b := &Bot{}

	c := outsideTopic()
	if err := b.handleAddTopic(c); err != nil {
		t.Fatalf("handleAddTopic returned %v", err)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "forum topic") {
		t.Errorf("expected a rejection reply, got %v", c.sent)
	}
	topics, err := database.GetSourceTopics()
	if err != nil {
		t.Fatalf("GetSourceTopics failed: %v", err)
	}
	if len(topics) != 0 {
		t.Errorf("rejected command still registered topics: %+v", topics)
	}

	c = outsideTopic()
	if err := b.handleSelectConductorTopic(c); err != nil {
		t.Fatalf("handleSelectConductorTopic returned %v", err)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "forum topic") {
		t.Errorf("expected a rejection reply, got %v", c.sent)
	}
	conductor, err := database.GetSystemTopic(types.TopicConductor)
	if err != nil {
		t.Fatalf("GetSystemTopic failed: %v", err)
	}
	if conductor != nil {
		t.Errorf("rejected command still set the conductor topic: %+v", conductor)
	}

	c = outsideTopic()
	if err := b.handleDeleteTopic(c); err != nil {
		t.Fatalf("handleDeleteTopic returned %v", err)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "forum topic") {
		t.Errorf("expected a rejection reply, got %v", c.sent)
	}
}

func TestTopicNameOf(t *testing.T) {
	c := &stubContext{msg: &tele.Message{Payload: "  backend  "}}
	if got := topicNameOf(c, "Untitled"); got != "backend" {
		t.Errorf("payload name = %q, expected %q", got, "backend")
	}

	c = &stubContext{msg: &tele.Message{ReplyTo: &tele.Message{TopicCreated: &tele.Topic{Name: "General"}}}}
	if got := topicNameOf(c, "Untitled"); got != "General" {
		t.Errorf("topic-created name = %q, expected %q", got, "General")
	}

	c = &stubContext{msg: &tele.Message{}}
	if got := topicNameOf(c, "Untitled"); got != "Untitled" {
		t.Errorf("fallback name = %q, expected %q", got, "Untitled")
	}
}
