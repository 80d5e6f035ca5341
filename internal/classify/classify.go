package classify

import (
	"context"

	"weekly-digest-bot/internal/ai"
	"weekly-digest-bot/internal/database"
	"weekly-digest-bot/internal/types"

	log "github.com/sirupsen/logrus"
)

// activeThreadWindowDays bounds the thread context handed to the sling step
const activeThreadWindowDays = 7

// Service attaches captured messages to discussion threads in three
// steps: reply inheritance, semantic sling, new entity classification.
type Service struct {
	ai *ai.Client
}

func NewService(client *ai.Client) *Service {
	return &Service{ai: client}
}

// ProcessUnprocessed classifies every message still waiting in the queue
func (s *Service) ProcessUnprocessed(ctx context.Context) {
	messages, err := database.GetUnprocessedMessages()
	if err != nil {
		log.Errorf("failed to fetch unprocessed messages: %v", err)
		return
	}
	if len(messages) == 0 {
		return
	}

	threads, err := database.GetActiveThreadsWithMessages(activeThreadWindowDays)
	if err != nil {
		log.Errorf("failed to fetch active threads: %v", err)
		return
	}

	log.Infof("classifying %d messages against %d active threads", len(messages), len(threads))

	for _, msg := range messages {
		if ctx.Err() != nil {
			return
		}
		s.classifyMessage(ctx, msg, threads)
	}
}

func (s *Service) classifyMessage(ctx context.Context, msg types.ChatMessage, threads []types.ThreadWithMessages) {
	log.Debugf("classifying message %d: %.100s", msg.MessageID, msg.Text)

	if s.inheritFromParent(msg) {
		return
	}
	if s.slingToThread(ctx, msg, threads) {
		return
	}
	s.classifyNewEntity(ctx, msg)
}

// inheritFromParent attaches a reply to its parent's thread
func (s *Service) inheritFromParent(msg types.ChatMessage) bool {
	if msg.ParentMessageID == 0 {
		return false
	}

	parent, err := database.GetThreadByParentMessage(msg.ParentMessageID)
	if err != nil {
		log.Errorf("parent lookup failed for message %d: %v", msg.MessageID, err)
		return false
	}
	if parent == nil {
		return false
	}

	if _, err := database.UpdateMessageThread(msg.MessageID, parent.ThreadID, parent.Classification); err != nil {
		log.Errorf("failed to attach message %d to thread %d: %v", msg.MessageID, parent.ThreadID, err)
		return false
	}
	log.Infof("message %d attached to thread %d (inherited)", msg.MessageID, parent.ThreadID)
	return true
}

// slingToThread asks the LLM whether the message continues an active thread
func (s *Service) slingToThread(ctx context.Context, msg types.ChatMessage, threads []types.ThreadWithMessages) bool {
	if len(threads) == 0 {
		return false
	}

	result := s.ai.SemanticSling(ctx, msg.Text, threads)
	if !result.Related || result.ThreadID == 0 {
		return false
	}

	thread, err := database.GetThreadByID(result.ThreadID)
	if err != nil {
		log.Errorf("thread lookup failed for message %d: %v", msg.MessageID, err)
		return false
	}
	if thread == nil {
		log.Warnf("sling returned unknown thread %d for message %d", result.ThreadID, msg.MessageID)
		return false
	}

	if _, err := database.UpdateMessageThread(msg.MessageID, thread.ThreadID, thread.Classification); err != nil {
		log.Errorf("failed to attach message %d to thread %d: %v", msg.MessageID, thread.ThreadID, err)
		return false
	}
	log.Infof("message %d attached to thread %d (semantic sling)", msg.MessageID, thread.ThreadID)
	return true
}

// classifyNewEntity opens a new thread for goals and blockers, everything
// else is marked processed as "other"
func (s *Service) classifyNewEntity(ctx context.Context, msg types.ChatMessage) {
	result := s.ai.ClassifyMessage(ctx, msg.Text)

	if result.Classification != types.ClassificationGoal && result.Classification != types.ClassificationBlocker {
		if _, err := database.UpdateMessageThread(msg.MessageID, 0, types.ClassificationOther); err != nil {
			log.Errorf("failed to mark message %d as other: %v", msg.MessageID, err)
			return
		}
		log.Infof("message %d marked as other", msg.MessageID)
		return
	}

	title := result.Title
	if title == "" {
		title = truncate(msg.Text, 50)
	}

	threadID, err := database.CreateThread(title, result.Classification)
	if err != nil {
		log.Errorf("failed to create thread for message %d: %v", msg.MessageID, err)
		return
	}

	if _, err := database.UpdateMessageThread(msg.MessageID, threadID, result.Classification); err != nil {
		log.Errorf("failed to attach message %d to new thread %d: %v", msg.MessageID, threadID, err)
		return
	}
	log.Infof("new thread %d created for message %d (%s)", threadID, msg.MessageID, result.Classification)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
