package types

// Classification values assigned to messages and threads.
const (
	ClassificationGoal      = "goal"
	ClassificationBlocker   = "blocker"
	ClassificationOther     = "other"
	ClassificationConductor = "conductor"
)

// System topic types.
const (
	TopicConductor     = "conductor"
	TopicAnnouncements = "announcements"
)

// Prompt types stored in the prompts table.
const (
	PromptAnnounce = "announce"
	PromptDigest   = "digest"
)

// ChatMessage is a message captured from a source topic.
type ChatMessage struct {
	ID              int64  `json:"id"`
	MessageID       int64  `json:"message_id"`
	TopicID         int64  `json:"topic_id"`
	ThreadID        int64  `json:"thread_id"`
	ParentMessageID int64  `json:"parent_message_id"`
	Classification  string `json:"classification_id"`
	Text            string `json:"message_text"`
	CreatedAt       string `json:"created_at"`
	Processed       bool   `json:"processed"`
}

// Thread groups messages that discuss the same goal or blocker.
type Thread struct {
	ThreadID       int64  `json:"thread_id"`
	Title          string `json:"title"`
	Classification string `json:"classification_id"`
	CreatedAt      string `json:"created_at"`
	IsActive       bool   `json:"is_active"`
}

// ThreadWithMessages is a thread joined with its recent message texts.
type ThreadWithMessages struct {
	ThreadID       int64    `json:"thread_id"`
	Title          string   `json:"title"`
	Classification string   `json:"classification_id"`
	CreatedAt      string   `json:"created_at"`
	MessageCount   int      `json:"message_count"`
	Messages       []string `json:"messages"`
}

// SourceTopic is a forum topic registered for monitoring.
type SourceTopic struct {
	TopicID   int64  `json:"topic_id"`
	TopicName string `json:"topic_name"`
	CreatedAt string `json:"created_at"`
}

// SystemTopic is a forum topic the bot posts into.
type SystemTopic struct {
	TopicType string `json:"topic_type"`
	TopicID   int64  `json:"topic_id"`
	TopicName string `json:"topic_name"`
}

// DayCount is the number of captured messages on a single day.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}
