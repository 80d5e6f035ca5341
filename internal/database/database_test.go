package database

import (
	"path/filepath"
	"testing"

	"weekly-digest-bot/internal/types"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	if err := InitDB(filepath.Join(t.TempDir(), "bot.db")); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { CloseDB() })
}

func TestSourceTopics(t *testing.T) {
	setupTestDB(t)

	if err := AddSourceTopic(42, "backend"); err != nil {
		t.Fatalf("AddSourceTopic failed: %v", err)
	}

	monitored, err := IsSourceTopic(42)
	if err != nil {
		t.Fatalf("IsSourceTopic failed: %v", err)
	}
	if !monitored {
		t.Error("topic 42 should be monitored")
	}

	name, err := GetSourceTopicName(42)
	if err != nil {
		t.Fatalf("GetSourceTopicName failed: %v", err)
	}
	if name != "backend" {
		t.Errorf("topic name = %q, expected %q", name, "backend")
	}

	topics, err := GetSourceTopics()
	if err != nil {
		t.Fatalf("GetSourceTopics failed: %v", err)
	}
	if len(topics) != 1 || topics[0].TopicID != 42 {
		t.Errorf("unexpected topics list: %+v", topics)
	}

	removed, err := RemoveSourceTopic(42)
	if err != nil {
		t.Fatalf("RemoveSourceTopic failed: %v", err)
	}
	if !removed {
		t.Error("expected removal to report true")
	}

	removed, err = RemoveSourceTopic(42)
	if err != nil {
		t.Fatalf("second RemoveSourceTopic failed: %v", err)
	}
	if removed {
		t.Error("removing an absent topic should report false")
	}
}

func TestSystemTopics(t *testing.T) {
	setupTestDB(t)

	topic, err := GetSystemTopic(types.TopicConductor)
	if err != nil {
		t.Fatalf("GetSystemTopic failed: %v", err)
	}
	if topic != nil {
		t.Errorf("expected nil for unset topic, got %+v", topic)
	}

	if err := SetSystemTopic(types.TopicConductor, 7, "Conductor"); err != nil {
		t.Fatalf("SetSystemTopic failed: %v", err)
	}
	// Re-setting replaces the previous binding.
	if err := SetSystemTopic(types.TopicConductor, 9, "Conductor v2"); err != nil {
		t.Fatalf("second SetSystemTopic failed: %v", err)
	}

	topic, err = GetSystemTopic(types.TopicConductor)
	if err != nil {
		t.Fatalf("GetSystemTopic failed: %v", err)
	}
	if topic == nil || topic.TopicID != 9 || topic.TopicName != "Conductor v2" {
		t.Errorf("unexpected system topic: %+v", topic)
	}
}

func TestMessageLifecycle(t *testing.T) {
	setupTestDB(t)

	rowID, err := SaveMessage(types.ChatMessage{MessageID: 100, TopicID: 5, Text: "we should ship the beta"})
	if err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}
	if rowID == 0 {
		t.Fatal("expected a non-zero row id")
	}

	m, err := GetMessageByRowID(rowID)
	if err != nil {
		t.Fatalf("GetMessageByRowID failed: %v", err)
	}
	if m == nil || m.Text != "we should ship the beta" || m.Processed {
		t.Fatalf("unexpected message: %+v", m)
	}

	unprocessed, err := GetUnprocessedMessages()
	if err != nil {
		t.Fatalf("GetUnprocessedMessages failed: %v", err)
	}
	if len(unprocessed) != 1 {
		t.Errorf("expected 1 unprocessed message, got %d", len(unprocessed))
	}

	updated, err := UpdateMessageText(rowID, "we should ship the beta next week")
	if err != nil {
		t.Fatalf("UpdateMessageText failed: %v", err)
	}
	if !updated {
		t.Error("expected text update to report true")
	}

	recent, err := GetMessagesForPeriod(7)
	if err != nil {
		t.Fatalf("GetMessagesForPeriod failed: %v", err)
	}
	if len(recent) != 1 || recent[0].Text != "we should ship the beta next week" {
		t.Errorf("unexpected recent messages: %+v", recent)
	}

	// Old messages fall out of the retention window and out of cleanup.
	if _, err := SaveMessage(types.ChatMessage{MessageID: 101, TopicID: 5, Text: "ancient history", CreatedAt: "2020-01-01 00:00:00"}); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}
	recent, err = GetMessagesForPeriod(7)
	if err != nil {
		t.Fatalf("GetMessagesForPeriod failed: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("old message leaked into the period window: %+v", recent)
	}

	deleted, err := CleanupOldMessages(7)
	if err != nil {
		t.Fatalf("CleanupOldMessages failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted message, got %d", deleted)
	}

	counts, err := GetMessagesPerDay(7)
	if err != nil {
		t.Fatalf("GetMessagesPerDay failed: %v", err)
	}
	if len(counts) != 1 || counts[0].Count != 1 {
		t.Errorf("unexpected per-day counts: %+v", counts)
	}
}

func TestThreads(t *testing.T) {
	setupTestDB(t)

	threadID, err := CreateThread("Ship the beta", types.ClassificationGoal)
	if err != nil {
		t.Fatalf("CreateThread failed: %v", err)
	}

	thread, err := GetThreadByID(threadID)
	if err != nil {
		t.Fatalf("GetThreadByID failed: %v", err)
	}
	if thread == nil || thread.Title != "Ship the beta" || !thread.IsActive {
		t.Fatalf("unexpected thread: %+v", thread)
	}

	for i, text := range []string{"first message", "second message"} {
		if _, err := SaveMessage(types.ChatMessage{MessageID: int64(200 + i), TopicID: 5, Text: text}); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}
		updated, err := UpdateMessageThread(int64(200+i), threadID, types.ClassificationGoal)
		if err != nil {
			t.Fatalf("UpdateMessageThread failed: %v", err)
		}
		if !updated {
			t.Fatalf("expected message %d to be attached", 200+i)
		}
	}

	threads, err := GetActiveThreadsWithMessages(7)
	if err != nil {
		t.Fatalf("GetActiveThreadsWithMessages failed: %v", err)
	}
	if len(threads) != 1 {
		t.Fatalf("expected 1 active thread, got %d", len(threads))
	}
	if threads[0].MessageCount != 2 || len(threads[0].Messages) != 2 {
		t.Errorf("unexpected thread messages: %+v", threads[0])
	}
	if threads[0].Messages[0] != "first message" || threads[0].Messages[1] != "second message" {
		t.Errorf("message texts lost in concatenation: %+v", threads[0].Messages)
	}

	byParent, err := GetThreadByParentMessage(200)
	if err != nil {
		t.Fatalf("GetThreadByParentMessage failed: %v", err)
	}
	if byParent == nil || byParent.ThreadID != threadID || byParent.Classification != types.ClassificationGoal {
		t.Errorf("unexpected parent thread: %+v", byParent)
	}

	byParent, err = GetThreadByParentMessage(999)
	if err != nil {
		t.Fatalf("GetThreadByParentMessage failed: %v", err)
	}
	if byParent != nil {
		t.Errorf("expected nil for unknown parent, got %+v", byParent)
	}

	// Attached messages are no longer pending.
	unprocessed, err := GetUnprocessedMessages()
	if err != nil {
		t.Fatalf("GetUnprocessedMessages failed: %v", err)
	}
	if len(unprocessed) != 0 {
		t.Errorf("expected no unprocessed messages, got %d", len(unprocessed))
	}
}

func TestModels(t *testing.T) {
	setupTestDB(t)

	added, err := AddModel("gpt4o-mini", "openai/gpt-4o-mini")
	if err != nil {
		t.Fatalf("AddModel failed: %v", err)
	}
	if !added {
		t.Error("expected first add to report true")
	}

	added, err = AddModel("gpt4o-mini", "openai/gpt-4o-mini")
	if err != nil {
		t.Fatalf("duplicate AddModel failed: %v", err)
	}
	if added {
		t.Error("duplicate add should report false")
	}

	models, err := GetAllModels()
	if err != nil {
		t.Fatalf("GetAllModels failed: %v", err)
	}
	if models["gpt4o-mini"] != "openai/gpt-4o-mini" {
		t.Errorf("unexpected models map: %v", models)
	}

	removed, err := RemoveModel("gpt4o-mini")
	if err != nil {
		t.Fatalf("RemoveModel failed: %v", err)
	}
	if !removed {
		t.Error("expected removal to report true")
	}
}

func TestPrompts(t *testing.T) {
	setupTestDB(t)

	text, err := GetPrompt(types.PromptAnnounce)
	if err != nil {
		t.Fatalf("GetPrompt failed: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty prompt when unset, got %q", text)
	}

	if err := UpdatePrompt(types.PromptAnnounce, "Summarize the week"); err != nil {
		t.Fatalf("UpdatePrompt failed: %v", err)
	}
	if err := UpdatePrompt(types.PromptAnnounce, "Summarize the week, briefly"); err != nil {
		t.Fatalf("second UpdatePrompt failed: %v", err)
	}

	text, err = GetPrompt(types.PromptAnnounce)
	if err != nil {
		t.Fatalf("GetPrompt failed: %v", err)
	}
	if text != "Summarize the week, briefly" {
		t.Errorf("prompt = %q, expected the updated text", text)
	}
}

func TestMetricsRoundTrip(t *testing.T) {
	setupTestDB(t)

	if err := SaveMetric("commands_processed", "", "", 8); err != nil {
		t.Fatalf("SaveMetric failed: %v", err)
	}
	// A later save replaces the stored value instead of stacking a new row.
	if err := SaveMetric("commands_processed", "", "", 12); err != nil {
		t.Fatalf("second SaveMetric failed: %v", err)
	}
	value, err := GetMetric("commands_processed")
	if err != nil {
		t.Fatalf("GetMetric failed: %v", err)
	}
	if value != 12 {
		t.Errorf("metric value = %v, expected 12", value)
	}

	if err := SaveMetricWithLabels("messages_per_topic", "5", "backend", 3); err != nil {
		t.Fatalf("SaveMetricWithLabels failed: %v", err)
	}
	labeled, err := GetMetricsWithLabels("messages_per_topic")
	if err != nil {
		t.Fatalf("GetMetricsWithLabels failed: %v", err)
	}
	if labeled["5"]["backend"] != 3 {
		t.Errorf("unexpected labeled metrics: %v", labeled)
	}
}
