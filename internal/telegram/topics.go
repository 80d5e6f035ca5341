package telegram

import (
	"fmt"
	"strings"

	"weekly-digest-bot/internal/database"
	"weekly-digest-bot/internal/types"
	"weekly-digest-bot/lib/helpers"
	"weekly-digest-bot/lib/translation"

	log "github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v4"
)

func (b *Bot) registerTopicHandlers() {
	b.Bot.Handle("/addtopic", command(b.handleAddTopic))
	b.Bot.Handle("/deletetopic", command(b.handleDeleteTopic))
	b.Bot.Handle("/listtopics", command(b.handleListTopics))
	b.Bot.Handle("/selectconductortopic", command(b.handleSelectConductorTopic))
	b.Bot.Handle("/selectanouncestopic", command(b.handleSelectAnnouncementsTopic))
	b.Bot.Handle("/showconfig", command(b.handleShowConfig))
}

// requireTopic answers with an error unless the command came from inside
// a forum topic, and returns its id otherwise
func requireTopic(c tele.Context) (int64, bool) {
	threadID := c.Message().ThreadID
	if threadID == 0 {
		_ = reply(c, translation.Translate("❌ This command must be run inside a forum topic\n💡 Open the topic you mean and send the command there"))
		return 0, false
	}
	return int64(threadID), true
}

// topicNameOf resolves the topic name from the command arguments or the
// topic-created service message the command replies to
func topicNameOf(c tele.Context, fallback string) string {
	if name := strings.TrimSpace(c.Message().Payload); name != "" {
		return name
	}
	if r := c.Message().ReplyTo; r != nil && r.TopicCreated != nil && r.TopicCreated.Name != "" {
		return r.TopicCreated.Name
	}
	return fallback
}

func (b *Bot) handleAddTopic(c tele.Context) error {
	topicID, ok := requireTopic(c)
	if !ok {
		return nil
	}

	name := topicNameOf(c, "Untitled")
	if err := database.AddSourceTopic(topicID, name); err != nil {
		log.Errorf("failed to add source topic: %v", err)
		return reply(c, translation.Translate("❌ Could not add the topic"))
	}
	return reply(c, fmt.Sprintf("✅ Topic added to sources:\nID: <code>%d</code>\nName: %s", topicID, name))
}

func (b *Bot) handleDeleteTopic(c tele.Context) error {
	topicID, ok := requireTopic(c)
	if !ok {
		return nil
	}

	removed, err := database.RemoveSourceTopic(topicID)
	if err != nil {
		log.Errorf("failed to remove source topic: %v", err)
		return reply(c, translation.Translate("❌ Could not remove the topic"))
	}
	if !removed {
		return reply(c, fmt.Sprintf("❌ Topic not found in sources\nID: <code>%d</code>", topicID))
	}
	return reply(c, fmt.Sprintf("✅ Topic removed from sources\nID: <code>%d</code>", topicID))
}

func (b *Bot) handleListTopics(c tele.Context) error {
	topics, err := database.GetSourceTopics()
	if err != nil {
		log.Errorf("failed to list source topics: %v", err)
		return reply(c, translation.Translate("❌ Could not list the topics"))
	}
	if len(topics) == 0 {
		return reply(c, translation.Translate("📋 No source topics registered"))
	}

	var sb strings.Builder
	sb.WriteString("📋 Source topics:\n")
	for _, t := range topics {
		fmt.Fprintf(&sb, "• ID: <code>%d</code>", t.TopicID)
		if t.TopicName != "" {
			fmt.Fprintf(&sb, " — %s", t.TopicName)
		}
		fmt.Fprintf(&sb, " (added %s)\n", helpers.RelativeTime(t.CreatedAt))
	}
	return reply(c, sb.String())
}

func (b *Bot) handleSelectConductorTopic(c tele.Context) error {
	return b.selectSystemTopic(c, types.TopicConductor, "Conductor")
}

func (b *Bot) handleSelectAnnouncementsTopic(c tele.Context) error {
	return b.selectSystemTopic(c, types.TopicAnnouncements, "Announcements")
}

func (b *Bot) selectSystemTopic(c tele.Context, topicType, defaultName string) error {
	topicID, ok := requireTopic(c)
	if !ok {
		return nil
	}

	name := topicNameOf(c, defaultName)
	if err := database.SetSystemTopic(topicType, topicID, name); err != nil {
		log.Errorf("failed to set system topic %s: %v", topicType, err)
		return reply(c, fmt.Sprintf("❌ Could not set the %s topic", defaultName))
	}
	return reply(c, fmt.Sprintf("✅ %s topic set:\nID: <code>%d</code>\nName: %s", defaultName, topicID, name))
}

func (b *Bot) handleShowConfig(c tele.Context) error {
	sourceTopics, err := database.GetSourceTopics()
	if err != nil {
		log.Errorf("failed to load configuration: %v", err)
		return reply(c, translation.Translate("❌ Could not load the configuration"))
	}

	conductor, err := database.GetSystemTopic(types.TopicConductor)
	if err != nil {
		log.Errorf("failed to load conductor topic: %v", err)
		return reply(c, translation.Translate("❌ Could not load the configuration"))
	}
	announcements, err := database.GetSystemTopic(types.TopicAnnouncements)
	if err != nil {
		log.Errorf("failed to load announcements topic: %v", err)
		return reply(c, translation.Translate("❌ Could not load the configuration"))
	}

	recent, err := database.GetMessagesForPeriod(b.Config.RetentionDays)
	if err != nil {
		log.Errorf("failed to count recent messages: %v", err)
		return reply(c, translation.Translate("❌ Could not load the configuration"))
	}

	var sb strings.Builder
	sb.WriteString("⚙️ <b>Current configuration:</b>\n\n")

	sb.WriteString("📥 <b>Source topics:</b>\n")
	if len(sourceTopics) > 0 {
		for _, t := range sourceTopics {
			fmt.Fprintf(&sb, "• ID: <code>%d</code>", t.TopicID)
			if t.TopicName != "" {
				fmt.Fprintf(&sb, " — %s", t.TopicName)
			}
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("❌ Not configured\n")
	}

	sb.WriteString("\n📤 <b>System topics:</b>\n")
	writeSystemTopic(&sb, "Conductor (Mon)", conductor)
	writeSystemTopic(&sb, "Announcements (Fri)", announcements)

	mainChat := "❌ Not configured"
	if b.Config.MainChatID != 0 {
		mainChat = fmt.Sprintf("%d", b.Config.MainChatID)
	}
	fmt.Fprintf(&sb, "\n💬 <b>Main chat:</b> %s", mainChat)
	fmt.Fprintf(&sb, "\n\n📊 <b>Messages stored (last %d days):</b> %d", b.Config.RetentionDays, len(recent))
	fmt.Fprintf(&sb, "\n<b>Monitored topics:</b> %d", len(sourceTopics))

	return reply(c, sb.String())
}

func writeSystemTopic(sb *strings.Builder, label string, topic *types.SystemTopic) {
	if topic == nil {
		fmt.Fprintf(sb, "• %s: ❌ Not configured\n", label)
		return
	}
	fmt.Fprintf(sb, "• %s: ID <code>%d</code>", label, topic.TopicID)
	if topic.TopicName != "" {
		fmt.Fprintf(sb, " — %s", topic.TopicName)
	}
	sb.WriteString("\n")
}
