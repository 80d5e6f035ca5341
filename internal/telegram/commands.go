package telegram

import (
	"context"
	"fmt"
	"strings"

	"weekly-digest-bot/internal/database"
	"weekly-digest-bot/internal/types"
	"weekly-digest-bot/lib/helpers"
	"weekly-digest-bot/lib/translation"

	log "github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v4"
)

const helpText = `🚀 <b>Weekly digest bot</b>

Monitors community topics and produces weekly summary posts.

📅 Schedule:
• Mon 10:00 — goals and blockers of the week (Conductor topic)
• Fri 19:00 — Weekly Digest (Announcements topic)

📋 Topic management:
/addtopic — add the current topic to monitoring
/deletetopic — remove the current topic from monitoring
/listtopics — list monitored topics
/selectconductortopic — use the current topic for Monday posts
/selectanouncestopic — use the current topic for Friday digests
/showconfig — show the current configuration

🤖 AI model management:
/add_model &lt;name&gt; &lt;model&gt; — add an AI model
/remove_model &lt;name&gt; — remove an AI model
/models — list AI models
/set_prompt &lt;announce|digest&gt; &lt;text&gt; — set a generation prompt

🔧 Utilities:
/get_chat_id — show the current chat/topic ids
/test_post &lt;monday|friday&gt; — send a post right now
/process_messages — run message classification right now
/cleanup_messages — delete old messages from the database
/stats — activity statistics with a chart

💡 Topic management commands must be run inside the topic in question.
Upload a Telegram HTML chat export in the admin chat to import history.`

func (b *Bot) registerCommandHandlers() {
	b.Bot.Handle("/start", command(b.handleHelp))
	b.Bot.Handle("/help", command(b.handleHelp))
	b.Bot.Handle("/get_chat_id", command(b.handleGetChatID))
	b.Bot.Handle("/models", command(b.handleModels))
	b.Bot.Handle("/add_model", command(b.handleAddModel))
	b.Bot.Handle("/remove_model", command(b.handleRemoveModel))
	b.Bot.Handle("/set_prompt", command(b.handleSetPrompt))
	b.Bot.Handle("/test_post", command(b.handleTestPost))
	b.Bot.Handle("/process_messages", command(b.handleProcessMessages))
	b.Bot.Handle("/cleanup_messages", command(b.handleCleanup))
	b.Bot.Handle("/stats", command(b.handleStats))
}

func (b *Bot) handleHelp(c tele.Context) error {
	return reply(c, helpText)
}

func (b *Bot) handleGetChatID(c tele.Context) error {
	msg := c.Message()
	chat := msg.Chat

	chatTypeNames := map[tele.ChatType]string{
		tele.ChatChannel:    "Channel",
		tele.ChatGroup:      "Group",
		tele.ChatSuperGroup: "Supergroup",
		tele.ChatPrivate:    "Private chat",
	}
	chatType := chatTypeNames[chat.Type]
	if chatType == "" {
		chatType = string(chat.Type)
	}

	title := chat.Title
	if title == "" {
		title = "Untitled"
	}

	response := fmt.Sprintf(`📋 <b>Current chat:</b>

<b>Type:</b> %s
<b>Chat ID:</b> <code>%d</code>
<b>Title:</b> %s`, chatType, chat.ID, title)

	if msg.ThreadID != 0 {
		response += fmt.Sprintf("\n<b>Topic ID:</b> <code>%d</code>", msg.ThreadID)
	}

	response += `

💡 <b>Commands for this topic:</b>
/addtopic — add to sources
/deletetopic — remove from sources
/selectconductortopic — set as Conductor
/selectanouncestopic — set as Announcements`

	return reply(c, response)
}

func (b *Bot) handleModels(c tele.Context) error {
	return reply(c, b.AI.DescribeModels())
}

func (b *Bot) handleAddModel(c tele.Context) error {
	args := strings.Fields(c.Message().Payload)
	if len(args) < 2 {
		return reply(c, "❌ Usage: /add_model <name> <model>\nExample: /add_model deepseek deepseek/deepseek-chat:free")
	}

	key := args[0]
	model := strings.Join(args[1:], " ")

	added, err := b.AI.AddModel(key, model)
	if err != nil {
		log.Errorf("failed to add model: %v", err)
		return reply(c, translation.Translate("❌ Could not add the AI model"))
	}
	if !added {
		return reply(c, fmt.Sprintf("❌ AI model %q already exists", key))
	}
	return reply(c, fmt.Sprintf("✅ AI model %q added: %s", key, model))
}

func (b *Bot) handleRemoveModel(c tele.Context) error {
	args := strings.Fields(c.Message().Payload)
	if len(args) == 0 {
		return reply(c, "❌ Usage: /remove_model <name>\nExample: /remove_model deepseek")
	}

	removed, err := b.AI.RemoveModel(args[0])
	if err != nil {
		log.Errorf("failed to remove model: %v", err)
		return reply(c, translation.Translate("❌ Could not remove the AI model"))
	}
	if !removed {
		return reply(c, fmt.Sprintf("❌ AI model %q not found", args[0]))
	}
	return reply(c, fmt.Sprintf("✅ AI model %q removed", args[0]))
}

func (b *Bot) handleSetPrompt(c tele.Context) error {
	payload := strings.TrimSpace(c.Message().Payload)
	promptType, promptText, found := strings.Cut(payload, " ")
	if !found || promptText == "" {
		return reply(c, "❌ Usage: /set_prompt <announce|digest> <text>")
	}
	if promptType != types.PromptAnnounce && promptType != types.PromptDigest {
		return reply(c, fmt.Sprintf("❌ Unknown prompt type %q, expected announce or digest", promptType))
	}

	if err := database.UpdatePrompt(promptType, promptText); err != nil {
		log.Errorf("failed to update prompt: %v", err)
		return reply(c, translation.Translate("❌ Could not save the prompt"))
	}
	return reply(c, fmt.Sprintf("✅ Prompt %q saved", promptType))
}

func (b *Bot) handleTestPost(c tele.Context) error {
	kind := strings.TrimSpace(c.Message().Payload)
	if kind == "" {
		kind = "monday"
	}
	if kind != "monday" && kind != "friday" {
		return reply(c, "❌ Usage: /test_post <type>\nTypes:\n• monday — Monday post preview\n• friday — Friday digest preview")
	}

	if err := b.Posting.CreateTestPost(context.Background(), kind); err != nil {
		log.Errorf("test post failed: %v", err)
		return reply(c, fmt.Sprintf("❌ Could not create the test post: %v", err))
	}
	return reply(c, fmt.Sprintf("✅ Test %s post triggered", kind))
}

func (b *Bot) handleProcessMessages(c tele.Context) error {
	unprocessed, err := database.GetUnprocessedMessages()
	if err != nil {
		log.Errorf("unprocessed query failed: %v", err)
		return reply(c, translation.Translate("❌ Could not load pending messages"))
	}
	if len(unprocessed) == 0 {
		return reply(c, translation.Translate("✅ No messages awaiting classification"))
	}

	if err := reply(c, fmt.Sprintf("⏳ Classifying %d messages...", len(unprocessed))); err != nil {
		return err
	}

	go b.Classifier.ProcessUnprocessed(context.Background())
	return nil
}

func (b *Bot) handleCleanup(c tele.Context) error {
	deleted, err := database.CleanupOldMessages(b.Config.RetentionDays)
	if err != nil {
		log.Errorf("cleanup failed: %v", err)
		return reply(c, translation.Translate("❌ Could not clean up the database"))
	}
	return reply(c, fmt.Sprintf("✅ Cleanup finished. Messages deleted: %d", deleted))
}

func (b *Bot) handleStats(c tele.Context) error {
	recent, err := database.GetMessagesForPeriod(b.Config.RetentionDays)
	if err != nil {
		log.Errorf("stats query failed: %v", err)
		return reply(c, translation.Translate("❌ Could not load statistics"))
	}

	unprocessed, err := database.GetUnprocessedMessages()
	if err != nil {
		log.Errorf("stats query failed: %v", err)
		return reply(c, translation.Translate("❌ Could not load statistics"))
	}

	text := fmt.Sprintf(`📊 <b>Activity over the last %d days</b>

Messages captured: <b>%s</b>
Awaiting classification: <b>%s</b>
AI models configured: <b>%d</b>`,
		b.Config.RetentionDays,
		helpers.FormatCountUS(int64(len(recent))),
		helpers.FormatCountUS(int64(len(unprocessed))),
		b.AI.ModelCount(),
	)
	if len(recent) > 0 {
		// Messages come back newest first.
		oldest := recent[len(recent)-1]
		text += fmt.Sprintf("\nOldest captured: <b>%s</b>", helpers.FormatDate(oldest.CreatedAt))
	}
	if err := reply(c, text); err != nil {
		return err
	}

	photo, err := b.Posting.ActivityChart()
	if err != nil {
		log.Debugf("no activity chart: %v", err)
		return nil
	}
	return c.Send(photo, &tele.SendOptions{ThreadID: c.Message().ThreadID})
}
