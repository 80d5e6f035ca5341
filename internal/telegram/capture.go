package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"weekly-digest-bot/internal/database"
	"weekly-digest-bot/internal/digest"
	"weekly-digest-bot/internal/history"
	"weekly-digest-bot/internal/metrics"
	"weekly-digest-bot/internal/types"
	"weekly-digest-bot/lib/translation"

	log "github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v4"
)

func (b *Bot) registerCaptureHandlers() {
	b.Bot.Handle(tele.OnText, b.handleText)
	b.Bot.Handle(tele.OnDocument, b.handleDocument)
	b.Bot.Handle(&tele.Btn{Unique: digest.BtnPublishUnique}, b.handlePublishButton)
	b.Bot.Handle(&tele.Btn{Unique: digest.BtnEditUnique}, b.handleEditButton)
}

// handleText routes plain text either to the draft editing flow in the
// admin chat or to message capture in the monitored chat
func (b *Bot) handleText(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Text == "" || strings.HasPrefix(msg.Text, "/") {
		return nil
	}

	if msg.Chat.ID == b.Config.AdminChatID {
		return b.handleEditReply(c)
	}
	if msg.Chat.ID == b.Config.MainChatID {
		return b.captureMessage(c)
	}
	return nil
}

// handleEditReply applies a reply to an edit prompt as the new draft text
func (b *Bot) handleEditReply(c tele.Context) error {
	msg := c.Message()
	if msg.ReplyTo == nil {
		return nil
	}

	b.mu.Lock()
	rowID, ok := b.editTargets[msg.ReplyTo.ID]
	if ok {
		delete(b.editTargets, msg.ReplyTo.ID)
	}
	b.mu.Unlock()
	if !ok {
		return nil
	}

	if err := b.Posting.UpdatePostText(rowID, msg.Text); err != nil {
		log.Errorf("failed to update draft %d: %v", rowID, err)
		return c.Send(translation.Translate("❌ Could not update the draft"))
	}
	return c.Send(translation.Translate("✅ Draft updated. Use the Publish button on the original message to post it."))
}

// captureMessage stores a message from a monitored source topic
func (b *Bot) captureMessage(c tele.Context) error {
	msg := c.Message()
	if msg.ThreadID == 0 {
		return nil
	}

	topicID := int64(msg.ThreadID)
	monitored, err := database.IsSourceTopic(topicID)
	if err != nil {
		log.Errorf("failed to check source topic %d: %v", topicID, err)
		return nil
	}
	if !monitored {
		return nil
	}

	m := types.ChatMessage{
		MessageID: int64(msg.ID),
		TopicID:   topicID,
		Text:      msg.Text,
	}
	// A reply to the topic opener carries it as ReplyTo even though it
	// starts no conversation, so only real replies become parents.
	if msg.ReplyTo != nil && msg.ReplyTo.ID != msg.ThreadID {
		m.ParentMessageID = int64(msg.ReplyTo.ID)
	}

	if _, err := database.SaveMessage(m); err != nil {
		log.Errorf("failed to save message %d from topic %d: %v", m.MessageID, topicID, err)
		return nil
	}

	topicName := ""
	if topic, err := database.GetSourceTopicName(topicID); err == nil {
		topicName = topic
	}
	metrics.Default.RecordTopicMessage(topicID, topicName)
	return nil
}

// handleDocument imports a Telegram HTML chat export uploaded to the admin chat
func (b *Bot) handleDocument(c tele.Context) error {
	msg := c.Message()
	if msg.Chat.ID != b.Config.AdminChatID || msg.Document == nil {
		return nil
	}
	if !strings.HasSuffix(strings.ToLower(msg.Document.FileName), ".html") {
		return c.Send(translation.Translate("❌ Expected a Telegram chat export (.html file)"))
	}

	if err := c.Send(translation.Translate("⏳ Importing chat export...")); err != nil {
		log.Errorf("failed to acknowledge export upload: %v", err)
	}

	rc, err := b.Bot.File(&msg.Document.File)
	if err != nil {
		log.Errorf("failed to download export %s: %v", msg.Document.FileName, err)
		return c.Send(translation.Translate("❌ Could not download the file"))
	}
	defer rc.Close()

	result, err := history.Import(rc)
	if err != nil {
		log.Errorf("failed to import export %s: %v", msg.Document.FileName, err)
		return c.Send(fmt.Sprintf("❌ Import failed: %v", err))
	}

	return c.Send(fmt.Sprintf(
		"✅ <b>Import finished</b>\n\nMessages found: %d\nMessages saved: %d\nTopics: %d\nTook: %s",
		result.TotalMessages, result.SavedMessages, result.TopicsFound, result.Duration.Round(10*time.Millisecond),
	), tele.ModeHTML)
}

// handlePublishButton posts the draft behind the pressed button to the main chat
func (b *Bot) handlePublishButton(c tele.Context) error {
	rowID, err := strconv.ParseInt(strings.TrimSpace(c.Data()), 10, 64)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Broken button data"})
	}

	if err := b.Posting.PublishPost(rowID); err != nil {
		log.Errorf("failed to publish draft %d: %v", rowID, err)
		return c.Respond(&tele.CallbackResponse{Text: "Publishing failed, check the logs"})
	}

	if err := c.Edit(c.Message().Text+"\n\n✅ <i>Published</i>", tele.ModeHTML); err != nil {
		log.Debugf("failed to edit published draft message: %v", err)
	}
	return c.Respond(&tele.CallbackResponse{Text: "Published ✅"})
}

// handleEditButton asks the admin for replacement text for the draft
func (b *Bot) handleEditButton(c tele.Context) error {
	rowID, err := strconv.ParseInt(strings.TrimSpace(c.Data()), 10, 64)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Broken button data"})
	}

	prompt, err := b.Bot.Send(c.Chat(),
		translation.Translate("✏️ Send the new post text as a reply to this message"),
		&tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{ForceReply: true}})
	if err != nil {
		log.Errorf("failed to send edit prompt for draft %d: %v", rowID, err)
		return c.Respond(&tele.CallbackResponse{Text: "Could not start editing"})
	}

	b.mu.Lock()
	b.editTargets[prompt.ID] = rowID
	b.mu.Unlock()

	return c.Respond(&tele.CallbackResponse{Text: "Waiting for the new text"})
}
