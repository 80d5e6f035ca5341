package history

import (
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"weekly-digest-bot/internal/database"
	"weekly-digest-bot/internal/types"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// exportTimeLayout is the timestamp format Telegram HTML exports use in
// the date tooltip, e.g. "21.07.2025 14:03:12 UTC+03:00".
const exportTimeLayout = "02.01.2006 15:04:05 UTC-07:00"

var (
	messageIDPattern = regexp.MustCompile(`(?i)^message-?(\d+)$`)
	topicPattern     = regexp.MustCompile(`(?i)topic[_-]?(\d+)`)
	goToPattern      = regexp.MustCompile(`go_to_message\((\d+)\)`)
	hrefMsgPattern   = regexp.MustCompile(`(?i)message[_-]?(\d+)`)
	whitespace       = regexp.MustCompile(`\s+`)
)

// Result summarizes one export import run
type Result struct {
	TotalMessages int
	SavedMessages int
	TopicsFound   int
	Duration      time.Duration
}

// Import parses an export document from a reader and stores its messages
func Import(r io.Reader) (Result, error) {
	start := time.Now()

	messages, topics, err := ParseExport(r)
	if err != nil {
		return Result{}, err
	}
	if len(messages) == 0 {
		return Result{}, errors.New("no messages found in export")
	}

	saved := 0
	for _, m := range messages {
		if _, err := database.SaveMessage(m); err != nil {
			log.Errorf("failed to save imported message %d: %v", m.MessageID, err)
			continue
		}
		saved++
	}

	result := Result{
		TotalMessages: len(messages),
		SavedMessages: saved,
		TopicsFound:   topics,
		Duration:      time.Since(start),
	}
	log.Infof("export import finished: %d/%d messages saved, %d topics", saved, len(messages), topics)
	return result, nil
}

// ParseExport extracts messages from a Telegram HTML chat export without
// touching the database. Returns the messages and the number of distinct
// topics seen.
func ParseExport(r io.Reader) ([]types.ChatMessage, int, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, 0, errors.Wrap(err, "could not parse export html")
	}

	// First pass: remember service messages so replies to them are not
	// treated as thread parents.
	serviceIDs := make(map[int64]bool)
	doc.Find("div.message.service").Each(func(_ int, sel *goquery.Selection) {
		if id, ok := extractMessageID(sel); ok {
			serviceIDs[id] = true
		}
	})

	var messages []types.ChatMessage
	topicsSeen := make(map[int64]bool)
	var currentTopic int64 = 1

	doc.Find("div[id^=message]").Each(func(_ int, sel *goquery.Selection) {
		id, ok := extractMessageID(sel)
		if !ok {
			return
		}

		if topicID, found := extractTopicID(sel); found {
			currentTopic = topicID
		}

		if sel.HasClass("service") {
			return
		}

		text := cleanText(sel.Find("div.text").First().Text())
		if text == "" {
			return
		}

		topicsSeen[currentTopic] = true

		m := types.ChatMessage{
			MessageID: id,
			TopicID:   currentTopic,
			Text:      text,
		}

		if created, found := extractTimestamp(sel); found {
			m.CreatedAt = created.UTC().Format("2006-01-02 15:04:05")
		}

		if parentID, found := extractParentID(sel); found && !serviceIDs[parentID] {
			m.ParentMessageID = parentID
		}

		messages = append(messages, m)
	})

	return messages, len(topicsSeen), nil
}

func extractMessageID(sel *goquery.Selection) (int64, bool) {
	id := sel.AttrOr("id", "")
	m := messageIDPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func extractTopicID(sel *goquery.Selection) (int64, bool) {
	var topicID int64
	var found bool
	sel.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href := link.AttrOr("href", "")
		if m := topicPattern.FindStringSubmatch(href); m != nil {
			if v, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				topicID = v
				found = true
				return false
			}
		}
		return true
	})
	return topicID, found
}

func extractTimestamp(sel *goquery.Selection) (time.Time, bool) {
	title := sel.Find("div.date").First().AttrOr("title", "")
	if title == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(exportTimeLayout, title)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func extractParentID(sel *goquery.Selection) (int64, bool) {
	var parentID int64
	var found bool
	sel.Find("[class*=reply_to] a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href := link.AttrOr("href", "")
		m := goToPattern.FindStringSubmatch(href)
		if m == nil {
			m = hrefMsgPattern.FindStringSubmatch(href)
		}
		if m != nil {
			if v, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				parentID = v
				found = true
				return false
			}
		}
		return true
	})
	return parentID, found
}

func cleanText(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
