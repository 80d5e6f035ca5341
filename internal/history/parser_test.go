package history

import (
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

const exportFixture = `<!DOCTYPE html>
<html>
<body>
 <div class="history">
  <div class="message service" id="message1">
   <div class="body details">Topic started</div>
  </div>
  <div class="message default clearfix" id="message2">
   <div class="pull_right date details" title="21.07.2025 14:03:12 UTC+03:00">14:03</div>
   <div class="text">We should build   a docs
     site</div>
  </div>
  <div class="message default clearfix" id="message3">
   <div class="reply_to details">In reply to <a href="#go_to_message(2)">this message</a></div>
   <div class="text">Agreed, let us start this week</div>
  </div>
  <div class="message default clearfix" id="message4">
   <div class="reply_to details">In reply to <a href="#go_to_message(1)">this message</a></div>
   <div class="text">Replying to the opener</div>
  </div>
  <div class="message default clearfix" id="message5">
   <div class="text"></div>
  </div>
 </div>
</body>
</html>`

func TestParseExport(t *testing.T) {
	messages, topics, err := ParseExport(strings.NewReader(exportFixture))
	if err != nil {
		t.Fatalf("ParseExport failed: %v", err)
	}

	// Service message and the empty-text message are skipped.
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d:\n%s", len(messages), spew.Sdump(messages))
	}
	if topics != 1 {
		t.Errorf("expected 1 topic, got %d", topics)
	}

	first := messages[0]
	if first.MessageID != 2 {
		t.Errorf("first message id = %d, expected 2", first.MessageID)
	}
	if first.Text != "We should build a docs site" {
		t.Errorf("whitespace not collapsed: %q", first.Text)
	}
	if first.CreatedAt != "2025-07-21 11:03:12" {
		t.Errorf("timestamp not converted to UTC: %q", first.CreatedAt)
	}

	if messages[1].ParentMessageID != 2 {
		t.Errorf("reply parent = %d, expected 2", messages[1].ParentMessageID)
	}

	// Replies to service messages must not become thread parents.
	if messages[2].ParentMessageID != 0 {
		t.Errorf("service parent leaked through: %d", messages[2].ParentMessageID)
	}
}

func TestParseExportNoMessages(t *testing.T) {
	messages, topics, err := ParseExport(strings.NewReader("<html><body></body></html>"))
	if err != nil {
		t.Fatalf("ParseExport failed: %v", err)
	}
	if len(messages) != 0 || topics != 0 {
		t.Errorf("expected empty result, got %d messages, %d topics", len(messages), topics)
	}
}
