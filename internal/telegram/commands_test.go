package telegram

import (
	"strings"
	"testing"
)

func TestHelpListsAllCommands(t *testing.T) {
	commands := []string{
		"/addtopic",
		"/deletetopic",
		"/listtopics",
		"/selectconductortopic",
		"/selectanouncestopic",
		"/showconfig",
		"/get_chat_id",
		"/models",
		"/add_model",
		"/remove_model",
		"/set_prompt",
		"/test_post",
		"/process_messages",
		"/cleanup_messages",
		"/stats",
	}

	for _, cmd := range commands {
		if !strings.Contains(helpText, cmd) {
			t.Errorf("help text does not mention %s", cmd)
		}
	}
}
