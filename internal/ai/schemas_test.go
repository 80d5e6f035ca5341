package ai

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name     string
		response string
		expected string
	}{
		{
			name:     "bare object",
			response: `{"classification": "goal"}`,
			expected: `{"classification": "goal"}`,
		},
		{
			name:     "code fence",
			response: "Here is the answer:\n```json\n{\"classification\": \"goal\"}\n```",
			expected: `{"classification": "goal"}`,
		},
		{
			name:     "prose around",
			response: `Sure! {"related": true, "thread_id": 4} Hope that helps.`,
			expected: `{"related": true, "thread_id": 4}`,
		},
		{
			name:     "no object at all",
			response: "I cannot answer that",
			expected: "I cannot answer that",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := extractJSON(c.response)
			if got != c.expected {
				t.Errorf("extractJSON(%q) = %q, expected %q", c.response, got, c.expected)
			}
		})
	}
}

func TestParseClassificationResponse(t *testing.T) {
	cases := []struct {
		name     string
		response string
		expected ClassificationResult
	}{
		{
			name:     "valid json",
			response: `{"classification": "goal", "confidence": 0.9, "reason": "new project", "title": "Launch docs site"}`,
			expected: ClassificationResult{Classification: "goal", Confidence: 0.9, Reason: "new project", Title: "Launch docs site"},
		},
		{
			name:     "valid json with empty class degrades to other",
			response: `{"confidence": 0.3}`,
			expected: ClassificationResult{Classification: "other", Confidence: 0.3},
		},
		{
			name:     "broken json but class named",
			response: `The result is "classification": "blocker", trailing garbage`,
			expected: ClassificationResult{Classification: "blocker", Confidence: 0.8, Reason: "automatic classification", Title: "New blocker"},
		},
		{
			name:     "unparseable",
			response: "no idea",
			expected: ClassificationResult{Classification: "other", Confidence: 0.5, Reason: "could not classify"},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := parseClassificationResponse(c.response)
			if got != c.expected {
				t.Errorf("unexpected result:\ngot: %sexpected: %s", spew.Sdump(got), spew.Sdump(c.expected))
			}
		})
	}
}

func TestParseSlingResponse(t *testing.T) {
	cases := []struct {
		name     string
		response string
		expected SlingResult
	}{
		{
			name:     "related with numeric thread id",
			response: `{"related": true, "thread_id": 12, "confidence": 0.85, "reason": "same topic"}`,
			expected: SlingResult{Related: true, ThreadID: 12, Confidence: 0.85, Reason: "same topic"},
		},
		{
			name:     "unrelated with null thread id",
			response: `{"related": false, "thread_id": null, "confidence": 0.9, "reason": "different subject"}`,
			expected: SlingResult{Related: false, ThreadID: 0, Confidence: 0.9, Reason: "different subject"},
		},
		{
			name:     "broken json with related flag",
			response: `partial output "related": true and "thread_id": 7 then noise`,
			expected: SlingResult{Related: true, ThreadID: 7, Confidence: 0.7, Reason: "semantic match found"},
		},
		{
			name:     "unparseable",
			response: "cannot process",
			expected: SlingResult{Reason: "no match found"},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := parseSlingResponse(c.response)
			if got != c.expected {
				t.Errorf("unexpected result:\ngot: %sexpected: %s", spew.Sdump(got), spew.Sdump(c.expected))
			}
		})
	}
}
