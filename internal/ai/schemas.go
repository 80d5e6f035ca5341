package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"weekly-digest-bot/internal/types"

	log "github.com/sirupsen/logrus"
)

// ClassificationResult is the outcome of classifying a single message
type ClassificationResult struct {
	Classification string  `json:"classification"`
	Confidence     float64 `json:"confidence"`
	Reason         string  `json:"reason"`
	Title          string  `json:"title"`
}

// SlingResult is the outcome of matching a message against active threads
type SlingResult struct {
	Related    bool    `json:"related"`
	ThreadID   int64   `json:"thread_id"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

const classifyPrompt = `You are a message classifier for an IT community.
Analyze the message and determine its type.

DEFINITIONS:
A "goal" is a new idea, project, research effort or task the community
should work on. It is a high-level, broad, long-term description of a
desired outcome.
A "blocker" is any event, problem or circumstance that prevents or impedes
planned work on projects and goals.

Return the answer as JSON:
{
    "classification": "goal" | "blocker" | "other",
    "confidence": number between 0 and 1,
    "reason": "why you decided so",
    "title": "short thread title (when classification is not 'other')"
}
`

const slingPrompt = `You are an assistant that links messages to discussions.
Determine whether the new message belongs, by meaning, to one of the
existing threads.

DEFINITIONS:
A "goal" is a new idea, project, research effort or task.
A "blocker" is a problem or circumstance that impedes work.

Return the answer as JSON:
{
    "related": true | false,
    "thread_id": thread number | null,
    "confidence": number between 0 and 1,
    "reason": "why you decided so"
}
`

const jsonOnlySuffix = "\n\nReturn the answer ONLY as JSON, with no extra text."

// ClassifyMessage decides whether a message opens a new goal or blocker.
// Any failure degrades to an "other" classification so the pipeline can
// keep moving.
func (c *Client) ClassifyMessage(ctx context.Context, text string) ClassificationResult {
	prompt := fmt.Sprintf("%s\nMessage to classify: %q\n\nAnalyze and classify this message.%s", classifyPrompt, text, jsonOnlySuffix)

	response, err := c.Complete(ctx, prompt)
	if err != nil {
		log.Errorf("message classification failed: %v", err)
		return ClassificationResult{Classification: types.ClassificationOther, Reason: err.Error()}
	}
	return parseClassificationResponse(response)
}

// SemanticSling checks whether a message continues one of the active threads
func (c *Client) SemanticSling(ctx context.Context, text string, threads []types.ThreadWithMessages) SlingResult {
	var b strings.Builder
	b.WriteString(slingPrompt)
	b.WriteString("\nActive threads:")
	for _, t := range threads {
		fmt.Fprintf(&b, "\nThread %d (%s): %s", t.ThreadID, t.Classification, t.Title)
		if len(t.Messages) > 0 {
			recent := t.Messages
			if len(recent) > 3 {
				recent = recent[len(recent)-3:]
			}
			fmt.Fprintf(&b, "\nRecent messages: %s", strings.Join(recent, " | "))
		}
	}
	fmt.Fprintf(&b, "\n\nNew message: %q\n\nDetermine whether the new message belongs to one of the existing threads by meaning.\nIf it does, give the id of the best matching thread.%s", text, jsonOnlySuffix)

	response, err := c.Complete(ctx, b.String())
	if err != nil {
		log.Errorf("semantic sling failed: %v", err)
		return SlingResult{Reason: err.Error()}
	}
	return parseSlingResponse(response)
}

var (
	threadIDPattern = regexp.MustCompile(`"thread_id":\s*(\d+)`)
	jsonBlock       = regexp.MustCompile(`(?s)\{.*\}`)
)

// extractJSON pulls a JSON object out of model output that may be wrapped
// in prose or code fences
func extractJSON(response string) string {
	if m := jsonBlock.FindString(response); m != "" {
		return m
	}
	return response
}

func parseClassificationResponse(response string) ClassificationResult {
	var result ClassificationResult
	if err := json.Unmarshal([]byte(extractJSON(response)), &result); err == nil {
		if result.Classification == "" {
			result.Classification = types.ClassificationOther
		}
		return result
	}

	// Fallback for models that break the JSON but still name the class
	switch {
	case strings.Contains(response, `"classification": "goal"`):
		return ClassificationResult{Classification: types.ClassificationGoal, Confidence: 0.8, Reason: "automatic classification", Title: "New goal"}
	case strings.Contains(response, `"classification": "blocker"`):
		return ClassificationResult{Classification: types.ClassificationBlocker, Confidence: 0.8, Reason: "automatic classification", Title: "New blocker"}
	default:
		return ClassificationResult{Classification: types.ClassificationOther, Confidence: 0.5, Reason: "could not classify"}
	}
}

func parseSlingResponse(response string) SlingResult {
	var raw struct {
		Related    bool        `json:"related"`
		ThreadID   json.Number `json:"thread_id"`
		Confidence float64     `json:"confidence"`
		Reason     string      `json:"reason"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &raw); err == nil {
		result := SlingResult{Related: raw.Related, Confidence: raw.Confidence, Reason: raw.Reason}
		if id, err := raw.ThreadID.Int64(); err == nil {
			result.ThreadID = id
		}
		return result
	}

	if strings.Contains(response, `"related": true`) {
		result := SlingResult{Related: true, Confidence: 0.7, Reason: "semantic match found"}
		if m := threadIDPattern.FindStringSubmatch(response); m != nil {
			fmt.Sscanf(m[1], "%d", &result.ThreadID)
		}
		return result
	}
	return SlingResult{Reason: "no match found"}
}
