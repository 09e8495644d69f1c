// Package normalize coerces free-text model replies into the strict
// reason/question record the interview requires.
package normalize

import (
	"encoding/json"
	"strings"
)

// Reply is the two-field record every assistant turn must conform to
// before being stored or shown.
type Reply struct {
	Reason   string `json:"reason"`
	Question string `json:"question"`
}

// FallbackReply is returned when no strategy can recover both fields.
// The interview degrades to re-asking a safe, generic question instead
// of failing on malformed model output.
func FallbackReply() Reply {
	return Reply{
		Reason:   "We need to collect basic project information",
		Question: "What is the name of this project?",
	}
}

// strategy attempts to recover a Reply from raw text. ok is false when
// the strategy does not apply; the next one in the chain is tried.
type strategy func(text string) (Reply, bool)

// strategies are tried in priority order; the first success wins.
var strategies = []strategy{
	parseJSONObject,
	parseEmbeddedJSON,
	parseKeyValueMarkers,
}

// Normalize parses a raw model reply into a Reply. It never fails: if no
// strategy recovers both a reason and a question, the fixed fallback is
// returned and the conversation continues.
func Normalize(raw string) Reply {
	text := StripFences(raw)
	for _, try := range strategies {
		if reply, ok := try(text); ok {
			return reply
		}
	}
	return FallbackReply()
}

// StripFences removes surrounding whitespace and markdown code fences
// (```json ... ``` or ``` ... ```) so every parse attempt sees bare text.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// parseJSONObject handles text that is syntactically a single JSON object.
// Missing or empty keys fall through to the next strategy.
func parseJSONObject(text string) (Reply, bool) {
	if !strings.HasPrefix(text, "{") || !strings.HasSuffix(text, "}") {
		return Reply{}, false
	}
	return decodeReply(text)
}

// parseEmbeddedJSON handles replies where a JSON object is buried in
// surrounding prose: it slices from the first '{' to the last '}' and
// retries the parse. Only attempted when both key names are present.
func parseEmbeddedJSON(text string) (Reply, bool) {
	if !strings.Contains(text, `"reason"`) || !strings.Contains(text, `"question"`) {
		return Reply{}, false
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Reply{}, false
	}
	return decodeReply(text[start : end+1])
}

// parseKeyValueMarkers scans case-insensitively for "reason:" and
// "question:" markers, taking each value up to the next line break and
// trimming surrounding quotes and spaces.
func parseKeyValueMarkers(text string) (Reply, bool) {
	reason := valueAfterMarker(text, "reason:")
	question := valueAfterMarker(text, "question:")
	if reason == "" || question == "" {
		return Reply{}, false
	}
	return Reply{Reason: reason, Question: question}, true
}

func valueAfterMarker(text, marker string) string {
	idx := strings.Index(strings.ToLower(text), marker)
	if idx < 0 {
		return ""
	}
	rest := text[idx+len(marker):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return strings.Trim(strings.TrimSpace(rest), ` '"`)
}

func decodeReply(text string) (Reply, bool) {
	var reply Reply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return Reply{}, false
	}
	if strings.TrimSpace(reply.Reason) == "" || strings.TrimSpace(reply.Question) == "" {
		return Reply{}, false
	}
	reply.Reason = strings.TrimSpace(reply.Reason)
	reply.Question = strings.TrimSpace(reply.Question)
	return reply, true
}
