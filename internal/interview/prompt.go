package interview

import (
	"fmt"
	"strings"

	"github.com/ad-code1993/aisrsback/internal/domain"
	"github.com/ad-code1993/aisrsback/internal/schema"
)

// basePrompt builds the fixed interview instructions from the schema
// field metadata. One template serves every field; the model is told to
// walk the fields in canonical order, one question per turn.
func basePrompt() string {
	var b strings.Builder
	b.WriteString(`You are a systematic requirements gathering assistant. Your task is to collect information for a Software Requirements Specification (SRS) document by asking one question at a time.

RULES:
1. Ask only ONE question per response
2. Always provide both 'reason' and 'question'
3. Use the exact JSON format specified below
4. When all information is collected, respond with "All done" in the question field

FIELDS TO COLLECT (ask about these in logical order):
`)
	for _, f := range schema.Fields() {
		fmt.Fprintf(&b, "- %s: %s\n", f.Name, f.Description)
	}
	b.WriteString(`
STRICT RESPONSE FORMAT (JSON ONLY):
{
  "reason": "Brief explanation of why this information is needed",
  "question": "The specific question to ask about this field"
}

EXAMPLE:
{
  "reason": "The project name identifies the system being developed",
  "question": "What is the name of this project?"
}

DO NOT include any additional text, markdown, or formatting outside the JSON object.`)
	return b.String()
}

// conversationPrompt rebuilds the full prompt context: the interview
// instructions, every prior turn as "Role: content" lines, and the new
// user reply.
func conversationPrompt(turns []domain.Turn, userReply string) string {
	var b strings.Builder
	b.WriteString(basePrompt())
	b.WriteString("\n\n")
	for _, turn := range turns {
		b.WriteString(roleLabel(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(userReply)
	b.WriteString("\n")
	return b.String()
}

// extractionPrompt asks for one value per schema field from the finished
// transcript, as a single JSON object. Unanswered fields map to empty
// strings rather than being omitted or invented.
func extractionPrompt(turns []domain.Turn) string {
	var b strings.Builder
	b.WriteString(`You are given the transcript of a completed requirements interview. Extract the user's answer for each field below into a single JSON object keyed by field name.

FIELDS:
`)
	for _, f := range schema.Fields() {
		fmt.Fprintf(&b, "- %s: %s\n", f.Name, f.Description)
	}
	b.WriteString(`
RULES:
1. Return ONLY one JSON object, no markdown, no commentary
2. Every field must be present; use "" when the transcript has no answer
3. Use the user's own wording; do not invent information

TRANSCRIPT:
`)
	for _, turn := range turns {
		b.WriteString(roleLabel(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func roleLabel(role string) string {
	if role == domain.RoleAssistant {
		return "Assistant"
	}
	return "User"
}
