package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeCleanJSON(t *testing.T) {
	t.Parallel()

	reply := Normalize(`{"reason": "The project name identifies the system", "question": "What is the name of this project?"}`)
	require.Equal(t, "The project name identifies the system", reply.Reason)
	require.Equal(t, "What is the name of this project?", reply.Question)
}

func TestNormalizeFencedJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
	}{
		{
			name: "json fence",
			raw:  "```json\n{\"reason\": \"r\", \"question\": \"q\"}\n```",
		},
		{
			name: "bare fence",
			raw:  "```\n{\"reason\": \"r\", \"question\": \"q\"}\n```",
		},
		{
			name: "fence with surrounding whitespace",
			raw:  "  \n```json\n{\"reason\": \"r\", \"question\": \"q\"}\n```\n  ",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			reply := Normalize(tc.raw)
			require.Equal(t, "r", reply.Reason)
			require.Equal(t, "q", reply.Question)
		})
	}
}

func TestNormalizeEmbeddedJSON(t *testing.T) {
	t.Parallel()

	raw := `Here is my response: {"reason": "need version", "question": "What version?"} hope that helps`
	reply := Normalize(raw)
	require.Equal(t, "need version", reply.Reason)
	require.Equal(t, "What version?", reply.Question)
}

func TestNormalizeKeyValueText(t *testing.T) {
	t.Parallel()

	raw := "Reason: 'we need the authors'\nQuestion: \"Who are the authors?\"\nextra trailing text"
	reply := Normalize(raw)
	require.Equal(t, "we need the authors", reply.Reason)
	require.Equal(t, "Who are the authors?", reply.Question)
}

func TestNormalizeKeyValueCaseInsensitive(t *testing.T) {
	t.Parallel()

	reply := Normalize("REASON: scope matters\nQUESTION: What is in scope?")
	require.Equal(t, "scope matters", reply.Reason)
	require.Equal(t, "What is in scope?", reply.Question)
}

func TestNormalizeNeverFails(t *testing.T) {
	t.Parallel()

	// Every malformed shape degrades to the fixed fallback with non-empty
	// reason and question; the interview never crashes on model output.
	cases := []string{
		"",
		"complete garbage with no structure at all",
		`{"reason": "only a reason"}`,
		`{"question": "only a question"}`,
		`{"reason": 42, "question": true}`,
		"{broken json",
		"```json\nnot json either\n```",
		"reason: has a reason but no question marker",
	}

	for _, raw := range cases {
		reply := Normalize(raw)
		require.NotEmpty(t, reply.Reason, "input %q", raw)
		require.NotEmpty(t, reply.Question, "input %q", raw)
	}
}

func TestNormalizePartialJSONFallsThroughToMarkers(t *testing.T) {
	t.Parallel()

	// JSON parse fails, but the marker scan still recovers both fields.
	raw := "{\"bad\": \nreason: recovered reason\nquestion: recovered question"
	reply := Normalize(raw)
	require.Equal(t, "recovered reason", reply.Reason)
	require.Equal(t, "recovered question", reply.Question)
}

type wrappedResult struct {
	payload any
}

func (w wrappedResult) Output() any { return w.payload }

func TestNormalizeValue(t *testing.T) {
	t.Parallel()

	direct := Reply{Reason: "r", Question: "q"}
	require.Equal(t, direct, NormalizeValue(direct))
	require.Equal(t, direct, NormalizeValue(&direct))

	wrapped := wrappedResult{payload: `{"reason": "r", "question": "q"}`}
	require.Equal(t, direct, NormalizeValue(wrapped))

	require.Equal(t, FallbackReply(), NormalizeValue((*Reply)(nil)))
	require.Equal(t, FallbackReply(), NormalizeValue(12345))
}
