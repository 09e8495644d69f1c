package interview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ad-code1993/aisrsback/internal/domain"
	"github.com/ad-code1993/aisrsback/internal/schema"
)

func TestBasePromptListsEveryFieldInOrder(t *testing.T) {
	t.Parallel()

	prompt := basePrompt()
	last := -1
	for _, name := range schema.FieldNames() {
		idx := strings.Index(prompt, "- "+name+":")
		require.GreaterOrEqual(t, idx, 0, "field %s missing from prompt", name)
		require.Greater(t, idx, last, "field %s out of order", name)
		last = idx
	}
	require.Contains(t, prompt, `"All done"`)
}

func TestConversationPromptRendersTranscript(t *testing.T) {
	t.Parallel()

	turns := []domain.Turn{
		{Seq: 1, Role: domain.RoleAssistant, Content: "What is the name of this project?"},
		{Seq: 2, Role: domain.RoleUser, Content: "Acme Tracker"},
		{Seq: 3, Role: domain.RoleAssistant, Content: "What version?"},
	}
	prompt := conversationPrompt(turns, "1.0")

	require.Contains(t, prompt, "Assistant: What is the name of this project?\n")
	require.Contains(t, prompt, "User: Acme Tracker\n")
	require.True(t, strings.HasSuffix(prompt, "User: 1.0\n"))
	// History order is preserved.
	require.Less(t,
		strings.Index(prompt, "What is the name of this project?"),
		strings.Index(prompt, "What version?"))
}

func TestParseExtraction(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		raw     string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "clean object",
			raw:  `{"project_name": "Acme", "srs_version": "1.0"}`,
			want: map[string]string{"project_name": "Acme", "srs_version": "1.0"},
		},
		{
			name: "fenced object with prose",
			raw:  "Sure, here you go:\n```json\n{\"project_name\": \"Acme\"}\n```",
			want: map[string]string{"project_name": "Acme"},
		},
		{
			name: "numbers and nulls flatten",
			raw:  `{"srs_version": 2, "scope": null}`,
			want: map[string]string{"srs_version": "2", "scope": ""},
		},
		{
			name:    "no object at all",
			raw:     "I could not extract anything",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			instance, err := parseExtraction(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			for name, want := range tc.want {
				require.Equal(t, want, instance.Get(name))
			}
		})
	}
}
