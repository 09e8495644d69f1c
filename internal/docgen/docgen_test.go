package docgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ad-code1993/aisrsback/internal/schema"
)

func TestCompileCoversEveryField(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for _, sec := range sections() {
		require.NotEmpty(t, sec.Heading)
		for _, e := range sec.Entries {
			require.False(t, seen[e.Field], "field %s mapped twice", e.Field)
			seen[e.Field] = true
		}
	}
	for _, name := range schema.FieldNames() {
		require.True(t, seen[name], "field %s has no heading", name)
	}
}

func TestCompileEmptyInstanceUsesPlaceholders(t *testing.T) {
	t.Parallel()

	out := Compile(schema.NewInstance(), Options{})
	require.Contains(t, out, "# 1. PROJECT IDENTIFICATION")
	require.Contains(t, out, "# 9. IMPACT ANALYSIS")
	// Every field is empty, so every entry renders the placeholder.
	require.Equal(t, len(schema.FieldNames()), strings.Count(out, "- **"))
	require.GreaterOrEqual(t, strings.Count(out, Placeholder), len(schema.FieldNames()))
}

func TestCompileIsDeterministic(t *testing.T) {
	t.Parallel()

	instance := schema.NewInstance()
	require.NoError(t, instance.Set("project_name", "Acme Tracker"))
	require.NoError(t, instance.Set("scope", "issue tracking for small teams"))

	first := Compile(instance, Options{Style: "formal", Tone: "neutral"})
	second := Compile(instance, Options{Style: "formal", Tone: "neutral"})
	require.Equal(t, first, second)

	require.Contains(t, first, "- **Project Name**: Acme Tracker")
	require.Contains(t, first, "- **Scope**: issue tracking for small teams")
	require.Contains(t, first, "Style: formal.")
	require.Contains(t, first, "Tone: neutral.")
}

func TestCompileAppendsExtraInstructions(t *testing.T) {
	t.Parallel()

	out := Compile(schema.NewInstance(), Options{Extra: "add a risks appendix"})
	require.Contains(t, out, "Additional Instructions: add a risks appendix")
}
