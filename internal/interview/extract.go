package interview

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ad-code1993/aisrsback/internal/normalize"
	"github.com/ad-code1993/aisrsback/internal/schema"
)

// parseExtraction converts the extraction collaborator's reply into a
// schema instance. Fenced or prose-wrapped JSON is salvaged the same way
// interview replies are; unknown keys are dropped and missing fields
// resolve to empty values, never an error about incompleteness.
func parseExtraction(raw string) (*schema.Instance, error) {
	text := normalize.StripFences(raw)
	if !strings.HasPrefix(text, "{") || !strings.HasSuffix(text, "}") {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("no JSON object in extraction reply")
		}
		text = text[start : end+1]
	}

	// Values may come back as strings, numbers, lists, or nulls depending
	// on model mood; flatten everything to strings.
	var raw2 map[string]any
	if err := json.Unmarshal([]byte(text), &raw2); err != nil {
		return nil, fmt.Errorf("decode extraction reply: %w", err)
	}

	instance := schema.NewInstance()
	for _, name := range schema.FieldNames() {
		value, ok := raw2[name]
		if !ok || value == nil {
			continue
		}
		if err := instance.Set(name, flatten(value)); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

func flatten(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := flatten(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}
