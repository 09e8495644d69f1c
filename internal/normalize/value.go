package normalize

import "fmt"

// outputCarrier is implemented by collaborator results that wrap their
// payload in an output field.
type outputCarrier interface {
	Output() any
}

// NormalizeValue accepts inputs that may already be structured: a Reply is
// returned unchanged, a result exposing a nested output payload is
// unwrapped, and anything else is rendered to text and run through the
// normal strategy chain.
func NormalizeValue(v any) Reply {
	switch val := v.(type) {
	case Reply:
		return val
	case *Reply:
		if val != nil {
			return *val
		}
		return FallbackReply()
	case outputCarrier:
		return NormalizeValue(val.Output())
	case string:
		return Normalize(val)
	case fmt.Stringer:
		return Normalize(val.String())
	default:
		return Normalize(fmt.Sprint(v))
	}
}
