package domain

import (
	"time"
)

// Turn roles.
const (
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

// Turn is one immutable utterance in a session transcript. Turns are only
// ever appended; for a given session the sequence numbers form a gapless
// run starting at 1.
type Turn struct {
	SessionID string
	Seq       int
	Role      string
	Content   string
	Reason    string // populated for assistant turns only
	CreatedAt time.Time
}
