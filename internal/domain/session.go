package domain

import (
	"time"

	"github.com/ad-code1993/aisrsback/internal/schema"
)

// Session status values. A session only ever moves active → complete.
const (
	StatusActive   = "active"
	StatusComplete = "complete"
)

// Session is one interview conversation and its collected SRS record.
type Session struct {
	SessionID      string
	Status         string
	Fields         *schema.Instance
	LatestProposal string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsComplete reports whether the interview has been finalized.
func (s *Session) IsComplete() bool {
	return s.Status == StatusComplete
}
