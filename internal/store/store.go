// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ad-code1993/aisrsback/internal/domain"
	"github.com/ad-code1993/aisrsback/internal/schema"
)

// ErrSessionNotActive is returned when a finalize targets a session that
// is missing or already complete. Finalizing twice is rejected.
var ErrSessionNotActive = errors.New("session is not active")

// Repository defines the interface for persisting interview sessions and
// their transcripts.
type Repository interface {
	// CreateSession persists a new session record.
	CreateSession(ctx context.Context, session *domain.Session) error

	// GetSession retrieves a session by id. Returns (nil, nil) when the
	// session does not exist.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// ListTurns retrieves a session's transcript in sequence order.
	ListTurns(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// AppendTurns appends one or more turns in a single transaction and
	// bumps the session's updated_at. Either all turns are written or none.
	AppendTurns(ctx context.Context, sessionID string, turns ...domain.Turn) error

	// FinalizeSession writes every field value and flips the session to
	// complete in one atomic update. Returns ErrSessionNotActive if the
	// session is missing or already complete.
	FinalizeSession(ctx context.Context, sessionID string, fields *schema.Instance, updatedAt time.Time) error

	// SaveProposal stores the latest generated document for a session.
	SaveProposal(ctx context.Context, sessionID, proposal string, updatedAt time.Time) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
