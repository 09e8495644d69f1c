package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ad-code1993/aisrsback/internal/domain"
	"github.com/ad-code1993/aisrsback/internal/schema"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "srs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newTestSession(id string) *domain.Session {
	now := time.Now()
	return &domain.Session{
		SessionID: id,
		Status:    domain.StatusActive,
		Fields:    schema.NewInstance(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateAndGetSession(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateSession(ctx, newTestSession("s1")))

	got, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, domain.StatusActive, got.Status)
	require.Empty(t, got.LatestProposal)
	require.Empty(t, got.Fields.Get("project_name"))
}

func TestGetSessionMissing(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)

	got, err := repo.GetSession(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestAppendTurnsOrdering(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateSession(ctx, newTestSession("s1")))

	now := time.Now()
	require.NoError(t, repo.AppendTurns(ctx, "s1", domain.Turn{
		SessionID: "s1", Seq: 1, Role: domain.RoleAssistant,
		Content: "What is the name of this project?", Reason: "identifies the system",
		CreatedAt: now,
	}))
	require.NoError(t, repo.AppendTurns(ctx, "s1",
		domain.Turn{SessionID: "s1", Seq: 2, Role: domain.RoleUser, Content: "Acme Tracker", CreatedAt: now},
		domain.Turn{SessionID: "s1", Seq: 3, Role: domain.RoleAssistant, Content: "What version?", Reason: "versioning", CreatedAt: now},
	))

	turns, err := repo.ListTurns(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 3)
	for i, turn := range turns {
		require.Equal(t, i+1, turn.Seq)
	}
	require.Equal(t, domain.RoleAssistant, turns[0].Role)
	require.Equal(t, "identifies the system", turns[0].Reason)
	require.Empty(t, turns[1].Reason)
}

func TestAppendTurnsDuplicateSeqRollsBack(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateSession(ctx, newTestSession("s1")))

	now := time.Now()
	require.NoError(t, repo.AppendTurns(ctx, "s1", domain.Turn{
		SessionID: "s1", Seq: 1, Role: domain.RoleAssistant, Content: "q1", CreatedAt: now,
	}))

	// Second batch reuses seq 1; the whole batch must roll back.
	err := repo.AppendTurns(ctx, "s1",
		domain.Turn{SessionID: "s1", Seq: 2, Role: domain.RoleUser, Content: "a", CreatedAt: now},
		domain.Turn{SessionID: "s1", Seq: 1, Role: domain.RoleAssistant, Content: "dup", CreatedAt: now},
	)
	require.Error(t, err)

	turns, err := repo.ListTurns(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 1)
}

func TestFinalizeSessionOnce(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateSession(ctx, newTestSession("s1")))

	fields := schema.NewInstance()
	require.NoError(t, fields.Set("project_name", "Acme Tracker"))

	require.NoError(t, repo.FinalizeSession(ctx, "s1", fields, time.Now()))

	got, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusComplete, got.Status)
	require.Equal(t, "Acme Tracker", got.Fields.Get("project_name"))

	// Second finalize is rejected; the record is untouched.
	err = repo.FinalizeSession(ctx, "s1", schema.NewInstance(), time.Now())
	require.ErrorIs(t, err, ErrSessionNotActive)

	got, err = repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "Acme Tracker", got.Fields.Get("project_name"))
}

func TestFinalizeMissingSession(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)

	err := repo.FinalizeSession(context.Background(), "nope", schema.NewInstance(), time.Now())
	require.True(t, errors.Is(err, ErrSessionNotActive))
}

func TestSaveProposal(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateSession(ctx, newTestSession("s1")))

	require.NoError(t, repo.SaveProposal(ctx, "s1", "# SRS Document", time.Now()))

	got, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "# SRS Document", got.LatestProposal)

	require.Error(t, repo.SaveProposal(ctx, "missing", "doc", time.Now()))
}
