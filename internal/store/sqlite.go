package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ad-code1993/aisrsback/internal/domain"
	"github.com/ad-code1993/aisrsback/internal/schema"
	"github.com/ad-code1993/aisrsback/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS srs_sessions (
		session_id TEXT PRIMARY KEY,
		status TEXT NOT NULL DEFAULT 'active',
		fields_json TEXT NOT NULL,
		latest_proposal TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_srs_sessions_updated ON srs_sessions(updated_at);

	CREATE TABLE IF NOT EXISTS srs_turns (
		session_id TEXT NOT NULL REFERENCES srs_sessions(session_id),
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		reason TEXT,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (session_id, seq)
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateSession persists a new session record.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	fieldsJSON, err := json.Marshal(session.Fields)
	if err != nil {
		return fmt.Errorf("encode session fields: %w", err)
	}

	query := `
	INSERT INTO srs_sessions (session_id, status, fields_json, latest_proposal, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	var proposal interface{}
	if session.LatestProposal != "" {
		proposal = session.LatestProposal
	}

	_, err = s.db.ExecContext(ctx, query,
		session.SessionID, session.Status, string(fieldsJSON), proposal,
		session.CreatedAt.Unix(), session.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by id.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `
		SELECT session_id, status, fields_json, latest_proposal, created_at, updated_at
		FROM srs_sessions WHERE session_id = ?`

	row := s.db.QueryRowContext(ctx, query, sessionID)

	var session domain.Session
	var fieldsJSON string
	var proposal sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(
		&session.SessionID, &session.Status, &fieldsJSON,
		&proposal, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	session.Fields = schema.NewInstance()
	if err := json.Unmarshal([]byte(fieldsJSON), session.Fields); err != nil {
		return nil, fmt.Errorf("decode session fields: %w", err)
	}
	session.LatestProposal = proposal.String
	session.CreatedAt = time.Unix(createdAt, 0)
	session.UpdatedAt = time.Unix(updatedAt, 0)

	return &session, nil
}

// ListTurns retrieves a session's transcript in sequence order.
func (s *SQLiteStore) ListTurns(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	query := `
		SELECT session_id, seq, role, content, reason, created_at
		FROM srs_turns WHERE session_id = ? ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close turns rows", "error", closeErr)
		}
	}()

	var turns []domain.Turn
	for rows.Next() {
		var turn domain.Turn
		var reason sql.NullString
		var createdAt int64

		if err := rows.Scan(
			&turn.SessionID, &turn.Seq, &turn.Role,
			&turn.Content, &reason, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}

		turn.Reason = reason.String
		turn.CreatedAt = time.Unix(createdAt, 0)
		turns = append(turns, turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}

	return turns, nil
}

// AppendTurns appends one or more turns transactionally.
// Implements retry with exponential backoff to handle SQLITE_BUSY errors.
func (s *SQLiteStore) AppendTurns(ctx context.Context, sessionID string, turns ...domain.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = s.appendTurnsOnce(ctx, sessionID, turns)
		if err == nil {
			return nil
		}
		if shared.IsSQLiteConflictError(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i)
			slog.Debug("AppendTurns hit SQLITE_BUSY, retrying",
				"session_id", sessionID,
				"attempt", i+1,
				"delay", delay)
			time.Sleep(delay)
			continue
		}
		break
	}
	return fmt.Errorf("append turns for %s: %w", sessionID, err)
}

func (s *SQLiteStore) appendTurnsOnce(ctx context.Context, sessionID string, turns []domain.Turn) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insert := `
		INSERT INTO srs_turns (session_id, seq, role, content, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	for _, turn := range turns {
		var reason interface{}
		if turn.Reason != "" {
			reason = turn.Reason
		}
		if _, err := tx.ExecContext(ctx, insert,
			sessionID, turn.Seq, turn.Role, turn.Content, reason, turn.CreatedAt.Unix(),
		); err != nil {
			return fmt.Errorf("insert turn %d: %w", turn.Seq, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE srs_sessions SET updated_at = ? WHERE session_id = ?`,
		time.Now().Unix(), sessionID,
	); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// FinalizeSession writes all field values and flips status to complete in
// a single atomic update. The status guard makes a second finalize fail.
func (s *SQLiteStore) FinalizeSession(ctx context.Context, sessionID string, fields *schema.Instance, updatedAt time.Time) error {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode session fields: %w", err)
	}

	query := `
		UPDATE srs_sessions
		SET fields_json = ?, status = ?, updated_at = ?
		WHERE session_id = ? AND status = ?`

	result, err := s.db.ExecContext(ctx, query,
		string(fieldsJSON), domain.StatusComplete, updatedAt.Unix(),
		sessionID, domain.StatusActive,
	)
	if err != nil {
		return fmt.Errorf("finalize session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("finalize session %s: %w", sessionID, ErrSessionNotActive)
	}
	return nil
}

// SaveProposal stores the latest generated document for a session.
func (s *SQLiteStore) SaveProposal(ctx context.Context, sessionID, proposal string, updatedAt time.Time) error {
	query := `UPDATE srs_sessions SET latest_proposal = ?, updated_at = ? WHERE session_id = ?`
	result, err := s.db.ExecContext(ctx, query, proposal, updatedAt.Unix(), sessionID)
	if err != nil {
		return fmt.Errorf("save proposal: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("save proposal: session %s not found", sessionID)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
