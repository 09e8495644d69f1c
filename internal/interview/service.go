// Package interview implements the session state machine that drives the
// field-by-field SRS interview.
package interview

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ad-code1993/aisrsback/internal/audit"
	"github.com/ad-code1993/aisrsback/internal/docgen"
	"github.com/ad-code1993/aisrsback/internal/domain"
	"github.com/ad-code1993/aisrsback/internal/normalize"
	"github.com/ad-code1993/aisrsback/internal/schema"
	"github.com/ad-code1993/aisrsback/internal/store"
)

// completionPhrase ends the interview when it appears (case-insensitively)
// in an assistant question.
const completionPhrase = "all done"

// Collaborator is the language-model dependency of the state machine.
// Converse replies may be malformed; they pass through the normalizer and
// are never trusted. Extract and Generate failures are surfaced to the
// caller as retryable errors.
type Collaborator interface {
	Converse(ctx context.Context, prompt string) (string, error)
	Extract(ctx context.Context, prompt string) (string, error)
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service drives interview sessions. All collaborator clients and the
// schema definition are injected at construction; there is no process-wide
// state.
type Service struct {
	repo  store.Repository
	llm   Collaborator
	audit audit.Logger
	locks *sessionLocks
}

// NewService creates the interview service.
func NewService(repo store.Repository, llm Collaborator, auditLog audit.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("interview: repository must not be nil")
	}
	if llm == nil {
		return nil, errors.New("interview: collaborator must not be nil")
	}
	if auditLog == nil {
		auditLog = noopAudit{}
	}
	return &Service{
		repo:  repo,
		llm:   llm,
		audit: auditLog,
		locks: newSessionLocks(),
	}, nil
}

// StartResult is returned by Start.
type StartResult struct {
	SessionID string
	Question  string
	Reason    string
}

// ContinueResult is returned by Continue.
type ContinueResult struct {
	Question   string
	Reason     string
	IsComplete bool
}

// Record is a session together with its transcript.
type Record struct {
	Session *domain.Session
	Turns   []domain.Turn
}

// Start creates a new active session and obtains the first question. The
// session and its opening turn are only persisted after the collaborator
// call and normalization succeed, so a failed start leaves nothing behind.
func (s *Service) Start(ctx context.Context) (StartResult, error) {
	raw, err := s.llm.Converse(ctx, basePrompt())
	if err != nil {
		return StartResult{}, newError(ErrorUpstream, "dialogue_error", err)
	}
	reply := normalize.Normalize(raw)

	now := time.Now().UTC()
	session := &domain.Session{
		SessionID: newSessionID(),
		Status:    domain.StatusActive,
		Fields:    schema.NewInstance(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return StartResult{}, newError(ErrorInternal, "create_session_error", err)
	}

	turn := domain.Turn{
		SessionID: session.SessionID,
		Seq:       1,
		Role:      domain.RoleAssistant,
		Content:   reply.Question,
		Reason:    reply.Reason,
		CreatedAt: now,
	}
	if err := s.repo.AppendTurns(ctx, session.SessionID, turn); err != nil {
		return StartResult{}, newError(ErrorInternal, "append_turn_error", err)
	}
	s.logTurn(turn)

	slog.Info("interview started", "session_id", session.SessionID)
	return StartResult{
		SessionID: session.SessionID,
		Question:  reply.Question,
		Reason:    reply.Reason,
	}, nil
}

// Continue processes one user reply. Valid only while the session is
// active. The user turn and the normalized assistant turn are appended as
// two consecutive sequences in one transaction; nothing is persisted when
// the collaborator call fails, so the caller can re-submit the same reply.
func (s *Service) Continue(ctx context.Context, sessionID, userReply string) (ContinueResult, error) {
	if strings.TrimSpace(userReply) == "" {
		return ContinueResult{}, newError(ErrorInvalidInput, "empty_reply", nil)
	}

	release := s.locks.acquire(sessionID)
	defer release()

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return ContinueResult{}, newError(ErrorInternal, "get_session_error", err)
	}
	if session == nil {
		return ContinueResult{}, newError(ErrorNotFound, "session_not_found", nil)
	}
	if session.IsComplete() {
		return ContinueResult{}, newError(ErrorInvalidTransition, "session_complete", nil)
	}

	turns, err := s.repo.ListTurns(ctx, sessionID)
	if err != nil {
		return ContinueResult{}, newError(ErrorInternal, "list_turns_error", err)
	}

	raw, err := s.llm.Converse(ctx, conversationPrompt(turns, userReply))
	if err != nil {
		return ContinueResult{}, newError(ErrorUpstream, "dialogue_error", err)
	}
	reply := normalize.Normalize(raw)
	isComplete := strings.Contains(strings.ToLower(reply.Question), completionPhrase)

	now := time.Now().UTC()
	nextSeq := len(turns) + 1
	userTurn := domain.Turn{
		SessionID: sessionID,
		Seq:       nextSeq,
		Role:      domain.RoleUser,
		Content:   userReply,
		CreatedAt: now,
	}
	assistantTurn := domain.Turn{
		SessionID: sessionID,
		Seq:       nextSeq + 1,
		Role:      domain.RoleAssistant,
		Content:   reply.Question,
		Reason:    reply.Reason,
		CreatedAt: now,
	}
	if err := s.repo.AppendTurns(ctx, sessionID, userTurn, assistantTurn); err != nil {
		return ContinueResult{}, newError(ErrorInternal, "append_turns_error", err)
	}
	s.logTurn(userTurn)
	s.logTurn(assistantTurn)

	if isComplete {
		if err := s.finalize(ctx, sessionID, append(turns, userTurn, assistantTurn)); err != nil {
			return ContinueResult{}, err
		}
		slog.Info("interview complete", "session_id", sessionID, "turns", nextSeq+1)
	}

	return ContinueResult{
		Question:   reply.Question,
		Reason:     reply.Reason,
		IsComplete: isComplete,
	}, nil
}

// finalize runs extraction over the full transcript and writes every
// schema field in a single atomic update, flipping the session to
// complete. Any failure leaves the session in its current state so the
// caller can retry.
func (s *Service) finalize(ctx context.Context, sessionID string, turns []domain.Turn) error {
	raw, err := s.llm.Extract(ctx, extractionPrompt(turns))
	if err != nil {
		return newError(ErrorUpstream, "extraction_error", err)
	}
	fields, err := parseExtraction(raw)
	if err != nil {
		return newError(ErrorUpstream, "extraction_malformed", err)
	}

	err = s.repo.FinalizeSession(ctx, sessionID, fields, time.Now().UTC())
	if errors.Is(err, store.ErrSessionNotActive) {
		return newError(ErrorInvalidTransition, "already_finalized", err)
	}
	if err != nil {
		return newError(ErrorInternal, "finalize_error", err)
	}
	return nil
}

// Generate compiles the collected record into a generation instruction,
// requests the document, and caches it as the session's latest proposal.
// It works on partially empty records; missing fields surface as
// placeholders in the document.
func (s *Service) Generate(ctx context.Context, sessionID, style, tone string) (string, error) {
	session, err := s.lookup(ctx, sessionID)
	if err != nil {
		return "", err
	}

	prompt := docgen.Compile(session.Fields, docgen.Options{Style: style, Tone: tone})
	doc, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return "", newError(ErrorUpstream, "generation_error", err)
	}

	if err := s.repo.SaveProposal(ctx, sessionID, doc, time.Now().UTC()); err != nil {
		return "", newError(ErrorInternal, "save_proposal_error", err)
	}
	return doc, nil
}

// Custom generates a document with free-text additional instructions. The
// result is returned but not cached; the latest proposal only changes on
// explicit Generate calls.
func (s *Service) Custom(ctx context.Context, sessionID, instruction string) (string, error) {
	if strings.TrimSpace(instruction) == "" {
		return "", newError(ErrorInvalidInput, "empty_instruction", nil)
	}
	session, err := s.lookup(ctx, sessionID)
	if err != nil {
		return "", err
	}

	prompt := docgen.Compile(session.Fields, docgen.Options{Extra: instruction})
	doc, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return "", newError(ErrorUpstream, "generation_error", err)
	}
	return doc, nil
}

// Get returns the session record with its transcript.
func (s *Service) Get(ctx context.Context, sessionID string) (Record, error) {
	session, err := s.lookup(ctx, sessionID)
	if err != nil {
		return Record{}, err
	}
	turns, err := s.repo.ListTurns(ctx, sessionID)
	if err != nil {
		return Record{}, newError(ErrorInternal, "list_turns_error", err)
	}
	return Record{Session: session, Turns: turns}, nil
}

// Latest returns the cached document, or a not-found error when no
// generate call has been made yet. Reading it has no side effects.
func (s *Service) Latest(ctx context.Context, sessionID string) (string, error) {
	session, err := s.lookup(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if session.LatestProposal == "" {
		return "", newError(ErrorNotFound, "no_generated_document", nil)
	}
	return session.LatestProposal, nil
}

func (s *Service) lookup(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, newError(ErrorInternal, "get_session_error", err)
	}
	if session == nil {
		return nil, newError(ErrorNotFound, "session_not_found", nil)
	}
	return session, nil
}

func (s *Service) logTurn(turn domain.Turn) {
	s.audit.Log(audit.Event{
		Timestamp: turn.CreatedAt,
		SessionID: turn.SessionID,
		Seq:       turn.Seq,
		Role:      turn.Role,
		Content:   turn.Content,
		Reason:    turn.Reason,
	})
}

type noopAudit struct{}

func (noopAudit) Log(audit.Event) {}

func (noopAudit) Close() error { return nil }

var newSessionID = func() string {
	return uuid.NewString()
}
