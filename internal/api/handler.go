// Package api provides HTTP handlers for the SRS interview API.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ad-code1993/aisrsback/internal/interview"
)

// maxRequestBodySize caps request bodies (1MB).
const maxRequestBodySize = 1 << 20

// Handler exposes the interview service over HTTP.
type Handler struct {
	svc *interview.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *interview.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the SRS interview routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/srs", func(r chi.Router) {
		r.Post("/start", h.Start)
		r.Post("/{sessionID}/continue", h.Continue)
		r.Post("/{sessionID}/generate", h.Generate)
		r.Post("/{sessionID}/custom", h.Custom)
		r.Get("/{sessionID}", h.Get)
		r.Get("/{sessionID}/latest", h.Latest)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// serviceError maps interview error codes to HTTP statuses.
func serviceError(w http.ResponseWriter, err error) {
	code := interview.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case interview.ErrorNotFound:
		status = http.StatusNotFound
	case interview.ErrorInvalidTransition:
		status = http.StatusConflict
	case interview.ErrorInvalidInput:
		status = http.StatusBadRequest
	case interview.ErrorUpstream:
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "code", code, "error", err)
	}
	Error(w, status, string(code))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

type startResponse struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
	Reason    string `json:"reason"`
}

type continueRequest struct {
	Response string `json:"response"`
}

type continueResponse struct {
	Question   string `json:"question"`
	Reason     string `json:"reason"`
	IsComplete bool   `json:"is_complete"`
}

type generateRequest struct {
	Style string `json:"style"`
	Tone  string `json:"tone"`
}

type customRequest struct {
	Prompt string `json:"prompt"`
}

type documentResponse struct {
	SRS string `json:"srs"`
}

type turnResponse struct {
	Seq     int    `json:"seq"`
	Role    string `json:"role"`
	Content string `json:"content"`
	Reason  string `json:"reason,omitempty"`
}

type sessionResponse struct {
	SessionID string            `json:"session_id"`
	Status    string            `json:"status"`
	Fields    map[string]string `json:"fields"`
	CreatedAt int64             `json:"created_at"`
	UpdatedAt int64             `json:"updated_at"`
	Turns     []turnResponse    `json:"turns"`
}

// Start handles POST /srs/start.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Start(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}
	JSON(w, http.StatusOK, startResponse{
		SessionID: res.SessionID,
		Question:  res.Question,
		Reason:    res.Reason,
	})
}

// Continue handles POST /srs/{sessionID}/continue.
func (h *Handler) Continue(w http.ResponseWriter, r *http.Request) {
	var req continueRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.svc.Continue(r.Context(), chi.URLParam(r, "sessionID"), req.Response)
	if err != nil {
		serviceError(w, err)
		return
	}
	JSON(w, http.StatusOK, continueResponse{
		Question:   res.Question,
		Reason:     res.Reason,
		IsComplete: res.IsComplete,
	})
}

// Generate handles POST /srs/{sessionID}/generate.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	doc, err := h.svc.Generate(r.Context(), chi.URLParam(r, "sessionID"), req.Style, req.Tone)
	if err != nil {
		serviceError(w, err)
		return
	}
	JSON(w, http.StatusOK, documentResponse{SRS: doc})
}

// Custom handles POST /srs/{sessionID}/custom.
func (h *Handler) Custom(w http.ResponseWriter, r *http.Request) {
	var req customRequest
	if !decodeBody(w, r, &req) {
		return
	}

	doc, err := h.svc.Custom(r.Context(), chi.URLParam(r, "sessionID"), req.Prompt)
	if err != nil {
		serviceError(w, err)
		return
	}
	JSON(w, http.StatusOK, documentResponse{SRS: doc})
}

// Get handles GET /srs/{sessionID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.svc.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	JSON(w, http.StatusOK, toSessionResponse(record))
}

// Latest handles GET /srs/{sessionID}/latest.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Latest(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	JSON(w, http.StatusOK, documentResponse{SRS: doc})
}

func toSessionResponse(record interview.Record) sessionResponse {
	session := record.Session
	fields := make(map[string]string)
	if raw, err := json.Marshal(session.Fields); err == nil {
		_ = json.Unmarshal(raw, &fields)
	}

	turns := make([]turnResponse, 0, len(record.Turns))
	for _, turn := range record.Turns {
		turns = append(turns, turnResponse{
			Seq:     turn.Seq,
			Role:    turn.Role,
			Content: turn.Content,
			Reason:  turn.Reason,
		})
	}

	return sessionResponse{
		SessionID: session.SessionID,
		Status:    session.Status,
		Fields:    fields,
		CreatedAt: session.CreatedAt.Unix(),
		UpdatedAt: session.UpdatedAt.Unix(),
		Turns:     turns,
	}
}
