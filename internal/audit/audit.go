// Package audit writes per-session NDJSON transcript logs for offline
// review of interviews.
package audit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event is one logged transcript entry.
type Event struct {
	Timestamp time.Time `json:"ts"`
	SessionID string    `json:"session_id"`
	Seq       int       `json:"seq"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Reason    string    `json:"reason,omitempty"`
}

// Logger records transcript events. Implementations must be safe for
// concurrent use and must never block the interview on log I/O.
type Logger interface {
	Log(event Event)
	Close() error
}

// Config controls transcript logging.
type Config struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// New returns a file-backed Logger, or a no-op Logger when disabled.
func New(cfg Config, log *slog.Logger) (Logger, error) {
	if !cfg.Enabled {
		return noopLogger{}, nil
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("audit: log directory must not be empty")
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("audit: create log directory: %w", err)
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1000
	}
	l := &fileLogger{
		dir:   cfg.Dir,
		queue: make(chan Event, queueSize),
		done:  make(chan struct{}),
		log:   log,
	}
	go l.writeLoop()
	return l, nil
}

// fileLogger appends events to <dir>/<session_id>.ndjson through an async
// queue. A full queue drops the event rather than stalling a turn.
type fileLogger struct {
	dir       string
	queue     chan Event
	done      chan struct{}
	log       *slog.Logger
	closeOnce sync.Once
}

func (l *fileLogger) Log(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case l.queue <- event:
	default:
		l.log.Warn("audit queue full, dropping event", "session_id", event.SessionID, "seq", event.Seq)
	}
}

func (l *fileLogger) writeLoop() {
	defer close(l.done)
	for event := range l.queue {
		if err := l.write(event); err != nil {
			l.log.Warn("failed to write audit event", "session_id", event.SessionID, "error", err)
		}
	}
}

func (l *fileLogger) write(event Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	path := filepath.Join(l.dir, event.SessionID+".ndjson")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write log line: %w", err)
	}
	return nil
}

// Close drains the queue and stops the writer.
func (l *fileLogger) Close() error {
	l.closeOnce.Do(func() {
		close(l.queue)
	})
	<-l.done
	return nil
}

type noopLogger struct{}

func (noopLogger) Log(Event) {}

func (noopLogger) Close() error { return nil }
