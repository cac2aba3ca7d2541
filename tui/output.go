package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	aieditor "github.com/Paranoid-AF/aieditor"
	"github.com/Paranoid-AF/aieditor/continuation"
	"github.com/Paranoid-AF/aieditor/generate"
	"github.com/Paranoid-AF/aieditor/httpretry"
)

// recorder appends one TOML entry per finished continuation to a session log.
type recorder struct {
	w         io.Writer
	closer    io.Closer
	sessionID string
	model     string
	now       func() time.Time
}

// openRecorder opens path for appending. "-" writes to stdout.
func openRecorder(path, model string) (*recorder, error) {
	r := &recorder{sessionID: uuid.NewString(), model: model, now: time.Now}
	if path == "-" {
		r.w = os.Stdout
		return r, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}
	r.w, r.closer = f, f
	return r, nil
}

// Close closes the underlying file, if any.
func (r *recorder) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// record writes o as a session log entry. A nil recorder discards it.
func (r *recorder) record(o continuation.Outcome) {
	if r == nil {
		return
	}
	if err := aieditor.WriteEntry(r.w, r.entry(o)); err != nil {
		slog.Warn("failed to write session log entry", "error", err)
	}
}

func (r *recorder) entry(o continuation.Outcome) aieditor.Entry {
	e := aieditor.Entry{
		Timestamp:    r.now().Add(-o.Duration).Truncate(time.Second),
		SessionID:    r.sessionID,
		Model:        r.model,
		Input:        o.Input,
		Continuation: o.Continuation,
		DurationMS:   o.Duration.Milliseconds(),
	}
	if o.Err != nil {
		e.Error = &aieditor.Error{Code: errorCode(o.Err), Message: o.Message}
	}
	return e
}

// errorCode classifies a continuation failure for the session log.
func errorCode(err error) string {
	var apiErr *generate.APIError
	switch {
	case errors.Is(err, continuation.ErrTooShort):
		return aieditor.CodeTooShort
	case errors.Is(err, httpretry.ErrRetriesExhausted):
		return aieditor.CodeRateLimited
	case errors.Is(err, generate.ErrEmptyResponse):
		return aieditor.CodeEmptyResponse
	case errors.As(err, &apiErr):
		return aieditor.CodeAPIError
	default:
		return aieditor.CodeTransportError
	}
}
