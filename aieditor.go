// Package aieditor defines configuration and the shared records of the aieditor
// terminal editor. Session log entries are TOML-encoded, one table per continuation.
package aieditor

import (
	"io"
	"time"

	"github.com/BurntSushi/toml"
)

// Entry is one continuation attempt as recorded in the session log.
type Entry struct {
	// Timestamp is when the continuation was requested.
	Timestamp time.Time `toml:"timestamp"`
	// SessionID identifies the editor session that issued the request.
	SessionID string `toml:"session_id"`
	// Model is the generation model that served the request.
	Model string `toml:"model,omitempty"`
	// Input is the plain-text projection of the document sent to the model.
	Input string `toml:"input"`
	// Continuation is the text spliced into the document, empty on failure.
	Continuation string `toml:"continuation,omitempty"`
	// Error is set when the continuation failed.
	Error *Error `toml:"error,omitempty"`
	// DurationMS is the wall time of the request including retries.
	DurationMS int64 `toml:"duration_ms"`
}

// Error describes a failed continuation.
type Error struct {
	// Code is a machine-readable error identifier (e.g. "too_short", "api_error").
	Code string `toml:"code"`
	// Message is the human-readable message shown in the editor.
	Message string `toml:"message"`
}

// Error codes recorded in session log entries.
const (
	CodeTooShort       = "too_short"
	CodeRateLimited    = "rate_limited"
	CodeAPIError       = "api_error"
	CodeEmptyResponse  = "empty_response"
	CodeTransportError = "transport_error"
)

type logFile struct {
	Entries []Entry `toml:"entries"`
}

// WriteEntry appends e to w as a TOML array-of-tables element.
func WriteEntry(w io.Writer, e Entry) error {
	return toml.NewEncoder(w).Encode(logFile{Entries: []Entry{e}})
}

// ReadEntries decodes every entry from a session log.
func ReadEntries(r io.Reader) ([]Entry, error) {
	var lf logFile
	if _, err := toml.NewDecoder(r).Decode(&lf); err != nil {
		return nil, err
	}
	return lf.Entries, nil
}
