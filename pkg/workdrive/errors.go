package workdrive

import (
	"errors"
	"fmt"

	"github.com/driveport/workdrive_sdk_go/internal/wdapi"
)

// ErrKind separates the two failure categories surfaced to callers.
type ErrKind int

const (
	// KindRead covers metadata, download, listing, delete, move, copy and
	// visibility failures.
	KindRead ErrKind = iota + 1
	// KindWrite covers uploads, folder creation and size-limit violations.
	KindWrite
)

func (k ErrKind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by storage operations. Message
// follows the remote error envelope when one is present.
type Error struct {
	Kind       ErrKind
	Op         string
	Path       string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("workdrive: %s %s: %s (status %d)", e.Op, e.Path, msg, e.StatusCode)
	}
	return fmt.Sprintf("workdrive: %s %s: %s", e.Op, e.Path, msg)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error { return e.Cause }

// IsReadError reports whether err is a read-kind storage failure.
func IsReadError(err error) bool { return kindOf(err) == KindRead }

// IsWriteError reports whether err is a write-kind storage failure.
func IsWriteError(err error) bool { return kindOf(err) == KindWrite }

func kindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// failure wraps a transport-level error (no response was obtained).
func failure(kind ErrKind, op, path string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Cause: cause}
}

// statusFailure derives the message for an unexpected response status.
func statusFailure(kind ErrKind, op, path string, statusCode int, body []byte) *Error {
	return &Error{
		Kind:       kind,
		Op:         op,
		Path:       path,
		Message:    wdapi.FailureMessage(statusCode, body),
		StatusCode: statusCode,
	}
}
