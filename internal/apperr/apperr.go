// Package apperr defines the error taxonomy shared by the scanner, the
// backup engine and the HTTP layer. Every failure carries a Kind so the
// API can map it to a status code, and a message naming the game, save or
// path it concerns.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error. A Kind is itself an error so it
// can be used as an errors.Is target: errors.Is(err, apperr.KindNotFound).
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindInvalidInput  Kind = "invalid_input"
	KindBackupError   Kind = "backup_error"
	KindPathTraversal Kind = "path_traversal"
	KindIo            Kind = "io"
	KindConfigError   Kind = "config_error"
	KindSerialization Kind = "serialization"
	KindDatabase      Kind = "database"
)

func (k Kind) Error() string { return string(k) }

// Error is a typed application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, apperr.KindNotFound) style checks work without
// callers needing to unwrap to *Error themselves.
func (e *Error) Is(target error) bool {
	if k, ok := target.(Kind); ok {
		return e.Kind == k
	}
	return false
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the Kind of err if it is (or wraps) an *Error, and the
// empty Kind otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
