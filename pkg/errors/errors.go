// Package errors defines the coded errors shared by the reasontree packages.
//
// Every error that can reach a user carries a [Code]. The server maps codes
// to HTTP statuses, the CLI prints [UserMessage], and the viewers treat
// LOAD_FAILURE specially: it is the only failure a user can cause by picking
// a file, and its message is shown verbatim in the error banner.
//
//	root, err := tree.Parse(data)
//	if errors.IsLoadFailure(err) {
//	    banner.Show(errors.UserMessage(err)) // raw parser text
//	}
//
// Codes are grouped by prefix: INVALID_* for rejected input, *NOT_FOUND for
// missing resources, RENDER_FAILED for engine and converter failures.
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error classification.
type Code string

const (
	// ErrCodeLoadFailure marks a document that could not be read as a tree.
	ErrCodeLoadFailure Code = "LOAD_FAILURE"

	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidTree   Code = "INVALID_TREE" // exported graph that is not a tree
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	ErrCodeRenderFailed Code = "RENDER_FAILED"
	ErrCodeUnsupported  Code = "UNSUPPORTED"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
)

// Error pairs a Code with a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error formats as "CODE: message", followed by ": cause" when the cause adds
// text the message does not already hold.
func (e *Error) Error() string {
	if e.Cause == nil || e.Cause.Error() == e.Message {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message and no cause.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error that adds code and a formatted message to cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// LoadFailure turns a decoder error into a LOAD_FAILURE whose message is the
// decoder's own text. The decoder error stays reachable through errors.As.
func LoadFailure(cause error) *Error {
	return &Error{Code: ErrCodeLoadFailure, Message: cause.Error(), Cause: cause}
}

// Is reports whether the first *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// IsLoadFailure reports whether err is a LOAD_FAILURE.
func IsLoadFailure(err error) bool { return Is(err, ErrCodeLoadFailure) }

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage is the text shown to users: the message of the first *Error in
// the chain without its code, or err.Error() for foreign errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
