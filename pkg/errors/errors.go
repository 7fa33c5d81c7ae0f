package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Error codes for the failure taxonomy. Validation errors carry no side
// effects, upstream errors are provider failures surfaced to the caller,
// persistence errors break a durability guarantee and must propagate.
const (
	CodeUnknown     = 0
	CodeValidation  = 1001
	CodeUpstream    = 1002
	CodePersistence = 1003
	CodeNotFound    = 1004
)

// Error is a coded error with an optional cause and captured stack.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
	Stack   string `json:"stack,omitempty"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error { return e.Err }

// WithCode creates a new coded error.
func WithCode(code int, message string) *Error {
	return &Error{Code: code, Message: message, Stack: captureStack()}
}

// WithCodef creates a new coded error with a formatted message.
func WithCodef(code int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Stack: captureStack()}
}

// Wrap wraps a cause under a coded error. Returns nil for a nil cause.
func Wrap(code int, err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err, Stack: captureStack()}
}

// New creates an uncoded error.
func New(message string) *Error {
	return &Error{Message: message, Stack: captureStack()}
}

// GetCode returns the code of err.
func GetCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode reports whether err (or anything it wraps) carries the code.
func IsCode(err error, code int) bool {
	var e *Error
	for errors.As(err, &e) {
		if e.Code == code {
			return true
		}
		err = e.Err
		if err == nil {
			break
		}
	}
	return false
}

// GetMessage returns the message of err.
func GetMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func captureStack() string {
	buf := make([]byte, 1024)
	n := runtime.Stack(buf, false)
	lines := strings.Split(string(buf[:n]), "\n")
	// drop the capture frames themselves
	if len(lines) > 6 {
		lines = lines[6:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
