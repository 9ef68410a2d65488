package domain

import (
	"errors"
	"fmt"
	"io"
	"runtime/debug"
)

// AbortError is an expected termination of a release run. Error() returns
// only the user-facing message; the cause, if any, is available via Unwrap().
type AbortError struct {
	Msg string
	Err error
}

// Abort returns an AbortError carrying msg.
func Abort(msg string) error {
	return &AbortError{Msg: msg}
}

// Abortf formats an AbortError message.
func Abortf(format string, args ...any) error {
	return &AbortError{Msg: fmt.Sprintf(format, args...)}
}

func (e *AbortError) Error() string {
	if e == nil {
		return ""
	}
	return e.Msg
}

func (e *AbortError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// InternalError is an unexpected failure. It keeps the original cause and the
// stack captured where it was raised.
type InternalError struct {
	Msg   string
	Err   error
	Stack []byte
}

// NewInternalError wraps err with msg, capturing the current stack when stack is nil.
func NewInternalError(msg string, err error, stack []byte) *InternalError {
	if stack == nil {
		stack = debug.Stack()
	}
	return &InternalError{Msg: msg, Err: err, Stack: stack}
}

func (e *InternalError) Error() string {
	if e == nil {
		return ""
	}
	return e.Msg
}

func (e *InternalError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Format prints the cause chain and stack with %+v.
func (e *InternalError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = io.WriteString(s, e.Msg)
			if e.Err != nil {
				_, _ = fmt.Fprintf(s, "\ncaused by: %v", e.Err)
			}
			if len(e.Stack) > 0 {
				_, _ = fmt.Fprintf(s, "\n%s", e.Stack)
			}
			return
		}
		_, _ = io.WriteString(s, e.Msg)
	case 's':
		_, _ = io.WriteString(s, e.Msg)
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Msg)
	}
}

// IsAbort reports whether err is, or wraps, an AbortError.
func IsAbort(err error) bool {
	var abort *AbortError
	return errors.As(err, &abort)
}
