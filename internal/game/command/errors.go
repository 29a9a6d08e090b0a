package command

import (
	"errors"
	"fmt"
)

// Kind classifies a command failure so the dispatcher can branch on it
// instead of inspecting message strings.
type Kind int

const (
	// KindUserInput marks bad syntax or arguments. Reported to the user
	// verbatim, never logged as a failure.
	KindUserInput Kind = iota
	// KindUnauthorized marks a verification failure. Reported to the user
	// verbatim, never logged as a failure.
	KindUnauthorized
	// KindInternal marks an unexpected execution failure. Logged with
	// full context; the user sees only a generic message.
	KindInternal
)

// String returns the kind's name for logging.
func (k Kind) String() string {
	switch k {
	case KindUserInput:
		return "user_input"
	case KindUnauthorized:
		return "unauthorized"
	case KindInternal:
		return "internal"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a tagged command failure.
type Error struct {
	// Kind drives how the dispatcher reports the failure.
	Kind Kind
	// Message is the user-facing text for UserInput and Unauthorized
	// failures.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// UserInputf builds a KindUserInput error with a user-facing message.
func UserInputf(format string, args ...any) error {
	return &Error{Kind: KindUserInput, Message: fmt.Sprintf(format, args...)}
}

// Unauthorizedf builds a KindUnauthorized error with a user-facing message.
func Unauthorizedf(format string, args ...any) error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Internalf builds a KindInternal error.
func Internalf(format string, args ...any) error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

// WrapInternal tags err as a KindInternal failure with a short description.
//
// Precondition: err must be non-nil.
func WrapInternal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf extracts the Kind from err.
//
// Postcondition: Returns the tagged kind, or KindInternal for untagged
// errors (anything unexpected is an internal failure).
func KindOf(err error) Kind {
	var cmdErr *Error
	if errors.As(err, &cmdErr) {
		return cmdErr.Kind
	}
	return KindInternal
}

// UserMessage extracts the user-facing message from err.
//
// Postcondition: Returns the tagged message, or err.Error() for untagged
// errors.
func UserMessage(err error) string {
	var cmdErr *Error
	if errors.As(err, &cmdErr) {
		return cmdErr.Message
	}
	return err.Error()
}
