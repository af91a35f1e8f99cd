// Package result provides the uniform success/failure envelope returned by
// every storage operation. Adapters translate driver errors into a Failure
// with a kind from the taxonomy below; nothing crosses a package boundary
// as a panic or a raw driver error.
package result

import "fmt"

// ErrorKind classifies a Failure.
type ErrorKind string

const (
	KindNone          ErrorKind = ""
	KindNotFound      ErrorKind = "NOT_FOUND"
	KindConflict      ErrorKind = "CONFLICT"
	KindDatabase      ErrorKind = "DATABASE_ERROR"
	KindSerialization ErrorKind = "SERIALIZATION_ERROR"
	KindValidation    ErrorKind = "VALIDATION_ERROR"
	KindUnavailable   ErrorKind = "UNAVAILABLE"
)

// Result carries either a value with an optional informational message, or a
// failure message with its kind. Callers must check OK before reading Value.
type Result[T any] struct {
	OK      bool
	Value   T
	Message string
	Kind    ErrorKind
}

// Success returns an ok Result carrying value.
func Success[T any](value T, message string) Result[T] {
	return Result[T]{OK: true, Value: value, Message: message}
}

// Failure returns a failed Result. A failure always carries a non-empty
// message; an empty one is replaced with the kind's default text.
func Failure[T any](message string, kind ErrorKind) Result[T] {
	if message == "" {
		message = defaultMessage(kind)
	}
	return Result[T]{OK: false, Message: message, Kind: kind}
}

// Failuref is Failure with fmt-style formatting.
func Failuref[T any](kind ErrorKind, format string, args ...interface{}) Result[T] {
	return Failure[T](fmt.Sprintf(format, args...), kind)
}

// Propagate converts a failed Result of one value type into another,
// preserving message and kind. Calling it on an ok Result is a bug.
func Propagate[U, T any](r Result[T]) Result[U] {
	return Result[U]{OK: false, Message: r.Message, Kind: r.Kind}
}

// IsNotFound reports whether r failed with KindNotFound.
func (r Result[T]) IsNotFound() bool { return !r.OK && r.Kind == KindNotFound }

// IsUnavailable reports whether r failed with KindUnavailable.
func (r Result[T]) IsUnavailable() bool { return !r.OK && r.Kind == KindUnavailable }

// Err exposes a failed Result as an error for log and health-check plumbing.
// It returns nil for an ok Result.
func (r Result[T]) Err() error {
	if r.OK {
		return nil
	}
	if r.Kind == KindNone {
		return fmt.Errorf("%s", r.Message)
	}
	return fmt.Errorf("%s: %s", r.Kind, r.Message)
}

func defaultMessage(kind ErrorKind) string {
	switch kind {
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindDatabase:
		return "database error"
	case KindSerialization:
		return "serialization error"
	case KindValidation:
		return "validation error"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown error"
	}
}
