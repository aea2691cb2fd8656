// Package binder implements the reflective JSON-to-message binder (C3) and
// the dynamic message serializer (C4).
package binder

import "fmt"

// BindErrorKind enumerates the ways binding a JSON value against a message
// descriptor can fail, per spec.md §4.2/§7.
type BindErrorKind string

const (
	KindNotAnObject  BindErrorKind = "not_an_object"
	KindUnknownField BindErrorKind = "unknown_field"
	KindTypeMismatch BindErrorKind = "type_mismatch"
	KindUnsupported  BindErrorKind = "unsupported"
)

// BindError is returned by Bind when a JSON value cannot be mapped onto a
// message descriptor.
type BindError struct {
	Kind     BindErrorKind
	Field    string
	Expected string
}

func (e *BindError) Error() string {
	switch e.Kind {
	case KindNotAnObject:
		return "expected a JSON object to bind"
	case KindUnknownField:
		return fmt.Sprintf("field %q not found in descriptor", e.Field)
	case KindTypeMismatch:
		if e.Expected != "" {
			return fmt.Sprintf("field %q expects %s", e.Field, e.Expected)
		}
		return fmt.Sprintf("field %q has the wrong type", e.Field)
	case KindUnsupported:
		return fmt.Sprintf("field %q uses an unsupported shape (repeated/map/well-known/any)", e.Field)
	default:
		return "bind error"
	}
}

// SerializationError wraps a failure to round-trip a bound dynamic message
// back to canonical JSON (C4).
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed to serialize dynamic message to JSON: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }
