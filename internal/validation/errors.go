// Package validation implements the field-equality assertion (C5) and the
// validation orchestrator (C6) that sequences JSON parsing, binding,
// serialization, and field-check.
package validation

import "fmt"

// ErrJSONUnescape is returned when the JSON-escaped string field could not
// be unescaped into its underlying JSON document.
type ErrJSONUnescape struct{ Err error }

func (e *ErrJSONUnescape) Error() string { return fmt.Sprintf("failed to unescape JSON: %v", e.Err) }
func (e *ErrJSONUnescape) Unwrap() error { return e.Err }

// ErrJSONParse is returned when the JSON document itself fails to parse.
type ErrJSONParse struct{ Err error }

func (e *ErrJSONParse) Error() string { return fmt.Sprintf("failed to parse JSON: %v", e.Err) }
func (e *ErrJSONParse) Unwrap() error { return e.Err }

// ErrUnknownMessage is returned when the requested message name is not
// present in the built descriptor pool.
type ErrUnknownMessage struct{ Name string }

func (e *ErrUnknownMessage) Error() string {
	return fmt.Sprintf("message %q not found in pool", e.Name)
}

// ErrBadRequest covers malformed field-check sub-fields: the flag was set
// but field name and/or expected value were omitted.
type ErrBadRequest struct{ Reason string }

func (e *ErrBadRequest) Error() string { return e.Reason }

// ErrFieldMissing is returned when field-check is enabled but the named
// field is absent from the original JSON document.
type ErrFieldMissing struct{ Field string }

func (e *ErrFieldMissing) Error() string {
	return fmt.Sprintf("field %q not found in the JSON", e.Field)
}

// ErrFieldValueMismatch is returned when the named field's value does not
// structurally equal the expected value.
type ErrFieldValueMismatch struct {
	Field    string
	Expected any
	Actual   any
}

func (e *ErrFieldValueMismatch) Error() string {
	return fmt.Sprintf("field %q value mismatch: expected %v, found %v", e.Field, e.Expected, e.Actual)
}
