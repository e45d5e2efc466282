// Package generr defines the fatal errors that abort a generation run.
//
// Each error type has a sentinel matched through errors.Is, and carries the
// offending input so callers can report it with errors.As:
//
//	var typeErr *generr.UnknownTypeError
//	if errors.As(err, &typeErr) {
//	    fmt.Printf("unknown type %q in %s\n", typeErr.Raw, typeErr.Context)
//	}
//
// There is no warning-and-continue path for any of them: schema drift is
// reported at generation time and no source text is emitted.
package generr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownType matches any UnknownTypeError.
	ErrUnknownType = errors.New("unknown type")

	// ErrStreamOverride matches any StreamOverrideError.
	ErrStreamOverride = errors.New("missing stream override")

	// ErrUnresolvedReference matches any UnresolvedReferenceError.
	ErrUnresolvedReference = errors.New("unresolved type reference")

	// ErrDuplicateType matches any DuplicateTypeError.
	ErrDuplicateType = errors.New("duplicate type")
)

// UnknownTypeError reports a raw type string the classifier cannot map.
type UnknownTypeError struct {
	// Raw is the offending raw type string.
	Raw string
	// Context names where the string was found, e.g. "ClientRepresentation.clientId".
	Context string
	// Reason is set when the string was recognized but is not allowed in Context.
	Reason string
}

// Error returns a human-readable error message.
func (e *UnknownTypeError) Error() string {
	msg := fmt.Sprintf("unknown type %q", e.Raw)
	if e.Context != "" {
		msg += " in " + e.Context
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownType
}

// StreamOverrideError reports a method whose response is the Stream sentinel
// and whose path has no entry in the override table.
type StreamOverrideError struct {
	Path string
	Verb string
}

// Error returns a human-readable error message.
func (e *StreamOverrideError) Error() string {
	return fmt.Sprintf("stream for %s %s not found in override table", e.Verb, e.Path)
}

// Is reports whether target matches this error type.
func (e *StreamOverrideError) Is(target error) bool {
	return target == ErrStreamOverride
}

// UnresolvedReferenceError reports a registry reference with no registry entry.
type UnresolvedReferenceError struct {
	Name string
	// Context names the referencing struct field, parameter or response.
	Context string
}

// Error returns a human-readable error message.
func (e *UnresolvedReferenceError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("unresolved type reference %q", e.Name)
	}
	return fmt.Sprintf("unresolved type reference %q in %s", e.Name, e.Context)
}

// Is reports whether target matches this error type.
func (e *UnresolvedReferenceError) Is(target error) bool {
	return target == ErrUnresolvedReference
}

// DuplicateTypeError reports two type definitions with the same name: two
// resources, a resource and a synthesized enum, or two enums that disagree on
// their values.
type DuplicateTypeError struct {
	Name string
}

// Error returns a human-readable error message.
func (e *DuplicateTypeError) Error() string {
	return fmt.Sprintf("duplicate type %q", e.Name)
}

// Is reports whether target matches this error type.
func (e *DuplicateTypeError) Is(target error) bool {
	return target == ErrDuplicateType
}
