package credential

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the codec. Use errors.Is to match them; the
// typed errors below wrap one or more of these.
var (
	// ErrMissingRequiredField indicates a required field was empty.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrOutOfRangeField indicates a numeric field fell outside its declared range.
	ErrOutOfRangeField = errors.New("field out of range")

	// ErrFieldBinding indicates an input value could not be coerced to its field type.
	ErrFieldBinding = errors.New("field binding failed")

	// ErrInvalidCredential indicates the credential failed validation.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrMalformedURI indicates the input could not be parsed as a URI.
	ErrMalformedURI = errors.New("malformed uri")

	// ErrUnknownKind indicates an unsupported credential kind.
	ErrUnknownKind = errors.New("unknown credential kind")
)

// Violation is a single failed validation rule.
type Violation struct {
	Field   string
	Kind    error // ErrMissingRequiredField or ErrOutOfRangeField.
	Message string
}

// ValidationError aggregates every rule a credential violated, in rule
// declaration order. Its message is the violation messages joined by a space.
type ValidationError struct {
	Violations []Violation
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return strings.Join(e.Messages(), " ")
}

// Messages returns the human-readable message of each violation.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return msgs
}

// Unwrap exposes ErrInvalidCredential plus the distinct violation kinds.
func (e *ValidationError) Unwrap() []error {
	errs := []error{ErrInvalidCredential}
	for _, v := range e.Violations {
		if v.Kind == nil {
			continue
		}
		seen := false
		for _, existing := range errs {
			if existing == v.Kind {
				seen = true
				break
			}
		}
		if !seen {
			errs = append(errs, v.Kind)
		}
	}
	return errs
}

// FieldBindingError reports the input key and raw value that failed coercion.
type FieldBindingError struct {
	Key   string
	Value string
	Err   error
}

// Error implements the error interface.
func (e *FieldBindingError) Error() string {
	return fmt.Sprintf("error setting field %q to value %q: %v", e.Key, e.Value, e.Err)
}

// Unwrap exposes ErrFieldBinding and the underlying coercion error.
func (e *FieldBindingError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFieldBinding}
	}
	return []error{ErrFieldBinding, e.Err}
}
