package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidField indicates a field name the schema does not declare.
	ErrInvalidField = errors.New("unknown field")
	// ErrValidation indicates a value that violates its field declaration.
	ErrValidation = errors.New("invalid field value")
	// ErrInvalidSchema indicates a malformed schema definition.
	ErrInvalidSchema = errors.New("invalid schema")
)

// ValidationError identifies the offending field and why its value was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for field %q: %s", e.Field, e.Reason)
}

// Is lets errors.Is match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
