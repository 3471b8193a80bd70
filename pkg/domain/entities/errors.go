package entities

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is the sentinel for parameter problems detected before a solver runs
var ErrInvalidParameter = errors.New("invalid parameter")

// InvalidParameterError describes a single rejected parameter
type InvalidParameterError struct {
	Field  string
	Reason string
}

// NewInvalidParameter creates an InvalidParameterError with a formatted reason
func NewInvalidParameter(field, format string, args ...interface{}) *InvalidParameterError {
	return &InvalidParameterError{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

func (e *InvalidParameterError) Unwrap() error {
	return ErrInvalidParameter
}
