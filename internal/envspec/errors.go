// SPDX-License-Identifier: MPL-2.0

package envspec

import (
	"errors"
	"fmt"
)

// ErrInvalidField is returned when a field holds a value of the wrong shape.
var ErrInvalidField = errors.New("invalid field value")

// FieldError reports a field that failed to resolve for an environment.
type FieldError struct {
	Env   string
	Field string
	Err   error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("environment %s: field %s: %v", e.Env, e.Field, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FieldError) Unwrap() error { return e.Err }
