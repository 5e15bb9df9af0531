// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is the sentinel error wrapped by ParseError.
	ErrParse = errors.New("descriptor parse error")
	// ErrNotFound is returned when no descriptor file could be located.
	ErrNotFound = errors.New("descriptor not found")
)

type (
	// ParseError reports a descriptor that could not be parsed.
	ParseError struct {
		Path string
		Err  error
	}

	// NotFoundError reports that none of the candidate files exist in Dir.
	NotFoundError struct {
		Dir        string
		Candidates []string
	}
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

// Unwrap returns both ErrParse and the underlying cause.
func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no descriptor (%v) found in %s", e.Candidates, e.Dir)
}

// Unwrap returns ErrNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }
