// Package plmerr defines the error kinds surfaced by the PLM core.
// Import rows accumulate these and continue; synchronous edits fail fast.
package plmerr

import (
	"errors"
	"fmt"
)

// Sentinel kinds, matchable with errors.Is.
var (
	ErrValidation     = errors.New("validation error")
	ErrUniqueness     = errors.New("uniqueness error")
	ErrCycle          = errors.New("cycle error")
	ErrNotFound       = errors.New("not found")
	ErrAuthorization  = errors.New("authorization error")
	ErrProvider       = errors.New("pricing provider unavailable")
	ErrGraphRecursion = errors.New("graph recursion limit exceeded")
)

// Validationf builds a row/field level validation error.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Uniquenessf builds a duplicate-key error naming the colliding key.
func Uniquenessf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUniqueness, fmt.Sprintf(format, args...))
}

// Cyclef builds an assembly recursion rejection.
func Cyclef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCycle, fmt.Sprintf(format, args...))
}

// Authorizationf builds a permission rejection.
func Authorizationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrAuthorization, fmt.Sprintf(format, args...))
}

// NotFoundf builds a missing-reference error.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Providerf wraps a pricing provider failure.
func Providerf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrProvider, fmt.Sprintf(format, args...))
}
