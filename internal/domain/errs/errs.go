// Package errs defines the error taxonomy shared by the engine and the HTTP
// layer. Expected outcomes (validation, not found, state conflicts, closed
// windows, authorization) are typed so handlers can map them to status codes;
// everything else is a dependency failure and retryable.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrStateConflict = errors.New("state conflict")
	ErrWindowClosed  = errors.New("window closed")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrDependency    = errors.New("dependency failure")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func StateConflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStateConflict, fmt.Sprintf(format, args...))
}

func WindowClosedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrWindowClosed, fmt.Sprintf(format, args...))
}

// Unauthorized returns the bare sentinel. Token rejections must stay opaque to
// the caller; the specific reason is logged server-side instead.
func Unauthorized() error {
	return ErrUnauthorized
}

func Dependency(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrDependency, err)
}

func IsExpected(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrStateConflict) ||
		errors.Is(err, ErrWindowClosed) ||
		errors.Is(err, ErrUnauthorized)
}
