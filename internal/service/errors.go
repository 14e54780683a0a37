package service

import (
	"errors"
	"fmt"
)

// Callers match these with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired session")
	ErrUnavailable        = errors.New("service temporarily unavailable")
)

// invalid marks err as a validation failure while keeping it reachable
// through errors.As.
func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// invalidf reports a validation failure that is not tied to a struct field.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// fail logs a storage error with the operation name and hides it behind
// ErrUnavailable.
func (s *Service) fail(op string, err error) error {
	s.logger.Error("storage failure", "op", op, "error", err)
	return fmt.Errorf("%s: %w", op, ErrUnavailable)
}
