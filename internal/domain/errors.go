package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a malformed request (wrong answer count, bad answer
	// index, undecodable image, non-positive position). Storage failures never wrap it.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when admin credentials do not match.
	ErrUnauthorized = errors.New("unauthorized")
)

// InvalidInput wraps ErrInvalidInput with a human readable message.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
