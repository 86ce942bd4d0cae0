package xerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the service.
//
// The first three cookie-validation failures are deliberately collapsed into
// a single "not authenticated" outcome at the HTTP boundary; they exist as
// distinct values only so the validator can log what actually happened.
var (
	ErrMalformedCookie    = errors.New("malformed session cookie")
	ErrUnknownUser        = errors.New("unknown or inactive user")
	ErrNoMatchingSession  = errors.New("no matching active session")
	ErrRateLimited        = errors.New("too many attempts")
	ErrStoreUnavailable   = errors.New("datastore unavailable")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidCode        = errors.New("invalid or expired code")
	ErrNotFound           = errors.New("resource not found")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInternal           = errors.New("internal server error")
)

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap extracts the underlying wrapped error.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}
