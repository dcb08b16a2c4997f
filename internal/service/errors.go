package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/bktrade/site/internal/repository"
)

var (
	// ErrSpam is returned when the honeypot field was filled in.
	ErrSpam = errors.New("spam detected")
	// ErrRateLimited is returned when a source submits again within the cooldown.
	ErrRateLimited = errors.New("rate limited")
	// ErrLeadNotFound is returned when a status update names an unknown lead.
	ErrLeadNotFound = fmt.Errorf("lead %w", repository.ErrNotFound)
	// ErrInvalidCredentials is returned for any failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAdminNotConfigured is returned when no admin login is configured.
	ErrAdminNotConfigured = errors.New("admin credentials not configured")
)

// ValidationError describes malformed or out-of-range input. Message is
// safe to show to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// LockedOutError is returned while a source is locked out of login.
type LockedOutError struct {
	RetryAfter time.Duration
}

func (e *LockedOutError) Error() string {
	return fmt.Sprintf("login locked, retry after %s", e.RetryAfter)
}
