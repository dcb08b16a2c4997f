package service

import (
	"context"
	"log/slog"

	"github.com/bktrade/site/pkg/auth"
)

// AdminAuthService authenticates the site administrator and tracks the
// resulting sessions. It implements auth.SessionLookup.
type AdminAuthService interface {
	// Login checks credentials for a client identified by clientKey.
	// It returns ErrAdminNotConfigured, *LockedOutError or ErrInvalidCredentials
	// when no session is created.
	Login(ctx context.Context, clientKey, username, password string) (*auth.Session, error)

	// Logout ends the session with the given id. Unknown ids are ignored.
	Logout(sessionID string)

	Lookup(sessionID string) (*auth.Session, bool)
}

// adminAuthServiceImpl is the production implementation of AdminAuthService.
type adminAuthServiceImpl struct {
	creds    *auth.Credentials
	guard    *auth.LoginGuard
	sessions *auth.Registry
}

// NewAdminAuthService creates an AdminAuthService.
func NewAdminAuthService(creds *auth.Credentials, guard *auth.LoginGuard, sessions *auth.Registry) AdminAuthService {
	return &adminAuthServiceImpl{creds: creds, guard: guard, sessions: sessions}
}

func (s *adminAuthServiceImpl) Login(_ context.Context, clientKey, username, password string) (*auth.Session, error) {
	if !s.creds.Configured() {
		return nil, ErrAdminNotConfigured
	}
	// A locked source is rejected before the credentials are looked at.
	if locked, retryAfter := s.guard.Locked(clientKey); locked {
		return nil, &LockedOutError{RetryAfter: retryAfter}
	}

	if !s.creds.Verify(username, password) {
		if s.guard.Fail(clientKey) {
			slog.Warn("admin login locked", "ip", clientKey)
		} else {
			slog.Info("admin login failed", "ip", clientKey)
		}
		return nil, ErrInvalidCredentials
	}

	s.guard.Reset(clientKey)
	sess, err := s.sessions.Create(username)
	if err != nil {
		return nil, err
	}
	slog.Info("admin login", "ip", clientKey, "username", username)
	return sess, nil
}

func (s *adminAuthServiceImpl) Logout(sessionID string) {
	s.sessions.Delete(sessionID)
}

func (s *adminAuthServiceImpl) Lookup(sessionID string) (*auth.Session, bool) {
	return s.sessions.Lookup(sessionID)
}
