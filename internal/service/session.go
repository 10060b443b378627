package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/store"
	"github.com/chefpilot/chefpilot-api/pkg/cryptox"
	"github.com/chefpilot/chefpilot-api/pkg/metricsx"
	"github.com/chefpilot/chefpilot-api/pkg/slogx"
	"github.com/chefpilot/chefpilot-api/pkg/tokenx"
)

var (
	// ErrInvalidCredentials covers both unknown username and wrong password.
	// Callers must never distinguish the two outward.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrInvalidRefresh covers unknown, expired, and orphaned refresh tokens.
	ErrInvalidRefresh = errors.New("invalid_refresh")
)

// DefaultRefreshTokenTTL is the validity window for newly issued refresh
// tokens when no override is configured.
const DefaultRefreshTokenTTL = 30 * 24 * time.Hour

// SessionService composes credential verification, the access token codec and
// the refresh token store into login / refresh / logout.
type SessionService struct {
	Store      store.Store
	Codec      *tokenx.Codec
	RefreshTTL time.Duration
	Metrics    *metricsx.Collector

	// TenantContext is the placeholder tenant context echoed in login
	// responses for clients that have not yet selected a tenant.
	TenantContext string
}

// Login verifies the credentials and, on success, issues an access token and
// a refresh token. The last-login timestamp update is best-effort; a failure
// there never fails the login. A failure to persist the refresh token does
// fail the login: an unpersisted refresh token can neither expire nor be
// revoked, so it must never leave the process.
func (s *SessionService) Login(ctx context.Context, username, password string) (domain.Session, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Metrics.RecordLogin("invalid_credentials")
			return domain.Session{}, ErrInvalidCredentials
		}
		s.Metrics.RecordLogin("error")
		return domain.Session{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			s.Metrics.RecordLogin("invalid_credentials")
			return domain.Session{}, ErrInvalidCredentials
		}
		s.Metrics.RecordLogin("error")
		return domain.Session{}, err
	}

	role := user.Role
	if !role.Valid() {
		role = domain.DefaultRole
	}

	accessToken, err := s.Codec.Issue(user.ID, user.Username, role.String(), now)
	if err != nil {
		s.Metrics.RecordLogin("error")
		return domain.Session{}, err
	}

	refreshToken, err := s.issueRefreshToken(ctx, user.ID, now)
	if err != nil {
		s.Metrics.RecordLogin("error")
		return domain.Session{}, err
	}

	// The response carries the previous last-login; the update below records
	// this one for next time.
	lastLogin := user.LastLogin
	if err := s.Store.Users().UpdateLastLogin(ctx, user.ID, now); err != nil {
		l.Warn("failed to update last login",
			slog.String("user_id", user.ID), slog.Any("error", err))
	}

	s.Metrics.RecordLogin("ok")

	return domain.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: domain.SessionUser{
			ID:        user.ID,
			Username:  user.Username,
			Role:      role,
			LastLogin: lastLogin,
		},
		TenantContext: s.TenantContext,
	}, nil
}

// Refresh exchanges a stored, unexpired refresh token for a fresh access
// token. The claims are rebuilt from the current user row so role changes
// take effect without re-login. The refresh token itself is never rotated.
func (s *SessionService) Refresh(ctx context.Context, token string) (string, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	row, err := s.Store.RefreshTokens().GetRefreshToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Metrics.RecordRefresh("invalid_refresh")
			return "", ErrInvalidRefresh
		}
		s.Metrics.RecordRefresh("error")
		return "", err
	}

	if row.Expired(now) {
		// Lazy cleanup: the first use after expiry removes the row. A race
		// between two concurrent refreshes here is acceptable; both fail.
		if err := s.Store.RefreshTokens().DeleteRefreshToken(ctx, token); err != nil {
			l.Warn("failed to delete expired refresh token", slog.Any("error", err))
		}
		s.Metrics.RecordRefresh("invalid_refresh")
		return "", ErrInvalidRefresh
	}

	user, err := s.Store.Users().GetUserByID(ctx, row.UserID)
	if err != nil {
		// A deleted user holding a still-valid refresh token collapses to the
		// same outcome as an unknown token.
		if errors.Is(err, store.ErrNotFound) {
			s.Metrics.RecordRefresh("invalid_refresh")
			return "", ErrInvalidRefresh
		}
		s.Metrics.RecordRefresh("error")
		return "", err
	}

	role := user.Role
	if !role.Valid() {
		role = domain.DefaultRole
	}

	accessToken, err := s.Codec.Issue(user.ID, user.Username, role.String(), now)
	if err != nil {
		s.Metrics.RecordRefresh("error")
		return "", err
	}

	s.Metrics.RecordRefresh("ok")
	return accessToken, nil
}

// Logout revokes the refresh token. Revoking an unknown token is a no-op;
// logout always succeeds unless storage itself fails.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	return s.Store.RefreshTokens().DeleteRefreshToken(ctx, token)
}

func (s *SessionService) issueRefreshToken(ctx context.Context, userID string, now time.Time) (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	ttl := s.RefreshTTL
	if ttl <= 0 {
		ttl = DefaultRefreshTokenTTL
	}

	err = s.Store.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return "", err
	}
	return token, nil
}
