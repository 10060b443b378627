package domain

import "time"

// RefreshToken models a stored refresh token row. Rows are immutable once
// created; they are only ever deleted (logout, or lazily on first use after
// expiry).
type RefreshToken struct {
	Token     string // opaque unique value, primary key
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token's absolute expiry has passed.
func (t RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Identity is the ephemeral per-request identity derived from verified
// access-token claims. It lives only for the request's lifetime.
type Identity struct {
	ID       string
	Username string
	Role     Role
}

// Session is the result of a successful login.
type Session struct {
	AccessToken   string
	RefreshToken  string
	User          SessionUser
	TenantContext string
}

// SessionUser is the identity summary returned with a login response.
type SessionUser struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Role      Role       `json:"role"`
	LastLogin *time.Time `json:"last_login"`
}
