package tokenx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the default lifetime for access tokens. Kept short
// because access tokens carry no revocation mechanism.
const DefaultAccessTokenTTL = 15 * time.Minute

// Claims are the access-token claims carried by every signed token. The
// subject holds the user id; username and role ride alongside so protected
// routes never need a user lookup to make an auth decision.
type Claims struct {
	jwt.RegisteredClaims

	// Username of the authenticated user.
	Username string `json:"username,omitempty"`

	// Role the user held when the token was issued. Role changes only take
	// effect on the next token issuance (login or refresh).
	Role string `json:"role,omitempty"`
}

// NewAccessClaims builds minimally-correct claims for an access token.
func NewAccessClaims(
	subject, username, role string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: username,
		Role:     role,
	}
}
