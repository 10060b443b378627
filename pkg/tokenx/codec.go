package tokenx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("tokenx: malformed token")
	ErrAlgMismatch = errors.New("tokenx: algorithm mismatch")
	ErrInvalidSig  = errors.New("tokenx: invalid signature")
	ErrExpired     = errors.New("tokenx: token expired")
	ErrNotYetValid = errors.New("tokenx: token not yet valid")
	ErrIssuer      = errors.New("tokenx: issuer mismatch")
)

// Verifier validates a signed token and returns the claims if it is legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// Codec issues and verifies HS256-signed access tokens with a process-wide
// secret. Construct one at startup and inject it; never read the secret from
// ambient state inside business logic.
type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewCodec builds a Codec. A zero or negative ttl falls back to
// DefaultAccessTokenTTL.
func NewCodec(secret []byte, issuer string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return &Codec{secret: secret, issuer: issuer, ttl: ttl}
}

// TTL returns the validity window applied to issued tokens.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs an access token for the given identity, valid from now.
func (c *Codec) Issue(subject, username, role string, now time.Time) (string, error) {
	claims := NewAccessClaims(subject, username, role, c.ttl, c.issuer, now)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(c.secret)
}

// Verify parses and validates a token. It fails closed: any signature
// mismatch, malformed structure, wrong algorithm, or expiry yields an error
// and never partial claims.
func (c *Codec) Verify(token string) (Claims, error) {
	var claims Claims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrAlgMismatch
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Claims{}, mapParseError(err)
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidSig
	}

	if c.issuer != "" && claims.Issuer != c.issuer {
		return Claims{}, ErrIssuer
	}

	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return ErrMalformed
	}
}
