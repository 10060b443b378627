package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/pkg/apix"
	"github.com/chefpilot/chefpilot-api/pkg/httpx"
	"github.com/chefpilot/chefpilot-api/pkg/metricsx"
	"github.com/chefpilot/chefpilot-api/pkg/tokenx"
)

type ctxKey int

const (
	ctxKeyIdentity ctxKey = iota
	ctxKeyTenant
	ctxKeyMembership
)

// IdentityFromContext returns the authenticated identity attached by
// RequireAuth, if any.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(domain.Identity)
	return id, ok
}

func withIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// RequireAuth gates a route on a valid access token. The Authorization header
// must be exactly two space-separated parts with the first literally
// "Bearer"; any deviation is missing_token. A present but unverifiable token
// is invalid_token. On success the request identity is attached to the
// context and the chain continues.
func RequireAuth(verifier tokenx.Verifier, metrics *metricsx.Collector) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parts := strings.Split(r.Header.Get("Authorization"), " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				metrics.RecordRejection(apix.CodeMissingToken)
				apix.ErrMissingToken.WriteError(w)
				return
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				metrics.RecordRejection(apix.CodeInvalidToken)
				apix.ErrInvalidToken.WriteError(w)
				return
			}

			identity := domain.Identity{
				ID:       claims.Subject,
				Username: claims.Username,
				Role:     domain.ParseRole(claims.Role),
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
		})
	}
}

// RequireRole gates a route on exact role equality; there is no hierarchy.
// It must run after RequireAuth: a missing identity is a pipeline misuse and
// reports missing_auth.
func RequireRole(role domain.Role, metrics *metricsx.Collector) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				metrics.RecordRejection(apix.CodeMissingAuth)
				apix.ErrMissingAuth.WriteError(w)
				return
			}

			if identity.Role != role {
				metrics.RecordRejection(apix.CodeForbidden)
				apix.ErrForbidden.WriteError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
