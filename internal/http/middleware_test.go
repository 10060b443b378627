package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/pkg/metricsx"
	"github.com/chefpilot/chefpilot-api/pkg/tokenx"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func newTestCodec() *tokenx.Codec {
	return tokenx.NewCodec([]byte("test-secret"), "chefpilot-test", 15*time.Minute)
}

func newTestMetrics() *metricsx.Collector {
	return metricsx.NewCollector(prometheus.NewRegistry())
}

// okHandler records whether the chain reached the inner handler.
func okHandler(reached *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*reached = true
		w.WriteHeader(http.StatusOK)
	})
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	gate := RequireAuth(codec, newTestMetrics())

	issue := func(t *testing.T, id, username, role string) string {
		token, err := codec.Issue(id, username, role, time.Now().UTC())
		require.NoError(t, err)
		return token
	}

	t.Run("valid token attaches identity", func(t *testing.T) {
		var identity domain.Identity
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, _ = IdentityFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, "u1", "alice", "Manager"))
		rec := httptest.NewRecorder()
		gate(inner).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "u1", identity.ID)
		require.Equal(t, "alice", identity.Username)
		require.Equal(t, domain.RoleManager, identity.Role)
	})

	t.Run("header deviations are missing_token", func(t *testing.T) {
		token := issue(t, "u1", "alice", "Manager")

		for name, header := range map[string]string{
			"absent header":   "",
			"no scheme":       token,
			"wrong scheme":    "Basic " + token,
			"lowercase":       "bearer " + token,
			"too many parts":  "Bearer " + token + " extra",
			"scheme only":     "Bearer",
			"leading padding": " Bearer " + token,
		} {
			t.Run(name, func(t *testing.T) {
				reached := false
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				if header != "" {
					req.Header.Set("Authorization", header)
				}
				rec := httptest.NewRecorder()
				gate(okHandler(&reached)).ServeHTTP(rec, req)

				require.Equal(t, http.StatusUnauthorized, rec.Code)
				require.Equal(t, "missing_token", errorCode(t, rec))
				require.False(t, reached)
			})
		}
	})

	t.Run("unverifiable token is invalid_token", func(t *testing.T) {
		other := tokenx.NewCodec([]byte("other-secret"), "chefpilot-test", 15*time.Minute)
		forged, err := other.Issue("u1", "alice", "Manager", time.Now().UTC())
		require.NoError(t, err)

		for name, token := range map[string]string{
			"wrong secret": forged,
			"garbage":      "not-a-token",
		} {
			t.Run(name, func(t *testing.T) {
				reached := false
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				req.Header.Set("Authorization", "Bearer "+token)
				rec := httptest.NewRecorder()
				gate(okHandler(&reached)).ServeHTTP(rec, req)

				require.Equal(t, http.StatusUnauthorized, rec.Code)
				require.Equal(t, "invalid_token", errorCode(t, rec))
				require.False(t, reached)
			})
		}
	})

	t.Run("expired token is invalid_token", func(t *testing.T) {
		stale, err := codec.Issue("u1", "alice", "Manager",
			time.Now().UTC().Add(-time.Hour))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+stale)
		rec := httptest.NewRecorder()
		gate(okHandler(new(bool))).ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "invalid_token", errorCode(t, rec))
	})
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	gate := RequireRole(domain.RoleApplicationOwner, newTestMetrics())

	t.Run("no identity is missing_auth", func(t *testing.T) {
		reached := false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		gate(okHandler(&reached)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "missing_auth", errorCode(t, rec))
		require.False(t, reached)
	})

	t.Run("role mismatch is forbidden", func(t *testing.T) {
		reached := false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(withIdentity(req.Context(), domain.Identity{
			ID:   "u1",
			Role: domain.RoleTenantOwner,
		}))
		rec := httptest.NewRecorder()
		gate(okHandler(&reached)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "forbidden", errorCode(t, rec))
		require.False(t, reached)
	})

	t.Run("exact match continues", func(t *testing.T) {
		reached := false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(withIdentity(req.Context(), domain.Identity{
			ID:   "u1",
			Role: domain.RoleApplicationOwner,
		}))
		rec := httptest.NewRecorder()
		gate(okHandler(&reached)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, reached)
	})
}
