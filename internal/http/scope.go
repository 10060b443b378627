package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/store"
	"github.com/chefpilot/chefpilot-api/pkg/apix"
	"github.com/chefpilot/chefpilot-api/pkg/httpx"
	"github.com/chefpilot/chefpilot-api/pkg/metricsx"
	"github.com/chefpilot/chefpilot-api/pkg/slogx"
)

// TenantIDSource extracts the target tenant id from a request. Every scoped
// route declares its source explicitly when wiring middleware; nothing is
// inferred from the route shape.
type TenantIDSource func(r *http.Request) (string, error)

// TenantIDFromPath reads the tenant id from a named path parameter.
func TenantIDFromPath(param string) TenantIDSource {
	return func(r *http.Request) (string, error) {
		return r.PathValue(param), nil
	}
}

// TenantIDFromQuery reads the tenant id from a query parameter.
func TenantIDFromQuery(param string) TenantIDSource {
	return func(r *http.Request) (string, error) {
		return r.URL.Query().Get(param), nil
	}
}

// TenantIDFromBody reads the tenant id from a JSON body field. The body is
// buffered and restored so the handler can decode it again.
func TenantIDFromBody(field string) TenantIDSource {
	return func(r *http.Request) (string, error) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return "", err
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		if len(body) == 0 {
			return "", nil
		}

		var payload map[string]json.RawMessage
		if err := json.Unmarshal(body, &payload); err != nil {
			return "", nil
		}

		var id string
		if raw, ok := payload[field]; ok {
			_ = json.Unmarshal(raw, &id)
		}
		return id, nil
	}
}

// TenantFromContext returns the tenant resolved by TenantScope.
func TenantFromContext(ctx context.Context) (domain.Tenant, bool) {
	t, ok := ctx.Value(ctxKeyTenant).(domain.Tenant)
	return t, ok
}

// MembershipFromContext returns the membership resolved by TenantScope. It is
// absent when the global owner bypassed the check.
func MembershipFromContext(ctx context.Context) (domain.Membership, bool) {
	m, ok := ctx.Value(ctxKeyMembership).(domain.Membership)
	return m, ok
}

// TenantScope gates a route on tenant membership. The global owner role
// bypasses every check. An unknown tenant reports invalid_tenant rather than
// not-found so non-members cannot probe for tenant existence. Genuine storage
// failures surface as internal, never as an authorization rejection.
func TenantScope(st store.Store, source TenantIDSource, metrics *metricsx.Collector) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			identity, hasIdentity := IdentityFromContext(ctx)

			if hasIdentity && identity.Role.BypassesTenantScope() {
				next.ServeHTTP(w, r)
				return
			}

			tenantID, err := source(r)
			if err != nil {
				writeScopeInternal(ctx, w, metrics, err)
				return
			}
			if tenantID == "" {
				metrics.RecordRejection(apix.CodeTenantRequired)
				apix.ErrTenantRequired.WriteError(w)
				return
			}

			tenant, err := st.Tenants().GetTenantByID(ctx, tenantID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					metrics.RecordRejection(apix.CodeInvalidTenant)
					apix.ErrInvalidTenant.WriteError(w)
					return
				}
				writeScopeInternal(ctx, w, metrics, err)
				return
			}

			// Unreachable when ordered after RequireAuth; kept as a misuse
			// guard.
			if !hasIdentity || identity.ID == "" {
				metrics.RecordRejection(apix.CodeMissingAuth)
				apix.ErrMissingAuth.WriteError(w)
				return
			}

			membership, err := st.Memberships().GetMembership(ctx, identity.ID, tenant.ID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					metrics.RecordRejection(apix.CodeNotAMember)
					apix.ErrNotAMember.WriteError(w)
					return
				}
				writeScopeInternal(ctx, w, metrics, err)
				return
			}

			ctx = context.WithValue(ctx, ctxKeyTenant, tenant)
			ctx = context.WithValue(ctx, ctxKeyMembership, membership)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeScopeInternal(ctx context.Context, w http.ResponseWriter, metrics *metricsx.Collector, err error) {
	slogx.FromContext(ctx).Error("tenant scope resolution failed", slog.Any("error", err))
	metrics.RecordRejection(apix.CodeInternal)
	apix.ErrInternal.WriteError(w)
}
