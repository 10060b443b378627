package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/store/drivers/sqlite"
	"github.com/chefpilot/chefpilot-api/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newScopeFixture(t *testing.T) (*sqlite.Store, domain.Tenant, domain.User) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	ctx := context.Background()

	member := domain.User{
		ID:           idx.New().String(),
		Username:     "member",
		PasswordHash: "x",
		Role:         domain.RoleStaff,
	}
	require.NoError(t, st.Users().CreateUser(ctx, member))

	tenant := domain.Tenant{ID: idx.New().String(), Name: "Cafe A"}
	require.NoError(t, st.Tenants().CreateTenant(ctx, tenant))
	require.NoError(t, st.Memberships().CreateMembership(ctx, domain.Membership{
		UserID:   member.ID,
		TenantID: tenant.ID,
	}))

	return st, tenant, member
}

func TestTenantScope(t *testing.T) {
	t.Parallel()

	st, tenant, member := newScopeFixture(t)
	gate := TenantScope(st, TenantIDFromBody("tenant_id"), newTestMetrics())

	asUser := func(req *http.Request, id string, role domain.Role) *http.Request {
		return req.WithContext(withIdentity(req.Context(), domain.Identity{
			ID:   id,
			Role: role,
		}))
	}

	post := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	t.Run("member of the named tenant continues with scope attached", func(t *testing.T) {
		var (
			gotTenant     domain.Tenant
			gotMembership domain.Membership
			hasTenant     bool
			hasMembership bool
		)
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotTenant, hasTenant = TenantFromContext(r.Context())
			gotMembership, hasMembership = MembershipFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := asUser(post(`{"tenant_id":"`+tenant.ID+`"}`), member.ID, member.Role)
		rec := httptest.NewRecorder()
		gate(inner).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, hasTenant)
		require.True(t, hasMembership)
		require.Equal(t, tenant.ID, gotTenant.ID)
		require.Equal(t, member.ID, gotMembership.UserID)
	})

	t.Run("body survives for the handler after extraction", func(t *testing.T) {
		var seen string
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			seen = string(b)
			w.WriteHeader(http.StatusOK)
		})

		body := `{"tenant_id":"` + tenant.ID + `","title":"clean fridge"}`
		req := asUser(post(body), member.ID, member.Role)
		gate(inner).ServeHTTP(httptest.NewRecorder(), req)

		require.Equal(t, body, seen)
	})

	t.Run("global owner bypasses every check", func(t *testing.T) {
		reached := false
		// Unknown tenant id and no membership row; the owner passes anyway.
		req := asUser(post(`{"tenant_id":"no-such-tenant"}`), idx.New().String(), domain.RoleApplicationOwner)
		rec := httptest.NewRecorder()
		gate(okHandler(&reached)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, reached)
	})

	t.Run("no tenant id is tenant_required", func(t *testing.T) {
		req := asUser(post(`{}`), member.ID, member.Role)
		rec := httptest.NewRecorder()
		gate(okHandler(new(bool))).ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "tenant_required", errorCode(t, rec))
	})

	t.Run("unknown tenant is invalid_tenant not not_found", func(t *testing.T) {
		req := asUser(post(`{"tenant_id":"ghost"}`), member.ID, member.Role)
		rec := httptest.NewRecorder()
		gate(okHandler(new(bool))).ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "invalid_tenant", errorCode(t, rec))
	})

	t.Run("non-member is not_a_member regardless of role", func(t *testing.T) {
		for _, role := range []domain.Role{
			domain.RoleTenantOwner,
			domain.RoleManager,
			domain.RoleStaff,
			domain.RoleTenantUser,
		} {
			req := asUser(post(`{"tenant_id":"`+tenant.ID+`"}`), idx.New().String(), role)
			rec := httptest.NewRecorder()
			gate(okHandler(new(bool))).ServeHTTP(rec, req)

			require.Equal(t, http.StatusForbidden, rec.Code, "role %s", role)
			require.Equal(t, "not_a_member", errorCode(t, rec))
		}
	})

	t.Run("no identity is missing_auth", func(t *testing.T) {
		req := post(`{"tenant_id":"` + tenant.ID + `"}`)
		rec := httptest.NewRecorder()
		gate(okHandler(new(bool))).ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "missing_auth", errorCode(t, rec))
	})

	t.Run("storage failure is internal not an authz rejection", func(t *testing.T) {
		broken, err := sqlite.NewStore(":memory:")
		require.NoError(t, err)
		require.NoError(t, broken.Close()) // queries now fail with a real error

		brokenGate := TenantScope(broken, TenantIDFromBody("tenant_id"), newTestMetrics())
		req := asUser(post(`{"tenant_id":"whatever"}`), member.ID, member.Role)
		rec := httptest.NewRecorder()
		brokenGate(okHandler(new(bool))).ServeHTTP(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, "internal", errorCode(t, rec))
	})
}

func TestTenantIDSources(t *testing.T) {
	t.Parallel()

	t.Run("query source", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks?tenant_id=t1", nil)
		id, err := TenantIDFromQuery("tenant_id")(req)
		require.NoError(t, err)
		require.Equal(t, "t1", id)
	})

	t.Run("body source tolerates malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("not json"))
		id, err := TenantIDFromBody("tenant_id")(req)
		require.NoError(t, err)
		require.Empty(t, id)
	})

	t.Run("body source tolerates empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(nil))
		id, err := TenantIDFromBody("tenant_id")(req)
		require.NoError(t, err)
		require.Empty(t, id)
	})
}
