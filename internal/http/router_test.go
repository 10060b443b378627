package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/service"
	"github.com/chefpilot/chefpilot-api/internal/store/drivers/sqlite"
	"github.com/chefpilot/chefpilot-api/pkg/cryptox"
	"github.com/chefpilot/chefpilot-api/pkg/idx"
	"github.com/chefpilot/chefpilot-api/pkg/metricsx"
	"github.com/chefpilot/chefpilot-api/pkg/tokenx"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	router  *Router
	store   *sqlite.Store
	codec   *tokenx.Codec
	tenantA domain.Tenant
	tenantB domain.Tenant
}

// newAPIFixture stands up the full router against an in-memory database with
// three accounts: admin (global owner), member (staff of tenant A only) and
// outsider (staff of no tenant).
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	ctx := context.Background()

	seed := func(username, password string, role domain.Role) domain.User {
		hash, err := cryptox.HashPassword(password)
		require.NoError(t, err)
		u := domain.User{
			ID:           idx.New().String(),
			Username:     username,
			PasswordHash: hash,
			Role:         role,
		}
		require.NoError(t, st.Users().CreateUser(ctx, u))
		return u
	}

	seed("admin", "password123", domain.RoleApplicationOwner)
	member := seed("member", "password123", domain.RoleStaff)
	seed("outsider", "password123", domain.RoleStaff)

	tenantA := domain.Tenant{ID: idx.New().String(), Name: "Cafe A"}
	tenantB := domain.Tenant{ID: idx.New().String(), Name: "Cafe B"}
	require.NoError(t, st.Tenants().CreateTenant(ctx, tenantA))
	require.NoError(t, st.Tenants().CreateTenant(ctx, tenantB))
	require.NoError(t, st.Memberships().CreateMembership(ctx, domain.Membership{
		UserID:   member.ID,
		TenantID: tenantA.ID,
	}))

	codec := tokenx.NewCodec([]byte("test-secret"), "chefpilot-test", 15*time.Minute)
	metrics := metricsx.NewCollector(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := NewRouter(codec, "test", st, logger, metrics, prometheus.NewRegistry())
	router.SessionService = &service.SessionService{
		Store:         st,
		Codec:         codec,
		RefreshTTL:    time.Hour,
		Metrics:       metrics,
		TenantContext: "dev-tenant",
	}
	router.UserService = &service.UserService{Store: st}
	router.TenantService = &service.TenantService{Store: st}
	router.TaskService = &service.TaskService{Store: st}
	router.TemperatureLogService = &service.TemperatureLogService{Store: st}
	router.FeatureService = &service.FeatureService{Store: st}
	router.BillingService = &service.BillingService{Store: st}
	router.ApplyRoutes()

	return &apiFixture{
		router:  router,
		store:   st,
		codec:   codec,
		tenantA: tenantA,
		tenantB: tenantB,
	}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) login(t *testing.T, username, password string) (access, refresh string) {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AccessToken, resp.RefreshToken
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSessionEndpoints(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	t.Run("login returns verifiable tokens and identity", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "admin",
			"password": "password123",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		require.Equal(t, "dev-tenant", body["tenant_context"])

		claims, err := f.codec.Verify(body["access_token"].(string))
		require.NoError(t, err)
		require.Equal(t, "admin", claims.Username)
		require.Equal(t, domain.RoleApplicationOwner.String(), claims.Role)
	})

	t.Run("wrong password is invalid_credentials", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "admin",
			"password": "nope",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "invalid_credentials", errorCode(t, rec))
	})

	t.Run("missing fields fail before credential checks", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "admin",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "missing_fields", errorCode(t, rec))
	})

	t.Run("refresh issues a fresh access token", func(t *testing.T) {
		_, refresh := f.login(t, "member", "password123")

		rec := f.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{
			"refresh_token": refresh,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		claims, err := f.codec.Verify(decodeBody(t, rec)["access_token"].(string))
		require.NoError(t, err)
		require.Equal(t, "member", claims.Username)
	})

	t.Run("logout revokes the refresh token", func(t *testing.T) {
		_, refresh := f.login(t, "member", "password123")

		rec := f.do(t, http.MethodPost, "/api/auth/logout", "", map[string]string{
			"refresh_token": refresh,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = f.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{
			"refresh_token": refresh,
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "invalid_refresh", errorCode(t, rec))
	})
}

func TestTaskEndpointsTenantScoping(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	memberToken, _ := f.login(t, "member", "password123")
	adminToken, _ := f.login(t, "admin", "password123")

	newTask := func(tenantID, title string) map[string]any {
		return map[string]any{
			"tenant_id": tenantID,
			"title":     title,
		}
	}

	t.Run("no token is missing_token", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/tasks", "", newTask(f.tenantA.ID, "x"))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "missing_token", errorCode(t, rec))
	})

	t.Run("member creates a task in their own tenant", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/tasks", memberToken,
			newTask(f.tenantA.ID, "sanitize prep station"))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		body := decodeBody(t, rec)
		require.Equal(t, f.tenantA.ID, body["tenant_id"])
		require.Equal(t, "pending", body["status"])
	})

	t.Run("member is rejected from a foreign tenant", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/tasks", memberToken,
			newTask(f.tenantB.ID, "sneaky"))
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "not_a_member", errorCode(t, rec))
	})

	t.Run("global owner creates tasks in any tenant without membership", func(t *testing.T) {
		for _, tenantID := range []string{f.tenantA.ID, f.tenantB.ID} {
			rec := f.do(t, http.MethodPost, "/api/tasks", adminToken,
				newTask(tenantID, "owner task"))
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		}
	})

	t.Run("member lists only within their tenant", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/tasks?tenant_id="+f.tenantA.ID, memberToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var tasks []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
		require.NotEmpty(t, tasks)
		for _, task := range tasks {
			require.Equal(t, f.tenantA.ID, task["tenant_id"])
		}

		rec = f.do(t, http.MethodGet, "/api/tasks?tenant_id="+f.tenantB.ID, memberToken, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "not_a_member", errorCode(t, rec))
	})

	t.Run("listing without a tenant id requires the owner bypass", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/tasks", memberToken, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "tenant_required", errorCode(t, rec))

		rec = f.do(t, http.MethodGet, "/api/tasks", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var tasks []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
		tenants := map[string]bool{}
		for _, task := range tasks {
			tenants[task["tenant_id"].(string)] = true
		}
		require.True(t, tenants[f.tenantA.ID])
		require.True(t, tenants[f.tenantB.ID])
	})

	t.Run("delete is reserved for the global owner", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/tasks", memberToken,
			newTask(f.tenantA.ID, "short lived"))
		require.Equal(t, http.StatusCreated, rec.Code)
		id := decodeBody(t, rec)["id"].(string)

		rec = f.do(t, http.MethodDelete, "/api/tasks/"+id, memberToken, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "forbidden", errorCode(t, rec))

		rec = f.do(t, http.MethodDelete, "/api/tasks/"+id, adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestTenantEndpoints(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	memberToken, _ := f.login(t, "member", "password123")
	adminToken, _ := f.login(t, "admin", "password123")

	t.Run("creating tenants is owner-only", func(t *testing.T) {
		payload := map[string]any{"name": "Cafe C", "pin": "123456"}

		rec := f.do(t, http.MethodPost, "/api/tenants", memberToken, payload)
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = f.do(t, http.MethodPost, "/api/tenants", adminToken, payload)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		// The PIN never appears on the wire.
		body := decodeBody(t, rec)
		_, exposed := body["pin"]
		require.False(t, exposed)
	})

	t.Run("members read their own tenant but not others", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/tenants/"+f.tenantA.ID, memberToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Cafe A", decodeBody(t, rec)["name"])

		rec = f.do(t, http.MethodGet, "/api/tenants/"+f.tenantB.ID, memberToken, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "not_a_member", errorCode(t, rec))
	})

	t.Run("association by pin attaches a parent once", func(t *testing.T) {
		pin := "999888"
		parent := domain.Tenant{
			ID:   idx.New().String(),
			Name: "HQ",
			PIN:  &pin,
		}
		require.NoError(t, f.store.Tenants().CreateTenant(context.Background(), parent))

		associate := map[string]any{"tenant_id": f.tenantA.ID, "pin": "999888"}

		rec := f.do(t, http.MethodPost, "/api/tenants/associate", memberToken, associate)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Equal(t, parent.ID, decodeBody(t, rec)["parent_id"])

		rec = f.do(t, http.MethodPost, "/api/tenants/associate", memberToken, associate)
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Equal(t, "already_associated", errorCode(t, rec))
	})

	t.Run("wrong pin reads as parent not found", func(t *testing.T) {
		orphan := domain.Tenant{ID: idx.New().String(), Name: "Orphan"}
		require.NoError(t, f.store.Tenants().CreateTenant(context.Background(), orphan))

		rec := f.do(t, http.MethodPost, "/api/tenants/associate", adminToken,
			map[string]any{"tenant_id": orphan.ID, "pin": "000000"})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSystemEndpoints(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	for _, path := range []string{"/livez", "/readyz", "/api/health"} {
		rec := f.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		require.Equal(t, "ok", decodeBody(t, rec)["status"], path)
	}

	rec := f.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestTemperatureLogEndpoints(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	memberToken, _ := f.login(t, "member", "password123")

	t.Run("reading outside bounds is flagged unsafe", func(t *testing.T) {
		min, max := 33.0, 41.0
		rec := f.do(t, http.MethodPost, "/api/temperature-logs", memberToken, map[string]any{
			"tenant_id":   f.tenantA.ID,
			"temperature": 48.5,
			"location":    "walk-in",
			"safe_min":    min,
			"safe_max":    max,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		body := decodeBody(t, rec)
		require.Equal(t, false, body["is_safe"])
		require.Equal(t, "F", body["unit"])
	})

	t.Run("reading within bounds is safe", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/temperature-logs", memberToken, map[string]any{
			"tenant_id":   f.tenantA.ID,
			"temperature": 37.0,
			"location":    "walk-in",
			"safe_min":    33.0,
			"safe_max":    41.0,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, true, decodeBody(t, rec)["is_safe"])
	})

	t.Run("missing temperature is rejected", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/temperature-logs", memberToken, map[string]any{
			"tenant_id": f.tenantA.ID,
			"location":  "walk-in",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("logs filter by time window", func(t *testing.T) {
		until := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
		path := fmt.Sprintf("/api/temperature-logs?tenant_id=%s&end=%s", f.tenantA.ID, until)

		rec := f.do(t, http.MethodGet, path, memberToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var logs []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
		require.Len(t, logs, 2)
	})
}
