package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/service"
	"github.com/chefpilot/chefpilot-api/internal/store"
	"github.com/chefpilot/chefpilot-api/pkg/httpx"
	"github.com/chefpilot/chefpilot-api/pkg/metricsx"
	"github.com/chefpilot/chefpilot-api/pkg/slogx"
	"github.com/chefpilot/chefpilot-api/pkg/tokenx"

	"github.com/prometheus/client_golang/prometheus"
)

// Router holds shared dependencies for HTTP handlers and wires the gate
// middleware per route. Every protected route declares its auth, role and
// tenant-scope requirements explicitly here.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     tokenx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	metrics      *metricsx.Collector
	gatherer     prometheus.Gatherer

	store store.Store

	SessionService        *service.SessionService
	UserService           *service.UserService
	TenantService         *service.TenantService
	TaskService           *service.TaskService
	TemperatureLogService *service.TemperatureLogService
	FeatureService        *service.FeatureService
	BillingService        *service.BillingService
}

func NewRouter(
	verifier tokenx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	metrics *metricsx.Collector,
	gatherer prometheus.Gatherer,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		metrics:      metrics,
		gatherer:     gatherer,
		store:        st,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		metrics.Middleware,
	}

	return r
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) ApplyRoutes() {
	r.registerSession()
	r.registerTasks()
	r.registerTemperatureLogs()
	r.registerTenants()
	r.registerUsers()
	r.registerFeatures()
	r.registerBilling()
	r.registerSystem()
}

// auth is shorthand for the request-authenticator gate.
func (r *Router) auth() httpx.Middleware {
	return RequireAuth(r.verifier, r.metrics)
}

func (r *Router) registerSession() {
	h := &SessionHandler{SessionService: r.SessionService}

	r.Mux.HandleFunc("POST /api/auth/login", h.HandleLogin)
	r.Mux.HandleFunc("POST /api/auth/refresh", h.HandleRefresh)
	r.Mux.HandleFunc("POST /api/auth/logout", h.HandleLogout)
}

func (r *Router) registerTasks() {
	h := &TaskHandler{TaskService: r.TaskService}

	r.Mux.Handle("POST /api/tasks",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.auth(),
			TenantScope(r.store, TenantIDFromBody("tenant_id"), r.metrics),
		))
	r.Mux.Handle("GET /api/tasks",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.auth(),
			TenantScope(r.store, TenantIDFromQuery("tenant_id"), r.metrics),
		))
	r.Mux.Handle("GET /api/tasks/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.auth(),
			TenantScope(r.store, TenantIDFromQuery("tenant_id"), r.metrics),
		))
	r.Mux.Handle("PUT /api/tasks/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			r.auth(),
			TenantScope(r.store, TenantIDFromBody("tenant_id"), r.metrics),
		))
	r.Mux.Handle("DELETE /api/tasks/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			r.auth(),
			RequireRole(domain.RoleApplicationOwner, r.metrics),
		))
}

func (r *Router) registerTemperatureLogs() {
	h := &TemperatureLogHandler{TemperatureLogService: r.TemperatureLogService}

	r.Mux.Handle("POST /api/temperature-logs",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.auth(),
			TenantScope(r.store, TenantIDFromBody("tenant_id"), r.metrics),
		))
	r.Mux.Handle("GET /api/temperature-logs",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.auth(),
			TenantScope(r.store, TenantIDFromQuery("tenant_id"), r.metrics),
		))
	r.Mux.Handle("GET /api/temperature-logs/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.auth(),
			TenantScope(r.store, TenantIDFromQuery("tenant_id"), r.metrics),
		))
	r.Mux.Handle("DELETE /api/temperature-logs/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			r.auth(),
			RequireRole(domain.RoleApplicationOwner, r.metrics),
		))
}

func (r *Router) registerTenants() {
	h := &TenantHandler{TenantService: r.TenantService}

	r.Mux.Handle("POST /api/tenants",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.auth(),
			RequireRole(domain.RoleApplicationOwner, r.metrics),
		))
	r.Mux.Handle("GET /api/tenants",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.auth(),
			RequireRole(domain.RoleApplicationOwner, r.metrics),
		))
	r.Mux.Handle("GET /api/tenants/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.auth(),
			TenantScope(r.store, TenantIDFromPath("id"), r.metrics),
		))
	r.Mux.Handle("PUT /api/tenants/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			r.auth(),
			TenantScope(r.store, TenantIDFromPath("id"), r.metrics),
		))
	r.Mux.Handle("DELETE /api/tenants/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			r.auth(),
			RequireRole(domain.RoleApplicationOwner, r.metrics),
		))
	r.Mux.Handle("POST /api/tenants/associate",
		httpx.Chain(http.HandlerFunc(h.HandleAssociate),
			r.auth(),
			TenantScope(r.store, TenantIDFromBody("tenant_id"), r.metrics),
		))
}

func (r *Router) registerUsers() {
	h := &UserHandler{UserService: r.UserService}

	r.Mux.Handle("POST /api/users",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.auth(),
			RequireRole(domain.RoleApplicationOwner, r.metrics),
		))
	r.Mux.Handle("GET /api/users",
		httpx.Chain(http.HandlerFunc(h.HandleList), r.auth()))
	r.Mux.Handle("GET /api/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet), r.auth()))
	r.Mux.Handle("PUT /api/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate), r.auth()))
	r.Mux.Handle("DELETE /api/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			r.auth(),
			RequireRole(domain.RoleApplicationOwner, r.metrics),
		))
	r.Mux.Handle("GET /api/users/{id}/audit",
		httpx.Chain(http.HandlerFunc(h.HandleAudit), r.auth()))
}

func (r *Router) registerFeatures() {
	h := &FeatureHandler{FeatureService: r.FeatureService}

	r.Mux.Handle("POST /api/features",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.auth(),
			RequireRole(domain.RoleApplicationOwner, r.metrics),
		))
	r.Mux.Handle("GET /api/features",
		httpx.Chain(http.HandlerFunc(h.HandleList), r.auth()))
	r.Mux.Handle("GET /api/features/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet), r.auth()))
	r.Mux.Handle("PUT /api/features/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			r.auth(),
			RequireRole(domain.RoleApplicationOwner, r.metrics),
		))
	r.Mux.Handle("DELETE /api/features/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			r.auth(),
			RequireRole(domain.RoleApplicationOwner, r.metrics),
		))

	// Role capability checked inside the handler: ApplicationOwner or
	// TenantOwner may manage tenant features.
	r.Mux.Handle("POST /api/tenant-features",
		httpx.Chain(http.HandlerFunc(h.HandleApply), r.auth()))
	r.Mux.Handle("DELETE /api/tenant-features",
		httpx.Chain(http.HandlerFunc(h.HandleRemove), r.auth()))
	r.Mux.Handle("GET /api/tenant-features/{tenant_id}",
		httpx.Chain(http.HandlerFunc(h.HandleListTenantFeatures),
			r.auth(),
			TenantScope(r.store, TenantIDFromPath("tenant_id"), r.metrics),
		))
}

func (r *Router) registerBilling() {
	h := &BillingHandler{BillingService: r.BillingService}

	r.Mux.Handle("GET /api/billing",
		httpx.Chain(http.HandlerFunc(h.HandleGetSchedule), r.auth()))
	r.Mux.Handle("POST /api/billing",
		httpx.Chain(http.HandlerFunc(h.HandleCreateSchedule),
			r.auth(),
			RequireRole(domain.RoleApplicationOwner, r.metrics),
		))
	r.Mux.Handle("PUT /api/billing/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateSchedule),
			r.auth(),
			RequireRole(domain.RoleApplicationOwner, r.metrics),
		))

	r.Mux.Handle("POST /api/pricing-overrides",
		httpx.Chain(http.HandlerFunc(h.HandleCreateOverride),
			r.auth(),
			RequireRole(domain.RoleApplicationOwner, r.metrics),
		))
	r.Mux.Handle("GET /api/pricing-overrides",
		httpx.Chain(http.HandlerFunc(h.HandleListOverrides),
			r.auth(),
			TenantScope(r.store, TenantIDFromQuery("tenant_id"), r.metrics),
		))
	r.Mux.Handle("DELETE /api/pricing-overrides/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDeleteOverride),
			r.auth(),
			RequireRole(domain.RoleApplicationOwner, r.metrics),
		))
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.HandleFunc("GET /readyz", ReadyzHandler(r.store, r.startTime, r.buildVersion))
	r.Mux.HandleFunc("GET /api/health", ReadyzHandler(r.store, r.startTime, r.buildVersion))
	r.Mux.Handle("GET /metrics", metricsx.Handler(r.gatherer))
}
