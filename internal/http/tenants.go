package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/service"
	"github.com/chefpilot/chefpilot-api/internal/store"
	"github.com/chefpilot/chefpilot-api/pkg/apix"
	"github.com/chefpilot/chefpilot-api/pkg/httpx"
	"github.com/chefpilot/chefpilot-api/pkg/slogx"
)

// TenantHandler serves tenant CRUD and the parent-association handshake.
type TenantHandler struct {
	TenantService *service.TenantService
}

type tenantRequest struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	PIN            string `json:"pin"`
	UserLimit      int    `json:"user_limit"`
	RestaurantType string `json:"restaurant_type"`
}

func (h *TenantHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apix.NewMissingFields([]string{"name"}).WriteError(w)
		return
	}
	if missing := requireFields(map[string]string{"name": req.Name}); len(missing) > 0 {
		apix.NewMissingFields(missing).WriteError(w)
		return
	}

	tenant, err := h.TenantService.CreateTenant(ctx, service.CreateTenantParams{
		Name:           req.Name,
		Type:           req.Type,
		PIN:            req.PIN,
		UserLimit:      req.UserLimit,
		RestaurantType: req.RestaurantType,
	})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to create tenant", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, renderTenant(tenant))
}

func (h *TenantHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenants, err := h.TenantService.ListTenants(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list tenants", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	out := make([]map[string]any, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, renderTenant(t))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *TenantHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenant, err := h.TenantService.GetTenant(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apix.ErrNotFound.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("failed to load tenant", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderTenant(tenant))
}

func (h *TenantHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apix.NewMissingFields([]string{"name"}).WriteError(w)
		return
	}
	if missing := requireFields(map[string]string{"name": req.Name}); len(missing) > 0 {
		apix.NewMissingFields(missing).WriteError(w)
		return
	}

	current, err := h.TenantService.GetTenant(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apix.ErrNotFound.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("failed to load tenant", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	current.Name = req.Name
	current.Type = req.Type
	current.UserLimit = req.UserLimit
	current.RestaurantType = req.RestaurantType
	if req.PIN != "" {
		current.PIN = &req.PIN
	}

	tenant, err := h.TenantService.UpdateTenant(ctx, current)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apix.ErrNotFound.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("failed to update tenant", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderTenant(tenant))
}

func (h *TenantHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.TenantService.DeleteTenant(ctx, r.PathValue("id")); err != nil {
		slogx.FromContext(ctx).Error("failed to delete tenant", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type associateRequest struct {
	TenantID string `json:"tenant_id"`
	PIN      string `json:"pin"`
}

// HandleAssociate links the caller's tenant under the parent whose PIN
// matches. Already-linked tenants conflict; an unknown PIN is not-found.
func (h *TenantHandler) HandleAssociate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req associateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apix.NewMissingFields([]string{"tenant_id", "pin"}).WriteError(w)
		return
	}
	if missing := requireFields(map[string]string{
		"tenant_id": req.TenantID,
		"pin":       req.PIN,
	}); len(missing) > 0 {
		apix.NewMissingFields(missing).WriteError(w)
		return
	}

	tenant, err := h.TenantService.AssociateParent(ctx, req.TenantID, req.PIN)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyAssociated):
			apix.NewConflict("already_associated").WriteError(w)
		case errors.Is(err, service.ErrParentNotFound):
			apix.ErrNotFound.WriteError(w)
		case errors.Is(err, service.ErrSelfAssociation):
			apix.NewValidation("a tenant cannot be its own parent").WriteError(w)
		case errors.Is(err, store.ErrNotFound):
			apix.ErrNotFound.WriteError(w)
		default:
			slogx.FromContext(ctx).Error("tenant association failed", slog.Any("error", err))
			apix.ErrInternal.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderTenant(tenant))
}

// renderTenant shapes a tenant for the wire. The PIN never leaves the server;
// it is a shared secret for the association handshake only.
func renderTenant(t domain.Tenant) map[string]any {
	return map[string]any{
		"id":              t.ID,
		"name":            t.Name,
		"type":            t.Type,
		"parent_id":       t.ParentID,
		"user_limit":      t.UserLimit,
		"restaurant_type": t.RestaurantType,
		"created_at":      t.CreatedAt,
		"updated_at":      t.UpdatedAt,
	}
}
