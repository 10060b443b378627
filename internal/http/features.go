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

// FeatureHandler serves the feature catalog and per-tenant application.
type FeatureHandler struct {
	FeatureService *service.FeatureService
}

type featureRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

func (h *FeatureHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req featureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apix.NewMissingFields([]string{"name"}).WriteError(w)
		return
	}
	if missing := requireFields(map[string]string{"name": req.Name}); len(missing) > 0 {
		apix.NewMissingFields(missing).WriteError(w)
		return
	}

	feature, err := h.FeatureService.CreateFeature(ctx, req.Name, req.Description, req.Enabled)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to create feature", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, feature)
}

func (h *FeatureHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	features, err := h.FeatureService.ListFeatures(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list features", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}
	if features == nil {
		features = []domain.Feature{}
	}

	httpx.WriteJSON(w, http.StatusOK, features)
}

func (h *FeatureHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	feature, err := h.FeatureService.GetFeature(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apix.ErrNotFound.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("failed to load feature", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, feature)
}

func (h *FeatureHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req featureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apix.NewMissingFields([]string{"name"}).WriteError(w)
		return
	}
	if missing := requireFields(map[string]string{"name": req.Name}); len(missing) > 0 {
		apix.NewMissingFields(missing).WriteError(w)
		return
	}

	feature, err := h.FeatureService.UpdateFeature(ctx, domain.Feature{
		ID:          r.PathValue("id"),
		Name:        req.Name,
		Description: req.Description,
		Enabled:     req.Enabled,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apix.ErrNotFound.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("failed to update feature", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, feature)
}

func (h *FeatureHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.FeatureService.DeleteFeature(ctx, r.PathValue("id")); err != nil {
		slogx.FromContext(ctx).Error("failed to delete feature", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type tenantFeatureRequest struct {
	TenantID  string `json:"tenant_id"`
	FeatureID string `json:"feature_id"`
}

// HandleApply attaches a feature to a tenant. Restricted to roles that manage
// tenant features.
func (h *FeatureHandler) HandleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := IdentityFromContext(ctx)
	if !ok {
		apix.ErrMissingAuth.WriteError(w)
		return
	}
	if !identity.Role.CanManageTenantFeatures() {
		apix.ErrForbidden.WriteError(w)
		return
	}

	var req tenantFeatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apix.NewMissingFields([]string{"tenant_id", "feature_id"}).WriteError(w)
		return
	}
	if missing := requireFields(map[string]string{
		"tenant_id":  req.TenantID,
		"feature_id": req.FeatureID,
	}); len(missing) > 0 {
		apix.NewMissingFields(missing).WriteError(w)
		return
	}

	if err := h.FeatureService.ApplyFeature(ctx, req.TenantID, req.FeatureID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apix.ErrNotFound.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("failed to apply feature", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *FeatureHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := IdentityFromContext(ctx)
	if !ok {
		apix.ErrMissingAuth.WriteError(w)
		return
	}
	if !identity.Role.CanManageTenantFeatures() {
		apix.ErrForbidden.WriteError(w)
		return
	}

	var req tenantFeatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apix.NewMissingFields([]string{"tenant_id", "feature_id"}).WriteError(w)
		return
	}
	if missing := requireFields(map[string]string{
		"tenant_id":  req.TenantID,
		"feature_id": req.FeatureID,
	}); len(missing) > 0 {
		apix.NewMissingFields(missing).WriteError(w)
		return
	}

	if err := h.FeatureService.RemoveFeature(ctx, req.TenantID, req.FeatureID); err != nil {
		slogx.FromContext(ctx).Error("failed to remove feature", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *FeatureHandler) HandleListTenantFeatures(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	features, err := h.FeatureService.ListTenantFeatures(ctx, r.PathValue("tenant_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apix.ErrNotFound.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("failed to list tenant features", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}
	if features == nil {
		features = []domain.TenantFeature{}
	}

	httpx.WriteJSON(w, http.StatusOK, features)
}
