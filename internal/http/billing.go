package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/service"
	"github.com/chefpilot/chefpilot-api/internal/store"
	"github.com/chefpilot/chefpilot-api/pkg/apix"
	"github.com/chefpilot/chefpilot-api/pkg/httpx"
	"github.com/chefpilot/chefpilot-api/pkg/slogx"
)

// BillingHandler serves the pricing schedule and per-tenant overrides.
type BillingHandler struct {
	BillingService *service.BillingService
}

type scheduleRequest struct {
	FeatureID                string     `json:"feature_id"`
	StandalonePricePerUser   *float64   `json:"standalone_price_per_user"`
	ParentTenantPricePerUser *float64   `json:"parent_tenant_price_per_user"`
	TrialDays                int        `json:"trial_days"`
	Override                 string     `json:"override"`
	EffectiveAt              *time.Time `json:"effective_at"`
}

func (h *BillingHandler) HandleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apix.NewMissingFields([]string{"feature_id"}).WriteError(w)
		return
	}
	if missing := requireFields(map[string]string{"feature_id": req.FeatureID}); len(missing) > 0 {
		apix.NewMissingFields(missing).WriteError(w)
		return
	}

	entry, err := h.BillingService.CreateSchedule(ctx, service.CreateScheduleParams{
		FeatureID:                req.FeatureID,
		StandalonePricePerUser:   req.StandalonePricePerUser,
		ParentTenantPricePerUser: req.ParentTenantPricePerUser,
		TrialDays:                req.TrialDays,
		Override:                 req.Override,
		EffectiveAt:              req.EffectiveAt,
	})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to create billing schedule", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, entry)
}

func (h *BillingHandler) HandleGetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	schedule, err := h.BillingService.GetSchedule(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to load billing schedule", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}
	if schedule.Current == nil {
		schedule.Current = []domain.BillingSchedule{}
	}
	if schedule.Future == nil {
		schedule.Future = []domain.BillingSchedule{}
	}

	httpx.WriteJSON(w, http.StatusOK, schedule)
}

type schedulePatchRequest struct {
	FeatureID                *string    `json:"feature_id"`
	StandalonePricePerUser   *float64   `json:"standalone_price_per_user"`
	ParentTenantPricePerUser *float64   `json:"parent_tenant_price_per_user"`
	TrialDays                *int       `json:"trial_days"`
	Override                 *string    `json:"override"`
	EffectiveAt              *time.Time `json:"effective_at"`
}

func (h *BillingHandler) HandleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req schedulePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apix.NewValidation("invalid request body").WriteError(w)
		return
	}

	err := h.BillingService.UpdateSchedule(ctx, r.PathValue("id"), domain.BillingSchedulePatch{
		FeatureID:                req.FeatureID,
		StandalonePricePerUser:   req.StandalonePricePerUser,
		ParentTenantPricePerUser: req.ParentTenantPricePerUser,
		TrialDays:                req.TrialDays,
		Override:                 req.Override,
		EffectiveAt:              req.EffectiveAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			apix.ErrNotFound.WriteError(w)
		case errors.Is(err, service.ErrEmptyUpdate):
			apix.NewValidation(err.Error()).WriteError(w)
		default:
			slogx.FromContext(ctx).Error("failed to update billing schedule", slog.Any("error", err))
			apix.ErrInternal.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type overrideRequest struct {
	TenantID                 string     `json:"tenant_id"`
	FeatureID                string     `json:"feature_id"`
	StandalonePricePerUser   *float64   `json:"standalone_price_per_user"`
	ParentTenantPricePerUser *float64   `json:"parent_tenant_price_per_user"`
	TrialDays                *int       `json:"trial_days"`
	EffectiveAt              *time.Time `json:"effective_at"`
}

func (h *BillingHandler) HandleCreateOverride(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req overrideRequest
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

	override, err := h.BillingService.CreateOverride(ctx, service.CreateOverrideParams{
		TenantID:                 req.TenantID,
		FeatureID:                req.FeatureID,
		StandalonePricePerUser:   req.StandalonePricePerUser,
		ParentTenantPricePerUser: req.ParentTenantPricePerUser,
		TrialDays:                req.TrialDays,
		EffectiveAt:              req.EffectiveAt,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apix.ErrNotFound.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("failed to create pricing override", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, override)
}

func (h *BillingHandler) HandleListOverrides(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	overrides, err := h.BillingService.ListOverrides(ctx, r.URL.Query().Get("tenant_id"))
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list pricing overrides", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}
	if overrides == nil {
		overrides = []domain.PricingOverride{}
	}

	httpx.WriteJSON(w, http.StatusOK, overrides)
}

func (h *BillingHandler) HandleDeleteOverride(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.BillingService.DeleteOverride(ctx, r.PathValue("id")); err != nil {
		slogx.FromContext(ctx).Error("failed to delete pricing override", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
