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

// TemperatureLogHandler serves tenant-scoped temperature readings.
type TemperatureLogHandler struct {
	TemperatureLogService *service.TemperatureLogService
}

type temperatureLogRequest struct {
	TenantID    string     `json:"tenant_id"`
	Temperature *float64   `json:"temperature"`
	Unit        string     `json:"unit"`
	Location    string     `json:"location"`
	SafeMin     *float64   `json:"safe_min"`
	SafeMax     *float64   `json:"safe_max"`
	Notes       string     `json:"notes"`
	LoggedAt    *time.Time `json:"logged_at"`
}

func (h *TemperatureLogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req temperatureLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apix.NewMissingFields([]string{"tenant_id", "temperature"}).WriteError(w)
		return
	}

	missing := requireFields(map[string]string{"tenant_id": req.TenantID})
	if req.Temperature == nil {
		missing = append(missing, "temperature")
	}
	if len(missing) > 0 {
		apix.NewMissingFields(missing).WriteError(w)
		return
	}

	log, err := h.TemperatureLogService.CreateTemperatureLog(ctx, req.TenantID,
		service.CreateTemperatureLogParams{
			Temperature: *req.Temperature,
			Unit:        req.Unit,
			Location:    req.Location,
			SafeMin:     req.SafeMin,
			SafeMax:     req.SafeMax,
			Notes:       req.Notes,
			LoggedAt:    req.LoggedAt,
		})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to create temperature log", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, log)
}

func (h *TemperatureLogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := domain.TemperatureLogFilter{TenantID: q.Get("tenant_id")}
	if v := q.Get("start"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.Start = &t
		}
	}
	if v := q.Get("end"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.End = &t
		}
	}

	logs, err := h.TemperatureLogService.ListTemperatureLogs(ctx, filter)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list temperature logs", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}
	if logs == nil {
		logs = []domain.TemperatureLog{}
	}

	httpx.WriteJSON(w, http.StatusOK, logs)
}

func (h *TemperatureLogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	log, err := h.TemperatureLogService.GetTemperatureLog(ctx,
		r.URL.Query().Get("tenant_id"), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apix.ErrNotFound.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("failed to load temperature log", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, log)
}

func (h *TemperatureLogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := h.TemperatureLogService.DeleteTemperatureLog(ctx,
		r.URL.Query().Get("tenant_id"), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apix.ErrNotFound.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("failed to delete temperature log", slog.Any("error", err))
		apix.ErrInternal.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
