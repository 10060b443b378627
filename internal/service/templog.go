package service

import (
	"context"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/store"
	"github.com/chefpilot/chefpilot-api/pkg/idx"
)

// TemperatureLogService records food-safety temperature readings per tenant.
type TemperatureLogService struct {
	Store store.Store
}

type CreateTemperatureLogParams struct {
	Temperature float64
	Unit        string
	Location    string
	SafeMin     *float64
	SafeMax     *float64
	Notes       string
	LoggedAt    *time.Time
}

// CreateTemperatureLog derives is_safe from the safe range server-side; the
// client never supplies it. A reading with no bounds is considered safe.
func (s *TemperatureLogService) CreateTemperatureLog(ctx context.Context, tenantID string, p CreateTemperatureLogParams) (domain.TemperatureLog, error) {
	unit := p.Unit
	if unit == "" {
		unit = "F"
	}

	l := domain.TemperatureLog{
		ID:          idx.New().String(),
		TenantID:    tenantID,
		Temperature: p.Temperature,
		Unit:        unit,
		Location:    p.Location,
		SafeMin:     p.SafeMin,
		SafeMax:     p.SafeMax,
		IsSafe:      isSafeReading(p.Temperature, p.SafeMin, p.SafeMax),
		Notes:       p.Notes,
		LoggedAt:    p.LoggedAt,
	}

	if err := s.Store.TemperatureLogs().CreateTemperatureLog(ctx, l); err != nil {
		return domain.TemperatureLog{}, err
	}
	return s.Store.TemperatureLogs().GetTemperatureLogByID(ctx, l.ID)
}

// GetTemperatureLog returns a reading only if it belongs to the given tenant.
// An empty tenantID means unscoped access; only the global-owner bypass path
// reaches here without one.
func (s *TemperatureLogService) GetTemperatureLog(ctx context.Context, tenantID, id string) (domain.TemperatureLog, error) {
	l, err := s.Store.TemperatureLogs().GetTemperatureLogByID(ctx, id)
	if err != nil {
		return domain.TemperatureLog{}, err
	}
	if tenantID != "" && l.TenantID != tenantID {
		return domain.TemperatureLog{}, store.ErrNotFound
	}
	return l, nil
}

func (s *TemperatureLogService) ListTemperatureLogs(ctx context.Context, f domain.TemperatureLogFilter) ([]domain.TemperatureLog, error) {
	return s.Store.TemperatureLogs().ListTemperatureLogs(ctx, f)
}

func (s *TemperatureLogService) DeleteTemperatureLog(ctx context.Context, tenantID, id string) error {
	if _, err := s.GetTemperatureLog(ctx, tenantID, id); err != nil {
		return err
	}
	return s.Store.TemperatureLogs().DeleteTemperatureLog(ctx, id)
}

func isSafeReading(temp float64, min, max *float64) bool {
	if min != nil && temp < *min {
		return false
	}
	if max != nil && temp > *max {
		return false
	}
	return true
}
