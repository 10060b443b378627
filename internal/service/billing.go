package service

import (
	"context"
	"errors"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/store"
	"github.com/chefpilot/chefpilot-api/pkg/idx"
)

var ErrFeatureIDRequired = errors.New("feature_id is required")

// BillingService manages the pricing schedule and per-tenant overrides.
type BillingService struct {
	Store store.Store
}

type CreateScheduleParams struct {
	FeatureID                string
	StandalonePricePerUser   *float64
	ParentTenantPricePerUser *float64
	TrialDays                int
	Override                 string
	EffectiveAt              *time.Time
}

// CreateSchedule adds a pricing entry. An absent effective time means the
// entry takes effect immediately.
func (s *BillingService) CreateSchedule(ctx context.Context, p CreateScheduleParams) (domain.BillingSchedule, error) {
	if p.FeatureID == "" {
		return domain.BillingSchedule{}, ErrFeatureIDRequired
	}

	effectiveAt := time.Now().UTC()
	if p.EffectiveAt != nil {
		effectiveAt = p.EffectiveAt.UTC()
	}

	entry := domain.BillingSchedule{
		ID:                       idx.New().String(),
		FeatureID:                p.FeatureID,
		StandalonePricePerUser:   p.StandalonePricePerUser,
		ParentTenantPricePerUser: p.ParentTenantPricePerUser,
		TrialDays:                p.TrialDays,
		Override:                 p.Override,
		EffectiveAt:              effectiveAt,
	}
	if err := s.Store.BillingSchedules().CreateSchedule(ctx, entry); err != nil {
		return domain.BillingSchedule{}, err
	}
	return entry, nil
}

// Schedule is the price book split into the entries in force now and the
// scheduled future changes.
type Schedule struct {
	Current []domain.BillingSchedule `json:"current"`
	Future  []domain.BillingSchedule `json:"future"`
}

func (s *BillingService) GetSchedule(ctx context.Context) (Schedule, error) {
	now := time.Now().UTC()

	current, err := s.Store.BillingSchedules().ListEffective(ctx, now)
	if err != nil {
		return Schedule{}, err
	}
	future, err := s.Store.BillingSchedules().ListFuture(ctx, now)
	if err != nil {
		return Schedule{}, err
	}
	return Schedule{Current: current, Future: future}, nil
}

func (s *BillingService) UpdateSchedule(ctx context.Context, id string, p domain.BillingSchedulePatch) error {
	if p.IsEmpty() {
		return ErrEmptyUpdate
	}
	return s.Store.BillingSchedules().UpdateSchedule(ctx, id, p)
}

type CreateOverrideParams struct {
	TenantID                 string
	FeatureID                string
	StandalonePricePerUser   *float64
	ParentTenantPricePerUser *float64
	TrialDays                *int
	EffectiveAt              *time.Time
}

// CreateOverride adds a per-tenant price exception. The tenant must exist.
func (s *BillingService) CreateOverride(ctx context.Context, p CreateOverrideParams) (domain.PricingOverride, error) {
	if p.FeatureID == "" {
		return domain.PricingOverride{}, ErrFeatureIDRequired
	}
	if _, err := s.Store.Tenants().GetTenantByID(ctx, p.TenantID); err != nil {
		return domain.PricingOverride{}, err
	}

	o := domain.PricingOverride{
		ID:                       idx.New().String(),
		TenantID:                 p.TenantID,
		FeatureID:                p.FeatureID,
		StandalonePricePerUser:   p.StandalonePricePerUser,
		ParentTenantPricePerUser: p.ParentTenantPricePerUser,
		TrialDays:                p.TrialDays,
		EffectiveAt:              p.EffectiveAt,
	}
	if err := s.Store.PricingOverrides().CreateOverride(ctx, o); err != nil {
		return domain.PricingOverride{}, err
	}
	return o, nil
}

func (s *BillingService) ListOverrides(ctx context.Context, tenantID string) ([]domain.PricingOverride, error) {
	return s.Store.PricingOverrides().ListOverrides(ctx, tenantID)
}

func (s *BillingService) DeleteOverride(ctx context.Context, id string) error {
	return s.Store.PricingOverrides().DeleteOverride(ctx, id)
}
