package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/store"
	"github.com/chefpilot/chefpilot-api/pkg/idx"
)

var ErrNameRequired = errors.New("name is required")

// FeatureService manages the feature flag catalog and per-tenant application.
type FeatureService struct {
	Store store.Store
}

func (s *FeatureService) CreateFeature(ctx context.Context, name, description string, enabled bool) (domain.Feature, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Feature{}, ErrNameRequired
	}

	f := domain.Feature{
		ID:          idx.New().String(),
		Name:        strings.TrimSpace(name),
		Description: description,
		Enabled:     enabled,
	}
	if err := s.Store.Features().CreateFeature(ctx, f); err != nil {
		return domain.Feature{}, err
	}
	return s.Store.Features().GetFeatureByID(ctx, f.ID)
}

func (s *FeatureService) GetFeature(ctx context.Context, id string) (domain.Feature, error) {
	return s.Store.Features().GetFeatureByID(ctx, id)
}

func (s *FeatureService) ListFeatures(ctx context.Context) ([]domain.Feature, error) {
	return s.Store.Features().ListFeatures(ctx)
}

func (s *FeatureService) UpdateFeature(ctx context.Context, f domain.Feature) (domain.Feature, error) {
	if strings.TrimSpace(f.Name) == "" {
		return domain.Feature{}, ErrNameRequired
	}
	if err := s.Store.Features().UpdateFeature(ctx, f); err != nil {
		return domain.Feature{}, err
	}
	return s.Store.Features().GetFeatureByID(ctx, f.ID)
}

func (s *FeatureService) DeleteFeature(ctx context.Context, id string) error {
	return s.Store.Features().DeleteFeature(ctx, id)
}

// ApplyFeature attaches a feature to a tenant. Both rows must exist; applying
// an already-applied feature refreshes its applied time.
func (s *FeatureService) ApplyFeature(ctx context.Context, tenantID, featureID string) error {
	if _, err := s.Store.Tenants().GetTenantByID(ctx, tenantID); err != nil {
		return err
	}
	if _, err := s.Store.Features().GetFeatureByID(ctx, featureID); err != nil {
		return err
	}
	return s.Store.TenantFeatures().ApplyFeature(ctx, tenantID, featureID, time.Now().UTC())
}

func (s *FeatureService) RemoveFeature(ctx context.Context, tenantID, featureID string) error {
	return s.Store.TenantFeatures().RemoveFeature(ctx, tenantID, featureID)
}

func (s *FeatureService) ListTenantFeatures(ctx context.Context, tenantID string) ([]domain.TenantFeature, error) {
	if _, err := s.Store.Tenants().GetTenantByID(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.Store.TenantFeatures().ListTenantFeatures(ctx, tenantID)
}
