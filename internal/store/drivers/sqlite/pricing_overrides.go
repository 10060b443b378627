package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
)

type pricingOverridesRepo struct {
	db dbtx
}

func (r *pricingOverridesRepo) CreateOverride(ctx context.Context, o domain.PricingOverride) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pricing_overrides (id, tenant_id, feature_id,
			standalone_price_per_user, parent_tenant_price_per_user,
			trial_days, effective_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.TenantID, o.FeatureID,
		mapOptionalFloat(o.StandalonePricePerUser),
		mapOptionalFloat(o.ParentTenantPricePerUser),
		mapOptionalInt(o.TrialDays), mapOptionalTime(o.EffectiveAt),
		time.Now().UTC(),
	)
	return err
}

func (r *pricingOverridesRepo) ListOverrides(ctx context.Context, tenantID string) ([]domain.PricingOverride, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tenant_id, feature_id, standalone_price_per_user,
			parent_tenant_price_per_user, trial_days, effective_at, created_at
		FROM pricing_overrides WHERE tenant_id = ? ORDER BY created_at DESC`,
		tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []domain.PricingOverride
	for rows.Next() {
		var (
			o           domain.PricingOverride
			standalone  sql.NullFloat64
			parent      sql.NullFloat64
			trialDays   sql.NullInt64
			effectiveAt sql.NullTime
		)
		err := rows.Scan(&o.ID, &o.TenantID, &o.FeatureID, &standalone,
			&parent, &trialDays, &effectiveAt, &o.CreatedAt)
		if err != nil {
			return nil, err
		}
		o.StandalonePricePerUser = mapNullFloatPtr(standalone)
		o.ParentTenantPricePerUser = mapNullFloatPtr(parent)
		o.TrialDays = mapNullIntPtr(trialDays)
		o.EffectiveAt = mapNullTimePtr(effectiveAt)
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

func (r *pricingOverridesRepo) DeleteOverride(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pricing_overrides WHERE id = ?`, id)
	return err
}
