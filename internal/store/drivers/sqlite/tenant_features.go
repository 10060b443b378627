package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
)

type tenantFeaturesRepo struct {
	db dbtx
}

func (r *tenantFeaturesRepo) ApplyFeature(ctx context.Context, tenantID, featureID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tenant_features (tenant_id, feature_id, applied_at)
		VALUES (?, ?, ?)
		ON CONFLICT (tenant_id, feature_id) DO UPDATE SET applied_at = excluded.applied_at`,
		tenantID, featureID, at.UTC(),
	)
	return err
}

func (r *tenantFeaturesRepo) RemoveFeature(ctx context.Context, tenantID, featureID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM tenant_features WHERE tenant_id = ? AND feature_id = ?`,
		tenantID, featureID)
	return err
}

func (r *tenantFeaturesRepo) ListTenantFeatures(ctx context.Context, tenantID string) ([]domain.TenantFeature, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT tf.tenant_id, tf.feature_id, f.name, f.description, f.enabled, tf.applied_at
		FROM tenant_features tf
		JOIN features f ON f.id = tf.feature_id
		WHERE tf.tenant_id = ?
		ORDER BY f.name`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var features []domain.TenantFeature
	for rows.Next() {
		var (
			tf          domain.TenantFeature
			description sql.NullString
		)
		err := rows.Scan(&tf.TenantID, &tf.FeatureID, &tf.Name, &description,
			&tf.Enabled, &tf.AppliedAt)
		if err != nil {
			return nil, err
		}
		tf.Description = mapNullString(description)
		features = append(features, tf)
	}
	return features, rows.Err()
}
