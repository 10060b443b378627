package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/store"
)

type featuresRepo struct {
	db dbtx
}

func (r *featuresRepo) CreateFeature(ctx context.Context, f domain.Feature) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO features (id, name, description, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, f.Name, mapStringNull(f.Description), f.Enabled, now, now,
	)
	return err
}

func (r *featuresRepo) GetFeatureByID(ctx context.Context, id string) (domain.Feature, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, enabled, created_at, updated_at
		FROM features WHERE id = ?`, id)

	f, err := scanFeature(row)
	if err != nil {
		return domain.Feature{}, mapNotFound(err)
	}
	return f, nil
}

func (r *featuresRepo) ListFeatures(ctx context.Context) ([]domain.Feature, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, enabled, created_at, updated_at
		FROM features ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var features []domain.Feature
	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, rows.Err()
}

func (r *featuresRepo) UpdateFeature(ctx context.Context, f domain.Feature) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE features SET name = ?, description = ?, enabled = ?, updated_at = ?
		WHERE id = ?`,
		f.Name, mapStringNull(f.Description), f.Enabled, time.Now().UTC(), f.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *featuresRepo) DeleteFeature(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM features WHERE id = ?`, id)
	return err
}

func scanFeature(s rowScanner) (domain.Feature, error) {
	var (
		f           domain.Feature
		description sql.NullString
	)
	err := s.Scan(&f.ID, &f.Name, &description, &f.Enabled,
		&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return domain.Feature{}, err
	}
	f.Description = mapNullString(description)
	return f, nil
}
