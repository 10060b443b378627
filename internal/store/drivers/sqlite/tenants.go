package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/store"
)

type tenantsRepo struct {
	db dbtx
}

const tenantColumns = `id, name, type, parent_id, pin, user_limit,
	restaurant_type, created_at, updated_at`

func (r *tenantsRepo) CreateTenant(ctx context.Context, t domain.Tenant) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tenants (id, name, type, parent_id, pin, user_limit,
			restaurant_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, mapStringNull(t.Type), mapOptionalString(t.ParentID),
		mapOptionalString(t.PIN), t.UserLimit, mapStringNull(t.RestaurantType),
		now, now,
	)
	return err
}

func (r *tenantsRepo) GetTenantByID(ctx context.Context, id string) (domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id)
	return scanTenant(row)
}

func (r *tenantsRepo) GetTenantByPIN(ctx context.Context, pin string) (domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE pin = ?`, pin)
	return scanTenant(row)
}

func (r *tenantsRepo) ListTenants(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		t, err := scanTenantFrom(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (r *tenantsRepo) UpdateTenant(ctx context.Context, t domain.Tenant) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tenants SET name = ?, type = ?, parent_id = ?, pin = ?,
			user_limit = ?, restaurant_type = ?, updated_at = ?
		WHERE id = ?`,
		t.Name, mapStringNull(t.Type), mapOptionalString(t.ParentID),
		mapOptionalString(t.PIN), t.UserLimit, mapStringNull(t.RestaurantType),
		time.Now().UTC(), t.ID,
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

func (r *tenantsRepo) DeleteTenant(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = ?`, id)
	return err
}

func (r *tenantsRepo) SetTenantParent(ctx context.Context, tenantID, parentID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tenants SET parent_id = ?, updated_at = ? WHERE id = ?`,
		parentID, time.Now().UTC(), tenantID,
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

func scanTenant(row *sql.Row) (domain.Tenant, error) {
	t, err := scanTenantFrom(row)
	if err != nil {
		return domain.Tenant{}, mapNotFound(err)
	}
	return t, nil
}

func scanTenantFrom(s rowScanner) (domain.Tenant, error) {
	var (
		t              domain.Tenant
		typ            sql.NullString
		parentID       sql.NullString
		pin            sql.NullString
		restaurantType sql.NullString
	)

	err := s.Scan(&t.ID, &t.Name, &typ, &parentID, &pin, &t.UserLimit,
		&restaurantType, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Tenant{}, err
	}

	t.Type = mapNullString(typ)
	t.ParentID = mapNullStringPtr(parentID)
	t.PIN = mapNullStringPtr(pin)
	t.RestaurantType = mapNullString(restaurantType)
	return t, nil
}
