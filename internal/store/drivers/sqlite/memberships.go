package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/store"
)

type membershipsRepo struct {
	db dbtx
}

func (r *membershipsRepo) GetMembership(ctx context.Context, userID, tenantID string) (domain.Membership, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, tenant_id, role, created_at
		FROM user_tenants WHERE user_id = ? AND tenant_id = ?`,
		userID, tenantID)

	m, err := scanMembership(row)
	if err != nil {
		return domain.Membership{}, mapNotFound(err)
	}
	return m, nil
}

func (r *membershipsRepo) CreateMembership(ctx context.Context, m domain.Membership) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_tenants (user_id, tenant_id, role, created_at)
		VALUES (?, ?, ?, ?)`,
		m.UserID, m.TenantID, mapStringNull(m.Role), time.Now().UTC(),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *membershipsRepo) DeleteMembership(ctx context.Context, userID, tenantID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_tenants WHERE user_id = ? AND tenant_id = ?`,
		userID, tenantID)
	return err
}

func (r *membershipsRepo) ListUserMemberships(ctx context.Context, userID string) ([]domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, tenant_id, role, created_at
		FROM user_tenants WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func scanMembership(s rowScanner) (domain.Membership, error) {
	var (
		m    domain.Membership
		role sql.NullString
	)
	if err := s.Scan(&m.UserID, &m.TenantID, &role, &m.CreatedAt); err != nil {
		return domain.Membership{}, err
	}
	m.Role = mapNullString(role)
	return m, nil
}
