package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/store"
)

type billingSchedulesRepo struct {
	db dbtx
}

const billingColumns = `id, feature_id, standalone_price_per_user,
	parent_tenant_price_per_user, trial_days, override, effective_at, created_at`

func (r *billingSchedulesRepo) CreateSchedule(ctx context.Context, s domain.BillingSchedule) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO billing_schedule (id, feature_id, standalone_price_per_user,
			parent_tenant_price_per_user, trial_days, override, effective_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.FeatureID, mapOptionalFloat(s.StandalonePricePerUser),
		mapOptionalFloat(s.ParentTenantPricePerUser), s.TrialDays,
		mapStringNull(s.Override), s.EffectiveAt.UTC(), time.Now().UTC(),
	)
	return err
}

func (r *billingSchedulesRepo) ListEffective(ctx context.Context, now time.Time) ([]domain.BillingSchedule, error) {
	return r.list(ctx, `WHERE effective_at <= ? ORDER BY effective_at DESC`, now.UTC())
}

func (r *billingSchedulesRepo) ListFuture(ctx context.Context, now time.Time) ([]domain.BillingSchedule, error) {
	return r.list(ctx, `WHERE effective_at > ? ORDER BY effective_at ASC`, now.UTC())
}

func (r *billingSchedulesRepo) list(ctx context.Context, clause string, args ...any) ([]domain.BillingSchedule, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+billingColumns+` FROM billing_schedule `+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []domain.BillingSchedule
	for rows.Next() {
		s, err := scanBillingSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

func (r *billingSchedulesRepo) UpdateSchedule(ctx context.Context, id string, p domain.BillingSchedulePatch) error {
	if p.IsEmpty() {
		return nil
	}

	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)

	if p.FeatureID != nil {
		sets = append(sets, "feature_id = ?")
		args = append(args, *p.FeatureID)
	}
	if p.StandalonePricePerUser != nil {
		sets = append(sets, "standalone_price_per_user = ?")
		args = append(args, *p.StandalonePricePerUser)
	}
	if p.ParentTenantPricePerUser != nil {
		sets = append(sets, "parent_tenant_price_per_user = ?")
		args = append(args, *p.ParentTenantPricePerUser)
	}
	if p.TrialDays != nil {
		sets = append(sets, "trial_days = ?")
		args = append(args, *p.TrialDays)
	}
	if p.Override != nil {
		sets = append(sets, "override = ?")
		args = append(args, *p.Override)
	}
	if p.EffectiveAt != nil {
		sets = append(sets, "effective_at = ?")
		args = append(args, p.EffectiveAt.UTC())
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		`UPDATE billing_schedule SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
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

func scanBillingSchedule(s rowScanner) (domain.BillingSchedule, error) {
	var (
		b          domain.BillingSchedule
		standalone sql.NullFloat64
		parent     sql.NullFloat64
		override   sql.NullString
	)

	err := s.Scan(&b.ID, &b.FeatureID, &standalone, &parent, &b.TrialDays,
		&override, &b.EffectiveAt, &b.CreatedAt)
	if err != nil {
		return domain.BillingSchedule{}, err
	}

	b.StandalonePricePerUser = mapNullFloatPtr(standalone)
	b.ParentTenantPricePerUser = mapNullFloatPtr(parent)
	b.Override = mapNullString(override)
	return b, nil
}
