package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
)

type temperatureLogsRepo struct {
	db dbtx
}

const tempLogColumns = `id, tenant_id, temperature, unit, location,
	safe_min, safe_max, is_safe, notes, logged_at, created_at`

func (r *temperatureLogsRepo) CreateTemperatureLog(ctx context.Context, l domain.TemperatureLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO temperature_logs (id, tenant_id, temperature, unit,
			location, safe_min, safe_max, is_safe, notes, logged_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.TenantID, l.Temperature, l.Unit, mapStringNull(l.Location),
		mapOptionalFloat(l.SafeMin), mapOptionalFloat(l.SafeMax), l.IsSafe,
		mapStringNull(l.Notes), mapOptionalTime(l.LoggedAt), time.Now().UTC(),
	)
	return err
}

func (r *temperatureLogsRepo) GetTemperatureLogByID(ctx context.Context, id string) (domain.TemperatureLog, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tempLogColumns+` FROM temperature_logs WHERE id = ?`, id)

	l, err := scanTemperatureLog(row)
	if err != nil {
		return domain.TemperatureLog{}, mapNotFound(err)
	}
	return l, nil
}

func (r *temperatureLogsRepo) ListTemperatureLogs(ctx context.Context, f domain.TemperatureLogFilter) ([]domain.TemperatureLog, error) {
	query := `SELECT ` + tempLogColumns + ` FROM temperature_logs WHERE 1 = 1`
	args := []any{}

	if f.TenantID != "" {
		query += ` AND tenant_id = ?`
		args = append(args, f.TenantID)
	}
	if f.Start != nil {
		query += ` AND logged_at >= ?`
		args = append(args, f.Start.UTC())
	}
	if f.End != nil {
		query += ` AND logged_at <= ?`
		args = append(args, f.End.UTC())
	}
	query += ` ORDER BY logged_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.TemperatureLog
	for rows.Next() {
		l, err := scanTemperatureLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *temperatureLogsRepo) DeleteTemperatureLog(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM temperature_logs WHERE id = ?`, id)
	return err
}

func scanTemperatureLog(s rowScanner) (domain.TemperatureLog, error) {
	var (
		l        domain.TemperatureLog
		location sql.NullString
		safeMin  sql.NullFloat64
		safeMax  sql.NullFloat64
		notes    sql.NullString
		loggedAt sql.NullTime
	)

	err := s.Scan(&l.ID, &l.TenantID, &l.Temperature, &l.Unit, &location,
		&safeMin, &safeMax, &l.IsSafe, &notes, &loggedAt, &l.CreatedAt)
	if err != nil {
		return domain.TemperatureLog{}, err
	}

	l.Location = mapNullString(location)
	l.SafeMin = mapNullFloatPtr(safeMin)
	l.SafeMax = mapNullFloatPtr(safeMax)
	l.Notes = mapNullString(notes)
	l.LoggedAt = mapNullTimePtr(loggedAt)
	return l, nil
}
