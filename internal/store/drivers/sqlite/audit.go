package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
)

type userAuditRepo struct {
	db dbtx
}

func (r *userAuditRepo) RecordChange(ctx context.Context, a domain.UserAudit) error {
	changes, err := json.Marshal(a.Changes)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO user_audit (user_id, changed_by, changes_json, created_at)
		VALUES (?, ?, ?, ?)`,
		a.UserID, mapStringNull(a.ChangedBy), string(changes), time.Now().UTC(),
	)
	return err
}

func (r *userAuditRepo) ListUserAudit(ctx context.Context, userID string, limit int) ([]domain.UserAudit, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, changed_by, changes_json, created_at
		FROM user_audit WHERE user_id = ?
		ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.UserAudit
	for rows.Next() {
		var (
			a         domain.UserAudit
			changedBy sql.NullString
			changes   string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &changedBy, &changes, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.ChangedBy = mapNullString(changedBy)
		if err := json.Unmarshal([]byte(changes), &a.Changes); err != nil {
			return nil, err
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}
