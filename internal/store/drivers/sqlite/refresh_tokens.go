package sqlite

import (
	"context"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)`,
		t.Token, t.UserID, t.ExpiresAt.UTC(), time.Now().UTC(),
	)
	return err
}

func (r *refreshTokensRepo) GetRefreshToken(ctx context.Context, token string) (domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.QueryRowContext(ctx, `
		SELECT token, user_id, expires_at, created_at
		FROM refresh_tokens WHERE token = ?`, token,
	).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *refreshTokensRepo) DeleteRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE token = ?`, token)
	return err
}
