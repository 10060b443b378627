package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/store"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, username, email, password_hash, role, first_name,
	last_name, phone, address, dob, last_login, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, role,
			first_name, last_name, phone, address, dob, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, mapStringNull(u.Email), u.PasswordHash, string(u.Role),
		mapStringNull(u.FirstName), mapStringNull(u.LastName), mapStringNull(u.Phone),
		mapStringNull(u.Address), mapStringNull(u.DOB), now, now,
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUserRows(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID string, p domain.ProfileUpdate) error {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 9)

	appendSet := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	appendSet("username", p.Username)
	appendSet("email", p.Email)
	appendSet("role", p.Role)
	appendSet("first_name", p.FirstName)
	appendSet("last_name", p.LastName)
	appendSet("phone", p.Phone)
	appendSet("address", p.Address)
	appendSet("dob", p.DOB)

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), userID)

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return store.ErrAlreadyExists
		}
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

func (r *usersRepo) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login = ? WHERE id = ?`, at.UTC(), userID)
	return err
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row *sql.Row) (domain.User, error) {
	u, err := scanUserFrom(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func scanUserRows(rows *sql.Rows) (domain.User, error) {
	return scanUserFrom(rows)
}

func scanUserFrom(s rowScanner) (domain.User, error) {
	var (
		u         domain.User
		role      string
		email     sql.NullString
		firstName sql.NullString
		lastName  sql.NullString
		phone     sql.NullString
		address   sql.NullString
		dob       sql.NullString
		lastLogin sql.NullTime
	)

	err := s.Scan(
		&u.ID, &u.Username, &email, &u.PasswordHash, &role,
		&firstName, &lastName, &phone, &address, &dob, &lastLogin,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.Email = mapNullString(email)
	u.Role = domain.ParseRole(role)
	u.FirstName = mapNullString(firstName)
	u.LastName = mapNullString(lastName)
	u.Phone = mapNullString(phone)
	u.Address = mapNullString(address)
	u.DOB = mapNullString(dob)
	u.LastLogin = mapNullTimePtr(lastLogin)
	return u, nil
}
