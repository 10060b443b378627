package domain

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt encoded
	Role         Role
	FirstName    string
	LastName     string
	Phone        string
	Address      string
	DOB          string // YYYY-MM-DD
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfileUpdate is a partial user update. Nil fields are left untouched.
type ProfileUpdate struct {
	Username  *string
	Email     *string
	Role      *string
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *string
	DOB       *string
}

// IsEmpty reports whether the update changes nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Username == nil && p.Email == nil && p.Role == nil &&
		p.FirstName == nil && p.LastName == nil && p.Phone == nil &&
		p.Address == nil && p.DOB == nil
}
