package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/store"
	"github.com/chefpilot/chefpilot-api/pkg/cryptox"
	"github.com/chefpilot/chefpilot-api/pkg/idx"
	"github.com/chefpilot/chefpilot-api/pkg/slogx"
)

var (
	ErrUsernameTooShort = errors.New("username must be at least 3 characters")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrInvalidPhone     = errors.New("invalid phone format")
	ErrInvalidDOB       = errors.New("dob must be YYYY-MM-DD")
	ErrInvalidRole      = errors.New("unknown role")
	ErrEmptyUpdate      = errors.New("update changes nothing")
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[\d\s+\-()]{6,20}$`)
	dobRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// UserService manages user accounts and the field-level change audit trail.
type UserService struct {
	Store store.Store
}

type CreateUserParams struct {
	Username  string
	Password  string
	Email     string
	Role      string
	FirstName string
	LastName  string
	Phone     string
	Address   string
	DOB       string
}

// CreateUser hashes the password and inserts a new account. An empty or
// unknown role falls back to the default role.
func (s *UserService) CreateUser(ctx context.Context, p CreateUserParams) (domain.User, error) {
	p.Username = strings.TrimSpace(p.Username)
	if len(p.Username) < 3 {
		return domain.User{}, ErrUsernameTooShort
	}
	if p.Email != "" && !emailRe.MatchString(p.Email) {
		return domain.User{}, ErrInvalidEmail
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: hash,
		Role:         domain.ParseRole(p.Role),
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Phone:        p.Phone,
		Address:      p.Address,
		DOB:          p.DOB,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return s.Store.Users().GetUserByID(ctx, user.ID)
}

func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

// UpdateProfile validates and applies a partial update, then records the
// field-level diff in the audit sink. The audit write is best-effort: the
// profile change has already committed, so an audit failure is logged and
// swallowed.
func (s *UserService) UpdateProfile(ctx context.Context, userID, changedBy string, p domain.ProfileUpdate) (domain.User, error) {
	if p.IsEmpty() {
		return domain.User{}, ErrEmptyUpdate
	}
	if err := validateProfileUpdate(p); err != nil {
		return domain.User{}, err
	}

	before, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.Store.Users().UpdateProfile(ctx, userID, p); err != nil {
		return domain.User{}, err
	}

	after, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	changes := diffProfile(before, after)
	if len(changes) > 0 {
		err := s.Store.UserAudit().RecordChange(ctx, domain.UserAudit{
			UserID:    userID,
			ChangedBy: changedBy,
			Changes:   changes,
		})
		if err != nil {
			slogx.FromContext(ctx).Warn("failed to record user audit entry",
				slog.String("user_id", userID), slog.Any("error", err))
		}
	}

	return after, nil
}

func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	return s.Store.Users().DeleteUser(ctx, userID)
}

// ListAudit returns the newest audit entries for a user.
func (s *UserService) ListAudit(ctx context.Context, userID string, limit int) ([]domain.UserAudit, error) {
	return s.Store.UserAudit().ListUserAudit(ctx, userID, limit)
}

func validateProfileUpdate(p domain.ProfileUpdate) error {
	if p.Username != nil && len(strings.TrimSpace(*p.Username)) < 3 {
		return ErrUsernameTooShort
	}
	if p.Email != nil && *p.Email != "" && !emailRe.MatchString(*p.Email) {
		return ErrInvalidEmail
	}
	if p.Phone != nil && *p.Phone != "" && !phoneRe.MatchString(*p.Phone) {
		return ErrInvalidPhone
	}
	if p.DOB != nil && *p.DOB != "" && !dobRe.MatchString(*p.DOB) {
		return ErrInvalidDOB
	}
	if p.Role != nil && !domain.Role(*p.Role).Valid() {
		return ErrInvalidRole
	}
	return nil
}

func diffProfile(before, after domain.User) map[string]domain.FieldChange {
	changes := make(map[string]domain.FieldChange)
	add := func(field, from, to string) {
		if from != to {
			changes[field] = domain.FieldChange{From: from, To: to}
		}
	}
	add("username", before.Username, after.Username)
	add("email", before.Email, after.Email)
	add("role", before.Role.String(), after.Role.String())
	add("first_name", before.FirstName, after.FirstName)
	add("last_name", before.LastName, after.LastName)
	add("phone", before.Phone, after.Phone)
	add("address", before.Address, after.Address)
	add("dob", before.DOB, after.DOB)
	return changes
}
