package store

import (
	"context"
	"errors"
	"time"

	"github.com/chefpilot/chefpilot-api/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// postgres later) implement this. It exposes sub-repositories to keep
// concerns tidy and testable.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	Tenants() Tenants
	Memberships() Memberships
	Tasks() Tasks
	TemperatureLogs() TemperatureLogs
	Features() Features
	TenantFeatures() TenantFeatures
	BillingSchedules() BillingSchedules
	PricingOverrides() PricingOverrides
	UserAudit() UserAudit

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction; fn returning an error rolls
	// back, nil commits. Prefer this over Tx for multi-step operations.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login; exact match only.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id provided by the app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// ListUsers returns all users ordered by username.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// UpdateProfile applies a partial update and bumps updated_at.
	// Returns ErrNotFound if the user does not exist.
	UpdateProfile(ctx context.Context, userID string, p domain.ProfileUpdate) error

	// UpdateLastLogin records a successful login. Best-effort from the
	// caller's perspective; failures must not fail the login.
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error

	// DeleteUser cascades to refresh_tokens and memberships (per schema).
	DeleteUser(ctx context.Context, userID string) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token row.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshToken returns the row for an opaque token value.
	GetRefreshToken(ctx context.Context, token string) (domain.RefreshToken, error)

	// DeleteRefreshToken removes the row. Deleting an unknown token is a
	// no-op, not an error.
	DeleteRefreshToken(ctx context.Context, token string) error
}

type Tenants interface {
	CreateTenant(ctx context.Context, t domain.Tenant) error
	GetTenantByID(ctx context.Context, id string) (domain.Tenant, error)

	// GetTenantByPIN locates a prospective parent during the association
	// handshake.
	GetTenantByPIN(ctx context.Context, pin string) (domain.Tenant, error)

	ListTenants(ctx context.Context) ([]domain.Tenant, error)
	UpdateTenant(ctx context.Context, t domain.Tenant) error
	DeleteTenant(ctx context.Context, id string) error

	// SetTenantParent links a tenant under a parent and bumps updated_at.
	SetTenantParent(ctx context.Context, tenantID, parentID string) error
}

type Memberships interface {
	// GetMembership returns the membership row for (user, tenant).
	GetMembership(ctx context.Context, userID, tenantID string) (domain.Membership, error)

	CreateMembership(ctx context.Context, m domain.Membership) error
	DeleteMembership(ctx context.Context, userID, tenantID string) error

	// ListUserMemberships returns every tenant the user belongs to.
	ListUserMemberships(ctx context.Context, userID string) ([]domain.Membership, error)
}

type Tasks interface {
	CreateTask(ctx context.Context, t domain.Task) error
	GetTaskByID(ctx context.Context, id string) (domain.Task, error)
	ListTasks(ctx context.Context, f domain.TaskFilter) ([]domain.Task, error)
	UpdateTask(ctx context.Context, t domain.Task) error
	DeleteTask(ctx context.Context, id string) error
}

type TemperatureLogs interface {
	CreateTemperatureLog(ctx context.Context, l domain.TemperatureLog) error
	GetTemperatureLogByID(ctx context.Context, id string) (domain.TemperatureLog, error)
	ListTemperatureLogs(ctx context.Context, f domain.TemperatureLogFilter) ([]domain.TemperatureLog, error)
	DeleteTemperatureLog(ctx context.Context, id string) error
}

type Features interface {
	CreateFeature(ctx context.Context, f domain.Feature) error
	GetFeatureByID(ctx context.Context, id string) (domain.Feature, error)
	ListFeatures(ctx context.Context) ([]domain.Feature, error)
	UpdateFeature(ctx context.Context, f domain.Feature) error
	DeleteFeature(ctx context.Context, id string) error
}

type TenantFeatures interface {
	// ApplyFeature upserts the (tenant, feature) pair with the applied time.
	ApplyFeature(ctx context.Context, tenantID, featureID string, at time.Time) error

	RemoveFeature(ctx context.Context, tenantID, featureID string) error

	// ListTenantFeatures returns the features applied to a tenant, joined
	// with feature metadata.
	ListTenantFeatures(ctx context.Context, tenantID string) ([]domain.TenantFeature, error)
}

type BillingSchedules interface {
	CreateSchedule(ctx context.Context, s domain.BillingSchedule) error

	// ListEffective returns entries effective at or before now, newest first.
	ListEffective(ctx context.Context, now time.Time) ([]domain.BillingSchedule, error)

	// ListFuture returns entries that take effect after now, soonest first.
	ListFuture(ctx context.Context, now time.Time) ([]domain.BillingSchedule, error)

	// UpdateSchedule applies a partial update; ErrNotFound if absent.
	UpdateSchedule(ctx context.Context, id string, p domain.BillingSchedulePatch) error
}

type PricingOverrides interface {
	CreateOverride(ctx context.Context, o domain.PricingOverride) error
	ListOverrides(ctx context.Context, tenantID string) ([]domain.PricingOverride, error)
	DeleteOverride(ctx context.Context, id string) error
}

type UserAudit interface {
	// RecordChange appends one audit entry. Callers treat failures as
	// non-fatal; the profile update itself has already committed.
	RecordChange(ctx context.Context, a domain.UserAudit) error

	// ListUserAudit returns the newest entries for a user, up to limit.
	ListUserAudit(ctx context.Context, userID string, limit int) ([]domain.UserAudit, error)
}
