package sqlite

import (
	"context"
	"database/sql"

	"github.com/chefpilot/chefpilot-api/internal/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // outer DB stays open; caller commits or rolls back

// Ping is a no-op inside a transaction; the connection is already live.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx starts

func (t *txStore) Users() store.Users                       { return &usersRepo{db: t.tx} }
func (t *txStore) RefreshTokens() store.RefreshTokens       { return &refreshTokensRepo{db: t.tx} }
func (t *txStore) Tenants() store.Tenants                   { return &tenantsRepo{db: t.tx} }
func (t *txStore) Memberships() store.Memberships           { return &membershipsRepo{db: t.tx} }
func (t *txStore) Tasks() store.Tasks                       { return &tasksRepo{db: t.tx} }
func (t *txStore) TemperatureLogs() store.TemperatureLogs   { return &temperatureLogsRepo{db: t.tx} }
func (t *txStore) Features() store.Features                 { return &featuresRepo{db: t.tx} }
func (t *txStore) TenantFeatures() store.TenantFeatures     { return &tenantFeaturesRepo{db: t.tx} }
func (t *txStore) BillingSchedules() store.BillingSchedules { return &billingSchedulesRepo{db: t.tx} }
func (t *txStore) PricingOverrides() store.PricingOverrides { return &pricingOverridesRepo{db: t.tx} }
func (t *txStore) UserAudit() store.UserAudit               { return &userAuditRepo{db: t.tx} }
