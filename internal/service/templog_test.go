package service

import (
	"context"
	"testing"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/store"
	"github.com/chefpilot/chefpilot-api/internal/store/drivers/sqlite"
	"github.com/chefpilot/chefpilot-api/pkg/idx"

	"github.com/stretchr/testify/require"
)

func newTemperatureLogService(t *testing.T) (*TemperatureLogService, domain.Tenant) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	tenant := domain.Tenant{ID: idx.New().String(), Name: "Cafe"}
	require.NoError(t, st.Tenants().CreateTenant(context.Background(), tenant))

	return &TemperatureLogService{Store: st}, tenant
}

func floatPtr(f float64) *float64 { return &f }

func TestTemperatureLogSafety(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, tenant := newTemperatureLogService(t)

	cases := map[string]struct {
		temp     float64
		min, max *float64
		safe     bool
	}{
		"within range":          {37, floatPtr(33), floatPtr(41), true},
		"below minimum":         {30, floatPtr(33), floatPtr(41), false},
		"above maximum":         {45, floatPtr(33), floatPtr(41), false},
		"on the lower boundary": {33, floatPtr(33), floatPtr(41), true},
		"on the upper boundary": {41, floatPtr(33), floatPtr(41), true},
		"no bounds":             {200, nil, nil, true},
		"minimum only":          {10, floatPtr(33), nil, false},
		"maximum only":          {10, nil, floatPtr(41), true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			log, err := svc.CreateTemperatureLog(ctx, tenant.ID, CreateTemperatureLogParams{
				Temperature: tc.temp,
				SafeMin:     tc.min,
				SafeMax:     tc.max,
			})
			require.NoError(t, err)
			require.Equal(t, tc.safe, log.IsSafe)
			require.Equal(t, "F", log.Unit)
		})
	}
}

func TestTemperatureLogTenantScoping(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, tenant := newTemperatureLogService(t)

	other := domain.Tenant{ID: idx.New().String(), Name: "Other"}
	require.NoError(t, svc.Store.Tenants().CreateTenant(ctx, other))

	log, err := svc.CreateTemperatureLog(ctx, tenant.ID, CreateTemperatureLogParams{
		Temperature: 37,
		Unit:        "C",
	})
	require.NoError(t, err)
	require.Equal(t, "C", log.Unit)

	t.Run("owning tenant reads the log", func(t *testing.T) {
		got, err := svc.GetTemperatureLog(ctx, tenant.ID, log.ID)
		require.NoError(t, err)
		require.Equal(t, log.ID, got.ID)
	})

	t.Run("foreign tenant sees not found", func(t *testing.T) {
		_, err := svc.GetTemperatureLog(ctx, other.ID, log.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("unscoped read works for the bypass path", func(t *testing.T) {
		got, err := svc.GetTemperatureLog(ctx, "", log.ID)
		require.NoError(t, err)
		require.Equal(t, log.ID, got.ID)
	})

	t.Run("delete is scoped the same way", func(t *testing.T) {
		err := svc.DeleteTemperatureLog(ctx, other.ID, log.ID)
		require.ErrorIs(t, err, store.ErrNotFound)

		require.NoError(t, svc.DeleteTemperatureLog(ctx, tenant.ID, log.ID))

		_, err = svc.GetTemperatureLog(ctx, "", log.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
