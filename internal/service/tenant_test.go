package service

import (
	"context"
	"testing"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/store"
	"github.com/chefpilot/chefpilot-api/internal/store/drivers/sqlite"

	"github.com/stretchr/testify/require"
)

func newTenantService(t *testing.T) *TenantService {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	return &TenantService{Store: st}
}

func TestTenantAssociateParent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTenantService(t)

	parent, err := svc.CreateTenant(ctx, CreateTenantParams{Name: "HQ", PIN: "424242"})
	require.NoError(t, err)
	child, err := svc.CreateTenant(ctx, CreateTenantParams{Name: "Branch"})
	require.NoError(t, err)

	t.Run("matching pin links the child under the parent", func(t *testing.T) {
		linked, err := svc.AssociateParent(ctx, child.ID, "424242")
		require.NoError(t, err)
		require.NotNil(t, linked.ParentID)
		require.Equal(t, parent.ID, *linked.ParentID)
	})

	t.Run("a second association conflicts", func(t *testing.T) {
		_, err := svc.AssociateParent(ctx, child.ID, "424242")
		require.ErrorIs(t, err, ErrAlreadyAssociated)
	})

	t.Run("unknown pin reads as parent not found", func(t *testing.T) {
		orphan, err := svc.CreateTenant(ctx, CreateTenantParams{Name: "Orphan"})
		require.NoError(t, err)

		_, err = svc.AssociateParent(ctx, orphan.ID, "000000")
		require.ErrorIs(t, err, ErrParentNotFound)

		// The failed handshake must not leave a partial link behind.
		fetched, err := svc.GetTenant(ctx, orphan.ID)
		require.NoError(t, err)
		require.Nil(t, fetched.ParentID)
	})

	t.Run("a tenant cannot parent itself", func(t *testing.T) {
		_, err := svc.AssociateParent(ctx, parent.ID, "424242")
		require.ErrorIs(t, err, ErrSelfAssociation)
	})

	t.Run("unknown tenant is not found", func(t *testing.T) {
		_, err := svc.AssociateParent(ctx, "no-such-tenant", "424242")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestTenantMemberships(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTenantService(t)

	tenant, err := svc.CreateTenant(ctx, CreateTenantParams{Name: "Cafe"})
	require.NoError(t, err)

	st := svc.Store.(*sqlite.Store)
	user := seedAccount(t, st, "nina", "secret123", domain.RoleStaff)

	t.Run("add then list", func(t *testing.T) {
		require.NoError(t, svc.AddMember(ctx, user.ID, tenant.ID, "manager"))

		memberships, err := svc.ListMemberships(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, memberships, 1)
		require.Equal(t, tenant.ID, memberships[0].TenantID)
		require.Equal(t, "manager", memberships[0].Role)
	})

	t.Run("adding twice conflicts", func(t *testing.T) {
		err := svc.AddMember(ctx, user.ID, tenant.ID, "manager")
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		require.NoError(t, svc.RemoveMember(ctx, user.ID, tenant.ID))
		require.NoError(t, svc.RemoveMember(ctx, user.ID, tenant.ID))

		memberships, err := svc.ListMemberships(ctx, user.ID)
		require.NoError(t, err)
		require.Empty(t, memberships)
	})
}
