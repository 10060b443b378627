package service

import (
	"context"
	"testing"

	"github.com/chefpilot/chefpilot-api/internal/domain"
	"github.com/chefpilot/chefpilot-api/internal/store"
	"github.com/chefpilot/chefpilot-api/internal/store/drivers/sqlite"
	"github.com/chefpilot/chefpilot-api/pkg/cryptox"

	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (*UserService, *sqlite.Store) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	return &UserService{Store: st}, st
}

func strPtr(s string) *string { return &s }

func TestUserCreate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newUserService(t)

	t.Run("stores a hashed password never the plaintext", func(t *testing.T) {
		user, err := svc.CreateUser(ctx, CreateUserParams{
			Username: "carol",
			Password: "hunter22",
			Email:    "carol@example.com",
			Role:     "Manager",
		})
		require.NoError(t, err)
		require.NotEqual(t, "hunter22", user.PasswordHash)
		require.NoError(t, cryptox.VerifyPassword("hunter22", user.PasswordHash))
		require.Equal(t, domain.RoleManager, user.Role)
	})

	t.Run("unknown role falls back to the default", func(t *testing.T) {
		user, err := svc.CreateUser(ctx, CreateUserParams{
			Username: "dave",
			Password: "hunter22",
			Role:     "Sommelier",
		})
		require.NoError(t, err)
		require.Equal(t, domain.DefaultRole, user.Role)
	})

	t.Run("short usernames are rejected", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, CreateUserParams{Username: "ab", Password: "x"})
		require.ErrorIs(t, err, ErrUsernameTooShort)

		// Whitespace does not count toward the minimum.
		_, err = svc.CreateUser(ctx, CreateUserParams{Username: "  a  ", Password: "x"})
		require.ErrorIs(t, err, ErrUsernameTooShort)
	})

	t.Run("malformed email is rejected", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, CreateUserParams{
			Username: "erin",
			Password: "x",
			Email:    "not-an-email",
		})
		require.ErrorIs(t, err, ErrInvalidEmail)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, CreateUserParams{Username: "frank", Password: "x"})
		require.NoError(t, err)

		_, err = svc.CreateUser(ctx, CreateUserParams{Username: "frank", Password: "y"})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})
}

func TestUserUpdateProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newUserService(t)

	admin, err := svc.CreateUser(ctx, CreateUserParams{
		Username: "root",
		Password: "x",
		Role:     domain.RoleApplicationOwner.String(),
	})
	require.NoError(t, err)

	t.Run("empty update is rejected before touching storage", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, admin.ID, admin.ID, domain.ProfileUpdate{})
		require.ErrorIs(t, err, ErrEmptyUpdate)
	})

	t.Run("validation runs per supplied field", func(t *testing.T) {
		cases := map[string]struct {
			update domain.ProfileUpdate
			want   error
		}{
			"short username": {domain.ProfileUpdate{Username: strPtr("ab")}, ErrUsernameTooShort},
			"bad email":      {domain.ProfileUpdate{Email: strPtr("nope")}, ErrInvalidEmail},
			"bad phone":      {domain.ProfileUpdate{Phone: strPtr("abc")}, ErrInvalidPhone},
			"bad dob":        {domain.ProfileUpdate{DOB: strPtr("01/02/1990")}, ErrInvalidDOB},
			"bad role":       {domain.ProfileUpdate{Role: strPtr("Sommelier")}, ErrInvalidRole},
		}
		for name, tc := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := svc.UpdateProfile(ctx, admin.ID, admin.ID, tc.update)
				require.ErrorIs(t, err, tc.want)
			})
		}
	})

	t.Run("profile change records a field-level audit diff", func(t *testing.T) {
		target, err := svc.CreateUser(ctx, CreateUserParams{
			Username:  "grace",
			Password:  "x",
			FirstName: "Grace",
		})
		require.NoError(t, err)

		updated, err := svc.UpdateProfile(ctx, target.ID, admin.ID, domain.ProfileUpdate{
			FirstName: strPtr("Gracie"),
			Phone:     strPtr("+1 (555) 010-2030"),
		})
		require.NoError(t, err)
		require.Equal(t, "Gracie", updated.FirstName)

		entries, err := svc.ListAudit(ctx, target.ID, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, admin.ID, entries[0].ChangedBy)
		require.Equal(t, domain.FieldChange{From: "Grace", To: "Gracie"}, entries[0].Changes["first_name"])
		require.Equal(t, domain.FieldChange{From: "", To: "+1 (555) 010-2030"}, entries[0].Changes["phone"])
		require.NotContains(t, entries[0].Changes, "username")
	})

	t.Run("no-op value change leaves the audit trail untouched", func(t *testing.T) {
		target, err := svc.CreateUser(ctx, CreateUserParams{
			Username:  "henry",
			Password:  "x",
			FirstName: "Henry",
		})
		require.NoError(t, err)

		_, err = svc.UpdateProfile(ctx, target.ID, admin.ID, domain.ProfileUpdate{
			FirstName: strPtr("Henry"),
		})
		require.NoError(t, err)

		entries, err := svc.ListAudit(ctx, target.ID, 10)
		require.NoError(t, err)
		require.Empty(t, entries)
	})

	t.Run("audit entries come back newest first", func(t *testing.T) {
		target, err := svc.CreateUser(ctx, CreateUserParams{Username: "irene", Password: "x"})
		require.NoError(t, err)

		for _, name := range []string{"First", "Second", "Third"} {
			_, err := svc.UpdateProfile(ctx, target.ID, admin.ID, domain.ProfileUpdate{
				FirstName: strPtr(name),
			})
			require.NoError(t, err)
		}

		entries, err := svc.ListAudit(ctx, target.ID, 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		require.Equal(t, "Third", entries[0].Changes["first_name"].To)
		require.Equal(t, "Second", entries[1].Changes["first_name"].To)
	})
}
