package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("password123")
	require.NoError(t, err)
	require.NotEqual(t, "password123", hash)

	require.NoError(t, VerifyPassword("password123", hash))
	require.ErrorIs(t, VerifyPassword("wrongpass", hash), ErrPasswordMismatch)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	t.Parallel()

	err := VerifyPassword("anything", "not-a-bcrypt-hash")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrPasswordMismatch)
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("same-input")
	require.NoError(t, err)
	b, err := HashPassword("same-input")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}
