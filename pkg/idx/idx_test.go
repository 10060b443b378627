package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewProducesValidIDs(t *testing.T) {
	t.Parallel()

	a := New()
	b := New()

	require.False(t, a.IsZero())
	require.NotEqual(t, a, b)

	parsed, err := Parse(a.String())
	require.NoError(t, err)
	require.Equal(t, a, parsed)
}

func TestNewAtIsSortable(t *testing.T) {
	t.Parallel()

	earlier := NewAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	later := NewAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	require.Less(t, earlier.String(), later.String())
}

func TestParseRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "   ", "not-a-ulid", "0123"} {
		_, err := Parse(s)
		require.ErrorIs(t, err, ErrInvalid)
	}
}
