package idx_test

import (
	"testing"
	"time"

	"github.com/archsystems/authgate/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	a := idx.New()
	b := idx.New()

	require.False(t, a.IsZero())
	require.False(t, b.IsZero())
	require.True(t, a.String() < b.String(), "monotonic ids must sort in generation order")
}

func TestNewAtEmbedsTime(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	id := idx.NewAt(at)

	require.Equal(t, at.UnixMilli(), id.Time().UnixMilli())
}

func TestParse(t *testing.T) {
	id := idx.New()

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	_, err = idx.Parse("")
	require.ErrorIs(t, err, idx.ErrInvalid)

	_, err = idx.Parse("not-a-ulid")
	require.ErrorIs(t, err, idx.ErrInvalid)
}

func TestZero(t *testing.T) {
	require.True(t, idx.Zero.IsZero())
	require.True(t, idx.Zero.Time().IsZero())
}
