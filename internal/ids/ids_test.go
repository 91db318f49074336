package ids

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortableAndUnique(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	first := NewAt(at)
	second := NewAt(at)

	require.NotEqual(t, first, second)
	require.Less(t, first, second)

	parsed, err := ulid.Parse(first)
	require.NoError(t, err)
	require.Equal(t, ulid.Timestamp(at), parsed.Time())
}
