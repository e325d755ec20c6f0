package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_WithDefaults(t *testing.T) {
	today := time.Date(2024, time.March, 20, 9, 0, 0, 0, time.UTC)

	q := Query{}.WithDefaults(today)
	assert.Equal(t, SecondHalf, q.Type)
	assert.Equal(t, Month{Year: 2024, Month: time.March}, q.Month)

	r, err := q.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-16", r.From.String())
	assert.Equal(t, "2024-03-31", r.To.String())
}

func TestQuery_WithDefaultsKeepsExplicitValues(t *testing.T) {
	today := time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)
	q := Query{Type: FullMonth, Month: Month{Year: 2023, Month: time.February}}.WithDefaults(today)

	r, err := q.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "2023-02-01", r.From.String())
	assert.Equal(t, "2023-02-28", r.To.String())
}

func TestQuery_CustomWithoutBounds(t *testing.T) {
	q := Query{Type: Custom}.WithDefaults(time.Now())
	_, err := q.Resolve()
	assert.ErrorIs(t, err, ErrMissingBounds)
}
