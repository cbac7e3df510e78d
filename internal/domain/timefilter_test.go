package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDateRange(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

	t.Run("current month", func(t *testing.T) {
		r := ResolveDateRange(TimeFilterCurrentMonth, nil, nil, now)
		require.NotNil(t, r.Start)
		require.NotNil(t, r.End)
		assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), *r.Start)
		assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), *r.End)
	})

	t.Run("last month", func(t *testing.T) {
		r := ResolveDateRange(TimeFilterLastMonth, nil, nil, now)
		require.NotNil(t, r.Start)
		require.NotNil(t, r.End)
		assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), *r.Start)
		assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), *r.End)
	})

	t.Run("last month crosses year boundary", func(t *testing.T) {
		january := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
		r := ResolveDateRange(TimeFilterLastMonth, nil, nil, january)
		require.NotNil(t, r.Start)
		assert.Equal(t, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), *r.Start)
		assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), *r.End)
	})

	t.Run("this year", func(t *testing.T) {
		r := ResolveDateRange(TimeFilterThisYear, nil, nil, now)
		require.NotNil(t, r.Start)
		require.NotNil(t, r.End)
		assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), *r.Start)
		assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), *r.End)
	})

	t.Run("custom end date covers the whole end day", func(t *testing.T) {
		start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
		r := ResolveDateRange(TimeFilterCustom, &start, &end, now)
		require.NotNil(t, r.Start)
		require.NotNil(t, r.End)
		assert.Equal(t, start, *r.Start)
		assert.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), *r.End)
	})

	t.Run("custom without end is open ended", func(t *testing.T) {
		start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		r := ResolveDateRange(TimeFilterCustom, &start, nil, now)
		require.NotNil(t, r.Start)
		assert.Nil(t, r.End)
	})

	t.Run("custom without start restricts nothing", func(t *testing.T) {
		end := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
		r := ResolveDateRange(TimeFilterCustom, nil, &end, now)
		assert.Nil(t, r.Start)
		assert.Nil(t, r.End)
	})

	t.Run("empty and unknown filters restrict nothing", func(t *testing.T) {
		for _, tf := range []TimeFilter{"", "all-time", "bogus"} {
			r := ResolveDateRange(tf, nil, nil, now)
			assert.Nil(t, r.Start, "filter %q", tf)
			assert.Nil(t, r.End, "filter %q", tf)
		}
	})
}
