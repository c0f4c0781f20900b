package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortPopular, k)

	k, err = ParseSortKey("mostViewed")
	require.NoError(t, err)
	assert.Equal(t, SortMostViewed, k)

	_, err = ParseSortKey("random")
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestParseTimeRange(t *testing.T) {
	r, err := ParseTimeRange(" week ")
	require.NoError(t, err)
	assert.Equal(t, RangeWeek, r)

	_, err = ParseTimeRange("decade")
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestTimeRangeSince(t *testing.T) {
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)

	_, ok := RangeAll.Since(now)
	assert.False(t, ok)

	since, ok := RangeWeek.Since(now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 24, 12, 0, 0, 0, time.UTC), since)

	since, ok = RangeYear.Since(now)
	require.True(t, ok)
	assert.Equal(t, 2025, since.Year())
}

func TestClampPage(t *testing.T) {
	l, o := ClampPage(0, -4)
	assert.Equal(t, DefaultPageSize, l)
	assert.Equal(t, 0, o)

	l, _ = ClampPage(500, 0)
	assert.Equal(t, MaxPageSize, l)
}

func TestPopularityScore(t *testing.T) {
	s := CommunityStack{LikeCount: 2, SaveCount: 3, ViewCount: 10}
	assert.Equal(t, int64(22), s.PopularityScore())
}
