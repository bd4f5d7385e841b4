package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMembership(t *testing.T) {
	for _, m := range []string{"free", "annual", "lifetime"} {
		got, err := ParseMembership(m)
		require.NoError(t, err)
		assert.Equal(t, MembershipType(m), got)
	}

	_, err := ParseMembership("gold")
	assert.EqualError(t, err, "Invalid membership type. Must be one of: free, annual, lifetime")
}

func TestMembershipTitle(t *testing.T) {
	assert.Equal(t, "Annual", MembershipAnnual.Title())
	assert.Equal(t, "", MembershipType("").Title())
}

func TestTimeSpanSince(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 4, 5, 0, time.UTC)

	since, ok := SpanWeek.Since(now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), since)

	since, ok = SpanMonth.Since(now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC), since)

	_, ok = SpanYear.Since(now)
	assert.True(t, ok)

	_, ok = TimeSpan("decade").Since(now)
	assert.False(t, ok)
	_, ok = SpanAll.Since(now)
	assert.False(t, ok)
}

func TestNewStats(t *testing.T) {
	assert.Equal(t, Stats{}, NewStats(0, 0, 10))

	s := NewStats(300, 3, 0)
	assert.Equal(t, 100.0, s.AveragePerDay)
	assert.Zero(t, s.LitersPerCow)

	s = NewStats(300, 3, 20)
	assert.Equal(t, 5.0, s.LitersPerCow)
	assert.Equal(t, 3, s.DaysRecorded)
}

func TestHerdLocation(t *testing.T) {
	l1, l2, empty := "Farm Rd 1", "Springfield", ""
	assert.Equal(t, "Farm Rd 1, Springfield", Herd{LocationLine1: &l1, LocationLine2: &l2}.Location())
	assert.Equal(t, "Springfield", Herd{LocationLine1: &empty, LocationLine2: &l2}.Location())
	assert.Equal(t, "", Herd{}.Location())
}

func TestSortByDate(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }
	recs := []MilkRecord{{ID: 1, Date: d(3)}, {ID: 2, Date: d(1)}, {ID: 3, Date: d(2)}}
	SortByDate(recs)
	assert.Equal(t, []int64{2, 3, 1}, []int64{recs[0].ID, recs[1].ID, recs[2].ID})
}
