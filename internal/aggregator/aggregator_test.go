package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/github-pulse/internal/domain"
)

func rec(id, author string, createdAt time.Time) domain.RawRecord {
	return domain.RawRecord{ID: id, Author: author, CreatedAt: createdAt}
}

func TestReducer_CountsAndContributors(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// Three commits by A, A, B with a recent cap of 2
	r := New(2)
	r.Add(rec("c1", "alice", base))
	r.Add(rec("c2", "alice", base.Add(1*time.Hour)))
	r.Add(rec("c3", "bob", base.Add(2*time.Hour)))

	agg := r.Aggregate()
	assert.Equal(t, 3, agg.Total)
	assert.Equal(t, map[string]int{"alice": 2, "bob": 1}, agg.ByContributor)

	require.Len(t, agg.Recent, 2)
	assert.Equal(t, "c3", agg.Recent[0].ID)
	assert.Equal(t, "c2", agg.Recent[1].ID)
}

func TestReducer_UnattributableAuthorsSkipBreakdown(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	r := New(5)
	r.Add(rec("c1", "alice", base))
	r.Add(rec("c2", "", base.Add(time.Hour))) // deleted account
	r.Add(rec("c3", "", base.Add(2*time.Hour)))

	agg := r.Aggregate()
	assert.Equal(t, 3, agg.Total)

	sum := 0
	for _, count := range agg.ByContributor {
		sum += count
	}
	assert.LessOrEqual(t, sum, agg.Total)
	assert.Equal(t, map[string]int{"alice": 1}, agg.ByContributor)
}

func TestReducer_RecentOrderedForAnyInput(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// Deliberately unordered input
	offsets := []int{3, 9, 1, 7, 5, 8, 2, 6, 4, 0}

	testCases := []struct {
		name     string
		cap      int
		expected int
	}{
		{name: "cap below total", cap: 4, expected: 4},
		{name: "cap above total", cap: 20, expected: 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := New(tc.cap)
			for _, off := range offsets {
				r.Add(rec("c", "alice", base.Add(time.Duration(off)*time.Hour)))
			}

			agg := r.Aggregate()
			require.Len(t, agg.Recent, tc.expected)
			for i := 1; i < len(agg.Recent); i++ {
				assert.False(t, agg.Recent[i-1].CreatedAt.Before(agg.Recent[i].CreatedAt),
					"recent must be ordered newest first")
			}
			// The newest records survive the bounded insertion
			assert.Equal(t, base.Add(9*time.Hour), agg.Recent[0].CreatedAt)
		})
	}
}

func TestReducer_TiesKeepStreamOrder(t *testing.T) {
	ts := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	r := New(5)
	r.Add(rec("first", "alice", ts))
	r.Add(rec("second", "bob", ts))

	agg := r.Aggregate()
	require.Len(t, agg.Recent, 2)
	assert.Equal(t, "first", agg.Recent[0].ID)
	assert.Equal(t, "second", agg.Recent[1].ID)
}

func TestReduce_Empty(t *testing.T) {
	agg := Reduce(nil, 5)

	assert.Equal(t, 0, agg.Total)
	assert.Empty(t, agg.ByContributor)
	assert.NotNil(t, agg.ByContributor)
	assert.Empty(t, agg.Recent)
	assert.NotNil(t, agg.Recent)
}
