package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadenzafm/cadenza/internal/domain/track"
)

func threeTracks() []track.Track {
	return []track.Track{
		{ID: 1, Title: "First"},
		{ID: 2, Title: "Second"},
		{ID: 3, Title: "Third"},
	}
}

func TestReplace(t *testing.T) {
	q := New()

	ok := q.Replace(threeTracks(), 2)
	require.True(t, ok)
	assert.Equal(t, 1, q.Index())
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 2, q.Current().ID)
}

func TestReplaceMissingStart(t *testing.T) {
	q := New()

	ok := q.Replace(threeTracks(), 99)
	assert.False(t, ok)
	// Queue untouched on a failed replace; caller falls back to a
	// length-1 queue.
	assert.True(t, q.IsEmpty())

	q.ReplaceSingle(track.Track{ID: 99, Title: "Orphan"})
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, 0, q.Index())
	assert.Equal(t, 99, q.Current().ID)
	assert.False(t, q.HasNext())
	assert.False(t, q.HasPrevious())
}

func TestAdvanceRetreatRoundTrip(t *testing.T) {
	// For every valid index, advance then retreat (when both succeed)
	// returns to the starting index.
	tracks := threeTracks()
	for start := range tracks {
		q := New()
		require.True(t, q.Replace(tracks, tracks[start].ID))

		if q.Advance() {
			require.True(t, q.Retreat())
			assert.Equal(t, start, q.Index())
		}
	}
}

func TestNoWraparound(t *testing.T) {
	q := New()
	require.True(t, q.Replace(threeTracks(), 3))

	// Advance at the end is refused, index unchanged.
	assert.False(t, q.HasNext())
	assert.False(t, q.Advance())
	assert.Equal(t, 2, q.Index())

	// Retreat at the start is refused, index unchanged.
	require.True(t, q.Replace(threeTracks(), 1))
	assert.False(t, q.HasPrevious())
	assert.False(t, q.Retreat())
	assert.Equal(t, 0, q.Index())
}

func TestInsertNext(t *testing.T) {
	q := New()
	require.True(t, q.Replace(threeTracks(), 1))

	q.InsertNext(track.Track{ID: 10, Title: "Inserted"})

	ids := make([]int, 0, q.Len())
	for _, tr := range q.Tracks() {
		ids = append(ids, tr.ID)
	}
	assert.Equal(t, []int{1, 10, 2, 3}, ids)
	assert.Equal(t, 1, q.Current().ID)

	require.True(t, q.Advance())
	assert.Equal(t, 10, q.Current().ID)
}

func TestClear(t *testing.T) {
	q := New()
	require.True(t, q.Replace(threeTracks(), 1))

	q.Clear()
	assert.True(t, q.IsEmpty())
	assert.Equal(t, -1, q.Index())
	assert.Nil(t, q.Current())
}

func TestTracksReturnsCopy(t *testing.T) {
	q := New()
	require.True(t, q.Replace(threeTracks(), 1))

	tracks := q.Tracks()
	tracks[0].ID = 999
	assert.Equal(t, 1, q.Current().ID)
}
