// Package queue provides the ordered track queue governing playback advancement.
package queue

import "github.com/cadenzafm/cadenza/internal/domain/track"

// Queue holds the ordered track sequence being played and the current
// index into it. The index is -1 only while nothing has been played.
// The queue is owned exclusively by the playback engine while playback
// is active; it is never mutated from the outside.
type Queue struct {
	tracks []track.Track
	index  int
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{index: -1}
}

// Replace swaps the full sequence and positions the index on startID.
// If startID is not present, the queue degrades to just that track,
// which the caller must then supply via ReplaceSingle.
// Returns false when startID was not found.
func (q *Queue) Replace(tracks []track.Track, startID int) bool {
	for i, t := range tracks {
		if t.ID == startID {
			q.tracks = make([]track.Track, len(tracks))
			copy(q.tracks, tracks)
			q.index = i
			return true
		}
	}
	return false
}

// ReplaceSingle makes the queue a length-1 sequence for the given track.
func (q *Queue) ReplaceSingle(t track.Track) {
	q.tracks = []track.Track{t}
	q.index = 0
}

// Advance moves the index to the next track. There is no wraparound at
// the end: finishing the final track falls through to the Ended state.
// Returns false when there is no next track.
func (q *Queue) Advance() bool {
	if !q.HasNext() {
		return false
	}
	q.index++
	return true
}

// Retreat moves the index to the previous track. There is no wraparound
// at the start: previous on the first track is a no-op.
// Returns false when there is no previous track.
func (q *Queue) Retreat() bool {
	if !q.HasPrevious() {
		return false
	}
	q.index--
	return true
}

// InsertNext inserts tracks immediately after the current position
// without changing what is playing.
func (q *Queue) InsertNext(tracks ...track.Track) {
	if len(tracks) == 0 {
		return
	}
	at := q.index + 1
	if at > len(q.tracks) {
		at = len(q.tracks)
	}
	rest := make([]track.Track, len(q.tracks[at:]))
	copy(rest, q.tracks[at:])
	q.tracks = append(q.tracks[:at], append(tracks, rest...)...)
}

// Current returns the track at the current index, or nil if none.
func (q *Queue) Current() *track.Track {
	if q.index < 0 || q.index >= len(q.tracks) {
		return nil
	}
	return &q.tracks[q.index]
}

// HasNext returns true if a track follows the current one.
func (q *Queue) HasNext() bool {
	return q.index >= 0 && q.index < len(q.tracks)-1
}

// HasPrevious returns true if a track precedes the current one.
func (q *Queue) HasPrevious() bool {
	return q.index > 0 && q.index <= len(q.tracks)-1
}

// Index returns the current index (-1 if none).
func (q *Queue) Index() int {
	return q.index
}

// Len returns the number of tracks in the queue.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}

// Tracks returns a copy of all tracks in queue order.
func (q *Queue) Tracks() []track.Track {
	result := make([]track.Track, len(q.tracks))
	copy(result, q.tracks)
	return result
}

// Clear removes all tracks and resets the index.
func (q *Queue) Clear() {
	q.tracks = nil
	q.index = -1
}
