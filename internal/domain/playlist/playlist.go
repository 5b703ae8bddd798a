// Package playlist provides the Playlist domain entities.
package playlist

import (
	"time"

	"github.com/cadenzafm/cadenza/internal/domain/track"
)

// Privacy represents the visibility of a playlist.
type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
)

// Valid reports whether the privacy value is one the server accepts.
func (p Privacy) Valid() bool {
	return p == PrivacyPublic || p == PrivacyPrivate
}

// Playlist is the summary entity used for browsing. It never carries
// full track data; tracks are materialized only on selection.
type Playlist struct {
	ID         int     // Playlist ID
	Title      string  // Playlist title
	Privacy    Privacy // Visibility
	OwnerID    int     // Creator user ID
	CoverURL   string  // Cover image URL (optional)
	TrackCount int     // Number of tracks (summary only)
}

// WithTracks is a playlist with its ordered track sequence materialized.
type WithTracks struct {
	Playlist
	Tracks []track.Track
}

// Update carries the fields of a partial playlist update. Nil fields
// are left unchanged by the server and by local merging.
type Update struct {
	Title   *string
	Privacy *Privacy
}

// TrackIDs returns all track IDs in playlist order.
func (p *WithTracks) TrackIDs() []int {
	ids := make([]int, len(p.Tracks))
	for i, t := range p.Tracks {
		ids[i] = t.ID
	}
	return ids
}

// ContainsTrack reports whether the playlist contains the given track.
func (p *WithTracks) ContainsTrack(trackID int) bool {
	for _, t := range p.Tracks {
		if t.ID == trackID {
			return true
		}
	}
	return false
}

// TotalDuration returns the total duration of all tracks.
func (p *WithTracks) TotalDuration() time.Duration {
	var total time.Duration
	for _, t := range p.Tracks {
		total += t.Duration
	}
	return total
}

// Merge applies an update to the summary entity.
func (p *Playlist) Merge(u Update) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Privacy != nil {
		p.Privacy = *u.Privacy
	}
}
