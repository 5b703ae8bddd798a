// Package track provides the Track domain entity.
package track

import (
	"fmt"
	"time"
)

// Track represents a streamable track as served by the catalog API.
// The entity is immutable on the client side except for Favorited,
// which is owned by the favorites cache and may be stale relative
// to the server.
type Track struct {
	ID         int           // Catalog track ID
	Title      string        // Track title
	ArtistID   int           // Artist ID
	ArtistName string        // Denormalized artist display name
	Duration   time.Duration // Track duration (zero until the media reports it)
	CoverURL   string        // Cover image URL (optional)
	AudioURL   string        // Audio source URL for playback
	Favorited  bool          // Liked flag as last seen from the server
}

// DisplayArtist returns the artist name for display, falling back to
// a placeholder when the denormalized name is missing.
func (t *Track) DisplayArtist() string {
	if t.ArtistName != "" {
		return t.ArtistName
	}
	return fmt.Sprintf("Artist #%d", t.ArtistID)
}

// HasKnownDuration returns true if the track duration has been resolved.
// Duration is not authoritative until the media resource reports it.
func (t *Track) HasKnownDuration() bool {
	return t.Duration > 0
}
