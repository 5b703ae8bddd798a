// Package favorites caches the user's liked-track state with
// optimistic toggling.
package favorites

import (
	"context"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/cadenzafm/cadenza/internal/domain/track"
)

// API is the server surface the cache depends on.
type API interface {
	LikeTrack(ctx context.Context, trackID int) error
	UnlikeTrack(ctx context.Context, trackID int) error
}

// Cache holds per-track liked flags keyed by track id. Entries exist
// only for tracks the cache has seen; an absent id reports not liked.
type Cache struct {
	mu    sync.RWMutex
	api   API
	liked map[int]bool
}

// NewCache creates an empty cache over the given API client.
func NewCache(api API) *Cache {
	return &Cache{
		api:   api,
		liked: make(map[int]bool),
	}
}

// Seed records the liked flags carried by freshly fetched tracks,
// overwriting any stale local entries for the same ids.
func (c *Cache) Seed(tracks []track.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tracks {
		c.liked[t.ID] = t.Favorited
	}
}

// IsLiked reports the cached liked state for a track. fallback is used
// when the cache has no entry, letting callers pass the flag from the
// track they are rendering.
func (c *Cache) IsLiked(trackID int, fallback bool) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.liked[trackID]; ok {
		return v
	}
	return fallback
}

// Toggle flips the liked state optimistically, then confirms with the
// server. On failure the entry is restored to its exact prior state:
// an id that had no entry before the toggle has no entry after the
// rollback.
func (c *Cache) Toggle(ctx context.Context, trackID int, current bool) error {
	c.mu.Lock()
	prev, had := c.liked[trackID]
	if had {
		current = prev
	}
	next := !current
	c.liked[trackID] = next
	c.mu.Unlock()

	var err error
	if next {
		err = c.api.LikeTrack(ctx, trackID)
	} else {
		err = c.api.UnlikeTrack(ctx, trackID)
	}
	if err == nil {
		return nil
	}

	c.mu.Lock()
	if had {
		c.liked[trackID] = prev
	} else {
		delete(c.liked, trackID)
	}
	c.mu.Unlock()
	zlog.Warn().Msgf("favorites: failed to toggle track %d: %v", trackID, err)
	return err
}

// Invalidate drops all cached state (logout hook).
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.liked = make(map[int]bool)
}
