package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"

	"github.com/cadenzafm/cadenza/internal/domain/track"
)

// GetTrack retrieves track metadata by ID.
func (c *Client) GetTrack(ctx context.Context, id int) (*track.Track, error) {
	var dto trackDTO
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/tracks/%d", id), nil, &dto); err != nil {
		return nil, errors.Wrapf(err, "failed to get track %d", id)
	}
	t := dto.toDomain()
	return &t, nil
}

// SearchTracks searches the catalog by title or artist.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]track.Track, error) {
	if query == "" {
		return nil, errors.New("search query is required")
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	path := fmt.Sprintf("/api/search/tracks?q=%s&limit=%d", url.QueryEscape(query), limit)
	var dtos []trackDTO
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &dtos); err != nil {
		return nil, errors.Wrap(err, "failed to search tracks")
	}

	tracks := make([]track.Track, len(dtos))
	for i, d := range dtos {
		tracks[i] = d.toDomain()
	}
	return tracks, nil
}

// LikeTrack marks a track as favorited for the current user.
func (c *Client) LikeTrack(ctx context.Context, id int) error {
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/tracks/%d/like", id), nil, nil); err != nil {
		return errors.Wrapf(err, "failed to like track %d", id)
	}
	return nil
}

// UnlikeTrack removes a track from the current user's favorites.
func (c *Client) UnlikeTrack(ctx context.Context, id int) error {
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/tracks/%d/like", id), nil, nil); err != nil {
		return errors.Wrapf(err, "failed to unlike track %d", id)
	}
	return nil
}
