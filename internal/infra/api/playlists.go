package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/cadenzafm/cadenza/internal/domain/playlist"
)

type createPlaylistRequest struct {
	Title   string `json:"title"`
	Privacy string `json:"privacy"`
}

type updatePlaylistRequest struct {
	Title   *string `json:"title,omitempty"`
	Privacy *string `json:"privacy,omitempty"`
}

type addTrackRequest struct {
	TrackID int `json:"track_id"`
}

// ListPlaylists retrieves the user's playlist summaries. Summaries
// never carry full track data.
func (c *Client) ListPlaylists(ctx context.Context) ([]playlist.Playlist, error) {
	var dtos []playlistDTO
	if err := c.doJSON(ctx, http.MethodGet, "/api/playlists", nil, &dtos); err != nil {
		return nil, errors.Wrap(err, "failed to list playlists")
	}

	playlists := make([]playlist.Playlist, len(dtos))
	for i, d := range dtos {
		playlists[i] = d.toDomain()
	}
	return playlists, nil
}

// GetPlaylist retrieves a playlist with its full track sequence.
func (c *Client) GetPlaylist(ctx context.Context, id int) (*playlist.WithTracks, error) {
	var dto playlistWithTracksDTO
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/playlists/%d", id), nil, &dto); err != nil {
		return nil, errors.Wrapf(err, "failed to get playlist %d", id)
	}
	p := dto.toDomain()
	return &p, nil
}

// CreatePlaylist creates a playlist. The server is authoritative for
// the created entity.
func (c *Client) CreatePlaylist(ctx context.Context, title string, privacy playlist.Privacy) (*playlist.Playlist, error) {
	var dto playlistDTO
	req := createPlaylistRequest{Title: title, Privacy: string(privacy)}
	if err := c.doJSON(ctx, http.MethodPost, "/api/playlists", req, &dto); err != nil {
		return nil, errors.Wrap(err, "failed to create playlist")
	}
	p := dto.toDomain()
	return &p, nil
}

// UpdatePlaylist applies a partial update and returns the updated
// summary entity.
func (c *Client) UpdatePlaylist(ctx context.Context, id int, upd playlist.Update) (*playlist.Playlist, error) {
	req := updatePlaylistRequest{Title: upd.Title}
	if upd.Privacy != nil {
		s := string(*upd.Privacy)
		req.Privacy = &s
	}

	var dto playlistDTO
	if err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/playlists/%d", id), req, &dto); err != nil {
		return nil, errors.Wrapf(err, "failed to update playlist %d", id)
	}
	p := dto.toDomain()
	return &p, nil
}

// DeletePlaylist deletes a playlist.
func (c *Client) DeletePlaylist(ctx context.Context, id int) error {
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/playlists/%d", id), nil, nil); err != nil {
		return errors.Wrapf(err, "failed to delete playlist %d", id)
	}
	return nil
}

// AddTrack adds a track to a playlist.
func (c *Client) AddTrack(ctx context.Context, playlistID, trackID int) error {
	req := addTrackRequest{TrackID: trackID}
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/playlists/%d/tracks", playlistID), req, nil); err != nil {
		return errors.Wrapf(err, "failed to add track %d to playlist %d", trackID, playlistID)
	}
	return nil
}

// RemoveTrack removes a track from a playlist.
func (c *Client) RemoveTrack(ctx context.Context, playlistID, trackID int) error {
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/playlists/%d/tracks/%d", playlistID, trackID), nil, nil); err != nil {
		return errors.Wrapf(err, "failed to remove track %d from playlist %d", trackID, playlistID)
	}
	return nil
}
