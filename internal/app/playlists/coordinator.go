// Package playlists provides the playlist mutation coordinator.
//
// Every mutating operation follows optimistic-apply, server-confirm,
// reconcile-or-rollback. The server is the source of truth; this
// coordinator only specifies client-side reconciliation.
package playlists

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	zlog "github.com/rs/zerolog/log"

	"github.com/cadenzafm/cadenza/internal/domain/playlist"
)

// Errors
var (
	ErrInvalidRequest = errors.New("invalid playlist request")
)

// API is the server surface the coordinator depends on.
type API interface {
	ListPlaylists(ctx context.Context) ([]playlist.Playlist, error)
	GetPlaylist(ctx context.Context, id int) (*playlist.WithTracks, error)
	CreatePlaylist(ctx context.Context, title string, privacy playlist.Privacy) (*playlist.Playlist, error)
	UpdatePlaylist(ctx context.Context, id int, upd playlist.Update) (*playlist.Playlist, error)
	DeletePlaylist(ctx context.Context, id int) error
	AddTrack(ctx context.Context, playlistID, trackID int) error
	RemoveTrack(ctx context.Context, playlistID, trackID int) error
}

// AddResult is the per-item outcome of a batch add. A nil Err means
// the server accepted the track.
type AddResult struct {
	TrackID int
	Err     error
}

// createRequest is validated before any network call.
type createRequest struct {
	Title   string           `validate:"required,min=1,max=120"`
	Privacy playlist.Privacy `validate:"required,oneof=public private"`
}

// Coordinator owns the user's playlist summaries and the currently
// selected playlist's full track list.
type Coordinator struct {
	mu sync.RWMutex

	api      API
	validate *validator.Validate

	playlists []playlist.Playlist
	selected  *playlist.WithTracks
	loading   bool
	errMsg    string

	// Monotonically increasing select token. A fetch resolving with an
	// older token belongs to a superseded selection and is discarded,
	// so the last call wins rather than the last to resolve.
	selectToken uint64
}

// NewCoordinator creates a coordinator over the given API client.
func NewCoordinator(api API) *Coordinator {
	return &Coordinator{
		api:      api,
		validate: validator.New(),
	}
}

// Refresh loads the playlist summary list. A read failure leaves the
// prior list intact and surfaces a message.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	list, err := c.api.ListPlaylists(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.setErrorLocked("failed to fetch playlists", err)
		return err
	}
	c.playlists = list
	return nil
}

// CreatePlaylist creates a playlist and prepends it to the local list.
// No optimistic placeholder is inserted before the call resolves.
func (c *Coordinator) CreatePlaylist(ctx context.Context, title string, privacy playlist.Privacy) (*playlist.Playlist, error) {
	if privacy == "" {
		privacy = playlist.PrivacyPublic
	}
	if err := c.validate.Struct(createRequest{Title: title, Privacy: privacy}); err != nil {
		verr := errors.Mark(errors.Wrap(err, "playlist validation failed"), ErrInvalidRequest)
		c.mu.Lock()
		c.setErrorLocked("playlist title is required", verr)
		c.mu.Unlock()
		return nil, verr
	}

	c.clearError()

	created, err := c.api.CreatePlaylist(ctx, title, privacy)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.setErrorLocked("failed to create playlist", err)
		return nil, err
	}
	c.playlists = append([]playlist.Playlist{*created}, c.playlists...)
	return created, nil
}

// SelectPlaylist fetches full detail and replaces the selection.
func (c *Coordinator) SelectPlaylist(ctx context.Context, id int) error {
	c.mu.Lock()
	c.selectToken++
	token := c.selectToken
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	detail, err := c.api.GetPlaylist(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.selectToken {
		zlog.Debug().Msgf("playlists: discarding stale selection of playlist %d (token=%d latest=%d)", id, token, c.selectToken)
		return nil
	}
	c.loading = false
	if err != nil {
		c.setErrorLocked("failed to fetch playlist", err)
		return err
	}
	c.selected = detail
	return nil
}

// UpdatePlaylist applies a partial update; on success the returned
// fields are merged into both the summary entry and the selection.
func (c *Coordinator) UpdatePlaylist(ctx context.Context, id int, upd playlist.Update) error {
	c.clearError()

	updated, err := c.api.UpdatePlaylist(ctx, id, upd)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.setErrorLocked("failed to update playlist", err)
		return err
	}
	for i := range c.playlists {
		if c.playlists[i].ID == id {
			c.playlists[i].Title = updated.Title
			c.playlists[i].Privacy = updated.Privacy
			c.playlists[i].CoverURL = updated.CoverURL
			break
		}
	}
	if c.selected != nil && c.selected.ID == id {
		c.selected.Title = updated.Title
		c.selected.Privacy = updated.Privacy
		c.selected.CoverURL = updated.CoverURL
	}
	return nil
}

// DeletePlaylist removes the playlist; on success the entry leaves the
// list and a matching selection is cleared.
func (c *Coordinator) DeletePlaylist(ctx context.Context, id int) error {
	c.clearError()

	err := c.api.DeletePlaylist(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.setErrorLocked("failed to delete playlist", err)
		return err
	}
	kept := c.playlists[:0]
	for _, p := range c.playlists {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	c.playlists = kept
	if c.selected != nil && c.selected.ID == id {
		c.selected = nil
	}
	return nil
}

// AddTrackToPlaylist adds one track. On success, a selected playlist
// is refetched for canonical ordering; a refetch failure is logged but
// does not roll back the already-successful add.
func (c *Coordinator) AddTrackToPlaylist(ctx context.Context, playlistID, trackID int) error {
	c.clearError()

	if err := c.api.AddTrack(ctx, playlistID, trackID); err != nil {
		c.mu.Lock()
		c.setErrorLocked("failed to add track", err)
		c.mu.Unlock()
		return err
	}

	c.refetchSelected(ctx, playlistID)
	return nil
}

// AddTracksToPlaylist adds tracks sequentially, one request per id,
// continuing past individual failures. It is a best-effort batch, not
// an atomic transaction; the per-item results let callers display
// partial outcomes precisely. The selected playlist is refetched once
// after the batch completes.
func (c *Coordinator) AddTracksToPlaylist(ctx context.Context, playlistID int, trackIDs []int) []AddResult {
	c.clearError()

	results := make([]AddResult, 0, len(trackIDs))
	failed := 0
	for _, trackID := range trackIDs {
		err := c.api.AddTrack(ctx, playlistID, trackID)
		if err != nil {
			failed++
			zlog.Warn().Msgf("playlists: failed to add track %d to playlist %d: %v", trackID, playlistID, err)
		}
		results = append(results, AddResult{TrackID: trackID, Err: err})
	}

	if failed > 0 {
		c.mu.Lock()
		c.errMsg = "some tracks could not be added"
		c.mu.Unlock()
	}

	c.refetchSelected(ctx, playlistID)
	return results
}

// RemoveTrackFromPlaylist removes a track; on success a selected
// playlist drops the track locally without a refetch. Removal of an
// already-removed id is a no-op, which bounds concurrent interleavings.
func (c *Coordinator) RemoveTrackFromPlaylist(ctx context.Context, playlistID, trackID int) error {
	c.clearError()

	if err := c.api.RemoveTrack(ctx, playlistID, trackID); err != nil {
		c.mu.Lock()
		c.setErrorLocked("failed to remove track", err)
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil || c.selected.ID != playlistID {
		return nil
	}
	kept := c.selected.Tracks[:0]
	for _, t := range c.selected.Tracks {
		if t.ID != trackID {
			kept = append(kept, t)
		}
	}
	c.selected.Tracks = kept
	c.selected.TrackCount = len(kept)
	return nil
}

// refetchSelected replaces the selection with fresh detail when the
// given playlist is currently selected. Failures are logged only; the
// mutation that triggered the refetch already succeeded server-side.
func (c *Coordinator) refetchSelected(ctx context.Context, playlistID int) {
	c.mu.RLock()
	token := c.selectToken
	selected := c.selected != nil && c.selected.ID == playlistID
	c.mu.RUnlock()
	if !selected {
		return
	}

	detail, err := c.api.GetPlaylist(ctx, playlistID)
	if err != nil {
		zlog.Warn().Msgf("playlists: failed to refresh playlist %d: %v", playlistID, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.selectToken || c.selected == nil || c.selected.ID != playlistID {
		return
	}
	c.selected = detail
}

// Playlists returns a copy of the summary list.
func (c *Coordinator) Playlists() []playlist.Playlist {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]playlist.Playlist, len(c.playlists))
	copy(result, c.playlists)
	return result
}

// Selected returns a copy of the selected playlist, or nil.
func (c *Coordinator) Selected() *playlist.WithTracks {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.selected == nil {
		return nil
	}
	cp := *c.selected
	cp.Tracks = append(cp.Tracks[:0:0], c.selected.Tracks...)
	return &cp
}

// IsLoading returns whether a summary or detail fetch is in flight.
func (c *Coordinator) IsLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// ErrorMessage returns the last surfaced error message, or "".
func (c *Coordinator) ErrorMessage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errMsg
}

// ClearError clears the surfaced error.
func (c *Coordinator) ClearError() {
	c.clearError()
}

// Invalidate drops all cached playlist state (logout hook).
func (c *Coordinator) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playlists = nil
	c.selected = nil
	c.errMsg = ""
	c.loading = false
}

func (c *Coordinator) clearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = ""
}

// setErrorLocked surfaces a short user-visible message and logs the
// underlying failure. Must be called with lock held.
func (c *Coordinator) setErrorLocked(msg string, err error) {
	c.errMsg = msg
	zlog.Warn().Msgf("playlists: %s: %v", msg, err)
}
