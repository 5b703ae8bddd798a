package playlists

import (
	"context"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadenzafm/cadenza/internal/domain/playlist"
	"github.com/cadenzafm/cadenza/internal/domain/track"
)

// fakeAPI delegates to per-call hooks, defaulting to success.
type fakeAPI struct {
	mu sync.Mutex

	listFn   func(ctx context.Context) ([]playlist.Playlist, error)
	getFn    func(ctx context.Context, id int) (*playlist.WithTracks, error)
	createFn func(ctx context.Context, title string, privacy playlist.Privacy) (*playlist.Playlist, error)
	updateFn func(ctx context.Context, id int, upd playlist.Update) (*playlist.Playlist, error)
	deleteFn func(ctx context.Context, id int) error
	addFn    func(ctx context.Context, playlistID, trackID int) error
	removeFn func(ctx context.Context, playlistID, trackID int) error

	addCalls    []int
	removeCalls []int
	getCalls    int
	createCalls int
}

func (f *fakeAPI) ListPlaylists(ctx context.Context) ([]playlist.Playlist, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeAPI) GetPlaylist(ctx context.Context, id int) (*playlist.WithTracks, error) {
	f.mu.Lock()
	f.getCalls++
	f.mu.Unlock()
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return &playlist.WithTracks{Playlist: playlist.Playlist{ID: id, Title: "fetched"}}, nil
}

func (f *fakeAPI) CreatePlaylist(ctx context.Context, title string, privacy playlist.Privacy) (*playlist.Playlist, error) {
	f.mu.Lock()
	f.createCalls++
	f.mu.Unlock()
	if f.createFn != nil {
		return f.createFn(ctx, title, privacy)
	}
	return &playlist.Playlist{ID: 100, Title: title, Privacy: privacy}, nil
}

func (f *fakeAPI) UpdatePlaylist(ctx context.Context, id int, upd playlist.Update) (*playlist.Playlist, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, upd)
	}
	p := &playlist.Playlist{ID: id, Title: "updated"}
	p.Merge(upd)
	return p, nil
}

func (f *fakeAPI) DeletePlaylist(ctx context.Context, id int) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeAPI) AddTrack(ctx context.Context, playlistID, trackID int) error {
	f.mu.Lock()
	f.addCalls = append(f.addCalls, trackID)
	f.mu.Unlock()
	if f.addFn != nil {
		return f.addFn(ctx, playlistID, trackID)
	}
	return nil
}

func (f *fakeAPI) RemoveTrack(ctx context.Context, playlistID, trackID int) error {
	f.mu.Lock()
	f.removeCalls = append(f.removeCalls, trackID)
	f.mu.Unlock()
	if f.removeFn != nil {
		return f.removeFn(ctx, playlistID, trackID)
	}
	return nil
}

func ctxb() context.Context { return context.Background() }

func TestRefresh(t *testing.T) {
	api := &fakeAPI{
		listFn: func(ctx context.Context) ([]playlist.Playlist, error) {
			return []playlist.Playlist{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}, nil
		},
	}
	c := NewCoordinator(api)

	require.NoError(t, c.Refresh(ctxb()))
	assert.Len(t, c.Playlists(), 2)
	assert.False(t, c.IsLoading())
}

func TestRefreshFailureKeepsPriorList(t *testing.T) {
	api := &fakeAPI{
		listFn: func(ctx context.Context) ([]playlist.Playlist, error) {
			return []playlist.Playlist{{ID: 1, Title: "A"}}, nil
		},
	}
	c := NewCoordinator(api)
	require.NoError(t, c.Refresh(ctxb()))

	api.listFn = func(ctx context.Context) ([]playlist.Playlist, error) {
		return nil, errors.New("boom")
	}
	require.Error(t, c.Refresh(ctxb()))
	assert.Len(t, c.Playlists(), 1)
	assert.NotEmpty(t, c.ErrorMessage())
}

func TestCreatePlaylistValidation(t *testing.T) {
	api := &fakeAPI{}
	c := NewCoordinator(api)

	_, err := c.CreatePlaylist(ctxb(), "", playlist.PrivacyPublic)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, 0, api.createCalls)
	assert.NotEmpty(t, c.ErrorMessage())

	_, err = c.CreatePlaylist(ctxb(), "x", playlist.Privacy("friends"))
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, 0, api.createCalls)
}

func TestCreatePlaylistPrepends(t *testing.T) {
	api := &fakeAPI{
		listFn: func(ctx context.Context) ([]playlist.Playlist, error) {
			return []playlist.Playlist{{ID: 1, Title: "Old"}}, nil
		},
	}
	c := NewCoordinator(api)
	require.NoError(t, c.Refresh(ctxb()))

	created, err := c.CreatePlaylist(ctxb(), "New", "")
	require.NoError(t, err)
	assert.Equal(t, playlist.PrivacyPublic, created.Privacy)

	list := c.Playlists()
	require.Len(t, list, 2)
	assert.Equal(t, "New", list[0].Title)
	assert.Equal(t, "Old", list[1].Title)
}

func TestCreatePlaylistFailureLeavesStateUnchanged(t *testing.T) {
	api := &fakeAPI{
		createFn: func(ctx context.Context, title string, privacy playlist.Privacy) (*playlist.Playlist, error) {
			return nil, errors.New("server rejected")
		},
	}
	c := NewCoordinator(api)

	_, err := c.CreatePlaylist(ctxb(), "New", playlist.PrivacyPublic)
	require.Error(t, err)
	assert.Empty(t, c.Playlists())
	assert.NotEmpty(t, c.ErrorMessage())
}

func TestSelectPlaylist(t *testing.T) {
	api := &fakeAPI{
		getFn: func(ctx context.Context, id int) (*playlist.WithTracks, error) {
			return &playlist.WithTracks{
				Playlist: playlist.Playlist{ID: id, Title: "Detail"},
				Tracks:   []track.Track{{ID: 7, Title: "Song"}},
			}, nil
		},
	}
	c := NewCoordinator(api)

	require.NoError(t, c.SelectPlaylist(ctxb(), 5))
	sel := c.Selected()
	require.NotNil(t, sel)
	assert.Equal(t, 5, sel.ID)
	require.Len(t, sel.Tracks, 1)
}

func TestSelectPlaylistLastCallWins(t *testing.T) {
	firstStarted := make(chan struct{})
	firstGate := make(chan struct{})
	api := &fakeAPI{}
	api.getFn = func(ctx context.Context, id int) (*playlist.WithTracks, error) {
		if id == 1 {
			close(firstStarted)
			<-firstGate // Resolve after the newer selection
		}
		return &playlist.WithTracks{Playlist: playlist.Playlist{ID: id}}, nil
	}
	c := NewCoordinator(api)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = c.SelectPlaylist(ctxb(), 1)
	}()
	<-firstStarted

	require.NoError(t, c.SelectPlaylist(ctxb(), 2))
	close(firstGate)
	wg.Wait()

	sel := c.Selected()
	require.NotNil(t, sel)
	assert.Equal(t, 2, sel.ID)
}

func TestUpdatePlaylistMergesListAndSelection(t *testing.T) {
	api := &fakeAPI{
		listFn: func(ctx context.Context) ([]playlist.Playlist, error) {
			return []playlist.Playlist{{ID: 1, Title: "Old", Privacy: playlist.PrivacyPublic}}, nil
		},
		getFn: func(ctx context.Context, id int) (*playlist.WithTracks, error) {
			return &playlist.WithTracks{Playlist: playlist.Playlist{ID: id, Title: "Old"}}, nil
		},
	}
	c := NewCoordinator(api)
	require.NoError(t, c.Refresh(ctxb()))
	require.NoError(t, c.SelectPlaylist(ctxb(), 1))

	title := "Renamed"
	privacy := playlist.PrivacyPrivate
	require.NoError(t, c.UpdatePlaylist(ctxb(), 1, playlist.Update{Title: &title, Privacy: &privacy}))

	assert.Equal(t, "Renamed", c.Playlists()[0].Title)
	assert.Equal(t, playlist.PrivacyPrivate, c.Playlists()[0].Privacy)
	assert.Equal(t, "Renamed", c.Selected().Title)
}

func TestUpdatePlaylistFailureMutatesNothing(t *testing.T) {
	api := &fakeAPI{
		listFn: func(ctx context.Context) ([]playlist.Playlist, error) {
			return []playlist.Playlist{{ID: 1, Title: "Old"}}, nil
		},
		updateFn: func(ctx context.Context, id int, upd playlist.Update) (*playlist.Playlist, error) {
			return nil, errors.New("boom")
		},
	}
	c := NewCoordinator(api)
	require.NoError(t, c.Refresh(ctxb()))

	title := "Renamed"
	require.Error(t, c.UpdatePlaylist(ctxb(), 1, playlist.Update{Title: &title}))
	assert.Equal(t, "Old", c.Playlists()[0].Title)
	assert.NotEmpty(t, c.ErrorMessage())
}

func TestDeletePlaylistClearsSelection(t *testing.T) {
	api := &fakeAPI{
		listFn: func(ctx context.Context) ([]playlist.Playlist, error) {
			return []playlist.Playlist{{ID: 1}, {ID: 2}}, nil
		},
	}
	c := NewCoordinator(api)
	require.NoError(t, c.Refresh(ctxb()))
	require.NoError(t, c.SelectPlaylist(ctxb(), 1))

	require.NoError(t, c.DeletePlaylist(ctxb(), 1))
	assert.Len(t, c.Playlists(), 1)
	assert.Equal(t, 2, c.Playlists()[0].ID)
	assert.Nil(t, c.Selected())
}

func TestDeletePlaylistFailureLeavesList(t *testing.T) {
	api := &fakeAPI{
		listFn: func(ctx context.Context) ([]playlist.Playlist, error) {
			return []playlist.Playlist{{ID: 1}}, nil
		},
		deleteFn: func(ctx context.Context, id int) error { return errors.New("boom") },
	}
	c := NewCoordinator(api)
	require.NoError(t, c.Refresh(ctxb()))

	require.Error(t, c.DeletePlaylist(ctxb(), 1))
	assert.Len(t, c.Playlists(), 1)
}

func TestAddTrackRefetchesSelection(t *testing.T) {
	api := &fakeAPI{}
	c := NewCoordinator(api)
	require.NoError(t, c.SelectPlaylist(ctxb(), 3))
	before := api.getCalls

	require.NoError(t, c.AddTrackToPlaylist(ctxb(), 3, 42))
	assert.Equal(t, before+1, api.getCalls)

	// Unselected playlists are not refetched.
	require.NoError(t, c.AddTrackToPlaylist(ctxb(), 99, 42))
	assert.Equal(t, before+1, api.getCalls)
}

func TestAddTrackRefetchFailureDoesNotRollBack(t *testing.T) {
	api := &fakeAPI{}
	c := NewCoordinator(api)
	require.NoError(t, c.SelectPlaylist(ctxb(), 3))

	api.getFn = func(ctx context.Context, id int) (*playlist.WithTracks, error) {
		return nil, errors.New("refetch down")
	}

	// The add succeeded server-side; only the local view is stale.
	require.NoError(t, c.AddTrackToPlaylist(ctxb(), 3, 42))
	assert.Empty(t, c.ErrorMessage())
	require.NotNil(t, c.Selected())
}

func TestAddTracksBatchToleratesPartialFailure(t *testing.T) {
	api := &fakeAPI{
		addFn: func(ctx context.Context, playlistID, trackID int) error {
			if trackID == 2 {
				return errors.New("rejected")
			}
			return nil
		},
	}
	c := NewCoordinator(api)
	require.NoError(t, c.SelectPlaylist(ctxb(), 3))
	before := api.getCalls

	results := c.AddTracksToPlaylist(ctxb(), 3, []int{1, 2, 3})

	// All requests issued in order, regardless of id 2's failure.
	assert.Equal(t, []int{1, 2, 3}, api.addCalls)

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.NotEmpty(t, c.ErrorMessage())

	// One refetch after the batch, not one per item.
	assert.Equal(t, before+1, api.getCalls)
}

func TestRemoveTrackUpdatesSelectionLocally(t *testing.T) {
	api := &fakeAPI{
		getFn: func(ctx context.Context, id int) (*playlist.WithTracks, error) {
			return &playlist.WithTracks{
				Playlist: playlist.Playlist{ID: id, TrackCount: 2},
				Tracks:   []track.Track{{ID: 7}, {ID: 8}},
			}, nil
		},
	}
	c := NewCoordinator(api)
	require.NoError(t, c.SelectPlaylist(ctxb(), 3))
	gets := api.getCalls

	require.NoError(t, c.RemoveTrackFromPlaylist(ctxb(), 3, 7))

	// No refetch needed: removal by id is locally derivable.
	assert.Equal(t, gets, api.getCalls)
	sel := c.Selected()
	require.Len(t, sel.Tracks, 1)
	assert.Equal(t, 8, sel.Tracks[0].ID)
	assert.Equal(t, 1, sel.TrackCount)
}

func TestRemoveTrackIsIdempotent(t *testing.T) {
	api := &fakeAPI{
		getFn: func(ctx context.Context, id int) (*playlist.WithTracks, error) {
			return &playlist.WithTracks{
				Playlist: playlist.Playlist{ID: id},
				Tracks:   []track.Track{{ID: 7}, {ID: 8}},
			}, nil
		},
	}
	c := NewCoordinator(api)
	require.NoError(t, c.SelectPlaylist(ctxb(), 3))

	// Two concurrent removals of the same id: the track is absent
	// exactly once, with no error surfaced twice.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.RemoveTrackFromPlaylist(ctxb(), 3, 7)
		}()
	}
	wg.Wait()

	sel := c.Selected()
	require.Len(t, sel.Tracks, 1)
	assert.Equal(t, 8, sel.Tracks[0].ID)
	assert.Empty(t, c.ErrorMessage())
}

func TestMutationsClearPriorError(t *testing.T) {
	api := &fakeAPI{
		deleteFn: func(ctx context.Context, id int) error { return errors.New("boom") },
	}
	c := NewCoordinator(api)

	require.Error(t, c.DeletePlaylist(ctxb(), 1))
	require.NotEmpty(t, c.ErrorMessage())

	require.NoError(t, c.AddTrackToPlaylist(ctxb(), 1, 2))
	assert.Empty(t, c.ErrorMessage())
}

func TestInvalidate(t *testing.T) {
	api := &fakeAPI{
		listFn: func(ctx context.Context) ([]playlist.Playlist, error) {
			return []playlist.Playlist{{ID: 1}}, nil
		},
	}
	c := NewCoordinator(api)
	require.NoError(t, c.Refresh(ctxb()))
	require.NoError(t, c.SelectPlaylist(ctxb(), 1))

	c.Invalidate()
	assert.Empty(t, c.Playlists())
	assert.Nil(t, c.Selected())
	assert.Empty(t, c.ErrorMessage())
}
