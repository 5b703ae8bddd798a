package playback

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/cadenzafm/cadenza/internal/app/queue"
	"github.com/cadenzafm/cadenza/internal/domain/track"
	"github.com/cadenzafm/cadenza/internal/infra/media"
)

// Errors
var (
	ErrNoAdapter  = errors.New("no media adapter attached")
	ErrLoadFailed = errors.New("media resource failed to load")
)

const eventBufferSize = 32

// Engine owns the current-track state machine, the queue position,
// volume and mute, and the playback position. It is the exclusive
// owner of the media adapter; no other component touches it.
type Engine struct {
	mu sync.RWMutex

	adapter media.Adapter
	queue   *queue.Queue

	state   State
	lastErr error

	// Monotonically increasing load token. Adapter events carrying an
	// older token belong to an abandoned load and are discarded.
	loadToken uint64

	position time.Duration
	duration time.Duration
	volume   float64
	muted    bool

	eventCh chan Event
	closed  bool
	ctx     context.Context
	cancel  context.CancelFunc
}

var _ media.EventSink = (*Engine)(nil)

// NewEngine creates an idle engine. Attach a media adapter before the
// first play intent.
func NewEngine() *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		queue:   queue.New(),
		state:   StateIdle,
		volume:  1.0,
		eventCh: make(chan Event, eventBufferSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// AttachAdapter sets the media adapter. The engine must be the
// adapter's event sink.
func (e *Engine) AttachAdapter(a media.Adapter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.adapter = a
}

// Events returns the event channel.
func (e *Engine) Events() <-chan Event {
	return e.eventCh
}

// PlayTrack replaces the queue and starts loading the given track.
// If the track is not part of the queue, it is played as a length-1
// queue. Any load in flight is abandoned.
func (e *Engine) PlayTrack(t track.Track, tracks []track.Track) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.adapter == nil {
		return ErrNoAdapter
	}

	if !e.queue.Replace(tracks, t.ID) {
		e.queue.ReplaceSingle(t)
	}
	e.startCurrentLocked()
	return nil
}

// TogglePlay pauses a playing track or resumes a paused one.
// In any other state there is nothing to toggle.
func (e *Engine) TogglePlay() {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StatePlaying:
		e.state = StatePaused
		e.adapter.Pause()
		e.sendStateLocked()
	case StatePaused:
		e.state = StatePlaying
		e.adapter.Play()
		e.sendStateLocked()
	default:
		// Nothing loaded, load in flight, or terminal state.
	}
}

// Seek jumps to the given position, clamped to [0, duration].
// Valid while playing or paused; the state does not change.
func (e *Engine) Seek(pos time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.IsActive() {
		return
	}
	if pos < 0 {
		pos = 0
	}
	if pos > e.duration {
		pos = e.duration
	}
	e.position = pos
	e.adapter.Seek(pos)
	e.sendEventLocked(Event{
		Type:     EventPositionChanged,
		Track:    e.queue.Current(),
		State:    e.state,
		Position: pos,
	})
}

// SetVolume sets the volume, clamped to [0,1]. Raising the volume
// above zero audibly unmutes.
func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	e.volume = v
	if v > 0 && e.muted {
		e.muted = false
	}
	e.applyVolumeLocked()
}

// ToggleMute flips mute without touching the stored volume, so
// unmuting restores the prior level.
func (e *Engine) ToggleMute() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.muted = !e.muted
	e.applyVolumeLocked()
}

// NextTrack loads the next queue entry, if any. The queue itself is
// kept; only the position moves. No wraparound at the end.
func (e *Engine) NextTrack() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.adapter == nil || !e.queue.Advance() {
		return
	}
	e.startCurrentLocked()
}

// PreviousTrack loads the previous queue entry, if any. No wraparound
// at the start.
func (e *Engine) PreviousTrack() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.adapter == nil || !e.queue.Retreat() {
		return
	}
	e.startCurrentLocked()
}

// startCurrentLocked abandons any in-flight load and starts loading
// the queue's current track. Must be called with the lock held and a
// current track present.
func (e *Engine) startCurrentLocked() {
	cur := e.queue.Current()
	if cur == nil {
		return
	}

	e.loadToken++
	e.state = StateLoading
	e.lastErr = nil
	e.position = 0
	e.duration = 0

	zlog.Debug().Msgf("playback: loading track=%d title=%q token=%d", cur.ID, cur.Title, e.loadToken)

	e.adapter.Load(e.loadToken, cur.AudioURL, cur.Duration)

	e.sendEventLocked(Event{Type: EventTrackChanged, Track: cur, State: e.state})
	e.sendStateLocked()
}

// OnCanPlay moves Loading to Playing and starts output (autoplay on
// load). Events from abandoned loads are discarded.
func (e *Engine) OnCanPlay(token uint64, duration time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if token != e.loadToken {
		zlog.Debug().Msgf("playback: discarding can-play for stale token=%d (latest=%d)", token, e.loadToken)
		return
	}
	if e.state != StateLoading {
		return
	}

	e.duration = duration
	e.state = StatePlaying
	e.adapter.Play()
	e.sendStateLocked()
}

// OnTimeUpdate passively updates the position.
func (e *Engine) OnTimeUpdate(token uint64, position time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if token != e.loadToken {
		return
	}

	e.position = position
	e.sendEventLocked(Event{
		Type:     EventPositionChanged,
		Track:    e.queue.Current(),
		State:    e.state,
		Position: position,
	})
}

// OnEnded advances to the next track, or moves to Ended on the final
// one. Playback is never implicitly restarted from Ended.
func (e *Engine) OnEnded(token uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if token != e.loadToken {
		zlog.Debug().Msgf("playback: discarding ended for stale token=%d (latest=%d)", token, e.loadToken)
		return
	}

	if e.queue.Advance() {
		e.startCurrentLocked()
		return
	}

	e.position = e.duration
	e.state = StateEnded
	e.sendStateLocked()
}

// OnError moves to Errored. The engine never retries a failed load;
// recovery requires a fresh play intent.
func (e *Engine) OnError(token uint64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if token != e.loadToken {
		zlog.Debug().Msgf("playback: discarding error for stale token=%d (latest=%d): %v", token, e.loadToken, err)
		return
	}

	e.state = StateErrored
	e.lastErr = errors.Mark(err, ErrLoadFailed)

	zlog.Warn().Msgf("playback: media error on track=%v: %v", e.queue.Current(), err)

	e.sendEventLocked(Event{
		Type:  EventPlaybackError,
		Track: e.queue.Current(),
		State: e.state,
		Err:   e.lastErr,
	})
	e.sendStateLocked()
}

// State returns the current playback state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// CurrentTrack returns a copy of the current track, or nil if none.
func (e *Engine) CurrentTrack() *track.Track {
	e.mu.RLock()
	defer e.mu.RUnlock()

	cur := e.queue.Current()
	if cur == nil {
		return nil
	}
	t := *cur
	return &t
}

// Position returns the last reported playback position.
func (e *Engine) Position() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.position
}

// Duration returns the duration reported by the media resource.
// Zero until the first can-play after a load.
func (e *Engine) Duration() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.duration
}

// Volume returns the stored volume, independent of mute.
func (e *Engine) Volume() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.volume
}

// Muted returns whether output is muted.
func (e *Engine) Muted() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.muted
}

// HasNext returns whether a next track exists in the queue.
func (e *Engine) HasNext() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.queue.HasNext()
}

// HasPrevious returns whether a previous track exists in the queue.
func (e *Engine) HasPrevious() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.queue.HasPrevious()
}

// QueueTracks returns a copy of the queued tracks.
func (e *Engine) QueueTracks() []track.Track {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.queue.Tracks()
}

// QueueIndex returns the current queue index (-1 if none).
func (e *Engine) QueueIndex() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.queue.Index()
}

// Err returns the error that moved the engine to Errored, or nil.
func (e *Engine) Err() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastErr
}

// Close releases the engine and its event channel.
func (e *Engine) Close() {
	e.cancel()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	close(e.eventCh)
}

// applyVolumeLocked pushes the effective volume (zero while muted) to
// the adapter and notifies consumers.
func (e *Engine) applyVolumeLocked() {
	if e.adapter != nil {
		if e.muted {
			e.adapter.SetVolume(0)
		} else {
			e.adapter.SetVolume(e.volume)
		}
	}
	e.sendEventLocked(Event{
		Type:   EventVolumeChanged,
		Track:  e.queue.Current(),
		State:  e.state,
		Volume: e.volume,
		Muted:  e.muted,
	})
}

func (e *Engine) sendStateLocked() {
	e.sendEventLocked(Event{
		Type:     EventStateChanged,
		Track:    e.queue.Current(),
		State:    e.state,
		Position: e.position,
	})
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (e *Engine) sendEventLocked(ev Event) {
	if e.closed {
		return
	}
	select {
	case e.eventCh <- ev:
	case <-e.ctx.Done():
	default:
		// Channel full, drop event.
	}
}
