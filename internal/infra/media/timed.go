package media

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"
)

// Options holds TimedAdapter tuning values.
type Options struct {
	LoadDelay       time.Duration // Delay between Load and can-play
	TickInterval    time.Duration // Interval between time-update events
	DefaultDuration time.Duration // Duration used when the hint is unknown
}

// DefaultOptions returns the options used when config provides none.
func DefaultOptions() Options {
	return Options{
		LoadDelay:       200 * time.Millisecond,
		TickInterval:    time.Second,
		DefaultDuration: 30 * time.Second,
	}
}

// settingsSpec mirrors the free-form adapter settings map in config.
type settingsSpec struct {
	LoadDelayMs        int `mapstructure:"load_delay_ms"`
	TickMs             int `mapstructure:"tick_ms"`
	DefaultDurationSec int `mapstructure:"default_duration_sec"`
}

// OptionsFromSettings decodes adapter settings into Options,
// falling back to defaults for absent keys.
func OptionsFromSettings(settings map[string]any) (Options, error) {
	opts := DefaultOptions()
	if len(settings) == 0 {
		return opts, nil
	}

	var spec settingsSpec
	if err := mapstructure.Decode(settings, &spec); err != nil {
		return opts, errors.Wrap(err, "failed to decode media adapter settings")
	}

	if spec.LoadDelayMs > 0 {
		opts.LoadDelay = time.Duration(spec.LoadDelayMs) * time.Millisecond
	}
	if spec.TickMs > 0 {
		opts.TickInterval = time.Duration(spec.TickMs) * time.Millisecond
	}
	if spec.DefaultDurationSec > 0 {
		opts.DefaultDuration = time.Duration(spec.DefaultDurationSec) * time.Second
	}
	return opts, nil
}

// TimedAdapter renders playback purely on wall-clock timers: can-play
// after a fixed load delay, time-update on a ticker, ended when the
// position reaches the duration. It stands in for a platform decoder
// in the CLI and in tests.
type TimedAdapter struct {
	mu   sync.Mutex
	sink EventSink
	opts Options

	token    uint64
	duration time.Duration
	position time.Duration
	volume   float64
	loaded   bool
	playing  bool

	loadCancel func()
	tickCancel func()
}

var _ Adapter = (*TimedAdapter)(nil)

// NewTimedAdapter creates a timer-driven adapter reporting to sink.
func NewTimedAdapter(sink EventSink, opts Options) *TimedAdapter {
	return &TimedAdapter{
		sink:   sink,
		opts:   opts,
		volume: 1.0,
	}
}

// Load abandons any resource in flight and starts loading src.
func (a *TimedAdapter) Load(token uint64, src string, hint time.Duration) {
	a.mu.Lock()
	a.cancelTimersLocked()

	a.token = token
	a.loaded = false
	a.playing = false
	a.position = 0
	a.duration = hint
	if a.duration <= 0 {
		a.duration = a.opts.DefaultDuration
	}
	duration := a.duration

	ctx, cancel := context.WithCancel(context.Background())
	a.loadCancel = cancel
	a.mu.Unlock()

	zlog.Debug().Msgf("media: loading src=%s token=%d duration=%v", src, token, duration)

	go func() {
		timer := time.NewTimer(a.opts.LoadDelay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		a.mu.Lock()
		if a.token != token {
			a.mu.Unlock()
			return
		}
		a.loaded = true
		a.mu.Unlock()

		a.sink.OnCanPlay(token, duration)
	}()
}

// Play starts or resumes audible output.
func (a *TimedAdapter) Play() {
	a.mu.Lock()
	if !a.loaded || a.playing {
		a.mu.Unlock()
		return
	}
	a.playing = true
	token := a.token

	if a.tickCancel != nil {
		a.tickCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.tickCancel = cancel
	a.mu.Unlock()

	go a.tickLoop(ctx, token)
}

func (a *TimedAdapter) tickLoop(ctx context.Context, token uint64) {
	ticker := time.NewTicker(a.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		a.mu.Lock()
		if a.token != token || !a.playing {
			a.mu.Unlock()
			return
		}
		a.position += a.opts.TickInterval
		ended := a.position >= a.duration
		if ended {
			a.position = a.duration
			a.playing = false
		}
		pos := a.position
		a.mu.Unlock()

		if ended {
			a.sink.OnEnded(token)
			return
		}
		a.sink.OnTimeUpdate(token, pos)
	}
}

// Pause silences output, keeping the position.
func (a *TimedAdapter) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.playing = false
	if a.tickCancel != nil {
		a.tickCancel()
		a.tickCancel = nil
	}
}

// Seek jumps to the given position, clamped to the known duration.
func (a *TimedAdapter) Seek(pos time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if pos < 0 {
		pos = 0
	}
	if a.duration > 0 && pos > a.duration {
		pos = a.duration
	}
	a.position = pos
}

// SetVolume stores the output volume.
func (a *TimedAdapter) SetVolume(v float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.volume = v
}

// Volume returns the last applied volume.
func (a *TimedAdapter) Volume() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.volume
}

// Position returns the current playback position.
func (a *TimedAdapter) Position() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.position
}

// Close stops all timers.
func (a *TimedAdapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelTimersLocked()
}

func (a *TimedAdapter) cancelTimersLocked() {
	if a.loadCancel != nil {
		a.loadCancel()
		a.loadCancel = nil
	}
	if a.tickCancel != nil {
		a.tickCancel()
		a.tickCancel = nil
	}
}
