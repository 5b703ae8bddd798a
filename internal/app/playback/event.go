package playback

import (
	"time"

	"github.com/cadenzafm/cadenza/internal/domain/track"
)

// EventType represents a playback event type.
type EventType int

const (
	EventTrackChanged    EventType = iota // A different track became current
	EventStateChanged                     // Playback state changed
	EventPositionChanged                  // Position moved (time-update or seek)
	EventVolumeChanged                    // Volume or mute changed
	EventPlaybackError                    // Media resource failed
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackChanged:
		return "track_changed"
	case EventStateChanged:
		return "state_changed"
	case EventPositionChanged:
		return "position_changed"
	case EventVolumeChanged:
		return "volume_changed"
	case EventPlaybackError:
		return "playback_error"
	default:
		return "unknown"
	}
}

// Event represents a playback event. Consumers receive read-only
// snapshots; they never get mutation access to the engine.
type Event struct {
	Type     EventType
	Track    *track.Track // Current track (nil when none)
	State    State
	Position time.Duration
	Volume   float64
	Muted    bool
	Err      error // Set for EventPlaybackError
}
