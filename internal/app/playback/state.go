// Package playback provides the playback engine: the state machine that
// owns what is currently playing and drives the media resource adapter.
package playback

// State represents the playback state. Exactly one state is live at a
// time; it is derived from media adapter events and user intents only.
type State int

const (
	StateIdle    State = iota // Nothing has been played yet
	StateLoading              // A track load is in flight
	StatePlaying              // Track is audibly playing
	StatePaused               // Track is paused
	StateEnded                // Queue ran out on natural completion
	StateErrored              // Media failed; a fresh play intent is required
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// IsActive returns true when a loaded track can be toggled or seeked.
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}
