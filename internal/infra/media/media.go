// Package media provides the media resource adapter contract and a
// timer-driven adapter implementation.
//
// The adapter wraps the single playable audio resource. Decoding and
// rendering belong to the host platform; the playback engine depends
// only on the event contract below.
package media

import "time"

// Adapter is the control surface of the media resource.
//
// Load carries the token identifying the load; the adapter must tag
// every subsequent event with it so that the engine can discard events
// from abandoned loads. The duration hint is advisory: renderers that
// derive duration from the stream itself ignore it.
type Adapter interface {
	Load(token uint64, src string, hint time.Duration)
	Play()
	Pause()
	Seek(pos time.Duration)
	SetVolume(v float64)
}

// EventSink receives media lifecycle events. Events for a single token
// are totally ordered with respect to each other.
type EventSink interface {
	// OnCanPlay reports that the resource is ready and its duration.
	OnCanPlay(token uint64, duration time.Duration)
	// OnTimeUpdate reports playback progress.
	OnTimeUpdate(token uint64, position time.Duration)
	// OnEnded reports natural completion of the resource.
	OnEnded(token uint64)
	// OnError reports that the resource failed to become or stay playable.
	OnError(token uint64, err error)
}
