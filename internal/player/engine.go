// Package player drives a single audio stream at a time. The Controller owns
// the only media handle; the Engine behind it is swappable so everything above
// the speaker can be tested without a sound card.
package player

// MediaState is what an engine reports for one media handle. Engines surface
// it asynchronously: Play returns before the stream is actually audible.
type MediaState int

const (
	MediaIdle MediaState = iota
	MediaOpening
	MediaPlaying
	MediaPaused
	MediaStopped
	MediaEnded
	MediaError
)

func (s MediaState) String() string {
	switch s {
	case MediaIdle:
		return "idle"
	case MediaOpening:
		return "opening"
	case MediaPlaying:
		return "playing"
	case MediaPaused:
		return "paused"
	case MediaStopped:
		return "stopped"
	case MediaEnded:
		return "ended"
	case MediaError:
		return "error"
	default:
		return "unknown"
	}
}

// Media is one stream bound to one URL.
type Media interface {
	Play() error
	Stop() error
	// SetVolume takes a level in [0, 100].
	SetVolume(level int) error
	State() MediaState
	// Release frees the handle. It must be safe to call more than once.
	Release()
}

type Engine interface {
	NewMedia(url string) (Media, error)
}

// State is the controller-level view of playback.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StateStopped
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateStopped:
		return "stopped"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

func stateFromMedia(s MediaState) State {
	switch s {
	case MediaPlaying:
		return StatePlaying
	case MediaPaused, MediaStopped, MediaEnded:
		return StateStopped
	case MediaError:
		return StateError
	default:
		return StateIdle
	}
}
