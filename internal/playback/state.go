package playback

import (
	"time"

	"github.com/ayrahq/ayra/internal/models"
)

// State is the position of a session in its playback state machine.
type State int

const (
	StateIdle State = iota
	StateRevealing
	StatePausing
	StateFinished
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRevealing:
		return "revealing"
	case StatePausing:
		return "pausing"
	case StateFinished:
		return "finished"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateCancelled
}

// EventKind distinguishes a prefix that grew from one that was reset.
type EventKind string

const (
	EventReveal EventKind = "reveal"
	EventReset  EventKind = "reset"
)

// Event is a notification that the revealed prefix grew or was reset.
type Event struct {
	SessionID string    `json:"session_id"`
	Scenario  string    `json:"scenario"`
	Seq       int       `json:"seq"`
	Iteration int       `json:"iteration"`
	Kind      EventKind `json:"kind"`

	// Index is the position of the revealed step, or -1 for a reset.
	Index int `json:"index"`

	// Prefix is a copy of the revealed prefix after this event.
	Prefix []models.ChatStep `json:"prefix"`

	// At is the scheduled instant of the event.
	At time.Time `json:"at"`
}

// Step returns the step revealed by this event.
func (e Event) Step() (models.ChatStep, bool) {
	if e.Kind != EventReveal || e.Index < 0 || e.Index >= len(e.Prefix) {
		return models.ChatStep{}, false
	}
	return e.Prefix[e.Index], true
}

// Recorder observes session lifecycle, typically for metrics.
type Recorder interface {
	SessionStarted(scenario string)
	StepRevealed(scenario string)
	LoopRestarted(scenario string)
	SessionEnded(scenario string, final State)
}

type nopRecorder struct{}

func (nopRecorder) SessionStarted(string)      {}
func (nopRecorder) StepRevealed(string)        {}
func (nopRecorder) LoopRestarted(string)       {}
func (nopRecorder) SessionEnded(string, State) {}
