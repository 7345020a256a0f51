package models

import (
	"encoding/json"
	"strings"
	"time"
)

// EventType categorizes events in the system.
type EventType string

const (
	// Playback events
	EventTypePlaybackStarted   EventType = "playback.started"
	EventTypePlaybackCompleted EventType = "playback.completed"
	EventTypePlaybackCancelled EventType = "playback.cancelled"

	// Demo chat events
	EventTypeDemoAsked EventType = "demo.asked"

	// Waitlist events
	EventTypeWaitlistJoined EventType = "waitlist.joined"

	// Preference events
	EventTypeThemeChanged EventType = "theme.changed"

	// System events
	EventTypeError EventType = "error"
)

// EntityType identifies the type of entity an event relates to.
type EntityType string

const (
	EntityTypeSession    EntityType = "session"
	EntityTypeDemo       EntityType = "demo"
	EntityTypeWaitlist   EntityType = "waitlist"
	EntityTypePreference EntityType = "preference"
	EntityTypeSystem     EntityType = "system"
)

// Event represents an append-only log entry.
type Event struct {
	// ID is the unique identifier for the event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// EntityType identifies what kind of entity this event relates to.
	EntityType EntityType `json:"entity_type"`

	// EntityID is the ID of the related entity.
	EntityID string `json:"entity_id"`

	// Payload contains event-specific data.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Metadata contains additional context.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the event is valid.
func (e *Event) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(string(e.Type)) == "" {
		validation.AddMessage("type", "event type is required")
	}
	if strings.TrimSpace(string(e.EntityType)) == "" {
		validation.AddMessage("entity_type", "entity_type is required")
	}
	if strings.TrimSpace(e.EntityID) == "" {
		validation.AddMessage("entity_id", "entity_id is required")
	}
	return validation.Err()
}

// PlaybackPayload is the payload for playback.* events.
type PlaybackPayload struct {
	Scenario   string `json:"scenario"`
	Steps      int    `json:"steps"`
	Loop       bool   `json:"loop"`
	Iterations int    `json:"iterations,omitempty"`
	Revealed   int    `json:"revealed,omitempty"`
}

// DemoAskedPayload is the payload for demo.asked events.
type DemoAskedPayload struct {
	Question string `json:"question"`
	Reply    string `json:"reply"`
}

// WaitlistJoinedPayload is the payload for waitlist.joined events.
type WaitlistJoinedPayload struct {
	Email  string `json:"email"`
	Source string `json:"source,omitempty"`
}

// ThemeChangedPayload is the payload for theme.changed events.
type ThemeChangedPayload struct {
	OldTheme Theme `json:"old_theme"`
	NewTheme Theme `json:"new_theme"`
}

// ErrorPayload is the payload for error events.
type ErrorPayload struct {
	Error   string `json:"error"`
	Context string `json:"context,omitempty"`
}
