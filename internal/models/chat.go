package models

import (
	"fmt"
	"strings"
	"time"
)

// Origin tells which side of the conversation a step belongs to.
type Origin string

const (
	OriginIncoming Origin = "in"
	OriginOutgoing Origin = "out"
)

// ParseOrigin normalizes the accepted spellings of an origin.
func ParseOrigin(raw string) (Origin, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "in", "incoming":
		return OriginIncoming, nil
	case "out", "outgoing":
		return OriginOutgoing, nil
	default:
		return "", fmt.Errorf("unknown origin %q", raw)
	}
}

// DeliveryState is a rendering hint for outgoing bubbles (WhatsApp-style checks).
type DeliveryState string

const (
	DeliveryNone      DeliveryState = ""
	DeliverySent      DeliveryState = "sent"
	DeliveryDelivered DeliveryState = "delivered"
	DeliveryRead      DeliveryState = "read"
)

// ParseDeliveryState normalizes a delivery state; empty means none.
func ParseDeliveryState(raw string) (DeliveryState, error) {
	switch state := DeliveryState(strings.ToLower(strings.TrimSpace(raw))); state {
	case DeliveryNone, DeliverySent, DeliveryDelivered, DeliveryRead:
		return state, nil
	default:
		return "", fmt.Errorf("unknown delivery state %q", raw)
	}
}

// ChatStep is one unit of a scenario: a message bubble or a typing indicator.
// Steps are defined by the caller and never mutated during playback.
type ChatStep struct {
	// Origin is the side of the conversation.
	Origin Origin `json:"from" yaml:"from"`

	// Text is the message body. Ignored when Typing is set.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Timestamp is a display-only time label.
	Timestamp string `json:"time,omitempty" yaml:"time,omitempty"`

	// Typing marks a "typing..." indicator bubble.
	Typing bool `json:"typing,omitempty" yaml:"typing,omitempty"`

	// DelayMs is the wait after the previous reveal. Nil means the base delay.
	DelayMs *int64 `json:"delay_ms,omitempty" yaml:"delay_ms,omitempty"`

	// Delivery is the check mark shown on outgoing bubbles.
	Delivery DeliveryState `json:"check,omitempty" yaml:"check,omitempty"`
}

// Delay returns a pointer suitable for ChatStep.DelayMs.
func Delay(ms int64) *int64 {
	return &ms
}

// RevealDelay resolves the wait before this step, falling back to base.
// Negative values are clamped to zero.
func (s ChatStep) RevealDelay(base time.Duration) time.Duration {
	wait := base
	if s.DelayMs != nil {
		wait = time.Duration(*s.DelayMs) * time.Millisecond
	}
	if wait < 0 {
		return 0
	}
	return wait
}

// IsOutgoing reports whether the bubble sits on the right-hand side.
func (s ChatStep) IsOutgoing() bool {
	return s.Origin == OriginOutgoing
}

// ScenarioVar describes a template variable used in scenario text.
type ScenarioVar struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Default     string `json:"default,omitempty" yaml:"default,omitempty"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

// Scenario is a fixed, ordered script of chat steps.
type Scenario struct {
	Name        string        `json:"name" yaml:"name"`
	Title       string        `json:"title,omitempty" yaml:"title,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []ChatStep    `json:"steps" yaml:"steps"`
	Variables   []ScenarioVar `json:"variables,omitempty" yaml:"variables,omitempty"`
	Tags        []string      `json:"tags,omitempty" yaml:"tags,omitempty"`
	Source      string        `json:"source,omitempty" yaml:"-"` // file path or "builtin"
}

// Len returns the number of steps.
func (s *Scenario) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Steps)
}

// TotalDuration is the time one pass takes to reveal every step.
func (s *Scenario) TotalDuration(base time.Duration) time.Duration {
	if s == nil {
		return 0
	}
	var total time.Duration
	for _, step := range s.Steps {
		total += step.RevealDelay(base)
	}
	return total
}
