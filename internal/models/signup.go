package models

import "time"

// Signup is an early-access waitlist entry.
type Signup struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DemoMessage is one line of the scripted demo chat.
type DemoMessage struct {
	Role      DemoRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// DemoRole identifies the author of a demo chat message.
type DemoRole string

const (
	DemoRoleUser DemoRole = "user"
	DemoRoleAyra DemoRole = "ayra"
)
