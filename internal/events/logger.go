// Package events provides helper functions for logging Ayra audit events.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ayrahq/ayra/internal/models"
)

// Repository is the minimal interface needed to write events.
type Repository interface {
	Create(ctx context.Context, event *models.Event) error
}

// Discard is a Repository that drops every event.
var Discard Repository = discard{}

type discard struct{}

func (discard) Create(context.Context, *models.Event) error { return nil }

// LogPlaybackStarted records the start of a playback session.
func LogPlaybackStarted(ctx context.Context, repo Repository, sessionID string, payload models.PlaybackPayload) error {
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	return logEvent(ctx, repo, models.EventTypePlaybackStarted, models.EntityTypeSession, sessionID, payload)
}

// LogPlaybackEnded records a session that finished or was cancelled.
func LogPlaybackEnded(ctx context.Context, repo Repository, sessionID string, cancelled bool, payload models.PlaybackPayload) error {
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	eventType := models.EventTypePlaybackCompleted
	if cancelled {
		eventType = models.EventTypePlaybackCancelled
	}
	return logEvent(ctx, repo, eventType, models.EntityTypeSession, sessionID, payload)
}

// LogDemoAsked records a demo chat question and its canned reply.
func LogDemoAsked(ctx context.Context, repo Repository, conversationID, question, reply string) error {
	if conversationID == "" {
		return fmt.Errorf("conversation id is required")
	}
	return logEvent(ctx, repo, models.EventTypeDemoAsked, models.EntityTypeDemo, conversationID, models.DemoAskedPayload{
		Question: question,
		Reply:    reply,
	})
}

// LogWaitlistJoined records a new waitlist signup.
func LogWaitlistJoined(ctx context.Context, repo Repository, signup *models.Signup) error {
	if signup == nil || signup.ID == "" {
		return fmt.Errorf("signup is required")
	}
	return logEvent(ctx, repo, models.EventTypeWaitlistJoined, models.EntityTypeWaitlist, signup.ID, models.WaitlistJoinedPayload{
		Email:  signup.Email,
		Source: signup.Source,
	})
}

// LogThemeChanged records a theme preference change.
func LogThemeChanged(ctx context.Context, repo Repository, oldTheme, newTheme models.Theme) error {
	return logEvent(ctx, repo, models.EventTypeThemeChanged, models.EntityTypePreference, models.ThemePreferenceKey, models.ThemeChangedPayload{
		OldTheme: oldTheme,
		NewTheme: newTheme,
	})
}

// LogError records an error against the system entity.
func LogError(ctx context.Context, repo Repository, errContext string, cause error) error {
	if cause == nil {
		return fmt.Errorf("error is required")
	}
	return logEvent(ctx, repo, models.EventTypeError, models.EntityTypeSystem, "ayra", models.ErrorPayload{
		Error:   cause.Error(),
		Context: errContext,
	})
}

func logEvent(ctx context.Context, repo Repository, eventType models.EventType, entityType models.EntityType, entityID string, payload any) error {
	if repo == nil {
		return fmt.Errorf("event repository is required")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	return repo.Create(ctx, &models.Event{
		Type:       eventType,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    data,
	})
}
