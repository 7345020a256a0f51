package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ayrahq/ayra/internal/models"
)

type fakeRepo struct {
	last *models.Event
}

func (r *fakeRepo) Create(ctx context.Context, event *models.Event) error {
	r.last = event
	return nil
}

func TestLogPlaybackEnded(t *testing.T) {
	tests := []struct {
		name      string
		cancelled bool
		want      models.EventType
	}{
		{"completed", false, models.EventTypePlaybackCompleted},
		{"cancelled", true, models.EventTypePlaybackCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			payload := models.PlaybackPayload{Scenario: "airport", Steps: 6, Revealed: 3}
			if err := LogPlaybackEnded(context.Background(), repo, "session-1", tt.cancelled, payload); err != nil {
				t.Fatalf("LogPlaybackEnded failed: %v", err)
			}
			if repo.last == nil {
				t.Fatal("expected event to be created")
			}
			if repo.last.Type != tt.want {
				t.Fatalf("unexpected event type: %q", repo.last.Type)
			}
			if repo.last.EntityType != models.EntityTypeSession || repo.last.EntityID != "session-1" {
				t.Fatalf("unexpected entity: %s/%s", repo.last.EntityType, repo.last.EntityID)
			}

			var got models.PlaybackPayload
			if err := json.Unmarshal(repo.last.Payload, &got); err != nil {
				t.Fatalf("unmarshal payload: %v", err)
			}
			if got.Revealed != 3 {
				t.Fatalf("unexpected payload: %+v", got)
			}
		})
	}
}

func TestLogThemeChanged(t *testing.T) {
	repo := &fakeRepo{}
	if err := LogThemeChanged(context.Background(), repo, models.ThemeDark, models.ThemeLight); err != nil {
		t.Fatalf("LogThemeChanged failed: %v", err)
	}
	if repo.last.EntityID != models.ThemePreferenceKey {
		t.Fatalf("unexpected entity id: %q", repo.last.EntityID)
	}
}

func TestLogHelpersValidate(t *testing.T) {
	ctx := context.Background()
	if err := LogPlaybackStarted(ctx, &fakeRepo{}, "", models.PlaybackPayload{}); err == nil {
		t.Fatal("expected error for missing session id")
	}
	if err := LogWaitlistJoined(ctx, &fakeRepo{}, nil); err == nil {
		t.Fatal("expected error for nil signup")
	}
	if err := LogDemoAsked(ctx, nil, "demo-1", "q", "a"); err == nil {
		t.Fatal("expected error for nil repository")
	}
	if err := LogError(ctx, Discard, "serve", errors.New("boom")); err != nil {
		t.Fatalf("Discard should accept events: %v", err)
	}
}
