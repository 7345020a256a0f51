package db

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ayrahq/ayra/internal/models"
)

func TestPreferenceRepository(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	ctx := context.Background()
	repo := NewPreferenceRepository(database)

	_, ok, err := repo.Get(ctx, models.ThemePreferenceKey)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.Set(ctx, models.ThemePreferenceKey, "light"))
	require.NoError(t, repo.Set(ctx, models.ThemePreferenceKey, "dark"))

	value, ok, err := repo.Get(ctx, models.ThemePreferenceKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "dark", value)

	require.NoError(t, repo.Delete(ctx, models.ThemePreferenceKey))
	_, ok, err = repo.Get(ctx, models.ThemePreferenceKey)
	require.NoError(t, err)
	require.False(t, ok)

	require.Error(t, repo.Set(ctx, " ", "x"))
}

func TestSignupRepository(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	ctx := context.Background()
	repo := NewSignupRepository(database)

	first := &models.Signup{Email: "a@example.com", Source: "hero", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	second := &models.Signup{Email: "b@example.com", CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, first))
	require.NotEmpty(t, first.ID)

	dup := &models.Signup{Email: "a@example.com"}
	err := repo.Create(ctx, dup)
	require.True(t, errors.Is(err, ErrSignupExists), "expected ErrSignupExists, got %v", err)

	got, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)
	require.Equal(t, "hero", got.Source)
	require.True(t, got.CreatedAt.Equal(first.CreatedAt))

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrSignupNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "a@example.com", list[0].Email)
	require.Equal(t, "", list[1].Source)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestEventRepository_CreateAndQuery(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	ctx := context.Background()
	repo := NewEventRepository(database)
	base := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	payload, err := json.Marshal(models.PlaybackPayload{Scenario: "healthcare", Steps: 7, Loop: true})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		event := &models.Event{
			Timestamp:  base.Add(time.Duration(i) * time.Millisecond),
			Type:       models.EventTypePlaybackStarted,
			EntityType: models.EntityTypeSession,
			EntityID:   "session-1",
			Payload:    payload,
			Metadata:   map[string]string{"surface": "cli"},
		}
		require.NoError(t, repo.Create(ctx, event))
		require.NotEmpty(t, event.ID)
	}
	require.NoError(t, repo.Create(ctx, &models.Event{
		Timestamp:  base.Add(time.Second),
		Type:       models.EventTypeWaitlistJoined,
		EntityType: models.EntityTypeWaitlist,
		EntityID:   "signup-1",
	}))

	playbackType := models.EventTypePlaybackStarted
	page, err := repo.Query(ctx, EventQuery{Type: &playbackType, Limit: 3})
	require.NoError(t, err)
	require.Len(t, page.Events, 3)
	require.NotEmpty(t, page.NextCursor)
	require.Equal(t, "cli", page.Events[0].Metadata["surface"])
	require.JSONEq(t, string(payload), string(page.Events[0].Payload))

	next, err := repo.Query(ctx, EventQuery{Type: &playbackType, Cursor: page.NextCursor, Limit: 3})
	require.NoError(t, err)
	require.Len(t, next.Events, 2)
	require.Empty(t, next.NextCursor)
	require.True(t, next.Events[1].Timestamp.Equal(base.Add(4*time.Millisecond)))

	since := base.Add(500 * time.Millisecond)
	recent, err := repo.Query(ctx, EventQuery{Since: &since})
	require.NoError(t, err)
	require.Len(t, recent.Events, 1)
	require.Equal(t, models.EventTypeWaitlistJoined, recent.Events[0].Type)

	byEntity, err := repo.ListByEntity(ctx, models.EntityTypeSession, "session-1", 0)
	require.NoError(t, err)
	require.Len(t, byEntity, 5)

	counts, err := repo.CountByType(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, counts[models.EventTypePlaybackStarted])
	require.Equal(t, 1, counts[models.EventTypeWaitlistJoined])

	got, err := repo.Get(ctx, byEntity[0].ID)
	require.NoError(t, err)
	require.Equal(t, byEntity[0].ID, got.ID)

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventRepository_RejectsInvalid(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	repo := NewEventRepository(database)
	err := repo.Create(context.Background(), &models.Event{Type: models.EventTypeDemoAsked})
	require.ErrorIs(t, err, ErrInvalidEvent)
	require.ErrorIs(t, repo.Create(context.Background(), nil), ErrInvalidEvent)
}
