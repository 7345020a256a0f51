package preferences

import (
	"context"
	"errors"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ayrahq/ayra/internal/db"
	"github.com/ayrahq/ayra/internal/models"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []*models.Event
}

func (r *recordingRepo) Create(_ context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("backend down")
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("backend down")
}

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	database, err := db.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	_, err = database.MigrateUp(context.Background())
	require.NoError(t, err)
	return db.NewPreferenceRepository(database)
}

func newRedisStore(t *testing.T) Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "")
}

func TestThemeStoreBackends(t *testing.T) {
	backends := map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"sqlite": newSQLiteStore,
		"redis":  newRedisStore,
	}

	for name, build := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			themes := NewThemeStore(build(t), WithLogger(zerolog.Nop()))

			theme, err := themes.Theme(ctx)
			require.NoError(t, err)
			require.Equal(t, models.ThemeDark, theme)

			require.NoError(t, themes.SetTheme(ctx, models.ThemeLight))
			theme, err = themes.Theme(ctx)
			require.NoError(t, err)
			require.Equal(t, models.ThemeLight, theme)

			next, err := themes.Toggle(ctx)
			require.NoError(t, err)
			require.Equal(t, models.ThemeDark, next)
		})
	}
}

func TestThemeStoreIgnoresUnknownStoredValue(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, models.ThemePreferenceKey, "sepia"))

	theme, err := NewThemeStore(store, WithLogger(zerolog.Nop())).Theme(ctx)
	require.NoError(t, err)
	require.Equal(t, models.DefaultTheme, theme)
}

func TestThemeStoreRejectsInvalidTheme(t *testing.T) {
	themes := NewThemeStore(NewMemoryStore(), WithLogger(zerolog.Nop()))
	err := themes.SetTheme(context.Background(), models.Theme("neon"))
	require.ErrorIs(t, err, ErrInvalidTheme)
}

func TestThemeStoreBackendError(t *testing.T) {
	themes := NewThemeStore(failingStore{}, WithLogger(zerolog.Nop()))
	theme, err := themes.Theme(context.Background())
	require.Error(t, err)
	require.Equal(t, models.DefaultTheme, theme)

	_, err = themes.Toggle(context.Background())
	require.Error(t, err)
}

func TestThemeStoreSubscribe(t *testing.T) {
	ctx := context.Background()
	repo := &recordingRepo{}
	themes := NewThemeStore(NewMemoryStore(), WithEventRepository(repo), WithLogger(zerolog.Nop()))

	var seen []models.Theme
	unsubscribe := themes.Subscribe(func(theme models.Theme) {
		seen = append(seen, theme)
	})

	require.NoError(t, themes.SetTheme(ctx, models.ThemeDark)) // unchanged from default
	_, err := themes.Toggle(ctx)
	require.NoError(t, err)
	require.NoError(t, themes.SetTheme(ctx, models.ThemeDark))

	unsubscribe()
	unsubscribe()
	_, err = themes.Toggle(ctx)
	require.NoError(t, err)

	require.Equal(t, []models.Theme{models.ThemeLight, models.ThemeDark}, seen)
	require.Len(t, repo.events, 3)
	require.Equal(t, models.EventTypeThemeChanged, repo.events[0].Type)
}

func TestThemeStoreNotifiesInWriteOrder(t *testing.T) {
	ctx := context.Background()
	themes := NewThemeStore(NewMemoryStore(), WithLogger(zerolog.Nop()))

	var (
		mu   sync.Mutex
		seen []models.Theme
	)
	themes.Subscribe(func(theme models.Theme) {
		mu.Lock()
		seen = append(seen, theme)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%5 == 0 {
				_ = themes.SetTheme(ctx, models.ThemeLight)
				return
			}
			_, _ = themes.Toggle(ctx)
		}()
	}
	wg.Wait()

	stored, err := themes.Theme(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, seen)
	require.Equal(t, stored, seen[len(seen)-1])
	// Every notification is a change, so consecutive ones differ.
	for i := 1; i < len(seen); i++ {
		require.NotEqual(t, seen[i-1], seen[i], "notification %d repeats the previous theme", i)
	}
}
