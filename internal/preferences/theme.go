package preferences

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ayrahq/ayra/internal/events"
	"github.com/ayrahq/ayra/internal/logging"
	"github.com/ayrahq/ayra/internal/models"
)

// ErrInvalidTheme is returned when setting an unknown theme.
var ErrInvalidTheme = errors.New("invalid theme")

// ThemeStore reads and writes the theme preference and notifies
// subscribers of changes.
type ThemeStore struct {
	store  Store
	events events.Repository
	logger zerolog.Logger

	// writeMu orders writes with their notifications so subscribers see
	// changes in the order they were stored.
	writeMu sync.Mutex

	mu     sync.Mutex
	subs   map[int]func(models.Theme)
	nextID int
}

// ThemeOption configures a ThemeStore.
type ThemeOption func(*ThemeStore)

// WithEventRepository records theme.changed events.
func WithEventRepository(repo events.Repository) ThemeOption {
	return func(s *ThemeStore) {
		if repo != nil {
			s.events = repo
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) ThemeOption {
	return func(s *ThemeStore) {
		s.logger = logger
	}
}

// NewThemeStore creates a ThemeStore backed by store.
func NewThemeStore(store Store, opts ...ThemeOption) *ThemeStore {
	s := &ThemeStore{
		store:  store,
		events: events.Discard,
		logger: logging.Component("preferences"),
		subs:   make(map[int]func(models.Theme)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Theme returns the stored theme. Missing or unknown values yield the
// default theme; backend errors are returned alongside it.
func (s *ThemeStore) Theme(ctx context.Context) (models.Theme, error) {
	raw, ok, err := s.store.Get(ctx, models.ThemePreferenceKey)
	if err != nil {
		return models.DefaultTheme, fmt.Errorf("read theme: %w", err)
	}
	if !ok {
		return models.DefaultTheme, nil
	}
	theme, err := models.ParseTheme(raw)
	if err != nil {
		s.logger.Warn().Str("value", raw).Msg("ignoring unknown stored theme")
		return models.DefaultTheme, nil
	}
	return theme, nil
}

// SetTheme stores theme and notifies subscribers when it changed.
func (s *ThemeStore) SetTheme(ctx context.Context, theme models.Theme) error {
	parsed, err := models.ParseTheme(string(theme))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	old, changed, err := s.setLocked(ctx, parsed)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if changed {
		s.changed(ctx, old, parsed)
	}
	return nil
}

// Toggle flips between dark and light and returns the new theme.
func (s *ThemeStore) Toggle(ctx context.Context) (models.Theme, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	current, err := s.Theme(ctx)
	if err != nil {
		s.mu.Unlock()
		return current, err
	}
	next := current.Toggled()
	_, _, err = s.setLocked(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return current, err
	}

	s.changed(ctx, current, next)
	return next, nil
}

func (s *ThemeStore) setLocked(ctx context.Context, theme models.Theme) (models.Theme, bool, error) {
	old, err := s.Theme(ctx)
	if err != nil {
		return old, false, err
	}
	if err := s.store.Set(ctx, models.ThemePreferenceKey, string(theme)); err != nil {
		return old, false, fmt.Errorf("write theme: %w", err)
	}
	return old, old != theme, nil
}

// Subscribe registers fn for theme changes and returns an unsubscribe func.
// Notifications arrive in write order; fn must not set the theme itself.
func (s *ThemeStore) Subscribe(fn func(models.Theme)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *ThemeStore) changed(ctx context.Context, old, next models.Theme) {
	if err := events.LogThemeChanged(ctx, s.events, old, next); err != nil {
		s.logger.Warn().Err(err).Msg("failed to log theme change")
	}
	s.logger.Debug().Str("from", string(old)).Str("to", string(next)).Msg("theme changed")

	s.mu.Lock()
	subs := make([]func(models.Theme), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}
