package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ayrahq/ayra/internal/config"
	"github.com/ayrahq/ayra/internal/db"
	"github.com/ayrahq/ayra/internal/logging"
	"github.com/ayrahq/ayra/internal/playback"
	"github.com/ayrahq/ayra/internal/preferences"
	"github.com/ayrahq/ayra/internal/scenarios"
)

// openDatabase opens the configured database and applies migrations.
func openDatabase() (*db.DB, error) {
	cfg := currentConfig()
	database, err := db.Open(cfg.Database)
	if err != nil {
		return nil, &PreflightError{
			Message:  "failed to open database",
			Hint:     fmt.Sprintf("Check database.path (%s) or run `ayra init`", cfg.Database.Path),
			NextStep: "ayra init",
			Err:      err,
		}
	}
	if _, err := database.MigrateUp(context.Background()); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return database, nil
}

func loadCatalog() (*scenarios.Catalog, error) {
	catalog, err := scenarios.LoadCatalog(currentConfig().Playback.ProjectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenarios: %w", err)
	}
	return catalog, nil
}

// preferenceStore returns the redis store when enabled, otherwise the
// database. The closer releases the redis client.
func preferenceStore(database *db.DB) (preferences.Store, io.Closer, error) {
	cfg := currentConfig().Redis
	if !cfg.Enabled {
		return db.NewPreferenceRepository(database), io.NopCloser(nil), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	progress := startProgress("Connecting to redis at " + cfg.Addr)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		progress.Fail(err)
		client.Close()
		return nil, nil, &PreflightError{
			Message: "failed to reach redis",
			Hint:    fmt.Sprintf("Start redis at %s or set redis.enabled=false", cfg.Addr),
			Err:     err,
		}
	}
	progress.Done()
	return preferences.NewRedisStore(client, cfg.Prefix), client, nil
}

func newThemeStore(database *db.DB) (*preferences.ThemeStore, io.Closer, error) {
	store, closer, err := preferenceStore(database)
	if err != nil {
		return nil, nil, err
	}
	themes := preferences.NewThemeStore(store,
		preferences.WithEventRepository(db.NewEventRepository(database)),
		preferences.WithLogger(logging.Component("preferences")),
	)
	return themes, closer, nil
}

func playbackConfig(cfg *config.Config) playback.Config {
	return playback.Config{
		BaseDelay: cfg.Playback.BaseDelay,
		Loop:      cfg.Playback.Loop,
		LoopPause: cfg.Playback.LoopPause,
	}
}
