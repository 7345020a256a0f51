// Package config loads Ayra configuration from file, environment and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ayrahq/ayra/internal/db"
	"github.com/ayrahq/ayra/internal/logging"
	"github.com/ayrahq/ayra/internal/models"
)

// EnvPrefix prefixes every environment override, e.g. AYRA_SITE_ADDR.
const EnvPrefix = "AYRA"

// Config is the full application configuration.
type Config struct {
	Logging  logging.Config `mapstructure:"logging"`
	Database db.Config      `mapstructure:"database"`
	Playback PlaybackConfig `mapstructure:"playback"`
	Demo     DemoConfig     `mapstructure:"demo"`
	Carousel CarouselConfig `mapstructure:"carousel"`
	Site     SiteConfig     `mapstructure:"site"`
	RPC      RPCConfig      `mapstructure:"rpc"`
	Redis    RedisConfig    `mapstructure:"redis"`
	TUI      TUIConfig      `mapstructure:"tui"`
}

// PlaybackConfig holds sequencer defaults.
type PlaybackConfig struct {
	BaseDelay       time.Duration `mapstructure:"base_delay"`
	Loop            bool          `mapstructure:"loop"`
	LoopPause       time.Duration `mapstructure:"loop_pause"`
	DefaultScenario string        `mapstructure:"default_scenario"`
	ProjectDir      string        `mapstructure:"project_dir"`
}

// DemoConfig holds demo chat settings.
type DemoConfig struct {
	ReplyDelay time.Duration `mapstructure:"reply_delay"`
}

// CarouselConfig holds contexts carousel settings.
type CarouselConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Autoplay bool          `mapstructure:"autoplay"`
}

// SiteConfig configures the HTTP landing site.
type SiteConfig struct {
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
}

// RPCConfig configures the gRPC daemon.
type RPCConfig struct {
	Enabled   bool            `mapstructure:"enabled"`
	Host      string          `mapstructure:"host"`
	Port      int             `mapstructure:"port"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig configures the gRPC token bucket shared by all methods.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// RedisConfig enables the redis preference backend.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// TUIConfig configures the terminal preview.
type TUIConfig struct {
	// Theme overrides the stored preference when set.
	Theme string `mapstructure:"theme"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Logging:  logging.DefaultConfig(),
		Database: db.DefaultConfig(),
		Playback: PlaybackConfig{
			BaseDelay:       1200 * time.Millisecond,
			Loop:            true,
			LoopPause:       2000 * time.Millisecond,
			DefaultScenario: "healthcare",
		},
		Demo:     DemoConfig{ReplyDelay: 500 * time.Millisecond},
		Carousel: CarouselConfig{Interval: 6 * time.Second, Autoplay: true},
		Site: SiteConfig{
			Addr:              "127.0.0.1:8080",
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   5 * time.Second,
			MetricsEnabled:    true,
		},
		RPC: RPCConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    50161,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerSecond: 20,
				Burst:             40,
			},
		},
		Redis: RedisConfig{Addr: "127.0.0.1:6379", Prefix: "ayra:pref:"},
	}
}

// DefaultDir returns $XDG_CONFIG_HOME/ayra, falling back to ~/.config/ayra.
func DefaultDir() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "ayra")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".ayra"
	}
	return filepath.Join(home, ".config", "ayra")
}

// Load reads configuration. An empty path searches DefaultDir for
// config.yaml; a missing file there is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Database.Path = ExpandHome(cfg.Database.Path)
	cfg.Logging.Output = ExpandHome(cfg.Logging.Output)
	cfg.Playback.ProjectDir = ExpandHome(cfg.Playback.ProjectDir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.rotation", d.Logging.Rotation)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)

	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("database.busy_timeout_ms", d.Database.BusyTimeoutMs)
	v.SetDefault("database.max_open_conns", d.Database.MaxOpenConns)

	v.SetDefault("playback.base_delay", d.Playback.BaseDelay)
	v.SetDefault("playback.loop", d.Playback.Loop)
	v.SetDefault("playback.loop_pause", d.Playback.LoopPause)
	v.SetDefault("playback.default_scenario", d.Playback.DefaultScenario)
	v.SetDefault("playback.project_dir", d.Playback.ProjectDir)

	v.SetDefault("demo.reply_delay", d.Demo.ReplyDelay)
	v.SetDefault("carousel.interval", d.Carousel.Interval)
	v.SetDefault("carousel.autoplay", d.Carousel.Autoplay)

	v.SetDefault("site.addr", d.Site.Addr)
	v.SetDefault("site.read_header_timeout", d.Site.ReadHeaderTimeout)
	v.SetDefault("site.shutdown_timeout", d.Site.ShutdownTimeout)
	v.SetDefault("site.allowed_origins", d.Site.AllowedOrigins)
	v.SetDefault("site.metrics_enabled", d.Site.MetricsEnabled)

	v.SetDefault("rpc.enabled", d.RPC.Enabled)
	v.SetDefault("rpc.host", d.RPC.Host)
	v.SetDefault("rpc.port", d.RPC.Port)
	v.SetDefault("rpc.rate_limit.enabled", d.RPC.RateLimit.Enabled)
	v.SetDefault("rpc.rate_limit.requests_per_second", d.RPC.RateLimit.RequestsPerSecond)
	v.SetDefault("rpc.rate_limit.burst", d.RPC.RateLimit.Burst)

	v.SetDefault("redis.enabled", d.Redis.Enabled)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.prefix", d.Redis.Prefix)

	v.SetDefault("tui.theme", d.TUI.Theme)
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	validation := &models.ValidationErrors{}
	if c.Playback.BaseDelay < 0 {
		validation.AddMessage("playback.base_delay", "must not be negative")
	}
	if c.Playback.LoopPause < 0 {
		validation.AddMessage("playback.loop_pause", "must not be negative")
	}
	if c.Demo.ReplyDelay < 0 {
		validation.AddMessage("demo.reply_delay", "must not be negative")
	}
	if c.Carousel.Interval <= 0 {
		validation.AddMessage("carousel.interval", "must be positive")
	}
	if strings.TrimSpace(c.Site.Addr) == "" {
		validation.AddMessage("site.addr", "is required")
	}
	if c.RPC.Enabled && (c.RPC.Port <= 0 || c.RPC.Port > 65535) {
		validation.AddMessage("rpc.port", "must be between 1 and 65535")
	}
	if c.RPC.RateLimit.Enabled && (c.RPC.RateLimit.RequestsPerSecond <= 0 || c.RPC.RateLimit.Burst <= 0) {
		validation.AddMessage("rpc.rate_limit", "requests_per_second and burst must be positive")
	}
	if c.Redis.Enabled && strings.TrimSpace(c.Redis.Addr) == "" {
		validation.AddMessage("redis.addr", "is required when redis is enabled")
	}
	if theme := strings.TrimSpace(c.TUI.Theme); theme != "" {
		if _, err := models.ParseTheme(theme); err != nil {
			validation.AddMessage("tui.theme", err.Error())
		}
	}
	return validation.Err()
}
