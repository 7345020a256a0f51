// Package logging configures the process-wide zerolog logger for Ayra.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Format is "json" or "console".
	Format string `mapstructure:"format"`

	// Output is a file path; empty or "stderr" logs to stderr.
	Output string `mapstructure:"output"`

	// Rotation enables lumberjack rotation for file output.
	Rotation   bool `mapstructure:"rotation"`
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
}

// DefaultConfig logs info-level console output to stderr.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Rotation:   true,
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 14,
	}
}

var (
	mu     sync.RWMutex
	base   = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	closer io.Closer
)

// Init replaces the base logger. It is safe to call more than once.
func Init(cfg Config) error {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var (
		writer    io.Writer = os.Stderr
		newCloser io.Closer
	)

	output := strings.TrimSpace(cfg.Output)
	if output != "" && output != "stderr" {
		if output == "stdout" {
			writer = os.Stdout
		} else if cfg.Rotation {
			rotating := &lumberjack.Logger{
				Filename:   output,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
				Compress:   true,
			}
			writer, newCloser = rotating, rotating
		} else {
			file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return err
			}
			writer, newCloser = file, file
		}
	}

	if strings.EqualFold(cfg.Format, "console") || strings.EqualFold(cfg.Format, "text") {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.Kitchen}
	}

	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		_ = closer.Close()
	}
	closer = newCloser
	base = zerolog.New(writer).With().Timestamp().Logger().Level(level)
	return nil
}

// Logger returns the base logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Component returns a logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

// Close releases the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}
