// Package playback reveals scripted chat scenarios one bubble at a time.
//
// A Sequencer owns at most one Session. Each Session runs a small state
// machine (revealing, pausing, finished, cancelled) on its own goroutine and
// publishes the growing revealed prefix on an ordered channel.
package playback

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayrahq/ayra/internal/clock"
	"github.com/ayrahq/ayra/internal/logging"
	"github.com/ayrahq/ayra/internal/models"
)

const (
	// DefaultBaseDelay applies to steps without their own delay.
	DefaultBaseDelay = 1200 * time.Millisecond

	// DefaultLoopPause is the pause between the last reveal and a restart.
	DefaultLoopPause = 2000 * time.Millisecond
)

// Config controls one playback session.
type Config struct {
	// BaseDelay is used for steps without DelayMs. Negative values mean zero.
	BaseDelay time.Duration

	// Loop restarts the scenario after LoopPause until cancelled.
	Loop bool

	// LoopPause is the inter-loop pause. Non-positive means DefaultLoopPause.
	LoopPause time.Duration
}

// DefaultConfig returns the landing page defaults: 1.2s base delay, looping.
func DefaultConfig() Config {
	return Config{
		BaseDelay: DefaultBaseDelay,
		Loop:      true,
		LoopPause: DefaultLoopPause,
	}
}

func (c Config) normalized() Config {
	if c.BaseDelay < 0 {
		c.BaseDelay = 0
	}
	if c.LoopPause <= 0 {
		c.LoopPause = DefaultLoopPause
	}
	return c
}

// Sequencer plays scenarios, one session at a time.
type Sequencer struct {
	clock    clock.Clock
	logger   zerolog.Logger
	recorder Recorder

	mu      sync.Mutex
	current *Session
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithClock sets the clock used for reveal timers.
func WithClock(c clock.Clock) Option {
	return func(q *Sequencer) {
		if c != nil {
			q.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(q *Sequencer) {
		q.logger = logger
	}
}

// WithRecorder sets the lifecycle recorder.
func WithRecorder(r Recorder) Option {
	return func(q *Sequencer) {
		if r != nil {
			q.recorder = r
		}
	}
}

// New creates a Sequencer.
func New(opts ...Option) *Sequencer {
	q := &Sequencer{
		clock:    clock.Real(),
		logger:   logging.Component("playback"),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start cancels the running session, waits for it to stop, and starts a new
// one. A nil scenario plays as an empty one. The session also ends when ctx
// is done.
func (q *Sequencer) Start(ctx context.Context, scenario *models.Scenario, cfg Config) *Session {
	if ctx == nil {
		ctx = context.Background()
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.current != nil {
		q.current.Cancel()
		<-q.current.exited
	}

	s := newSession(scenario, cfg.normalized(), q.clock, q.logger, q.recorder)
	q.current = s
	go s.run(ctx)
	return s
}

// Cancel stops the running session, if any, and waits for it to exit.
func (q *Sequencer) Cancel() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.current == nil {
		return
	}
	q.current.Cancel()
	<-q.current.exited
}

// Current returns the most recent session, or nil.
func (q *Sequencer) Current() *Session {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current
}

// Snapshot returns the revealed prefix and state of the current session.
func (q *Sequencer) Snapshot() ([]models.ChatStep, State) {
	s := q.Current()
	if s == nil {
		return nil, StateIdle
	}
	return s.Prefix(), s.State()
}
