package playback

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ayrahq/ayra/internal/clock"
	"github.com/ayrahq/ayra/internal/models"
)

// Session is one run-through, possibly looping, of a scenario.
//
// Events must be drained: the session waits for each event to be received
// before scheduling the next one, and measures every wait from the scheduled
// instant of the previous event so a slow reader does not stretch the script.
type Session struct {
	id       string
	scenario string
	steps    []models.ChatStep
	cfg      Config

	clock    clock.Clock
	logger   zerolog.Logger
	recorder Recorder

	events     chan Event
	done       chan struct{}
	exited     chan struct{}
	cancelOnce sync.Once

	mu        sync.Mutex
	state     State
	prefix    []models.ChatStep
	index     int
	iteration int
	seq       int
	cancelled bool
}

func newSession(scenario *models.Scenario, cfg Config, clk clock.Clock, logger zerolog.Logger, recorder Recorder) *Session {
	var (
		name  string
		steps []models.ChatStep
	)
	if scenario != nil {
		name = scenario.Name
		steps = append([]models.ChatStep(nil), scenario.Steps...)
	}

	id := uuid.New().String()
	s := &Session{
		id:       id,
		scenario: name,
		steps:    steps,
		cfg:      cfg,
		clock:    clk,
		logger:   logger.With().Str("session_id", id).Str("scenario", name).Logger(),
		recorder: recorder,
		events:   make(chan Event),
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
		state:    StateIdle,
		prefix:   make([]models.ChatStep, 0, len(steps)),
	}

	for i, step := range steps {
		if step.DelayMs != nil && *step.DelayMs < 0 {
			s.logger.Warn().Int("step", i).Int64("delay_ms", *step.DelayMs).Msg("negative reveal delay clamped to zero")
		}
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Scenario returns the scenario name.
func (s *Session) Scenario() string {
	return s.scenario
}

// Len returns the number of steps in the scenario.
func (s *Session) Len() int {
	return len(s.steps)
}

// Config returns the normalized session configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// Events returns the ordered reveal events. The channel is closed when the
// session finishes or is cancelled.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Done is closed once the session goroutine has exited.
func (s *Session) Done() <-chan struct{} {
	return s.exited
}

// Wait blocks until the session goroutine has exited.
func (s *Session) Wait() {
	<-s.exited
}

// Cancel marks the session cancelled. It is idempotent and never blocks. Prefix
// and State stop changing once it returns, but a reader already blocked on
// Events may still receive the one event being sent concurrently. Use Wait, or
// Sequencer.Cancel, when no further event may be delivered.
func (s *Session) Cancel() {
	s.cancelOnce.Do(func() {
		s.mu.Lock()
		s.cancelled = true
		if !s.state.Terminal() {
			s.state = StateCancelled
		}
		s.mu.Unlock()
		close(s.done)
	})
}

// Prefix returns a copy of the revealed prefix.
func (s *Session) Prefix() []models.ChatStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatStep(nil), s.prefix...)
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Iteration returns the zero-based loop iteration.
func (s *Session) Iteration() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.iteration
}

func (s *Session) run(ctx context.Context) {
	defer close(s.exited)
	defer close(s.events)
	defer func() {
		final := s.State()
		s.recorder.SessionEnded(s.scenario, final)
		s.logger.Debug().Str("state", final.String()).Int("iteration", s.Iteration()).Msg("playback session ended")
	}()

	s.recorder.SessionStarted(s.scenario)
	if !s.transition(StateRevealing) {
		return
	}
	s.logger.Debug().
		Int("steps", len(s.steps)).
		Bool("loop", s.cfg.Loop).
		Dur("base_delay", s.cfg.BaseDelay).
		Msg("playback session started")

	mark := s.clock.Now()
	for {
		s.mu.Lock()
		state, index := s.state, s.index
		s.mu.Unlock()

		switch state {
		case StateRevealing:
			if index >= len(s.steps) {
				next := StateFinished
				if s.cfg.Loop {
					next = StatePausing
				}
				if !s.transition(next) || next == StateFinished {
					return
				}
				continue
			}

			at := mark.Add(s.steps[index].RevealDelay(s.cfg.BaseDelay))
			if !s.sleepUntil(ctx, at) {
				return
			}
			event, ok := s.reveal(index, at)
			if !ok {
				return
			}
			mark = at
			s.recorder.StepRevealed(s.scenario)
			if !s.emit(ctx, event) {
				return
			}

		case StatePausing:
			at := mark.Add(s.cfg.LoopPause)
			if !s.sleepUntil(ctx, at) {
				return
			}
			event, ok := s.reset(at)
			if !ok {
				return
			}
			mark = at
			s.recorder.LoopRestarted(s.scenario)
			if !s.emit(ctx, event) {
				return
			}

		default:
			return
		}
	}
}

// transition moves to next unless the session was cancelled.
func (s *Session) transition(next State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return false
	}
	s.state = next
	return true
}

// sleepUntil suspends until deadline. It reports false when the session was
// cancelled while waiting.
func (s *Session) sleepUntil(ctx context.Context, deadline time.Time) bool {
	timer := s.clock.NewTimer(deadline.Sub(s.clock.Now()))
	select {
	case <-timer.C():
		return true
	case <-s.done:
		timer.Stop()
		return false
	case <-ctx.Done():
		timer.Stop()
		s.Cancel()
		return false
	}
}

func (s *Session) reveal(index int, at time.Time) (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return Event{}, false
	}

	s.prefix = append(s.prefix, s.steps[index])
	s.index = index + 1
	s.seq++
	return Event{
		SessionID: s.id,
		Scenario:  s.scenario,
		Seq:       s.seq,
		Iteration: s.iteration,
		Kind:      EventReveal,
		Index:     index,
		Prefix:    append([]models.ChatStep(nil), s.prefix...),
		At:        at,
	}, true
}

func (s *Session) reset(at time.Time) (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return Event{}, false
	}

	s.prefix = s.prefix[:0]
	s.index = 0
	s.iteration++
	s.seq++
	s.state = StateRevealing
	return Event{
		SessionID: s.id,
		Scenario:  s.scenario,
		Seq:       s.seq,
		Iteration: s.iteration,
		Kind:      EventReset,
		Index:     -1,
		Prefix:    []models.ChatStep{},
		At:        at,
	}, true
}

func (s *Session) emit(ctx context.Context, event Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.events <- event:
		return true
	case <-s.done:
		return false
	case <-ctx.Done():
		s.Cancel()
		return false
	}
}
