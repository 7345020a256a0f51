// Package carousel drives the contexts slideshow with optional autoplay.
package carousel

import (
	"context"
	"sync"
	"time"

	"github.com/ayrahq/ayra/internal/clock"
	"github.com/ayrahq/ayra/internal/models"
)

// DefaultInterval is the autoplay period.
const DefaultInterval = 6 * time.Second

// DefaultSlides returns the health, logistics and airport slides.
func DefaultSlides() []models.Slide {
	return []models.Slide{
		{
			Key:      "health",
			Image:    "/assets/phone/health.png",
			Title:    "Healthcare — Ayra Connect",
			Caption:  "On-call, rounds, critical alerts, stock & internal requests, all inside WhatsApp.",
			Scenario: "healthcare",
		},
		{
			Key:      "logistics",
			Image:    "/assets/phone/logistics.png",
			Title:    "Logistics hubs",
			Caption:  "Live ETAs, dock tasks, incidents and re-packaging; coordination between areas in seconds.",
			Scenario: "logistics",
		},
		{
			Key:      "airport",
			Image:    "/assets/phone/airport.png",
			Title:    "Airports",
			Caption:  "Crew paging, gate changes, handling coordination and operations, right in the chat.",
			Scenario: "airport",
		},
	}
}

// Snapshot is the visible carousel state.
type Snapshot struct {
	Index int          `json:"index"`
	Slide models.Slide `json:"slide"`
	Auto  bool         `json:"auto"`
	Total int          `json:"total"`
}

// Carousel holds the current slide and the autoplay flag.
type Carousel struct {
	clock    clock.Clock
	interval time.Duration
	slides   []models.Slide

	mu    sync.Mutex
	index int
	auto  bool

	kick    chan struct{}
	changes chan struct{}
}

// Option configures a Carousel.
type Option func(*Carousel)

// WithClock sets the autoplay clock.
func WithClock(c clock.Clock) Option {
	return func(cr *Carousel) {
		if c != nil {
			cr.clock = c
		}
	}
}

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(cr *Carousel) {
		if d > 0 {
			cr.interval = d
		}
	}
}

// New creates a carousel with autoplay on. Empty slides fall back to
// DefaultSlides.
func New(slides []models.Slide, opts ...Option) *Carousel {
	if len(slides) == 0 {
		slides = DefaultSlides()
	}
	c := &Carousel{
		clock:    clock.Real(),
		interval: DefaultInterval,
		slides:   append([]models.Slide(nil), slides...),
		auto:     true,
		kick:     make(chan struct{}, 1),
		changes:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Slides returns the slides in order.
func (c *Carousel) Slides() []models.Slide {
	return append([]models.Slide(nil), c.slides...)
}

// Current returns the visible state.
func (c *Carousel) Current() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Carousel) snapshotLocked() Snapshot {
	return Snapshot{Index: c.index, Slide: c.slides[c.index], Auto: c.auto, Total: len(c.slides)}
}

// Next moves forward one slide and stops autoplay.
func (c *Carousel) Next() Snapshot {
	return c.manual(1)
}

// Prev moves back one slide and stops autoplay.
func (c *Carousel) Prev() Snapshot {
	return c.manual(-1)
}

func (c *Carousel) manual(step int) Snapshot {
	c.mu.Lock()
	c.auto = false
	c.index = c.wrap(c.index + step)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.signal(c.kick)
	c.signal(c.changes)
	return snap
}

// Go jumps to slide i and stops autoplay. Out of range indexes are ignored.
func (c *Carousel) Go(i int) (Snapshot, bool) {
	c.mu.Lock()
	if i < 0 || i >= len(c.slides) {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, false
	}
	c.auto = false
	c.index = i
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.signal(c.kick)
	c.signal(c.changes)
	return snap, true
}

// GoKey jumps to the slide with the given key and stops autoplay.
func (c *Carousel) GoKey(key string) (Snapshot, bool) {
	for i, slide := range c.slides {
		if slide.Key == key {
			return c.Go(i)
		}
	}
	return c.Current(), false
}

// SetAuto turns autoplay on or off. Turning it on restarts the period.
func (c *Carousel) SetAuto(on bool) {
	c.mu.Lock()
	changed := c.auto != on
	c.auto = on
	c.mu.Unlock()

	if changed {
		c.signal(c.kick)
		c.signal(c.changes)
	}
}

// ToggleAuto flips autoplay and returns the new value.
func (c *Carousel) ToggleAuto() bool {
	c.mu.Lock()
	c.auto = !c.auto
	on := c.auto
	c.mu.Unlock()

	c.signal(c.kick)
	c.signal(c.changes)
	return on
}

// Changes signals after every visible change. Signals coalesce.
func (c *Carousel) Changes() <-chan struct{} {
	return c.changes
}

// Run drives autoplay until ctx is done.
func (c *Carousel) Run(ctx context.Context) error {
	for {
		var (
			timer clock.Timer
			fired <-chan time.Time
		)
		c.mu.Lock()
		auto := c.auto
		c.mu.Unlock()
		if auto {
			timer = c.clock.NewTimer(c.interval)
			fired = timer.C()
		}

		select {
		case <-ctx.Done():
			stopTimer(timer)
			return nil
		case <-c.kick:
			stopTimer(timer)
		case <-fired:
			c.tick()
		}
	}
}

func (c *Carousel) tick() {
	c.mu.Lock()
	if !c.auto {
		c.mu.Unlock()
		return
	}
	c.index = c.wrap(c.index + 1)
	c.mu.Unlock()

	c.signal(c.changes)
}

func (c *Carousel) wrap(i int) int {
	n := len(c.slides)
	return ((i % n) + n) % n
}

func (c *Carousel) signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func stopTimer(t clock.Timer) {
	if t != nil {
		t.Stop()
	}
}
