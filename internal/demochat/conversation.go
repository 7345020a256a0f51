package demochat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayrahq/ayra/internal/clock"
	"github.com/ayrahq/ayra/internal/logging"
	"github.com/ayrahq/ayra/internal/models"
)

// DefaultReplyDelay is the "thinking" pause before Ayra answers.
const DefaultReplyDelay = 500 * time.Millisecond

// ErrEmptyMessage is returned for blank input.
var ErrEmptyMessage = errors.New("message is empty")

// Conversation is one demo chat transcript.
type Conversation struct {
	clock  clock.Clock
	delay  time.Duration
	logger zerolog.Logger

	mu       sync.Mutex
	messages []models.DemoMessage
	updates  chan struct{}
	wg       sync.WaitGroup
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithClock sets the clock used for the reply delay.
func WithClock(c clock.Clock) Option {
	return func(conv *Conversation) {
		if c != nil {
			conv.clock = c
		}
	}
}

// WithReplyDelay overrides DefaultReplyDelay.
func WithReplyDelay(d time.Duration) Option {
	return func(conv *Conversation) {
		if d >= 0 {
			conv.delay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(conv *Conversation) {
		conv.logger = logger
	}
}

// NewConversation starts a transcript with the greeting.
func NewConversation(opts ...Option) *Conversation {
	c := &Conversation{
		clock:   clock.Real(),
		delay:   DefaultReplyDelay,
		logger:  logging.Component("demochat"),
		updates: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.messages = []models.DemoMessage{{
		Role:      models.DemoRoleAyra,
		Content:   Greeting,
		Timestamp: c.clock.Now(),
	}}
	return c
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []models.DemoMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.DemoMessage(nil), c.messages...)
}

// Updates signals after every transcript change. Signals coalesce.
func (c *Conversation) Updates() <-chan struct{} {
	return c.updates
}

// Send appends the user message and answers in the background after the
// reply delay. The answer is dropped if ctx ends first.
func (c *Conversation) Send(ctx context.Context, text string) (models.DemoMessage, error) {
	msg, err := c.appendUser(text)
	if err != nil {
		return msg, err
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if _, err := c.answer(ctx, msg.Content); err != nil {
			c.logger.Debug().Err(err).Msg("demo reply dropped")
		}
	}()
	return msg, nil
}

// Ask appends the user message and blocks until the answer is appended.
func (c *Conversation) Ask(ctx context.Context, text string) (models.DemoMessage, error) {
	msg, err := c.appendUser(text)
	if err != nil {
		return msg, err
	}
	return c.answer(ctx, msg.Content)
}

// Wait blocks until background replies have been delivered or dropped.
func (c *Conversation) Wait() {
	c.wg.Wait()
}

func (c *Conversation) appendUser(text string) (models.DemoMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.DemoMessage{}, ErrEmptyMessage
	}

	msg := models.DemoMessage{Role: models.DemoRoleUser, Content: text, Timestamp: c.clock.Now()}
	c.append(msg)
	return msg, nil
}

func (c *Conversation) answer(ctx context.Context, question string) (models.DemoMessage, error) {
	timer := c.clock.NewTimer(c.delay)
	select {
	case <-ctx.Done():
		timer.Stop()
		return models.DemoMessage{}, ctx.Err()
	case <-timer.C():
	}

	reply := models.DemoMessage{Role: models.DemoRoleAyra, Content: Reply(question), Timestamp: c.clock.Now()}
	c.append(reply)
	return reply, nil
}

func (c *Conversation) append(msg models.DemoMessage) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()

	select {
	case c.updates <- struct{}{}:
	default:
	}
}
