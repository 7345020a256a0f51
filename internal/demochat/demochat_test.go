package demochat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ayrahq/ayra/internal/clock"
	"github.com/ayrahq/ayra/internal/models"
)

func TestReply(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"on call neuro", "Who is ON CALL in Neurosurgery?", onCallReply},
		{"on call without neuro", "who is on call in cardiology", fallbackReply},
		{"pharmacy", "pharmacy levels?", pharmacyReply},
		{"stock", "check stock", pharmacyReply},
		{"eta", "what's the ETA", logisticsReply},
		{"logistics", "Logistics update", logisticsReply},
		{"pharmacy before eta", "pharmacy eta", pharmacyReply},
		{"substring eta", "beta blockers", logisticsReply},
		{"fallback", "hello", fallbackReply},
		{"empty", "", fallbackReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reply(tt.question); got != tt.want {
				t.Fatalf("Reply(%q) = %q, want %q", tt.question, got, tt.want)
			}
		})
	}
}

func newFakeConversation(t *testing.T) (*Conversation, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	return NewConversation(WithClock(fake), WithLogger(zerolog.Nop())), fake
}

func TestConversationStartsWithGreeting(t *testing.T) {
	conv, _ := newFakeConversation(t)
	msgs := conv.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, models.DemoRoleAyra, msgs[0].Role)
	require.Equal(t, Greeting, msgs[0].Content)
}

func TestConversationSendRepliesAfterDelay(t *testing.T) {
	conv, fake := newFakeConversation(t)

	msg, err := conv.Send(context.Background(), "  check pharmacy  ")
	require.NoError(t, err)
	require.Equal(t, "check pharmacy", msg.Content)
	require.Len(t, conv.Messages(), 2)

	fake.BlockUntil(1)
	fake.Advance(499 * time.Millisecond)
	require.Len(t, conv.Messages(), 2)

	fake.Advance(time.Millisecond)
	conv.Wait()

	msgs := conv.Messages()
	require.Len(t, msgs, 3)
	require.Equal(t, models.DemoRoleAyra, msgs[2].Role)
	require.Equal(t, pharmacyReply, msgs[2].Content)
}

func TestConversationRejectsEmpty(t *testing.T) {
	conv, _ := newFakeConversation(t)
	_, err := conv.Send(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if got := len(conv.Messages()); got != 1 {
		t.Fatalf("transcript grew on empty input: %d", got)
	}
}

func TestConversationAskCancelled(t *testing.T) {
	conv, fake := newFakeConversation(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := conv.Ask(ctx, "eta?")
		done <- err
	}()

	fake.BlockUntil(1)
	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatalf("Ask did not return after cancel")
	}
	require.Len(t, conv.Messages(), 2)
	require.Equal(t, 0, fake.Pending())
}

func TestConversationAskRealClock(t *testing.T) {
	conv := NewConversation(WithReplyDelay(time.Millisecond), WithLogger(zerolog.Nop()))
	reply, err := conv.Ask(context.Background(), "logistics")
	require.NoError(t, err)
	require.Equal(t, logisticsReply, reply.Content)

	select {
	case <-conv.Updates():
	default:
		t.Fatalf("expected an update signal")
	}
}
