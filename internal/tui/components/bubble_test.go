package components

import (
	"strings"
	"testing"

	"github.com/ayrahq/ayra/internal/models"
	"github.com/ayrahq/ayra/internal/playback"
	"github.com/ayrahq/ayra/internal/tui/styles"
)

func TestRenderBubble(t *testing.T) {
	styleSet := styles.DefaultStyles()

	tests := []struct {
		name    string
		step    models.ChatStep
		want    []string
		notWant []string
	}{
		{
			name: "outgoing with read check",
			step: models.ChatStep{Origin: models.OriginOutgoing, Text: "Page them", Timestamp: "09:42", Delivery: models.DeliveryRead},
			want: []string{"Page them", "09:42", "✓✓"},
		},
		{
			name:    "incoming ignores delivery",
			step:    models.ChatStep{Origin: models.OriginIncoming, Text: "Paged.", Delivery: models.DeliverySent},
			want:    []string{"Paged."},
			notWant: []string{"✓"},
		},
		{
			name:    "typing indicator",
			step:    models.ChatStep{Origin: models.OriginIncoming, Typing: true, Text: "hidden", Timestamp: "09:41"},
			want:    []string{"typing…"},
			notWant: []string{"hidden", "09:41"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderBubble(styleSet, tt.step, 60)
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Fatalf("expected %q in %q", want, out)
				}
			}
			for _, unwanted := range tt.notWant {
				if strings.Contains(out, unwanted) {
					t.Fatalf("did not expect %q in %q", unwanted, out)
				}
			}
		})
	}
}

func TestRenderBubbleAlignment(t *testing.T) {
	styleSet := styles.DefaultStyles()

	out := RenderBubble(styleSet, models.ChatStep{Origin: models.OriginOutgoing, Text: "hi"}, 40)
	if !strings.HasPrefix(out, " ") {
		t.Fatalf("outgoing bubble should be right aligned: %q", out)
	}
	in := RenderBubble(styleSet, models.ChatStep{Origin: models.OriginIncoming, Text: "hi"}, 40)
	if strings.HasPrefix(in, "  ") {
		t.Fatalf("incoming bubble should be left aligned: %q", in)
	}
}

func TestRenderPhone(t *testing.T) {
	styleSet := styles.DefaultStyles()

	empty := RenderPhone(styleSet, "Ayra Connect", nil, 50)
	if !strings.Contains(empty, "Ayra Connect") || !strings.Contains(empty, "Waiting for the first message") {
		t.Fatalf("unexpected empty phone: %s", empty)
	}

	full := RenderPhone(styleSet, "Ayra Connect", []models.ChatStep{
		{Origin: models.OriginOutgoing, Text: "Who is on call?"},
		{Origin: models.OriginIncoming, Text: "Dr. Ortega."},
	}, 50)
	if !strings.Contains(full, "Who is on call?") || !strings.Contains(full, "Dr. Ortega.") {
		t.Fatalf("unexpected phone: %s", full)
	}
}

func TestRenderPlaybackBadge(t *testing.T) {
	styleSet := styles.DefaultStyles()
	tests := map[playback.State]string{
		playback.StateIdle:      "Idle",
		playback.StateRevealing: "Playing",
		playback.StatePausing:   "Looping",
		playback.StateFinished:  "Finished",
		playback.StateCancelled: "Stopped",
	}
	for state, want := range tests {
		if got := RenderPlaybackBadge(styleSet, state); !strings.Contains(got, want) {
			t.Fatalf("RenderPlaybackBadge(%s) = %q, want %q", state, got, want)
		}
	}
}
