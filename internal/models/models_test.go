package models

import (
	"testing"
	"time"
)

func TestRevealDelay(t *testing.T) {
	base := 1200 * time.Millisecond
	tests := []struct {
		name  string
		delay *int64
		want  time.Duration
	}{
		{"base", nil, base},
		{"explicit", Delay(900), 900 * time.Millisecond},
		{"zero", Delay(0), 0},
		{"negative clamps", Delay(-5), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step := ChatStep{Origin: OriginIncoming, Text: "x", DelayMs: tt.delay}
			if got := step.RevealDelay(base); got != tt.want {
				t.Fatalf("RevealDelay() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestScenarioTotalDuration(t *testing.T) {
	sc := &Scenario{Steps: []ChatStep{
		{Origin: OriginIncoming, Text: "a", DelayMs: Delay(900)},
		{Origin: OriginOutgoing, Text: "b"},
		{Origin: OriginIncoming, Typing: true, DelayMs: Delay(700)},
	}}
	if got := sc.TotalDuration(time.Second); got != 2600*time.Millisecond {
		t.Fatalf("TotalDuration() = %s", got)
	}
	var empty *Scenario
	if empty.Len() != 0 || empty.TotalDuration(time.Second) != 0 {
		t.Fatal("nil scenario should be empty")
	}
}

func TestParseOrigin(t *testing.T) {
	for raw, want := range map[string]Origin{"in": OriginIncoming, " Outgoing ": OriginOutgoing, "OUT": OriginOutgoing} {
		got, err := ParseOrigin(raw)
		if err != nil || got != want {
			t.Fatalf("ParseOrigin(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParseOrigin("sideways"); err == nil {
		t.Fatal("expected error for unknown origin")
	}
}

func TestTheme(t *testing.T) {
	theme, err := ParseTheme(" Light ")
	if err != nil || theme != ThemeLight {
		t.Fatalf("ParseTheme() = %q, %v", theme, err)
	}
	if _, err := ParseTheme("sepia"); err == nil {
		t.Fatal("expected error for unknown theme")
	}
	if ThemeDark.Toggled() != ThemeLight || ThemeLight.Toggled() != ThemeDark {
		t.Fatal("Toggled() should flip dark and light")
	}
	if !Theme("").IsDark() || ThemeLight.IsDark() {
		t.Fatal("IsDark() should treat unknown themes as dark")
	}
}

func TestEventValidate(t *testing.T) {
	if err := (&Event{}).Validate(); err == nil {
		t.Fatal("expected validation error for empty event")
	}
	ev := &Event{Type: EventTypeDemoAsked, EntityType: EntityTypeDemo, EntityID: "conv-1"}
	if err := ev.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}
