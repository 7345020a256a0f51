package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/ayrahq/ayra/internal/demochat"
	"github.com/ayrahq/ayra/internal/models"
	"github.com/ayrahq/ayra/internal/playback"
	"github.com/ayrahq/ayra/internal/preferences"
	"github.com/ayrahq/ayra/internal/scenarios"
)

func testCatalog(t *testing.T) *scenarios.Catalog {
	t.Helper()
	builtins, err := scenarios.LoadBuiltinScenarios()
	if err != nil {
		t.Fatalf("LoadBuiltinScenarios() error = %v", err)
	}
	quick := &models.Scenario{Name: "quick", Title: "Quick chat", Steps: []models.ChatStep{
		{Origin: models.OriginOutgoing, Text: "ping", DelayMs: models.Delay(0)},
		{Origin: models.OriginIncoming, Text: "pong", DelayMs: models.Delay(0)},
	}}
	return scenarios.NewCatalog(append(builtins, quick))
}

func newTestModel(t *testing.T, opts Options) *model {
	t.Helper()
	if opts.Catalog == nil {
		opts.Catalog = testCatalog(t)
	}
	if opts.Playback == (playback.Config{}) {
		opts.Playback = playback.Config{BaseDelay: time.Millisecond, LoopPause: time.Millisecond}
	}
	opts.Logger = zerolog.Nop()

	ctx, cancel := context.WithCancel(context.Background())
	m, err := newModel(ctx, opts)
	if err != nil {
		t.Fatalf("newModel() error = %v", err)
	}
	t.Cleanup(func() {
		cancel()
		m.close()
	})
	return m
}

func TestNewModelKeepsZeroPlaybackConfig(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m, err := newModel(ctx, Options{Catalog: testCatalog(t), Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("newModel() error = %v", err)
	}
	t.Cleanup(func() {
		cancel()
		m.close()
	})
	if m.opts.Playback != (playback.Config{}) {
		t.Fatalf("playback config = %+v, want zero", m.opts.Playback)
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// drain feeds playback messages back into the model until the session ends.
func drain(t *testing.T, m *model, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 100 {
			t.Fatal("playback did not end")
		}
		msg := cmd()
		_, cmd = m.Update(msg)
		if _, ok := msg.(PlaybackEndedMsg); ok {
			return
		}
	}
}

func TestNewModelRequiresCatalog(t *testing.T) {
	if _, err := newModel(context.Background(), Options{}); err == nil {
		t.Fatal("expected error without a catalog")
	}
}

func TestViewNavigation(t *testing.T) {
	m := newTestModel(t, Options{})

	steps := []struct {
		key  string
		want viewID
	}{
		{"2", viewContexts},
		{"3", viewDemo},
		{"tab", viewChat},
		{"tab", viewContexts},
		{"1", viewChat},
	}
	for _, step := range steps {
		m.Update(key(step.key))
		if m.view != step.want {
			t.Fatalf("after %q view = %d, want %d", step.key, m.view, step.want)
		}
	}
}

func TestPlaybackRevealsIntoPhone(t *testing.T) {
	m := newTestModel(t, Options{Scenario: "quick"})

	_, cmd := m.Update(playMsg{Scenario: "quick"})
	if cmd == nil {
		t.Fatal("expected a command waiting for reveals")
	}
	drain(t, m, cmd)

	if m.state != playback.StateFinished {
		t.Fatalf("state = %s, want finished", m.state)
	}
	if len(m.prefix) != 2 {
		t.Fatalf("revealed %d steps, want 2", len(m.prefix))
	}

	view := m.View()
	for _, want := range []string{"Quick chat", "ping", "pong", "Finished", "2/2"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestRestartIgnoresStaleEvents(t *testing.T) {
	m := newTestModel(t, Options{})

	_, cmd := m.Update(playMsg{Scenario: "quick"})
	drain(t, m, cmd)
	first := m.session.ID()

	_, cmd = m.Update(key("r"))
	if cmd == nil {
		t.Fatal("restart should start a new session")
	}
	if m.session.ID() == first {
		t.Fatal("restart reused the session")
	}
	if len(m.prefix) != 0 {
		t.Fatalf("restart should clear the phone, got %d steps", len(m.prefix))
	}

	m.Update(RevealMsg{Event: playback.Event{SessionID: first, Prefix: []models.ChatStep{{Text: "stale"}}}})
	if len(m.prefix) != 0 {
		t.Fatal("stale reveal should be ignored")
	}
	drain(t, m, cmd)
	if m.scenario.Name != "quick" || len(m.prefix) != 2 {
		t.Fatalf("unexpected state after restart: %s %d", m.scenario.Name, len(m.prefix))
	}
}

func TestUnknownScenario(t *testing.T) {
	m := newTestModel(t, Options{})

	_, cmd := m.Update(playMsg{Scenario: "nope"})
	if cmd != nil {
		t.Fatal("unknown scenario should not wait for reveals")
	}
	if !errors.Is(m.err, scenarios.ErrScenarioNotFound) {
		t.Fatalf("err = %v, want ErrScenarioNotFound", m.err)
	}
	if view := m.View(); !strings.Contains(view, "No scenario named 'nope'") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestCarouselKeys(t *testing.T) {
	m := newTestModel(t, Options{Autoplay: true})
	m.Update(key("2"))

	m.Update(key("n"))
	if m.slide.Index != 1 || m.slide.Auto {
		t.Fatalf("after next: index=%d auto=%v", m.slide.Index, m.slide.Auto)
	}
	m.Update(key("p"))
	m.Update(key("p"))
	if m.slide.Index != 2 {
		t.Fatalf("prev should wrap, got index %d", m.slide.Index)
	}
	m.Update(key(" "))
	if !m.slide.Auto {
		t.Fatal("space should turn autoplay back on")
	}
	if view := m.View(); !strings.Contains(view, "Airports") || !strings.Contains(view, "3/3") {
		t.Fatalf("unexpected contexts view:\n%s", view)
	}

	_, cmd := m.Update(key("enter"))
	if cmd == nil || m.view != viewChat {
		t.Fatal("enter should play the slide in the chat view")
	}
	if m.scenario.Name != "airport" {
		t.Fatalf("playing %q, want airport", m.scenario.Name)
	}
}

func TestDemoChat(t *testing.T) {
	m := newTestModel(t, Options{})
	m.Update(key("3"))

	_, cmd := m.Update(key("q"))
	if cmd != nil || m.input != "q" {
		t.Fatalf("q should be typed in the demo view, input=%q", m.input)
	}
	m.Update(key("backspace"))
	m.Update(key("enter"))
	if !errors.Is(m.err, demochat.ErrEmptyMessage) {
		t.Fatalf("err = %v, want ErrEmptyMessage", m.err)
	}

	for _, r := range "eta" {
		m.Update(key(string(r)))
	}
	m.Update(key(" "))
	m.Update(key("now"))
	if m.input != "eta now" {
		t.Fatalf("input = %q", m.input)
	}
	m.Update(key("enter"))
	if m.err != nil || m.input != "" {
		t.Fatalf("send failed: err=%v input=%q", m.err, m.input)
	}

	m.conv.Wait()
	m.Update(waitForDemo(m.conv)())

	lines := m.transcript.Lines
	if len(lines) != 3 {
		t.Fatalf("transcript = %v", lines)
	}
	if lines[1] != "You: eta now" || lines[2] != "Ayra: "+demochat.Reply("eta now") {
		t.Fatalf("transcript = %v", lines)
	}
}

func TestDemoSuggestions(t *testing.T) {
	m := newTestModel(t, Options{})
	m.Update(key("3"))

	m.Update(key("ctrl+n"))
	if m.input != demochat.Suggestions[0] {
		t.Fatalf("input = %q", m.input)
	}
	m.Update(key("ctrl+n"))
	if m.input != demochat.Suggestions[1] {
		t.Fatalf("input = %q", m.input)
	}
}

func TestThemeToggleThroughStore(t *testing.T) {
	themes := preferences.NewThemeStore(preferences.NewMemoryStore())
	m := newTestModel(t, Options{Themes: themes})
	if m.theme != models.ThemeDark {
		t.Fatalf("theme = %s, want dark", m.theme)
	}

	_, cmd := m.Update(key("t"))
	if cmd == nil {
		t.Fatal("expected toggle command")
	}
	m.Update(cmd())
	if m.theme != models.ThemeLight || m.styles.Theme.Name != "light" {
		t.Fatalf("theme = %s styles = %s", m.theme, m.styles.Theme.Name)
	}

	stored, err := themes.Theme(context.Background())
	if err != nil || stored != models.ThemeLight {
		t.Fatalf("stored theme = %s, %v", stored, err)
	}

	// The subscription sees the same change and keeps watching.
	_, cmd = m.Update(waitForTheme(m.themes)())
	if cmd == nil {
		t.Fatal("subscription should re-arm")
	}
}

func TestThemeToggleWithoutStore(t *testing.T) {
	m := newTestModel(t, Options{})

	_, cmd := m.Update(key("t"))
	if cmd != nil {
		t.Fatal("toggle without a store is local")
	}
	if m.theme != models.ThemeLight {
		t.Fatalf("theme = %s, want light", m.theme)
	}
}

func TestSmallTerminal(t *testing.T) {
	m := newTestModel(t, Options{})
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})

	if view := m.View(); !strings.Contains(view, "Terminal too small (40x10)") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, Options{})
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}
