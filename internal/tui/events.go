package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ayrahq/ayra/internal/carousel"
	"github.com/ayrahq/ayra/internal/demochat"
	"github.com/ayrahq/ayra/internal/models"
	"github.com/ayrahq/ayra/internal/playback"
)

// playMsg asks the model to (re)start playback of a scenario.
type playMsg struct {
	Scenario string
}

// RevealMsg carries one sequencer event into the program.
type RevealMsg struct {
	Event playback.Event
}

// PlaybackEndedMsg reports that a session's event stream closed.
type PlaybackEndedMsg struct {
	SessionID string
	State     playback.State
}

// CarouselMsg reports a visible carousel change.
type CarouselMsg struct {
	Snapshot carousel.Snapshot
}

// DemoMsg reports a demo transcript change.
type DemoMsg struct {
	Messages []models.DemoMessage
}

// ThemeMsg reports the active theme.
type ThemeMsg struct {
	Theme models.Theme
	Err   error

	// watched is set for changes read from the store subscription.
	watched bool
}

// waitForEvent reads the next event of sess.
func waitForEvent(sess *playback.Session) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sess.Events()
		if !ok {
			return PlaybackEndedMsg{SessionID: sess.ID(), State: sess.State()}
		}
		return RevealMsg{Event: ev}
	}
}

func waitForCarousel(c *carousel.Carousel) tea.Cmd {
	return func() tea.Msg {
		<-c.Changes()
		return CarouselMsg{Snapshot: c.Current()}
	}
}

func waitForDemo(conv *demochat.Conversation) tea.Cmd {
	return func() tea.Msg {
		<-conv.Updates()
		return DemoMsg{Messages: conv.Messages()}
	}
}

func waitForTheme(ch <-chan models.Theme) tea.Cmd {
	return func() tea.Msg {
		theme, ok := <-ch
		if !ok {
			return nil
		}
		return ThemeMsg{Theme: theme, watched: true}
	}
}
