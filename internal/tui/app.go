// Package tui implements the Ayra terminal preview.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/ayrahq/ayra/internal/carousel"
	"github.com/ayrahq/ayra/internal/clock"
	"github.com/ayrahq/ayra/internal/demochat"
	"github.com/ayrahq/ayra/internal/models"
	"github.com/ayrahq/ayra/internal/playback"
	"github.com/ayrahq/ayra/internal/preferences"
	"github.com/ayrahq/ayra/internal/scenarios"
	"github.com/ayrahq/ayra/internal/tui/components"
	"github.com/ayrahq/ayra/internal/tui/styles"
)

// Options configure the preview.
type Options struct {
	Catalog    *scenarios.Catalog
	Themes     *preferences.ThemeStore
	Playback   playback.Config // used as given; see playback.DefaultConfig
	Scenario   string
	Vars       map[string]string
	Slides     []models.Slide
	Autoplay   bool
	Interval   time.Duration
	ReplyDelay time.Duration
	Clock      clock.Clock
	Logger     zerolog.Logger
}

// Run launches the preview and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m, err := newModel(ctx, opts)
	if err != nil {
		return err
	}
	defer m.close()

	go func() {
		if err := m.carousel.Run(ctx); err != nil {
			opts.Logger.Debug().Err(err).Msg("carousel stopped")
		}
	}()

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

type viewID int

const (
	viewChat viewID = iota
	viewContexts
	viewDemo
)

func nextView(current viewID) viewID {
	switch current {
	case viewChat:
		return viewContexts
	case viewContexts:
		return viewDemo
	default:
		return viewChat
	}
}

const (
	minWidth   = 60
	minHeight  = 15
	phoneWidth = 52
)

type model struct {
	ctx    context.Context
	opts   Options
	width  int
	height int
	view   viewID

	theme  models.Theme
	styles styles.Styles
	themes <-chan models.Theme
	unsub  func()

	seq      *playback.Sequencer
	session  *playback.Session
	scenario *models.Scenario
	prefix   []models.ChatStep
	state    playback.State

	carousel *carousel.Carousel
	slide    carousel.Snapshot

	conv       *demochat.Conversation
	transcript *components.TranscriptViewer
	input      string
	suggestion int

	err error
}

func newModel(ctx context.Context, opts Options) (*model, error) {
	if opts.Catalog == nil {
		return nil, errors.New("scenario catalog is required")
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if len(opts.Slides) == 0 {
		opts.Slides = carousel.DefaultSlides()
	}
	if opts.Interval <= 0 {
		opts.Interval = carousel.DefaultInterval
	}

	m := &model{
		ctx:    ctx,
		opts:   opts,
		view:   viewChat,
		theme:  models.DefaultTheme,
		styles: styles.DefaultStyles(),
		unsub:  func() {},
		seq: playback.New(
			playback.WithClock(opts.Clock),
			playback.WithLogger(opts.Logger),
		),
		carousel: carousel.New(opts.Slides,
			carousel.WithClock(opts.Clock),
			carousel.WithInterval(opts.Interval),
		),
		conv: demochat.NewConversation(
			demochat.WithClock(opts.Clock),
			demochat.WithReplyDelay(opts.ReplyDelay),
			demochat.WithLogger(opts.Logger),
		),
		transcript: components.NewTranscriptViewer(),
	}
	m.carousel.SetAuto(opts.Autoplay)
	m.slide = m.carousel.Current()
	m.transcript.SetMessages(m.conv.Messages())

	if opts.Themes != nil {
		theme, err := opts.Themes.Theme(ctx)
		if err != nil {
			opts.Logger.Warn().Err(err).Msg("failed to read theme")
		}
		m.setTheme(theme)

		ch := make(chan models.Theme, 4)
		m.themes = ch
		m.unsub = opts.Themes.Subscribe(func(theme models.Theme) {
			select {
			case ch <- theme:
			default:
			}
		})
	}
	return m, nil
}

func (m *model) close() {
	m.unsub()
	m.seq.Cancel()
	m.conv.Wait()
}

func (m *model) Init() tea.Cmd {
	name := m.opts.Scenario
	if name == "" {
		name = m.slide.Slide.Scenario
	}
	cmds := []tea.Cmd{
		func() tea.Msg { return playMsg{Scenario: name} },
		waitForCarousel(m.carousel),
		waitForDemo(m.conv),
	}
	if m.themes != nil {
		cmds = append(cmds, waitForTheme(m.themes))
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.transcript.Height = msg.Height - 12

	case playMsg:
		return m, m.play(msg.Scenario)

	case RevealMsg:
		if m.session == nil || msg.Event.SessionID != m.session.ID() {
			return m, nil
		}
		m.prefix = msg.Event.Prefix
		m.state = playback.StateRevealing
		return m, waitForEvent(m.session)

	case PlaybackEndedMsg:
		if m.session != nil && msg.SessionID == m.session.ID() {
			m.state = msg.State
		}

	case CarouselMsg:
		m.slide = msg.Snapshot
		return m, waitForCarousel(m.carousel)

	case DemoMsg:
		m.transcript.SetMessages(msg.Messages)
		m.transcript.ScrollToBottom()
		return m, waitForDemo(m.conv)

	case ThemeMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.setTheme(msg.Theme)
		if msg.watched {
			return m, waitForTheme(m.themes)
		}
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		m.view = nextView(m.view)
		return m, nil
	}

	if m.view == viewDemo {
		return m.handleDemoKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		m.view = viewChat
	case "2":
		m.view = viewContexts
	case "3":
		m.view = viewDemo
	case "n", "right":
		m.slide = m.carousel.Next()
	case "p", "left":
		m.slide = m.carousel.Prev()
	case " ":
		m.carousel.ToggleAuto()
		m.slide = m.carousel.Current()
	case "r":
		return m, m.play(m.currentScenarioName())
	case "enter":
		if m.view == viewContexts {
			m.view = viewChat
			return m, m.play(m.slide.Slide.Scenario)
		}
	case "t":
		return m, m.toggleTheme()
	}
	return m, nil
}

func (m *model) handleDemoKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		text := m.input
		m.input = ""
		if _, err := m.conv.Send(m.ctx, text); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
	case tea.KeyBackspace:
		if runes := []rune(m.input); len(runes) > 0 {
			m.input = string(runes[:len(runes)-1])
		}
	case tea.KeyCtrlN:
		m.input = demochat.Suggestions[m.suggestion%len(demochat.Suggestions)]
		m.suggestion++
	case tea.KeyUp:
		m.transcript.ScrollUp(1)
	case tea.KeyDown:
		m.transcript.ScrollDown(1)
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

// play cancels the running session and starts name.
func (m *model) play(name string) tea.Cmd {
	m.prefix = nil
	m.state = playback.StateIdle
	m.session = nil

	scenario, err := m.resolveScenario(name)
	if err != nil {
		m.seq.Cancel()
		m.scenario = nil
		m.err = err
		return nil
	}
	m.err = nil
	m.scenario = scenario
	m.session = m.seq.Start(m.ctx, scenario, m.opts.Playback)
	m.state = playback.StateRevealing
	return waitForEvent(m.session)
}

func (m *model) resolveScenario(name string) (*models.Scenario, error) {
	var (
		scenario *models.Scenario
		err      error
	)
	if name == "" {
		scenario, err = m.opts.Catalog.Default()
	} else {
		scenario, err = m.opts.Catalog.Get(name)
	}
	if err != nil {
		return nil, err
	}
	return scenarios.Render(scenario, m.opts.Vars)
}

func (m *model) currentScenarioName() string {
	if m.scenario != nil {
		return m.scenario.Name
	}
	return m.opts.Scenario
}

func (m *model) toggleTheme() tea.Cmd {
	if m.opts.Themes == nil {
		m.setTheme(m.theme.Toggled())
		return nil
	}
	themes, ctx := m.opts.Themes, m.ctx
	return func() tea.Msg {
		theme, err := themes.Toggle(ctx)
		return ThemeMsg{Theme: theme, Err: err}
	}
}

func (m *model) setTheme(theme models.Theme) {
	m.theme = theme
	m.styles = styles.ForTheme(theme)
}

func (m *model) View() string {
	if m.width > 0 && m.height > 0 {
		if m.width < minWidth || m.height < minHeight {
			return fmt.Sprintf("%s\n", strings.Join(m.smallViewLines(), "\n"))
		}
	}

	lines := []string{m.headerLine(), ""}
	lines = append(lines, m.viewLines()...)
	if m.err != nil {
		lines = append(lines, "", m.styles.Error.Render("Error: "+m.err.Error()))
	}
	lines = append(lines, "", m.styles.Muted.Render(m.shortcuts()))
	return fmt.Sprintf("%s\n", strings.Join(lines, "\n"))
}

func (m *model) smallViewLines() []string {
	message := fmt.Sprintf("Terminal too small (%dx%d).", m.width, m.height)
	hint := fmt.Sprintf("Resize to at least %dx%d.", minWidth, minHeight)

	return []string{
		m.styles.Warning.Render(message),
		m.styles.Muted.Render(hint),
		m.styles.Muted.Render("Press q to quit."),
	}
}

func (m *model) headerLine() string {
	tabs := []string{"1 Chat", "2 Contexts", "3 Demo"}
	for i, tab := range tabs {
		if viewID(i) == m.view {
			tabs[i] = m.styles.Focus.Render("[" + tab + "]")
		} else {
			tabs[i] = m.styles.Muted.Render(" " + tab + " ")
		}
	}
	return fmt.Sprintf("%s  %s  %s",
		m.styles.Title.Render("Ayra"),
		strings.Join(tabs, " "),
		m.styles.Muted.Render("theme: "+string(m.theme)),
	)
}

func (m *model) viewLines() []string {
	switch m.view {
	case viewContexts:
		return m.contextsLines()
	case viewDemo:
		return m.demoLines()
	default:
		return m.chatLines()
	}
}

func (m *model) chatLines() []string {
	if m.scenario == nil {
		if len(m.opts.Catalog.List()) == 0 {
			return []string{components.EmptyScenarios().Render(m.styles)}
		}
		return []string{components.EmptyScenarioFiltered(m.currentScenarioName()).Render(m.styles)}
	}

	title := m.scenario.Title
	if title == "" {
		title = m.scenario.Name
	}
	status := fmt.Sprintf("%s  %d/%d", components.RenderPlaybackBadge(m.styles, m.state), len(m.prefix), m.scenario.Len())
	return []string{
		components.RenderPhone(m.styles, title, m.prefix, phoneWidth),
		status,
	}
}

func (m *model) contextsLines() []string {
	snap := m.slide
	dots := make([]string, snap.Total)
	for i := range dots {
		if i == snap.Index {
			dots[i] = m.styles.Accent.Render("●")
		} else {
			dots[i] = m.styles.Muted.Render("○")
		}
	}
	auto := "off"
	if snap.Auto {
		auto = "on"
	}
	return []string{
		m.styles.Accent.Render(snap.Slide.Title),
		m.styles.Text.Render(snap.Slide.Caption),
		"",
		strings.Join(dots, " ") + m.styles.Muted.Render(fmt.Sprintf("  %d/%d  autoplay %s", snap.Index+1, snap.Total, auto)),
	}
}

func (m *model) demoLines() []string {
	width := m.width
	if width <= 0 || width > 80 {
		width = 80
	}
	lines := []string{components.RenderTranscriptPanel(m.styles, m.transcript, "Talk to Ayra", width)}
	lines = append(lines, m.styles.Muted.Render("Suggestions: "+strings.Join(demochat.Suggestions, " · ")))
	lines = append(lines, m.styles.Focus.Render("> ")+m.styles.Text.Render(m.input)+m.styles.Muted.Render("_"))
	return lines
}

func (m *model) shortcuts() string {
	switch m.view {
	case viewDemo:
		return "Shortcuts: enter send | ctrl+n suggestion | ↑/↓ scroll | tab next view | esc quit"
	case viewContexts:
		return "Shortcuts: n/p slide | space autoplay | enter play | t theme | 1/2/3 views | q quit"
	default:
		return "Shortcuts: r restart | t theme | tab/1/2/3 views | q quit"
	}
}
