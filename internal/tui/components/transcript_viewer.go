package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ayrahq/ayra/internal/models"
	"github.com/ayrahq/ayra/internal/tui/styles"
)

// DefaultTranscriptMaxLines caps how much history the viewer keeps.
const DefaultTranscriptMaxLines = 500

// TranscriptViewer displays a scrollable demo chat transcript.
type TranscriptViewer struct {
	Lines        []string
	ScrollOffset int
	Height       int
	Width        int
	maxLines     int
}

// NewTranscriptViewer creates a new transcript viewer.
func NewTranscriptViewer() *TranscriptViewer {
	return &TranscriptViewer{
		Lines:    make([]string, 0),
		Height:   20,
		Width:    60,
		maxLines: DefaultTranscriptMaxLines,
	}
}

// SetMaxLines sets the retained history; zero or less means unlimited.
func (v *TranscriptViewer) SetMaxLines(n int) {
	v.maxLines = n
	v.trim()
	v.clampScroll()
}

// SetLines sets the transcript content.
func (v *TranscriptViewer) SetLines(lines []string) {
	v.Lines = lines
	v.trim()
	v.clampScroll()
}

// SetMessages formats demo chat messages as transcript lines.
func (v *TranscriptViewer) SetMessages(messages []models.DemoMessage) {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		lines = append(lines, FormatDemoMessage(msg))
	}
	v.SetLines(lines)
}

// FormatDemoMessage renders one message as "You: ..." or "Ayra: ...".
func FormatDemoMessage(msg models.DemoMessage) string {
	if msg.Role == models.DemoRoleUser {
		return "You: " + msg.Content
	}
	return "Ayra: " + msg.Content
}

// ScrollUp scrolls the view up by n lines.
func (v *TranscriptViewer) ScrollUp(n int) {
	v.ScrollOffset -= n
	v.clampScroll()
}

// ScrollDown scrolls the view down by n lines.
func (v *TranscriptViewer) ScrollDown(n int) {
	v.ScrollOffset += n
	v.clampScroll()
}

// ScrollToBottom scrolls to the bottom.
func (v *TranscriptViewer) ScrollToBottom() {
	maxOffset := len(v.Lines) - v.visibleLines()
	if maxOffset < 0 {
		maxOffset = 0
	}
	v.ScrollOffset = maxOffset
}

func (v *TranscriptViewer) trim() {
	if v.maxLines <= 0 || len(v.Lines) <= v.maxLines {
		return
	}
	drop := len(v.Lines) - v.maxLines
	v.Lines = v.Lines[drop:]
	v.ScrollOffset -= drop
}

func (v *TranscriptViewer) visibleLines() int {
	if v.Height <= 2 {
		return 1
	}
	return v.Height - 2 // header and footer
}

func (v *TranscriptViewer) clampScroll() {
	maxOffset := len(v.Lines) - v.visibleLines()
	if maxOffset < 0 {
		maxOffset = 0
	}
	if v.ScrollOffset > maxOffset {
		v.ScrollOffset = maxOffset
	}
	if v.ScrollOffset < 0 {
		v.ScrollOffset = 0
	}
}

// Render renders the visible part of the transcript.
func (v *TranscriptViewer) Render(styleSet styles.Styles) string {
	if len(v.Lines) == 0 {
		return styleSet.Muted.Render("No messages yet.")
	}

	visible := v.visibleLines()
	endIdx := v.ScrollOffset + visible
	if endIdx > len(v.Lines) {
		endIdx = len(v.Lines)
	}

	var rendered []string
	for i := v.ScrollOffset; i < endIdx; i++ {
		line := v.Lines[i]
		styled := styleSet.Text.Render(line)
		if strings.HasPrefix(line, "Ayra: ") {
			styled = styleSet.Accent.Render("Ayra: ") + styleSet.Text.Render(strings.TrimPrefix(line, "Ayra: "))
		}
		if v.Width > 0 && lipgloss.Width(styled) > v.Width {
			styled = truncateString(line, v.Width-3) + "..."
		}
		rendered = append(rendered, styled)
	}

	if info := v.scrollIndicator(styleSet); info != "" {
		rendered = append(rendered, info)
	}
	return strings.Join(rendered, "\n")
}

func (v *TranscriptViewer) scrollIndicator(styleSet styles.Styles) string {
	total := len(v.Lines)
	visible := v.visibleLines()
	if total <= visible {
		return ""
	}

	endLine := v.ScrollOffset + visible
	if endLine > total {
		endLine = total
	}
	return styleSet.Muted.Render(fmt.Sprintf("─── %d-%d of %d ───", v.ScrollOffset+1, endLine, total))
}

func truncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}

// RenderTranscriptPanel renders a titled transcript panel.
func RenderTranscriptPanel(styleSet styles.Styles, viewer *TranscriptViewer, title string, width int) string {
	if viewer == nil {
		return styleSet.Muted.Render("No transcript viewer.")
	}

	viewer.Width = width - 4
	content := styleSet.Accent.Render(title) + "\n" + viewer.Render(styleSet)
	return styleSet.Panel.Copy().Width(width).Padding(0, 1).Render(content)
}
