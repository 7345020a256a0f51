package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ayrahq/ayra/internal/models"
	"github.com/ayrahq/ayra/internal/tui/styles"
)

const typingLabel = "typing…"

// RenderBubble renders one chat step aligned to its side of a phone of the
// given inner width.
func RenderBubble(styleSet styles.Styles, step models.ChatStep, width int) string {
	if width <= 0 {
		width = 40
	}
	maxWidth := width * 3 / 4
	if maxWidth < 8 {
		maxWidth = width
	}

	style := styleSet.BubbleIn
	text := step.Text
	switch {
	case step.Typing:
		style = styleSet.Typing
		text = typingLabel
	case step.IsOutgoing():
		style = styleSet.BubbleOut
	}

	var meta []string
	if step.Timestamp != "" && !step.Typing {
		meta = append(meta, step.Timestamp)
	}
	if mark := deliveryMark(step.Delivery); mark != "" && step.IsOutgoing() {
		meta = append(meta, mark)
	}
	if len(meta) > 0 {
		text += "  " + strings.Join(meta, " ")
	}

	bubbleWidth := lipgloss.Width(text) + 2
	if bubbleWidth > maxWidth {
		bubbleWidth = maxWidth
	}
	bubble := style.Copy().Width(bubbleWidth).Render(text)

	align := lipgloss.Left
	if step.IsOutgoing() {
		align = lipgloss.Right
	}
	return lipgloss.PlaceHorizontal(width, align, bubble)
}

func deliveryMark(state models.DeliveryState) string {
	switch state {
	case models.DeliverySent:
		return "✓"
	case models.DeliveryDelivered, models.DeliveryRead:
		return "✓✓"
	default:
		return ""
	}
}

// RenderPhone renders a titled chat screen holding the revealed steps.
func RenderPhone(styleSet styles.Styles, title string, steps []models.ChatStep, width int) string {
	inner := width - 4
	if inner < 10 {
		inner = 10
	}

	lines := []string{styleSet.Accent.Render(title), styleSet.Border.Render(strings.Repeat("─", inner))}
	if len(steps) == 0 {
		lines = append(lines, EmptyChat().RenderCompact(styleSet))
	}
	for _, step := range steps {
		lines = append(lines, RenderBubble(styleSet, step, inner))
	}
	return styleSet.Panel.Copy().Width(width).Padding(0, 1).Render(strings.Join(lines, "\n"))
}
