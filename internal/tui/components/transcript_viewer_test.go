package components

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ayrahq/ayra/internal/models"
	"github.com/ayrahq/ayra/internal/tui/styles"
)

func TestTranscriptViewerMaxLinesTrim(t *testing.T) {
	viewer := NewTranscriptViewer()
	viewer.SetMaxLines(3)
	viewer.SetLines([]string{"one", "two", "three", "four"})

	want := []string{"two", "three", "four"}
	if !reflect.DeepEqual(viewer.Lines, want) {
		t.Fatalf("expected lines %v, got %v", want, viewer.Lines)
	}
}

func TestTranscriptViewerMaxLinesAdjustsScroll(t *testing.T) {
	viewer := NewTranscriptViewer()
	viewer.SetMaxLines(3)
	viewer.Height = 3
	viewer.ScrollOffset = 3
	viewer.SetLines([]string{"a", "b", "c", "d", "e"})

	if viewer.ScrollOffset != 1 {
		t.Fatalf("expected ScrollOffset 1, got %d", viewer.ScrollOffset)
	}
}

func TestTranscriptViewerScrollClamps(t *testing.T) {
	viewer := NewTranscriptViewer()
	viewer.Height = 4
	viewer.SetLines([]string{"a", "b", "c", "d", "e"})

	viewer.ScrollDown(10)
	if viewer.ScrollOffset != 3 {
		t.Fatalf("expected ScrollOffset 3, got %d", viewer.ScrollOffset)
	}
	viewer.ScrollUp(10)
	if viewer.ScrollOffset != 0 {
		t.Fatalf("expected ScrollOffset 0, got %d", viewer.ScrollOffset)
	}
	viewer.ScrollToBottom()
	if viewer.ScrollOffset != 3 {
		t.Fatalf("expected ScrollOffset 3 after ScrollToBottom, got %d", viewer.ScrollOffset)
	}
}

func TestTranscriptViewerMessages(t *testing.T) {
	viewer := NewTranscriptViewer()
	viewer.SetMessages([]models.DemoMessage{
		{Role: models.DemoRoleAyra, Content: "Hi!"},
		{Role: models.DemoRoleUser, Content: "Check pharmacy stock"},
	})

	want := []string{"Ayra: Hi!", "You: Check pharmacy stock"}
	if !reflect.DeepEqual(viewer.Lines, want) {
		t.Fatalf("expected lines %v, got %v", want, viewer.Lines)
	}

	out := viewer.Render(styles.DefaultStyles())
	if !strings.Contains(out, "Hi!") || !strings.Contains(out, "You: Check pharmacy stock") {
		t.Fatalf("unexpected render: %s", out)
	}
}

func TestTranscriptViewerEmpty(t *testing.T) {
	out := NewTranscriptViewer().Render(styles.DefaultStyles())
	if !strings.Contains(out, "No messages yet.") {
		t.Fatalf("unexpected render: %s", out)
	}
}
