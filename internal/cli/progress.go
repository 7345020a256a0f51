// Progress output for slow setup steps (migrations, redis dials).
package cli

import (
	"fmt"
	"io"
	"os"
	"time"
)

type progressStep struct {
	out     io.Writer
	label   string
	started time.Time
}

// startProgress prints label to stderr. It returns nil when progress output
// is disabled; a nil step ignores Done and Fail.
func startProgress(label string) *progressStep {
	if !progressEnabled() {
		return nil
	}
	p := &progressStep{out: os.Stderr, label: label, started: time.Now()}
	fmt.Fprintf(p.out, "%s... ", label)
	return p
}

func (p *progressStep) Done() {
	if p == nil {
		return
	}
	fmt.Fprintf(p.out, "done (%s)\n", formatDuration(time.Since(p.started)))
}

func (p *progressStep) Fail(err error) {
	if p == nil {
		return
	}
	if err != nil {
		fmt.Fprintf(p.out, "%s: %v\n", colorize("failed", colorRed), err)
		return
	}
	fmt.Fprintln(p.out, colorize("failed", colorRed))
}

func progressEnabled() bool {
	if IsJSONOutput() || IsJSONLOutput() || noProgress {
		return false
	}
	_, off := os.LookupEnv("AYRA_NO_PROGRESS")
	return !off
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.String()
	case d < time.Second:
		return d.Round(10 * time.Millisecond).String()
	default:
		return d.Round(100 * time.Millisecond).String()
	}
}
