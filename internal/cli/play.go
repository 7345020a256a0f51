package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/ayrahq/ayra/internal/db"
	"github.com/ayrahq/ayra/internal/events"
	"github.com/ayrahq/ayra/internal/logging"
	"github.com/ayrahq/ayra/internal/models"
	"github.com/ayrahq/ayra/internal/playback"
	"github.com/ayrahq/ayra/internal/rpcd"
	"github.com/ayrahq/ayra/internal/scenarios"
)

var (
	playLoop      bool
	playBaseDelay time.Duration
	playVars      []string
	playRemote    string
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().BoolVar(&playLoop, "loop", false, "repeat the scenario until interrupted")
	playCmd.Flags().DurationVar(&playBaseDelay, "base-delay", 0, "delay for steps without their own delay (default from config)")
	playCmd.Flags().StringSliceVar(&playVars, "var", nil, "scenario variable key=value (repeatable)")
	playCmd.Flags().StringVar(&playRemote, "remote", "", "play through an ayra daemon at host:port")
}

var playCmd = &cobra.Command{
	Use:   "play [scenario]",
	Short: "Play a scripted chat in the terminal",
	Long: `Play a scenario step by step, printing each bubble as it is revealed.

With --loop the conversation restarts after a pause until you press Ctrl-C.
With --jsonl every reveal and reset is printed as one JSON event.`,
	Example: `  ayra play healthcare
  ayra play healthcare --var doctor="Dr. Grey"
  ayra play airport --loop --base-delay 500ms
  ayra play logistics --remote 127.0.0.1:50161 --jsonl`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vars, err := parseVars(playVars)
		if err != nil {
			return err
		}

		cfg := currentConfig()
		name := cfg.Playback.DefaultScenario
		if len(args) > 0 {
			name = args[0]
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		out := newEventPrinter(os.Stdout)
		if playRemote != "" {
			err = playRemoteScenario(ctx, playRemote, remotePlayRequest(cmd, name, vars), out)
		} else {
			err = playLocalScenario(ctx, name, localPlayConfig(cmd, playbackConfig(cfg)), vars, out)
		}
		if err != nil {
			return err
		}
		return out.Flush()
	},
}

// localPlayConfig applies the command's flags to cfg. Local playback runs once
// unless --loop is given; --base-delay overrides only when set, so 0 is valid.
func localPlayConfig(cmd *cobra.Command, cfg playback.Config) playback.Config {
	cfg.Loop = playLoop
	if cmd.Flags().Changed("base-delay") {
		cfg.BaseDelay = max(playBaseDelay, 0)
	}
	return cfg
}

// remotePlayRequest builds the daemon request. The base delay is only sent
// when --base-delay was given so the daemon's setting applies otherwise.
func remotePlayRequest(cmd *cobra.Command, name string, vars map[string]string) *rpcd.PlayRequest {
	loop := playLoop
	req := &rpcd.PlayRequest{Scenario: name, Loop: &loop, Vars: vars}
	if cmd.Flags().Changed("base-delay") {
		ms := max(playBaseDelay, 0).Milliseconds()
		req.BaseDelayMs = &ms
	}
	return req
}

func playLocalScenario(ctx context.Context, name string, cfg playback.Config, vars map[string]string, out *eventPrinter) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	scenario, err := resolveScenario(catalog, name, vars)
	if err != nil {
		return err
	}

	eventRepo := events.Discard
	if database, err := openDatabase(); err == nil {
		defer database.Close()
		eventRepo = db.NewEventRepository(database)
	} else {
		logger.Warn().Err(err).Msg("playing without event history")
	}

	log := logging.Component("play")
	seq := playback.New(playback.WithLogger(log))
	sess := seq.Start(ctx, scenario, cfg)

	payload := models.PlaybackPayload{Scenario: scenario.Name, Steps: scenario.Len(), Loop: cfg.Loop}
	if err := events.LogPlaybackStarted(ctx, eventRepo, sess.ID(), payload); err != nil {
		log.Warn().Err(err).Msg("failed to record playback start")
	}

	out.Header(scenario)
	for ev := range sess.Events() {
		if err := out.Print(ev); err != nil {
			sess.Cancel()
			return err
		}
	}
	sess.Wait()

	final := sess.State()
	payload.Iterations = sess.Iteration() + 1
	payload.Revealed = len(sess.Prefix())
	if err := events.LogPlaybackEnded(context.WithoutCancel(ctx), eventRepo, sess.ID(), final == playback.StateCancelled, payload); err != nil {
		log.Warn().Err(err).Msg("failed to record playback end")
	}
	out.Footer(final)
	return nil
}

func playRemoteScenario(ctx context.Context, addr string, req *rpcd.PlayRequest, out *eventPrinter) error {
	conn, err := dialRemote(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	stream, err := rpcd.NewClient(conn).Play(ctx, req)
	if err != nil {
		return remoteError(addr, err)
	}

	final := playback.StateFinished
	for {
		ev, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if status.Code(err) == codes.Canceled || ctx.Err() != nil {
				final = playback.StateCancelled
				break
			}
			return remoteError(addr, err)
		}
		if err := out.Print(*ev); err != nil {
			return err
		}
	}
	out.Footer(final)
	return nil
}

func dialRemote(addr string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, &PreflightError{
			Message: fmt.Sprintf("invalid daemon address %q", addr),
			Hint:    "Use host:port, e.g. 127.0.0.1:50161",
			Err:     err,
		}
	}
	return conn, nil
}

func remoteError(addr string, err error) error {
	switch status.Code(err) {
	case codes.Unavailable:
		return &PreflightError{
			Message:  fmt.Sprintf("ayra daemon not reachable at %s", addr),
			Hint:     "Start it with `ayra serve` or check rpc.host and rpc.port",
			NextStep: "ayra serve",
			Err:      err,
		}
	case codes.NotFound:
		return &PreflightError{
			Message:  status.Convert(err).Message(),
			NextStep: "ayra scenarios list",
			Err:      err,
		}
	default:
		return err
	}
}

// resolveScenario looks name up (the catalog default when empty) and renders
// its variables.
func resolveScenario(catalog *scenarios.Catalog, name string, vars map[string]string) (*models.Scenario, error) {
	var (
		scenario *models.Scenario
		err      error
	)
	if name == "" {
		scenario, err = catalog.Default()
	} else {
		scenario, err = catalog.Get(name)
	}
	if err != nil {
		if errors.Is(err, scenarios.ErrScenarioNotFound) {
			return nil, &PreflightError{
				Message:  fmt.Sprintf("scenario %q not found", name),
				Hint:     "Scenarios live in .ayra/scenarios or ~/.config/ayra/scenarios",
				NextStep: "ayra scenarios list",
				Err:      err,
			}
		}
		return nil, err
	}
	return scenarios.Render(scenario, vars)
}

// eventPrinter writes playback events as bubbles, JSON lines, or collects
// them for a single JSON array.
type eventPrinter struct {
	out       io.Writer
	collected []playback.Event
}

func newEventPrinter(out io.Writer) *eventPrinter {
	return &eventPrinter{out: out}
}

func (p *eventPrinter) Header(scenario *models.Scenario) {
	if IsJSONOutput() || IsJSONLOutput() {
		return
	}
	title := scenario.Title
	if title == "" {
		title = scenario.Name
	}
	fmt.Fprintln(p.out, colorize(title, colorCyan))
	fmt.Fprintln(p.out)
}

func (p *eventPrinter) Print(ev playback.Event) error {
	switch {
	case IsJSONLOutput():
		return WriteOutput(p.out, ev)
	case IsJSONOutput():
		p.collected = append(p.collected, ev)
		return nil
	}

	if ev.Kind == playback.EventReset {
		fmt.Fprintln(p.out, colorize("── restarting ──", colorMagenta))
		return nil
	}
	step, ok := ev.Step()
	if !ok {
		return nil
	}
	line := formatStep(step)
	if step.IsOutgoing() {
		line = colorize(line, colorGreen)
	}
	_, err := fmt.Fprintln(p.out, line)
	return err
}

func (p *eventPrinter) Footer(final playback.State) {
	if IsJSONOutput() || IsJSONLOutput() {
		return
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, formatPlaybackState(final))
}

// Flush writes the collected events for --json.
func (p *eventPrinter) Flush() error {
	if !IsJSONOutput() {
		return nil
	}
	if p.collected == nil {
		p.collected = []playback.Event{}
	}
	return WriteOutput(p.out, p.collected)
}
