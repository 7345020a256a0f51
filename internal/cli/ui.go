package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ayrahq/ayra/internal/logging"
	"github.com/ayrahq/ayra/internal/models"
	"github.com/ayrahq/ayra/internal/tui"
)

var (
	uiScenario string
	uiVars     []string
)

func init() {
	rootCmd.AddCommand(uiCmd)

	uiCmd.Flags().StringVar(&uiScenario, "scenario", "", "scenario to play first (default: first carousel slide)")
	uiCmd.Flags().StringSliceVar(&uiVars, "var", nil, "scenario variable key=value (repeatable)")
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the terminal preview",
	Long:  "Launch the Ayra terminal preview: live phone chat, contexts carousel and demo chat.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func runTUI() error {
	if IsNonInteractive() {
		return &PreflightError{
			Message:  "the preview requires an interactive terminal",
			Hint:     "Run without --non-interactive and with a TTY, or use `ayra play`",
			NextStep: "ayra play healthcare",
		}
	}

	vars, err := parseVars(uiVars)
	if err != nil {
		return err
	}

	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	themes, closer, err := newThemeStore(database)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := currentConfig()
	if cfg.TUI.Theme != "" {
		theme, err := models.ParseTheme(cfg.TUI.Theme)
		if err != nil {
			return err
		}
		if err := themes.SetTheme(ctx, theme); err != nil {
			return err
		}
	}

	scenario := uiScenario
	if scenario == "" {
		scenario = cfg.Playback.DefaultScenario
	}

	return tui.Run(ctx, tui.Options{
		Catalog:    catalog,
		Themes:     themes,
		Playback:   playbackConfig(cfg),
		Scenario:   scenario,
		Vars:       vars,
		Autoplay:   cfg.Carousel.Autoplay,
		Interval:   cfg.Carousel.Interval,
		ReplyDelay: cfg.Demo.ReplyDelay,
		Logger:     logging.Component("tui"),
	})
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
