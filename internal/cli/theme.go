package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayrahq/ayra/internal/models"
	"github.com/ayrahq/ayra/internal/preferences"
)

func init() {
	rootCmd.AddCommand(themeCmd)
	themeCmd.AddCommand(themeGetCmd)
	themeCmd.AddCommand(themeSetCmd)
	themeCmd.AddCommand(themeToggleCmd)
}

type themeResult struct {
	Theme    models.Theme `json:"theme"`
	Previous models.Theme `json:"previous,omitempty"`
}

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the stored theme preference",
	RunE: func(cmd *cobra.Command, args []string) error {
		return themeGetCmd.RunE(cmd, args)
	},
}

var themeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current theme",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withThemeStore(func(ctx context.Context, themes *preferences.ThemeStore) error {
			theme, err := themes.Theme(ctx)
			if err != nil {
				return err
			}
			return printTheme(themeResult{Theme: theme})
		})
	},
}

var themeSetCmd = &cobra.Command{
	Use:       "set <dark|light>",
	Short:     "Store a theme",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(models.ThemeDark), string(models.ThemeLight)},
	RunE: func(cmd *cobra.Command, args []string) error {
		theme, err := models.ParseTheme(args[0])
		if err != nil {
			return &PreflightError{Message: err.Error(), Hint: "Use dark or light"}
		}
		return withThemeStore(func(ctx context.Context, themes *preferences.ThemeStore) error {
			previous, err := themes.Theme(ctx)
			if err != nil {
				return err
			}
			if err := themes.SetTheme(ctx, theme); err != nil {
				return err
			}
			return printTheme(themeResult{Theme: theme, Previous: previous})
		})
	},
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between dark and light",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withThemeStore(func(ctx context.Context, themes *preferences.ThemeStore) error {
			next, err := themes.Toggle(ctx)
			if err != nil {
				return err
			}
			return printTheme(themeResult{Theme: next, Previous: next.Toggled()})
		})
	},
}

func withThemeStore(fn func(context.Context, *preferences.ThemeStore) error) error {
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

	return fn(context.Background(), themes)
}

func printTheme(result themeResult) error {
	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(os.Stdout, result)
	}
	if result.Previous != "" && result.Previous != result.Theme {
		fmt.Printf("Theme: %s (was %s)\n", formatTheme(result.Theme), result.Previous)
		return nil
	}
	fmt.Printf("Theme: %s\n", formatTheme(result.Theme))
	return nil
}
