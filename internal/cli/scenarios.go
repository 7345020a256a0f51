package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ayrahq/ayra/internal/config"
	"github.com/ayrahq/ayra/internal/models"
	"github.com/ayrahq/ayra/internal/scenarios"
)

var (
	scenariosListTags []string
	scenariosShowVars []string
)

func init() {
	rootCmd.AddCommand(scenariosCmd)
	scenariosCmd.AddCommand(scenariosListCmd)
	scenariosCmd.AddCommand(scenariosShowCmd)

	scenariosListCmd.Flags().StringSliceVar(&scenariosListTags, "tag", nil, "only scenarios carrying every tag")
	scenariosShowCmd.Flags().StringSliceVar(&scenariosShowVars, "var", nil, "scenario variable key=value (repeatable)")
}

var scenariosCmd = &cobra.Command{
	Use:     "scenarios",
	Aliases: []string{"scenario"},
	Short:   "Inspect chat scenarios",
	Long: `Inspect the scripted chat scenarios.

Scenarios are resolved from the project's .ayra/scenarios directory, then
~/.config/ayra/scenarios, then /usr/share/ayra/scenarios, then the builtins.`,
}

var scenariosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		list := scenarios.Filter(catalog.List(), scenariosListTags)

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, list)
		}
		if len(list) == 0 {
			fmt.Println("No scenarios found.")
			return nil
		}

		userDir, projectDir := scenarioDirs()
		rows := make([][]string, 0, len(list))
		for _, sc := range list {
			rows = append(rows, []string{
				sc.Name,
				fmt.Sprintf("%d", sc.Len()),
				sc.TotalDuration(currentConfig().Playback.BaseDelay).String(),
				strings.Join(sc.Tags, ","),
				scenarioSourceLabel(sc.Source, userDir, projectDir),
			})
		}
		return writeTable(os.Stdout, []string{"NAME", "STEPS", "DURATION", "TAGS", "SOURCE"}, rows)
	},
}

var scenariosShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a scenario's steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vars, err := parseVars(scenariosShowVars)
		if err != nil {
			return err
		}
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		sc, err := catalog.Get(args[0])
		if err != nil {
			if errors.Is(err, scenarios.ErrScenarioNotFound) {
				return &PreflightError{
					Message:  fmt.Sprintf("scenario %q not found", args[0]),
					NextStep: "ayra scenarios list",
				}
			}
			return err
		}
		sc, err = scenarios.Render(sc, vars)
		if err != nil {
			return err
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, sc)
		}

		fmt.Printf("Scenario %s\n", sc.Name)
		if sc.Title != "" {
			printKV(os.Stdout, "Title", sc.Title)
		}
		if sc.Description != "" {
			printKV(os.Stdout, "About", sc.Description)
		}
		if len(sc.Tags) > 0 {
			printKV(os.Stdout, "Tags", strings.Join(sc.Tags, ", "))
		}
		for _, v := range sc.Variables {
			printKV(os.Stdout, "Var", fmt.Sprintf("%s (default %q) %s", v.Name, v.Default, v.Description))
		}
		fmt.Println()

		base := currentConfig().Playback.BaseDelay
		for i, step := range sc.Steps {
			fmt.Printf("%2d. +%-6s %s\n", i+1, step.RevealDelay(base), formatStep(step))
		}
		return nil
	},
}

// formatStep renders a step as one line, e.g. "→ Who is on call? [09:41 read]".
func formatStep(step models.ChatStep) string {
	arrow := "←"
	if step.IsOutgoing() {
		arrow = "→"
	}
	text := step.Text
	if step.Typing {
		text = "(typing…)"
	}

	var meta []string
	if step.Timestamp != "" {
		meta = append(meta, step.Timestamp)
	}
	if step.Delivery != models.DeliveryNone {
		meta = append(meta, string(step.Delivery))
	}
	if len(meta) == 0 {
		return fmt.Sprintf("%s %s", arrow, text)
	}
	return fmt.Sprintf("%s %s [%s]", arrow, text, strings.Join(meta, " "))
}

func scenarioDirs() (userDir, projectDir string) {
	userDir = filepath.Join(config.DefaultDir(), "scenarios")
	if dir := currentConfig().Playback.ProjectDir; dir != "" {
		projectDir = filepath.Join(dir, ".ayra", "scenarios")
	}
	return userDir, projectDir
}

func scenarioSourceLabel(source, userDir, projectDir string) string {
	switch {
	case source == "builtin":
		return "builtin"
	case projectDir != "" && strings.HasPrefix(source, projectDir+string(filepath.Separator)):
		return "project"
	case userDir != "" && strings.HasPrefix(source, userDir+string(filepath.Separator)):
		return "user"
	default:
		return "file"
	}
}

// parseVars parses repeated or comma separated key=value flags.
func parseVars(values []string) (map[string]string, error) {
	vars := make(map[string]string)
	for _, value := range values {
		for _, pair := range strings.Split(value, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			key, val, ok := strings.Cut(pair, "=")
			key = strings.TrimSpace(key)
			if !ok || key == "" {
				return nil, fmt.Errorf("invalid variable %q (expected key=value)", pair)
			}
			vars[key] = val
		}
	}
	return vars, nil
}
