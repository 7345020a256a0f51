package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ayrahq/ayra/internal/config"
	"github.com/ayrahq/ayra/internal/db"
)

var (
	initForce     bool
	initScenarios bool
)

// configDirFunc is swapped in tests.
var configDirFunc = config.DefaultDir

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing files")
	initCmd.Flags().BoolVar(&initScenarios, "scenarios", true, "write an example scenario to the scenarios directory")
}

type initResult struct {
	name    string
	status  string // done, skipped, failed
	message string
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config file, database and scenarios directory",
	Long: `Initialize Ayra for this user:

  1. write config.yaml to the config directory
  2. create the database and apply migrations
  3. create the user scenarios directory with an example scenario

Existing files are kept unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		results := []initResult{createConfigFile()}
		results = append(results, initDatabase())
		if initScenarios {
			results = append(results, createExampleScenario())
		}

		failed := 0
		for _, r := range results {
			if r.status == "failed" {
				failed++
			}
		}

		if IsJSONOutput() || IsJSONLOutput() {
			out := make([]map[string]string, 0, len(results))
			for _, r := range results {
				out = append(out, map[string]string{"step": r.name, "status": r.status, "message": r.message})
			}
			if err := WriteOutput(os.Stdout, out); err != nil {
				return err
			}
		} else {
			for _, r := range results {
				fmt.Printf("  %s %-12s %s\n", initStatusMark(r.status), r.name, r.message)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d init step(s) failed", failed)
		}
		if !IsJSONOutput() && !IsJSONLOutput() {
			fmt.Println()
			fmt.Println("Next: ayra play healthcare")
		}
		return nil
	},
}

func initStatusMark(status string) string {
	switch status {
	case "done":
		return colorize("✓", colorGreen)
	case "skipped":
		return colorize("-", colorYellow)
	default:
		return colorize("✗", colorRed)
	}
}

func createConfigFile() initResult {
	dir := configDirFunc()
	force := initForce
	if !force && IsInteractive() {
		if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err == nil {
			force = confirm("config.yaml exists. Overwrite it?")
		}
	}

	path, written, err := config.WriteTemplate(dir, force)
	if err != nil {
		return initResult{name: "config", status: "failed", message: err.Error()}
	}
	if !written {
		return initResult{name: "config", status: "skipped", message: fmt.Sprintf("%s exists (use --force)", path)}
	}
	return initResult{name: "config", status: "done", message: path}
}

func initDatabase() initResult {
	cfg := currentConfig().Database
	database, err := db.Open(cfg)
	if err != nil {
		return initResult{name: "database", status: "failed", message: err.Error()}
	}
	defer database.Close()

	progress := startProgress("Applying migrations")
	applied, err := database.MigrateUp(context.Background())
	if err != nil {
		progress.Fail(err)
		return initResult{name: "database", status: "failed", message: err.Error()}
	}
	progress.Done()
	if applied == 0 {
		return initResult{name: "database", status: "skipped", message: fmt.Sprintf("%s is up to date", database.Path())}
	}
	return initResult{name: "database", status: "done", message: fmt.Sprintf("%s (%d migration(s))", database.Path(), applied)}
}

// exampleScenario is a minimal scenario users can copy.
const exampleScenario = `name: example
title: Example
description: A two-line conversation. Copy this file to write your own.
tags: [example]
variables:
  - name: team
    default: Night shift
steps:
  - from: in
    text: "{{.team}}: handover notes are ready."
    time: "07:55"
    delay_ms: 800
  - from: out
    text: Thanks, reading now.
    time: "07:56"
    check: read
`

func createExampleScenario() initResult {
	dir := filepath.Join(configDirFunc(), "scenarios")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return initResult{name: "scenarios", status: "failed", message: err.Error()}
	}
	path := filepath.Join(dir, "example.yaml")
	if _, err := os.Stat(path); err == nil && !initForce {
		return initResult{name: "scenarios", status: "skipped", message: fmt.Sprintf("%s exists", path)}
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return initResult{name: "scenarios", status: "failed", message: err.Error()}
	}
	if err := os.WriteFile(path, []byte(exampleScenario), 0o644); err != nil {
		return initResult{name: "scenarios", status: "failed", message: err.Error()}
	}
	return initResult{name: "scenarios", status: "done", message: path}
}
