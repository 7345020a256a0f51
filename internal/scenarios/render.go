package scenarios

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/ayrahq/ayra/internal/models"
)

// Render applies variables to the scenario title, step text and timestamps.
// The input is not modified; a rendered copy is returned.
func Render(scenario *models.Scenario, vars map[string]string) (*models.Scenario, error) {
	if scenario == nil {
		return nil, fmt.Errorf("scenario is required")
	}

	data := make(map[string]string, len(vars))
	for key, value := range vars {
		data[key] = value
	}

	for _, variable := range scenario.Variables {
		value := strings.TrimSpace(data[variable.Name])
		if value == "" {
			if variable.Default != "" {
				data[variable.Name] = variable.Default
				continue
			}
			if variable.Required {
				return nil, fmt.Errorf("%w: missing required variable %q", ErrInvalidScenario, variable.Name)
			}
		}
	}

	rendered := *scenario
	rendered.Steps = make([]models.ChatStep, len(scenario.Steps))

	title, err := renderText(scenario.Name, scenario.Title, data)
	if err != nil {
		return nil, fmt.Errorf("render scenario %q title: %w", scenario.Name, err)
	}
	rendered.Title = title

	for i, step := range scenario.Steps {
		text, err := renderText(scenario.Name, step.Text, data)
		if err != nil {
			return nil, fmt.Errorf("render scenario %q step %d: %w", scenario.Name, i+1, err)
		}
		stamp, err := renderText(scenario.Name, step.Timestamp, data)
		if err != nil {
			return nil, fmt.Errorf("render scenario %q step %d time: %w", scenario.Name, i+1, err)
		}
		step.Text = text
		step.Timestamp = stamp
		rendered.Steps[i] = step
	}

	return &rendered, nil
}

func renderText(name, content string, data map[string]string) (string, error) {
	if !strings.Contains(content, "{{") {
		return content, nil
	}

	parsed, err := template.New(name).
		Funcs(template.FuncMap{"default": defaultValue}).
		Option("missingkey=zero").
		Parse(content)
	if err != nil {
		return "", fmt.Errorf("parse template %q: %w", name, err)
	}

	var out strings.Builder
	if err := parsed.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render template %q: %w", name, err)
	}

	return out.String(), nil
}

func defaultValue(def string, value any) string {
	if value == nil {
		return def
	}
	text := strings.TrimSpace(fmt.Sprint(value))
	if text == "" {
		return def
	}
	return text
}
