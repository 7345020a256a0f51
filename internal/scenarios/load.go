package scenarios

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayrahq/ayra/internal/models"
)

// LoadScenario reads a single scenario from disk.
func LoadScenario(path string) (*models.Scenario, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("scenario path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	scenario.Source = path
	return scenario, nil
}

// LoadScenariosFromDir loads every .yaml/.yml scenario in dir. A missing
// directory yields an empty list.
func LoadScenariosFromDir(dir string) ([]*models.Scenario, error) {
	if strings.TrimSpace(dir) == "" {
		return []*models.Scenario{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.Scenario{}, nil
		}
		return nil, fmt.Errorf("read scenarios dir %s: %w", dir, err)
	}

	list := make([]*models.Scenario, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		scenario, err := LoadScenario(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		list = append(list, scenario)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})

	return list, nil
}

// ParseScenario decodes and validates a YAML scenario.
func ParseScenario(data []byte) (*models.Scenario, error) {
	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	scenario := &models.Scenario{
		Name:        strings.TrimSpace(file.Name),
		Title:       strings.TrimSpace(file.Title),
		Description: strings.TrimSpace(file.Description),
		Tags:        file.Tags,
	}
	if scenario.Name == "" {
		return nil, invalid("scenario name is required")
	}

	seen := make(map[string]struct{})
	for _, variable := range file.Variables {
		variable.Name = strings.TrimSpace(variable.Name)
		if variable.Name == "" {
			return nil, invalid("scenario variable name is required")
		}
		if _, exists := seen[variable.Name]; exists {
			return nil, invalid("duplicate scenario variable %q", variable.Name)
		}
		seen[variable.Name] = struct{}{}
		scenario.Variables = append(scenario.Variables, variable)
	}

	scenario.Steps = make([]models.ChatStep, 0, len(file.Steps))
	for i, raw := range file.Steps {
		step, err := normalizeStep(raw)
		if err != nil {
			return nil, fmt.Errorf("scenario step %d: %w", i+1, err)
		}
		scenario.Steps = append(scenario.Steps, step)
	}

	return scenario, nil
}

func normalizeStep(raw stepFile) (models.ChatStep, error) {
	var step models.ChatStep

	if strings.TrimSpace(raw.From) == "" {
		return step, invalid("from is required")
	}
	origin, err := models.ParseOrigin(raw.From)
	if err != nil {
		return step, invalid("%v", err)
	}
	step.Origin = origin

	step.Typing = raw.Typing
	step.Text = strings.TrimSpace(raw.Text)
	step.Timestamp = strings.TrimSpace(raw.Time)
	if !step.Typing && step.Text == "" {
		return step, invalid("message text is required")
	}

	delivery, err := models.ParseDeliveryState(raw.Check)
	if err != nil {
		return step, invalid("%v", err)
	}
	step.Delivery = delivery

	delay, err := resolveDelay(raw)
	if err != nil {
		return step, err
	}
	step.DelayMs = delay

	return step, nil
}

func resolveDelay(raw stepFile) (*int64, error) {
	text := strings.TrimSpace(raw.Delay)
	if text == "" {
		if raw.DelayMs != nil && *raw.DelayMs < 0 {
			return nil, invalid("delay_ms must not be negative")
		}
		return raw.DelayMs, nil
	}

	duration, err := time.ParseDuration(text)
	if err != nil {
		return nil, invalid("invalid delay: %v", err)
	}
	if duration < 0 {
		return nil, invalid("delay must not be negative")
	}
	ms := duration.Milliseconds()
	if raw.DelayMs != nil && *raw.DelayMs != ms {
		return nil, invalid("delay and delay_ms disagree")
	}
	return models.Delay(ms), nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidScenario, fmt.Sprintf(format, args...))
}
