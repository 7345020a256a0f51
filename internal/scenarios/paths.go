package scenarios

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ayrahq/ayra/internal/models"
)

// ScenarioSearchPaths returns scenario directories in precedence order.
func ScenarioSearchPaths(projectDir string) []string {
	paths := make([]string, 0, 3)
	if projectDir != "" {
		paths = append(paths, filepath.Join(projectDir, ".ayra", "scenarios"))
	}

	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "ayra", "scenarios"))
	} else if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".config", "ayra", "scenarios"))
	}

	paths = append(paths, filepath.Join(string(filepath.Separator), "usr", "share", "ayra", "scenarios"))
	return paths
}

// LoadScenariosFromSearchPaths loads scenarios with first-hit precedence,
// falling back to the builtins last.
func LoadScenariosFromSearchPaths(projectDir string) ([]*models.Scenario, error) {
	return loadFromPaths(ScenarioSearchPaths(projectDir))
}

func loadFromPaths(paths []string) ([]*models.Scenario, error) {
	seen := make(map[string]*models.Scenario)
	order := make([]string, 0)

	add := func(list []*models.Scenario) {
		for _, scenario := range list {
			if _, exists := seen[scenario.Name]; exists {
				continue
			}
			seen[scenario.Name] = scenario
			order = append(order, scenario.Name)
		}
	}

	for _, path := range paths {
		list, err := LoadScenariosFromDir(path)
		if err != nil {
			return nil, err
		}
		add(list)
	}

	builtins, err := LoadBuiltinScenarios()
	if err != nil {
		return nil, err
	}
	add(builtins)

	resolved := make([]*models.Scenario, 0, len(order))
	for _, name := range order {
		resolved = append(resolved, seen[name])
	}

	return resolved, nil
}
