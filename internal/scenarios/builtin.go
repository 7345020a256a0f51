package scenarios

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/ayrahq/ayra/internal/models"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// LoadBuiltinScenarios returns the scenarios bundled with Ayra.
func LoadBuiltinScenarios() ([]*models.Scenario, error) {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil, fmt.Errorf("read builtin scenarios: %w", err)
	}

	list := make([]*models.Scenario, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := builtinFS.ReadFile("builtin/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read builtin scenario %s: %w", entry.Name(), err)
		}
		scenario, err := ParseScenario(data)
		if err != nil {
			return nil, fmt.Errorf("parse builtin scenario %s: %w", entry.Name(), err)
		}
		scenario.Source = "builtin"
		list = append(list, scenario)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})

	return list, nil
}
