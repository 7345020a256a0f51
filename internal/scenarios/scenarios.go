// Package scenarios loads, resolves and renders scripted chat scenarios.
package scenarios

import (
	"errors"
	"sort"
	"strings"

	"github.com/ayrahq/ayra/internal/models"
)

var (
	// ErrScenarioNotFound is returned when no scenario matches a name.
	ErrScenarioNotFound = errors.New("scenario not found")

	// ErrInvalidScenario wraps every validation failure from the loader.
	ErrInvalidScenario = errors.New("invalid scenario")
)

// scenarioFile is the on-disk YAML shape of a scenario.
type scenarioFile struct {
	Name        string               `yaml:"name"`
	Title       string               `yaml:"title"`
	Description string               `yaml:"description"`
	Steps       []stepFile           `yaml:"steps"`
	Variables   []models.ScenarioVar `yaml:"variables,omitempty"`
	Tags        []string             `yaml:"tags,omitempty"`
}

// stepFile is one YAML step. Delays may be given as delay_ms or as a Go
// duration string under delay.
type stepFile struct {
	From    string `yaml:"from"`
	Text    string `yaml:"text,omitempty"`
	Time    string `yaml:"time,omitempty"`
	Typing  bool   `yaml:"typing,omitempty"`
	DelayMs *int64 `yaml:"delay_ms,omitempty"`
	Delay   string `yaml:"delay,omitempty"`
	Check   string `yaml:"check,omitempty"`
}

// Find returns the scenario with the given name, ignoring case.
func Find(list []*models.Scenario, name string) (*models.Scenario, error) {
	want := strings.TrimSpace(name)
	for _, scenario := range list {
		if strings.EqualFold(scenario.Name, want) {
			return scenario, nil
		}
	}
	return nil, ErrScenarioNotFound
}

// Filter returns scenarios carrying every tag in tags.
func Filter(list []*models.Scenario, tags []string) []*models.Scenario {
	if len(tags) == 0 {
		return list
	}

	filtered := make([]*models.Scenario, 0, len(list))
	for _, scenario := range list {
		if hasAllTags(scenario.Tags, tags) {
			filtered = append(filtered, scenario)
		}
	}
	return filtered
}

func hasAllTags(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, tag := range have {
		set[strings.ToLower(tag)] = struct{}{}
	}
	for _, tag := range want {
		if _, ok := set[strings.ToLower(strings.TrimSpace(tag))]; !ok {
			return false
		}
	}
	return true
}

// Names returns the sorted scenario names.
func Names(list []*models.Scenario) []string {
	names := make([]string, 0, len(list))
	for _, scenario := range list {
		names = append(names, scenario.Name)
	}
	sort.Strings(names)
	return names
}

// Catalog is a resolved, read-only set of scenarios shared by the delivery
// surfaces.
type Catalog struct {
	list []*models.Scenario
}

// NewCatalog wraps an already resolved list.
func NewCatalog(list []*models.Scenario) *Catalog {
	return &Catalog{list: list}
}

// LoadCatalog resolves scenarios from the search paths rooted at projectDir.
func LoadCatalog(projectDir string) (*Catalog, error) {
	list, err := LoadScenariosFromSearchPaths(projectDir)
	if err != nil {
		return nil, err
	}
	return NewCatalog(list), nil
}

// List returns every scenario in resolution order.
func (c *Catalog) List() []*models.Scenario {
	return append([]*models.Scenario(nil), c.list...)
}

// Get returns a scenario by name.
func (c *Catalog) Get(name string) (*models.Scenario, error) {
	return Find(c.list, name)
}

// Default returns the first scenario, preferring healthcare.
func (c *Catalog) Default() (*models.Scenario, error) {
	if scenario, err := c.Get(DefaultScenario); err == nil {
		return scenario, nil
	}
	if len(c.list) == 0 {
		return nil, ErrScenarioNotFound
	}
	return c.list[0], nil
}

// DefaultScenario is played when no scenario is named.
const DefaultScenario = "healthcare"
