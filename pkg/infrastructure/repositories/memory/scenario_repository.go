package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vsinha/factoryplan/pkg/domain/entities"
	"github.com/vsinha/factoryplan/pkg/domain/repositories"
)

// ScenarioRepository provides in-memory scenario storage
type ScenarioRepository struct {
	mu           sync.RWMutex
	scenarios    []*entities.ParameterSet
	scenariosMap map[string]int
}

// NewScenarioRepository creates a new in-memory scenario repository
func NewScenarioRepository(expectedScenarios int) *ScenarioRepository {
	return &ScenarioRepository{
		scenarios:    make([]*entities.ParameterSet, 0, expectedScenarios),
		scenariosMap: make(map[string]int, expectedScenarios),
	}
}

// Verify interface compliance
var _ repositories.ScenarioRepository = (*ScenarioRepository)(nil)

// LoadScenarios loads scenarios into the repository
func (r *ScenarioRepository) LoadScenarios(scenarios []*entities.ParameterSet) error {
	for _, s := range scenarios {
		if err := r.AddScenario(s); err != nil {
			return err
		}
	}
	return nil
}

// AddScenario stores a copy of params under its name, replacing an existing one
func (r *ScenarioRepository) AddScenario(params *entities.ParameterSet) error {
	if params == nil || params.Name == "" {
		return fmt.Errorf("scenario must have a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if index, exists := r.scenariosMap[params.Name]; exists {
		r.scenarios[index] = params.Clone()
		return nil
	}
	r.scenariosMap[params.Name] = len(r.scenarios)
	r.scenarios = append(r.scenarios, params.Clone())
	return nil
}

// GetScenario returns a copy of the named scenario
func (r *ScenarioRepository) GetScenario(name string) (*entities.ParameterSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.scenariosMap[name]
	if !exists {
		return nil, fmt.Errorf("scenario %s: %w", name, repositories.ErrNotFound)
	}
	return r.scenarios[index].Clone(), nil
}

// ListScenarios returns all scenario names in sorted order
func (r *ScenarioRepository) ListScenarios() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.scenarios))
	for _, s := range r.scenarios {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names, nil
}
