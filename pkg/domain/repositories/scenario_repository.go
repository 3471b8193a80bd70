package repositories

import (
	"errors"

	"github.com/vsinha/factoryplan/pkg/domain/entities"
)

// ErrNotFound is returned when a scenario or run does not exist
var ErrNotFound = errors.New("not found")

// ScenarioRepository provides access to named parameter sets
type ScenarioRepository interface {
	GetScenario(name string) (*entities.ParameterSet, error)
	ListScenarios() ([]string, error)
	LoadScenarios(scenarios []*entities.ParameterSet) error
}
