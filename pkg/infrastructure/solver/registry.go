// Package solver maps backend names to model.Solver constructors
package solver

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/factoryplan/pkg/domain/model"
	"github.com/vsinha/factoryplan/pkg/infrastructure/solver/bnb"
)

// DefaultName is the backend used when none is configured
const DefaultName = "bnb"

// Options are the backend-neutral solver settings
type Options struct {
	TimeLimit            time.Duration
	MaxNodes             int
	IntegralityTolerance float64
	Relax                bool
	Logger               *zap.Logger
}

// Factory creates a configured solver
type Factory func(opts Options) (model.Solver, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

func init() {
	Register(DefaultName, func(opts Options) (model.Solver, error) {
		return bnb.New(bnb.Options{
			IntegralityTolerance: opts.IntegralityTolerance,
			MaxNodes:             opts.MaxNodes,
			TimeLimit:            opts.TimeLimit,
			Relax:                opts.Relax,
			Logger:               opts.Logger,
		}), nil
	})
}

// Register makes a backend available under name, replacing any earlier one
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = factory
}

// New creates the backend registered under name
func New(name string, opts Options) (model.Solver, error) {
	if name == "" {
		name = DefaultName
	}
	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown solver %q (available: %v)", name, Names())
	}
	return factory(opts)
}

// Names lists registered backends in sorted order
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
