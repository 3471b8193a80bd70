// Package config loads the application configuration and builds the logger
package config

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/factoryplan/pkg/infrastructure/solver"
)

// AppConfig is the root of factoryplan.yaml
type AppConfig struct {
	Logger   LoggerConfig   `yaml:"logger"`
	Solver   SolverConfig   `yaml:"solver"`
	Store    StoreConfig    `yaml:"store"`
	Planning PlanningConfig `yaml:"planning"`
}

// LoggerConfig selects the zap preset and an optional rotated log file
type LoggerConfig struct {
	// Mode is "development" or "production"
	Mode       string `yaml:"mode"`
	Level      string `yaml:"level"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// SolverConfig selects and tunes the MILP backend
type SolverConfig struct {
	Name                 string        `yaml:"name"`
	TimeLimit            time.Duration `yaml:"time_limit"`
	MaxNodes             int           `yaml:"max_nodes"`
	IntegralityTolerance float64       `yaml:"integrality_tolerance"`
	Relax                bool          `yaml:"relax"`
}

// StoreConfig locates the run database. An empty path keeps runs in memory.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// PlanningConfig controls batch runs
type PlanningConfig struct {
	// Parallelism bounds concurrent solves in a batch
	Parallelism int    `yaml:"parallelism"`
	ScenarioDir string `yaml:"scenario_dir"`
}

// DefaultAppConfig returns the configuration used when no file is given
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Logger: LoggerConfig{
			Mode:     "development",
			Level:    "info",
			Filename: "factoryplan.log",
		},
		Solver: SolverConfig{
			Name:                 "bnb",
			TimeLimit:            5 * time.Minute,
			IntegralityTolerance: 1e-6,
		},
		Planning: PlanningConfig{
			Parallelism: 2,
			ScenarioDir: "scenarios",
		},
	}
}

// LoadAppConfig reads path over the defaults. A missing file yields the defaults.
func LoadAppConfig(path string) (*AppConfig, error) {
	cfg := DefaultAppConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *AppConfig) Validate() error {
	switch c.Logger.Mode {
	case "development", "production":
	default:
		return fmt.Errorf("logger.mode must be development or production, got %q", c.Logger.Mode)
	}
	if c.Logger.FileEnable && c.Logger.Filename == "" {
		return fmt.Errorf("logger.filename is required when file_enable is set")
	}
	if c.Solver.TimeLimit < 0 {
		return fmt.Errorf("solver.time_limit cannot be negative")
	}
	if c.Solver.MaxNodes < 0 {
		return fmt.Errorf("solver.max_nodes cannot be negative")
	}
	if c.Solver.IntegralityTolerance < 0 || c.Solver.IntegralityTolerance >= 0.5 {
		return fmt.Errorf("solver.integrality_tolerance must be in [0, 0.5), got %g", c.Solver.IntegralityTolerance)
	}
	if c.Planning.Parallelism < 1 {
		return fmt.Errorf("planning.parallelism must be at least 1, got %d", c.Planning.Parallelism)
	}
	return nil
}

// SolverOptions maps the solver section onto backend options
func (c *AppConfig) SolverOptions(logger *zap.Logger) solver.Options {
	return solver.Options{
		TimeLimit:            c.Solver.TimeLimit,
		MaxNodes:             c.Solver.MaxNodes,
		IntegralityTolerance: c.Solver.IntegralityTolerance,
		Relax:                c.Solver.Relax,
		Logger:               logger,
	}
}
