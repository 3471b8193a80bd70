// Package commands implements the factoryplan command line
package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/factoryplan/pkg/domain/entities"
	"github.com/vsinha/factoryplan/pkg/domain/model"
	"github.com/vsinha/factoryplan/pkg/domain/repositories"
	"github.com/vsinha/factoryplan/pkg/infrastructure/config"
	csvrepo "github.com/vsinha/factoryplan/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/factoryplan/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/factoryplan/pkg/infrastructure/repositories/sqlite"
	yamlrepo "github.com/vsinha/factoryplan/pkg/infrastructure/repositories/yaml"
	"github.com/vsinha/factoryplan/pkg/infrastructure/solver"
)

// app carries the configuration shared by every subcommand. It is filled in
// by the root command before any subcommand runs.
type app struct {
	configPath string
	logLevel   string
	storePath  string

	cfg    *config.AppConfig
	logger *zap.Logger
}

// solverFlags are the per-invocation overrides of the solver section
type solverFlags struct {
	name      string
	timeLimit time.Duration
	maxNodes  int
	relax     bool
}

// NewRootCommand builds the factoryplan command tree
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "factoryplan",
		Short: "Multi-period factory production planning",
		Long: `factoryplan builds and solves the mixed-integer production planning model
of a factory: how much of each product to make, sell and store every month,
and optionally when each machine is taken down for maintenance.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "factoryplan.yaml", "Path to the configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override logger.level")
	root.PersistentFlags().StringVar(&a.storePath, "store", "", "Override store.path (sqlite run database)")

	root.AddCommand(
		newSolveCommand(a),
		newValidateCommand(a),
		newExportCommand(a),
		newRunsCommand(a),
		newBatchCommand(a),
		newGenerateCommand(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadAppConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logger.Level = a.logLevel
	}
	if a.storePath != "" {
		cfg.Store.Path = a.storePath
	}

	logger, err := config.InitLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (f *solverFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "solver", "", fmt.Sprintf("Solver backend %v", solver.Names()))
	cmd.Flags().DurationVar(&f.timeLimit, "time-limit", 0, "Wall-clock limit for the solve, e.g. 90s")
	cmd.Flags().IntVar(&f.maxNodes, "max-nodes", 0, "Branch-and-bound node limit (0 = unlimited)")
	cmd.Flags().BoolVar(&f.relax, "relax", false, "Solve the LP relaxation only")
}

// newSolver applies the flags the user set on top of the configuration
func (a *app) newSolver(cmd *cobra.Command, f *solverFlags) (model.Solver, error) {
	name := a.cfg.Solver.Name
	if cmd.Flags().Changed("solver") {
		name = f.name
	}
	opts := a.cfg.SolverOptions(a.logger)
	if cmd.Flags().Changed("time-limit") {
		opts.TimeLimit = f.timeLimit
	}
	if cmd.Flags().Changed("max-nodes") {
		opts.MaxNodes = f.maxNodes
	}
	if cmd.Flags().Changed("relax") {
		opts.Relax = f.relax
	}
	return solver.New(name, opts)
}

// loadScenario resolves arg as a YAML file, a CSV scenario directory or the
// name of a scenario in the configured scenario directory
func (a *app) loadScenario(arg string) (*entities.ParameterSet, error) {
	info, err := os.Stat(arg)
	switch {
	case err == nil && info.IsDir():
		return csvrepo.NewLoader().LoadDir(arg)
	case err == nil:
		return yamlrepo.LoadFile(arg)
	case errors.Is(err, fs.ErrNotExist):
		repo, err := yamlrepo.OpenDir(a.cfg.Planning.ScenarioDir)
		if err != nil {
			return nil, fmt.Errorf("%s is neither a file nor a known scenario: %w", arg, err)
		}
		return repo.GetScenario(arg)
	default:
		return nil, err
	}
}

// openRuns returns the configured run repository and its closer. Without a
// store path runs live only for the current invocation.
func (a *app) openRuns() (repositories.RunRepository, func() error, error) {
	if a.cfg.Store.Path == "" {
		return memory.NewRunRepository(), func() error { return nil }, nil
	}
	store, err := sqlite.NewRunStore(a.cfg.Store.Path)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}
