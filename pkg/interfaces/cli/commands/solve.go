package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/factoryplan/pkg/application/services/analysis"
	"github.com/vsinha/factoryplan/pkg/application/services/orchestration"
	"github.com/vsinha/factoryplan/pkg/application/services/planning"
	"github.com/vsinha/factoryplan/pkg/domain/repositories"
	"github.com/vsinha/factoryplan/pkg/interfaces/cli/output"
)

type solveOptions struct {
	solverFlags
	format    string
	outputDir string
	save      bool
	verbose   bool

	// bottlenecks is the number of most loaded resource-months to report
	bottlenecks int
}

func newSolveCommand(a *app) *cobra.Command {
	opts := &solveOptions{}
	cmd := &cobra.Command{
		Use:   "solve <scenario>",
		Short: "Solve a planning scenario",
		Long: `Solve a scenario given as a YAML file, a CSV scenario directory or the
name of a scenario in the configured scenario directory.

The bnb solver searches depth first. It proves factory_planning_1 optimal in
seconds, but on factory_planning_2 it stops at the time limit (solver.time_limit,
5m by default) and reports the best plan found with status Feasible. Use
--relax for the LP bound.`,
		Example: `  factoryplan solve scenarios/factory_planning_1.yaml
  factoryplan solve factory_planning_2 --time-limit 2m --format json
  factoryplan solve scenarios/csv/factory_planning_1 --relax --save
  factoryplan solve factory_planning_1 --bottlenecks 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, a, opts, args[0])
		},
	}

	opts.solverFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json, csv, svg")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "Output directory for results")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Record the run in the run store")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show model statistics and timings")
	cmd.Flags().IntVar(&opts.bottlenecks, "bottlenecks", 0, "Report the N most loaded resource-months (0 = off)")
	return cmd
}

func runSolve(cmd *cobra.Command, a *app, opts *solveOptions, arg string) error {
	params, err := a.loadScenario(arg)
	if err != nil {
		return err
	}

	backend, err := a.newSolver(cmd, &opts.solverFlags)
	if err != nil {
		return err
	}

	var runs repositories.RunRepository
	if opts.save {
		repo, closeRuns, err := a.openRuns()
		if err != nil {
			return err
		}
		defer closeRuns()
		runs = repo
	}

	planner := planning.NewServiceWithConfig(backend, planning.ServiceConfig{Logger: a.logger})
	orchestrator := orchestration.NewPlanningOrchestrator(nil, planner, runs, nil,
		orchestration.OrchestratorConfig{Logger: a.logger})

	result, err := orchestrator.RunParameters(cmd.Context(), params)
	if err != nil {
		return err
	}

	if opts.bottlenecks > 0 && result.Plan.HasValues() {
		result.Bottlenecks, err = analysis.NewBottleneckService().Analyze(params, result.Plan, opts.bottlenecks)
		if err != nil {
			return err
		}
	}

	if err := output.Generate(result, output.Config{
		Format:       opts.format,
		OutputDir:    opts.outputDir,
		Verbose:      opts.verbose,
		MachineCount: params.MachineCount,
		Writer:       cmd.OutOrStdout(),
	}); err != nil {
		return err
	}

	if opts.save && opts.verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "Run saved as %s\n", result.Run.ID)
	}
	return nil
}
