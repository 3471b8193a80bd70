package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/factoryplan/pkg/application/services/orchestration"
	"github.com/vsinha/factoryplan/pkg/application/services/planning"
	"github.com/vsinha/factoryplan/pkg/domain/repositories"
	"github.com/vsinha/factoryplan/pkg/infrastructure/events"
	"github.com/vsinha/factoryplan/pkg/infrastructure/repositories/memory"
	yamlrepo "github.com/vsinha/factoryplan/pkg/infrastructure/repositories/yaml"
)

type batchOptions struct {
	solverFlags
	parallel int
	failFast bool
	save     bool
}

func newBatchCommand(a *app) *cobra.Command {
	opts := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch [scenario...]",
		Short: "Solve several scenarios in parallel",
		Long: `Solve several scenarios concurrently. Without arguments every scenario of
the configured scenario directory is solved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, a, opts, args)
		},
	}

	opts.solverFlags.register(cmd)
	cmd.Flags().IntVarP(&opts.parallel, "parallel", "p", 0, "Concurrent solves (default planning.parallelism)")
	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "Stop at the first failing scenario")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Record the runs in the run store")
	return cmd
}

func runBatch(cmd *cobra.Command, a *app, opts *batchOptions, args []string) error {
	scenarios := memory.NewScenarioRepository(len(args))
	var names []string

	if len(args) == 0 {
		dir, err := yamlrepo.OpenDir(a.cfg.Planning.ScenarioDir)
		if err != nil {
			return err
		}
		all, err := dir.ListScenarios()
		if err != nil {
			return err
		}
		for _, name := range all {
			params, err := dir.GetScenario(name)
			if err != nil {
				return err
			}
			if err := scenarios.AddScenario(params); err != nil {
				return err
			}
		}
		names = all
	}
	for _, arg := range args {
		params, err := a.loadScenario(arg)
		if err != nil {
			return err
		}
		if err := scenarios.AddScenario(params); err != nil {
			return fmt.Errorf("%s: %w", arg, err)
		}
		names = append(names, params.Name)
	}
	if len(names) == 0 {
		return fmt.Errorf("no scenarios to solve")
	}

	backend, err := a.newSolver(cmd, &opts.solverFlags)
	if err != nil {
		return err
	}

	var runs repositories.RunRepository = memory.NewRunRepository()
	if opts.save {
		repo, closeRuns, err := a.openRuns()
		if err != nil {
			return err
		}
		defer closeRuns()
		runs = repo
	}

	eventStore := events.NewInMemoryEventStoreWithLogger(a.logger)
	progress := events.NewFuncHandler(func(e events.Event) error {
		switch data := e.Data().(type) {
		case events.PlanSolved:
			a.logger.Info("Scenario solved",
				zap.String("scenario", data.Scenario),
				zap.Stringer("status", data.Status),
				zap.Float64("objective", data.Objective))
		case events.PlanFailed:
			a.logger.Warn("Scenario failed",
				zap.String("scenario", data.Scenario),
				zap.String("reason", data.Reason))
		}
		return nil
	})
	if err := eventStore.Subscribe(events.PlanningEventTypes, progress); err != nil {
		return err
	}
	defer eventStore.Wait()

	parallel := a.cfg.Planning.Parallelism
	if cmd.Flags().Changed("parallel") {
		parallel = opts.parallel
	}

	planner := planning.NewServiceWithConfig(backend, planning.ServiceConfig{Logger: a.logger})
	orchestrator := orchestration.NewPlanningOrchestrator(scenarios, planner, runs, eventStore,
		orchestration.OrchestratorConfig{
			Parallelism: parallel,
			FailFast:    opts.failFast,
			Logger:      a.logger,
		})

	batch, err := orchestrator.RunScenarios(cmd.Context(), names)
	if batch != nil {
		fmt.Fprint(cmd.OutOrStdout(), batch.GetSummary())
		if best := batch.Best(); best != nil && len(batch.Items) > 1 {
			fmt.Fprintf(cmd.OutOrStdout(), "Best: %s (%.2f)\n", best.Scenario, best.Result.Run.Objective)
		}
	}
	if err != nil {
		return err
	}
	if failed := batch.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(names))
	}
	return nil
}
