package orchestration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/factoryplan/pkg/application/dto"
	"github.com/vsinha/factoryplan/pkg/application/services/planning"
	"github.com/vsinha/factoryplan/pkg/domain/entities"
	"github.com/vsinha/factoryplan/pkg/domain/model"
	"github.com/vsinha/factoryplan/pkg/domain/repositories"
	"github.com/vsinha/factoryplan/pkg/infrastructure/events"
)

// OrchestratorConfig holds optional settings of the orchestrator
type OrchestratorConfig struct {
	// Parallelism bounds concurrent solves in RunScenarios; below 1 means 1
	Parallelism int
	// FailFast cancels the remaining scenarios of a batch on the first error
	FailFast bool
	Logger   *zap.Logger
}

// PlanningOrchestrator coordinates scenario lookup, planning, run persistence
// and event publication
type PlanningOrchestrator struct {
	scenarios   repositories.ScenarioRepository
	planner     *planning.Service
	runs        repositories.RunRepository
	eventStore  events.EventStore
	parallelism int
	failFast    bool
	logger      *zap.Logger
}

// NewPlanningOrchestrator creates a new planning orchestrator. runs and
// eventStore may be nil, in which case runs are not persisted or published.
func NewPlanningOrchestrator(
	scenarios repositories.ScenarioRepository,
	planner *planning.Service,
	runs repositories.RunRepository,
	eventStore events.EventStore,
	config OrchestratorConfig,
) *PlanningOrchestrator {
	logger := config.Logger
	if logger == nil {
		logger = zap.L()
	}
	parallelism := config.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}
	return &PlanningOrchestrator{
		scenarios:   scenarios,
		planner:     planner,
		runs:        runs,
		eventStore:  eventStore,
		parallelism: parallelism,
		failFast:    config.FailFast,
		logger:      logger,
	}
}

// RunScenario plans the named scenario from the scenario repository
func (po *PlanningOrchestrator) RunScenario(ctx context.Context, name string) (*dto.PlanResult, error) {
	if po.scenarios == nil {
		return nil, fmt.Errorf("no scenario repository configured")
	}
	params, err := po.scenarios.GetScenario(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}
	return po.RunParameters(ctx, params)
}

// RunParameters plans params, then persists and publishes the run
func (po *PlanningOrchestrator) RunParameters(ctx context.Context, params *entities.ParameterSet) (*dto.PlanResult, error) {
	if params == nil {
		return nil, fmt.Errorf("no parameters provided for planning")
	}

	result, err := po.planner.Plan(ctx, params, planning.OnAssembled(func(stats model.Stats) {
		po.publish(events.NewModelAssembledEvent(params, stats))
	}))
	if err != nil {
		po.publish(events.NewPlanFailedEvent(params.Name, err))
		return nil, err
	}

	if po.runs != nil {
		if err := po.runs.SaveRun(ctx, result.Run); err != nil {
			return nil, fmt.Errorf("failed to save run %s: %w", result.Run.ID, err)
		}
	}

	po.publish(events.NewPlanSolvedEvent(result.Run, result.Nodes))
	return result, nil
}

func (po *PlanningOrchestrator) publish(event events.Event) {
	if po.eventStore == nil {
		return
	}
	if err := po.eventStore.AppendEvent(event.StreamID(), event); err != nil {
		po.logger.Warn("Failed to publish event",
			zap.String("event_type", event.Type()),
			zap.Error(err))
	}
}

// BatchItem is the outcome of one scenario in a batch
type BatchItem struct {
	Scenario string
	Result   *dto.PlanResult
	Err      error
}

// BatchResult contains the outcomes of RunScenarios in request order
type BatchResult struct {
	Items   []BatchItem
	Elapsed time.Duration
}

// RunScenarios plans several scenarios concurrently. Each scenario builds its
// own model. Individual failures are recorded on their item; with FailFast
// the first failure cancels the rest and is returned.
func (po *PlanningOrchestrator) RunScenarios(ctx context.Context, names []string) (*BatchResult, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no scenarios provided for planning")
	}

	start := time.Now()
	items := make([]BatchItem, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(po.parallelism)
	for i, name := range names {
		i, name := i, name
		items[i].Scenario = name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}
			result, err := po.RunScenario(gctx, name)
			items[i].Result = result
			items[i].Err = err
			if err != nil {
				po.logger.Warn("Scenario failed", zap.String("scenario", name), zap.Error(err))
				if po.failFast {
					return fmt.Errorf("scenario %s: %w", name, err)
				}
			}
			return nil
		})
	}

	batch := &BatchResult{Items: items}
	err := g.Wait()
	batch.Elapsed = time.Since(start)
	if err != nil {
		return batch, err
	}
	if err := ctx.Err(); err != nil {
		return batch, err
	}

	po.logger.Info("Batch finished",
		zap.Int("scenarios", len(names)),
		zap.Int("failed", batch.Failed()),
		zap.Duration("elapsed", batch.Elapsed))
	return batch, nil
}

// Failed counts the items that ended in an error
func (b *BatchResult) Failed() int {
	failed := 0
	for _, item := range b.Items {
		if item.Err != nil {
			failed++
		}
	}
	return failed
}

// Err joins the item errors
func (b *BatchResult) Err() error {
	var errs []error
	for _, item := range b.Items {
		if item.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", item.Scenario, item.Err))
		}
	}
	return errors.Join(errs...)
}

// Best returns the solved item with the highest objective, or nil
func (b *BatchResult) Best() *BatchItem {
	var best *BatchItem
	for i := range b.Items {
		item := &b.Items[i]
		if item.Err != nil || !item.Result.Run.Status.HasValues() {
			continue
		}
		if best == nil || item.Result.Run.Objective > best.Result.Run.Objective {
			best = item
		}
	}
	return best
}

// GetSummary returns a formatted summary of the batch
func (b *BatchResult) GetSummary() string {
	summary := fmt.Sprintf("Batch Summary (%d scenarios, %d failed, %s):\n",
		len(b.Items), b.Failed(), b.Elapsed.Round(time.Millisecond))
	for _, item := range b.Items {
		if item.Err != nil {
			summary += fmt.Sprintf("  %-24s error: %v\n", item.Scenario, item.Err)
			continue
		}
		run := item.Result.Run
		if run.Status.HasValues() {
			summary += fmt.Sprintf("  %-24s %-10s %.2f\n", item.Scenario, run.Status, run.Objective)
		} else {
			summary += fmt.Sprintf("  %-24s %s\n", item.Scenario, run.Status)
		}
	}
	return summary
}

// StatusCounts tallies successful outcomes by solver status
func (b *BatchResult) StatusCounts() map[model.Status]int {
	counts := make(map[model.Status]int)
	for _, item := range b.Items {
		if item.Err == nil {
			counts[item.Result.Run.Status]++
		}
	}
	return counts
}
