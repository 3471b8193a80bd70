package planning

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vsinha/factoryplan/pkg/application/dto"
	"github.com/vsinha/factoryplan/pkg/domain/entities"
	"github.com/vsinha/factoryplan/pkg/domain/model"
)

// ServiceConfig holds optional collaborators of the planning service
type ServiceConfig struct {
	Logger *zap.Logger
	// Now is the clock used for run timestamps
	Now func() time.Time
}

// PlanOption customizes a single Plan call
type PlanOption func(*planCall)

type planCall struct {
	onAssembled func(stats model.Stats)
}

// OnAssembled registers fn to run once the model is built, before solving
func OnAssembled(fn func(stats model.Stats)) PlanOption {
	return func(c *planCall) {
		c.onAssembled = fn
	}
}

// Service runs assemble, solve and extract for one parameter set
type Service struct {
	solver    model.Solver
	assembler *Assembler
	extractor *ResultExtractor
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a planning service with default configuration
func NewService(solver model.Solver) *Service {
	return NewServiceWithConfig(solver, ServiceConfig{})
}

// NewServiceWithConfig creates a planning service with custom configuration
func NewServiceWithConfig(solver model.Solver, config ServiceConfig) *Service {
	logger := config.Logger
	if logger == nil {
		logger = zap.L()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		solver:    solver,
		assembler: NewAssembler(),
		extractor: NewResultExtractor(),
		logger:    logger,
		now:       now,
	}
}

// Assemble builds the model without solving it
func (s *Service) Assemble(params *entities.ParameterSet) (*PlanningModel, error) {
	return s.assembler.Assemble(params)
}

// Plan assembles, solves and extracts. Infeasible and unbounded outcomes are
// returned as a result with that status; only invalid parameters and solver
// failures are errors.
func (s *Service) Plan(ctx context.Context, params *entities.ParameterSet, opts ...PlanOption) (*dto.PlanResult, error) {
	if params == nil {
		return nil, fmt.Errorf("no parameters provided for planning")
	}
	call := &planCall{}
	for _, opt := range opts {
		opt(call)
	}
	logger := s.logger.With(
		zap.String("scenario", params.Name),
		zap.Stringer("variant", params.Variant))

	createdAt := s.now()
	buildStart := time.Now()
	pm, err := s.assembler.Assemble(params)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble model: %w", err)
	}
	buildDuration := time.Since(buildStart)

	stats := pm.Model.Stats()
	logger.Info("Model assembled",
		zap.Int("variables", stats.Variables),
		zap.Int("integer_variables", stats.IntegerVariables),
		zap.Int("constraints", stats.Constraints),
		zap.Int("nonzeros", stats.NonZeros),
		zap.Duration("build_duration", buildDuration))
	if call.onAssembled != nil {
		call.onAssembled(stats)
	}

	solveStart := time.Now()
	solution, err := pm.Solve(ctx, s.solver)
	if err != nil {
		logger.Error("Solve failed", zap.Error(err))
		return nil, err
	}
	solveDuration := time.Since(solveStart)

	plan, err := s.extractor.Extract(pm, solution)
	if err != nil {
		return nil, fmt.Errorf("failed to extract plan: %w", err)
	}

	logger.Info("Plan solved",
		zap.Stringer("status", solution.Status),
		zap.Float64("objective", solution.Objective),
		zap.Int("nodes", solution.Nodes),
		zap.Duration("solve_duration", solveDuration))

	run := &entities.PlanRun{
		ID:            uuid.NewString(),
		Scenario:      params.Name,
		Variant:       params.Variant,
		Status:        solution.Status,
		Objective:     plan.Objective,
		Plan:          plan,
		CreatedAt:     createdAt,
		BuildDuration: buildDuration,
		SolveDuration: solveDuration,
	}

	return &dto.PlanResult{
		Run:        run,
		Plan:       plan,
		ModelStats: stats,
		Nodes:      solution.Nodes,
	}, nil
}
