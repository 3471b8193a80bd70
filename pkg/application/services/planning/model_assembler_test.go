package planning

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/factoryplan/pkg/domain/entities"
	"github.com/vsinha/factoryplan/pkg/domain/model"
	"github.com/vsinha/factoryplan/pkg/infrastructure/solver/bnb"
	testhelpers "github.com/vsinha/factoryplan/pkg/infrastructure/testing"
)

func solvePlan(t *testing.T, params *entities.ParameterSet, opts bnb.Options) *entities.Plan {
	t.Helper()
	pm, err := NewAssembler().Assemble(params)
	require.NoError(t, err)
	solution, err := pm.Solve(context.Background(), bnb.New(opts))
	require.NoError(t, err)
	plan, err := NewResultExtractor().Extract(pm, solution)
	require.NoError(t, err)
	return plan
}

// assertPlanInvariants checks conservation, terminal stock, capacity and,
// for scheduled maintenance, the quota on an extracted plan
func assertPlanInvariants(t *testing.T, params *entities.ParameterSet, plan *entities.Plan) {
	t.Helper()
	require.True(t, plan.HasValues(), "plan has no values: %s", plan.Status)

	for i := 0; i < params.NumProducts; i++ {
		prev := 0
		for j := 0; j < params.NumMonths; j++ {
			s, v, p := plan.Stock.At(i, j), plan.Sales.At(i, j), plan.Production.At(i, j)
			assert.Equal(t, p+prev, s+v, "conservation for product %d month %d", i, j)
			assert.LessOrEqual(t, v, params.MarketLimit[i][j])
			assert.LessOrEqual(t, s, params.StockBound)
			assert.GreaterOrEqual(t, s, 0)
			assert.GreaterOrEqual(t, v, 0)
			assert.GreaterOrEqual(t, p, 0)
			prev = s
		}
		assert.Equal(t, params.FinalStockRequirement, plan.Stock.At(i, params.NumMonths-1))
	}

	for k := 0; k < params.NumResourceSteps; k++ {
		down := 0
		for j := 0; j < params.NumMonths; j++ {
			used := 0.0
			for i := 0; i < params.NumProducts; i++ {
				used += params.ProductionHours[i][k] * float64(plan.Production.At(i, j))
			}
			var machines int
			if params.Variant == entities.ScheduledMaintenance {
				machines = plan.MachinesAvailable.At(k, j)
				down += params.MachineCount[k] - machines
			} else {
				machines = params.MachinesAvailable[k][j]
			}
			assert.LessOrEqual(t, used, float64(machines)*params.HoursPerMachineMonth+1e-6,
				"capacity for step %d month %d", k, j)
		}
		if params.Variant == entities.ScheduledMaintenance {
			assert.Equal(t, params.MaintenanceQuota[k], down, "maintenance quota for step %d", k)
		}
	}
}

func TestSolve_SmallFixedScenario(t *testing.T) {
	params := testhelpers.BuildSmallFixedScenario()
	plan := solvePlan(t, params, bnb.Options{})

	assert.Equal(t, model.Optimal, plan.Status)
	assert.InDelta(t, 148, plan.Objective, 1e-6)
	assert.Nil(t, plan.MachinesAvailable)
	assertPlanInvariants(t, params, plan)
}

func TestSolve_SmallMaintenanceScenario(t *testing.T) {
	params := testhelpers.BuildSmallMaintenanceScenario()
	plan := solvePlan(t, params, bnb.Options{})

	assert.Equal(t, model.Optimal, plan.Status)
	assert.InDelta(t, 178, plan.Objective, 1e-6)
	require.NotNil(t, plan.MachinesAvailable)
	// The lathe is serviced in the second month, the cheapest place to lose capacity
	assert.Equal(t, []int{2, 1, 2}, plan.MachinesAvailable.Row(0))
	assert.Equal(t, []int{0, 1, 0}, plan.MaintenanceSchedule(params.MachineCount).Row(0))
	assertPlanInvariants(t, params, plan)
}

func TestSolve_MaintenanceBeatsFixedSchedule(t *testing.T) {
	fixed := solvePlan(t, testhelpers.BuildSmallFixedScenario(), bnb.Options{})
	scheduled := solvePlan(t, testhelpers.BuildSmallMaintenanceScenario(), bnb.Options{})
	assert.Greater(t, scheduled.Objective, fixed.Objective)
}

func TestSolve_MonotoneInMarketLimits(t *testing.T) {
	base := testhelpers.BuildSmallFixedScenario()
	raised := base.Clone()
	raised.MarketLimit[0][0]++

	basePlan := solvePlan(t, base, bnb.Options{})
	raisedPlan := solvePlan(t, raised, bnb.Options{})

	assert.GreaterOrEqual(t, raisedPlan.Objective, basePlan.Objective)
	assert.InDelta(t, 149, raisedPlan.Objective, 1e-6)
}

func TestSolve_ZeroMarket(t *testing.T) {
	params := testhelpers.BuildSmallFixedScenario()
	for i := range params.MarketLimit {
		for j := range params.MarketLimit[i] {
			params.MarketLimit[i][j] = 0
		}
	}

	plan := solvePlan(t, params, bnb.Options{})
	assert.Equal(t, model.Optimal, plan.Status)
	plan.Sales.Each(func(i, j int, v int) {
		assert.Equal(t, 0, v, "sales for product %d month %d", i, j)
	})
	// The final stock is made in the last month and held for that month only
	assert.InDelta(t, -2, plan.Objective, 1e-6)
	assertPlanInvariants(t, params, plan)
}

func TestSolve_ZeroStock(t *testing.T) {
	params := testhelpers.BuildSmallFixedScenario()
	params.StockBound = 0
	params.FinalStockRequirement = 0

	plan := solvePlan(t, params, bnb.Options{})
	assert.Equal(t, model.Optimal, plan.Status)
	assert.InDelta(t, 153, plan.Objective, 1e-6)
	plan.Production.Each(func(i, j int, p int) {
		assert.Equal(t, p, plan.Sales.At(i, j))
		assert.Equal(t, 0, plan.Stock.At(i, j))
	})
}

func TestSolve_FinalStockAboveBoundIsInfeasible(t *testing.T) {
	params := testhelpers.BuildSmallFixedScenario()
	params.FinalStockRequirement = params.StockBound + 1

	plan := solvePlan(t, params, bnb.Options{})
	assert.Equal(t, model.Infeasible, plan.Status)
	assert.False(t, plan.HasValues())
	assert.Nil(t, plan.Production)
	assert.Equal(t, 0.0, plan.Objective)
}

func TestSolve_NoMachinesForcesNoProduction(t *testing.T) {
	params := testhelpers.BuildSmallFixedScenario()
	params.MachinesAvailable = [][]int{{0, 0, 0}}
	params.FinalStockRequirement = 0

	plan := solvePlan(t, params, bnb.Options{})
	assert.Equal(t, model.Optimal, plan.Status)
	assert.InDelta(t, 0, plan.Objective, 1e-9)
	plan.Production.Each(func(i, j int, p int) {
		assert.Equal(t, 0, p)
	})
}

func TestSolve_WilliamsLPRelaxation(t *testing.T) {
	if testing.Short() {
		t.Skip("dense simplex on the full scenario")
	}
	pm, err := NewAssembler().Assemble(testhelpers.BuildFactoryPlanning1())
	require.NoError(t, err)

	stats := pm.Model.Stats()
	assert.Equal(t, 126, stats.Variables)
	assert.Equal(t, 42+7+30, stats.Constraints)

	solution, err := pm.Solve(context.Background(), bnb.New(bnb.Options{Relax: true}))
	require.NoError(t, err)
	assert.Equal(t, model.Optimal, solution.Status)
	assert.InDelta(t, testhelpers.WilliamsLPRelaxationObjective, solution.Objective, 1e-3)
}

func TestSolve_WilliamsInteger(t *testing.T) {
	if testing.Short() {
		t.Skip("branch-and-bound on the full scenario")
	}
	params := testhelpers.BuildFactoryPlanning1()
	pm, err := NewAssembler().Assemble(params)
	require.NoError(t, err)

	solution, err := pm.Solve(context.Background(), bnb.New(bnb.Options{TimeLimit: 3 * time.Minute}))
	require.NoError(t, err)
	assert.Equal(t, model.Optimal, solution.Status)
	assert.InDelta(t, testhelpers.WilliamsIntegerObjective, solution.Objective, 1e-6)

	plan, err := NewResultExtractor().Extract(pm, solution)
	require.NoError(t, err)
	assertPlanInvariants(t, params, plan)
}

func TestSolve_WilliamsMaintenanceWithinTimeLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("branch-and-bound on the full scenario")
	}
	params := testhelpers.BuildFactoryPlanning2()
	pm, err := NewAssembler().Assemble(params)
	require.NoError(t, err)

	// The search does not close the gap here; the limit hands back the incumbent
	solution, err := pm.Solve(context.Background(), bnb.New(bnb.Options{TimeLimit: 3 * time.Minute}))
	require.NoError(t, err)
	assert.Contains(t, []model.Status{model.Optimal, model.Feasible}, solution.Status)
	assert.Greater(t, solution.Objective, testhelpers.WilliamsIntegerObjective)

	plan, err := NewResultExtractor().Extract(pm, solution)
	require.NoError(t, err)
	assertPlanInvariants(t, params, plan)
}

func TestPlanningModel_SolveWrapsSolverFailure(t *testing.T) {
	pm, err := NewAssembler().Assemble(testhelpers.BuildSmallFixedScenario())
	require.NoError(t, err)

	failing := model.SolverFunc(func(ctx context.Context, m *model.Model) (*model.Solution, error) {
		return nil, model.ErrSolverFailure
	})
	_, err = pm.Solve(context.Background(), failing)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrSolverFailure)
	assert.Contains(t, err.Error(), "small_fixed")

	_, err = pm.Solve(context.Background(), nil)
	assert.Error(t, err)
}
