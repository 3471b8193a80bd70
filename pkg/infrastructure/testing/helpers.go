package testing

import (
	"github.com/vsinha/factoryplan/pkg/domain/entities"
)

// Williams "Model Building in Mathematical Programming" factory planning data
var (
	williamsProfit = []float64{10, 6, 8, 4, 11, 9, 3}

	williamsHours = [][]float64{
		{0.5, 0.1, 0.2, 0.05, 0},
		{0.7, 0.2, 0, 0.03, 0},
		{0, 0, 0.8, 0, 0.01},
		{0, 0.3, 0, 0.07, 0},
		{0.3, 0, 0, 0.1, 0.05},
		{0.2, 0.6, 0, 0, 0},
		{0.5, 0, 0.6, 0.08, 0.05},
	}

	williamsMarket = [][]int{
		{500, 600, 300, 200, 0, 500},
		{1000, 500, 600, 300, 100, 500},
		{300, 200, 0, 400, 500, 100},
		{300, 0, 0, 500, 100, 300},
		{800, 400, 500, 200, 1000, 1100},
		{200, 300, 400, 0, 300, 500},
		{100, 150, 100, 100, 0, 60},
	}

	williamsMachinesAvailable = [][]int{
		{3, 4, 4, 4, 3, 4}, // grinders
		{2, 2, 2, 1, 1, 2}, // vertical drills
		{3, 1, 3, 3, 3, 2}, // horizontal drills
		{1, 1, 0, 1, 1, 1}, // borer
		{1, 1, 1, 1, 1, 0}, // planer
	}

	williamsMachineCount = []int{4, 2, 3, 1, 1}

	williamsResources = []string{"grinders", "vertical drills", "horizontal drills", "borer", "planer"}
)

// WilliamsLPRelaxationObjective is the published optimum of factory planning 1
// with continuous variables.
const WilliamsLPRelaxationObjective = 93715.178571

// WilliamsIntegerObjective is the proven integer optimum of factory planning 1
const WilliamsIntegerObjective = 93711.5

// BuildFactoryPlanning1 returns the fixed-availability scenario (7 products, 6 months, 5 steps)
func BuildFactoryPlanning1() *entities.ParameterSet {
	p := williamsBase("factory_planning_1")
	p.Variant = entities.FixedAvailability
	p.MachinesAvailable = copyMatrix(williamsMachinesAvailable)
	return p
}

// BuildFactoryPlanning2 returns the scheduled-maintenance scenario.
// Every machine is maintained once except the grinders, of which only 2 of 4 are.
func BuildFactoryPlanning2() *entities.ParameterSet {
	p := williamsBase("factory_planning_2")
	p.Variant = entities.ScheduledMaintenance
	p.MachineCount = append([]int(nil), williamsMachineCount...)
	p.MaintenanceQuota = []int{2, 2, 3, 1, 1}
	return p
}

// BuildSmallFixedScenario returns a 2 product, 3 month, 1 step problem that
// branch-and-bound solves in a handful of nodes.
func BuildSmallFixedScenario() *entities.ParameterSet {
	return &entities.ParameterSet{
		Name:                  "small_fixed",
		Variant:               entities.FixedAvailability,
		NumProducts:           2,
		NumMonths:             3,
		NumResourceSteps:      1,
		ProductNames:          []string{"WIDGET", "GADGET"},
		ResourceNames:         []string{"lathe"},
		ProfitPerUnit:         []float64{5, 3},
		StockCostPerUnit:      0.5,
		ProductionHours:       [][]float64{{1}, {0.5}},
		MarketLimit:           [][]int{{10, 4, 12}, {6, 8, 3}},
		StockBound:            10,
		FinalStockRequirement: 2,
		HoursPerMachineMonth:  8,
		MachinesAvailable:     [][]int{{2, 1, 1}},
	}
}

// BuildSmallMaintenanceScenario is the scheduled-maintenance counterpart of
// BuildSmallFixedScenario: 2 lathes, one of which must be serviced.
func BuildSmallMaintenanceScenario() *entities.ParameterSet {
	p := BuildSmallFixedScenario()
	p.Name = "small_maintenance"
	p.Variant = entities.ScheduledMaintenance
	p.MachinesAvailable = nil
	p.MachineCount = []int{2}
	p.MaintenanceQuota = []int{1}
	return p
}

func williamsBase(name string) *entities.ParameterSet {
	return &entities.ParameterSet{
		Name:                  name,
		NumProducts:           7,
		NumMonths:             6,
		NumResourceSteps:      5,
		ResourceNames:         append([]string(nil), williamsResources...),
		ProfitPerUnit:         append([]float64(nil), williamsProfit...),
		StockCostPerUnit:      0.5,
		ProductionHours:       copyMatrix(williamsHours),
		MarketLimit:           copyMatrix(williamsMarket),
		StockBound:            entities.DefaultStockBound,
		FinalStockRequirement: entities.DefaultFinalStockRequirement,
		HoursPerMachineMonth:  entities.DefaultHoursPerMachineMonth,
	}
}

func copyMatrix[T any](m [][]T) [][]T {
	out := make([][]T, len(m))
	for i, row := range m {
		out[i] = append([]T(nil), row...)
	}
	return out
}
