package main

import (
	"context"
	"fmt"

	"github.com/vsinha/factoryplan/pkg/application/services/planning"
	"github.com/vsinha/factoryplan/pkg/domain/entities"
	"github.com/vsinha/factoryplan/pkg/infrastructure/solver/bnb"
)

func main() {
	ctx := context.Background()

	// A small workshop: two products sharing one lathe and one drill over a quarter
	params := &entities.ParameterSet{
		Name:                  "workshop",
		Variant:               entities.ScheduledMaintenance,
		NumProducts:           2,
		NumMonths:             3,
		NumResourceSteps:      2,
		ProductNames:          []string{"BRACKET", "HINGE"},
		ResourceNames:         []string{"lathe", "drill"},
		ProfitPerUnit:         []float64{8, 5},
		StockCostPerUnit:      entities.DefaultStockCostPerUnit,
		ProductionHours:       [][]float64{{0.5, 0.2}, {0.25, 0.4}},
		MarketLimit:           [][]int{{300, 400, 200}, {500, 100, 600}},
		StockBound:            entities.DefaultStockBound,
		FinalStockRequirement: 20,
		HoursPerMachineMonth:  entities.DefaultHoursPerMachineMonth,
		MachineCount:          []int{1, 1},
		MaintenanceQuota:      []int{1, 1},
	}

	service := planning.NewService(bnb.New(bnb.Options{}))

	fmt.Println("Planning workshop quarter...")
	result, err := service.Plan(ctx, params)
	if err != nil {
		fmt.Printf("Planning failed: %v\n", err)
		return
	}

	plan := result.Plan
	fmt.Printf("Status: %s, objective %.2f after %d nodes\n", plan.Status, plan.Objective, result.Nodes)
	if !plan.HasValues() {
		return
	}

	for i, product := range plan.ProductNames {
		fmt.Printf("  %-8s make %v sell %v stock %v\n",
			product, plan.Production.Row(i), plan.Sales.Row(i), plan.Stock.Row(i))
	}

	schedule := plan.MaintenanceSchedule(params.MachineCount)
	for k, resource := range plan.ResourceNames {
		fmt.Printf("  %-8s maintenance %v\n", resource, schedule.Row(k))
	}
	fmt.Printf("Net profit: %s\n", plan.Financials.NetProfit.StringFixed(2))
}
