// Package yaml reads planning scenarios from YAML files
package yaml

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	goyaml "gopkg.in/yaml.v3"

	"github.com/vsinha/factoryplan/pkg/domain/entities"
)

// scenarioDocument is the on-disk form of a scenario. Pointer fields
// distinguish an absent key, which takes the default, from a literal zero.
type scenarioDocument struct {
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"`
	Months  int    `yaml:"months"`

	StockCostPerUnit      *float64 `yaml:"stock_cost_per_unit"`
	StockBound            *int     `yaml:"stock_bound"`
	FinalStockRequirement *int     `yaml:"final_stock_requirement"`
	HoursPerMachineMonth  *float64 `yaml:"hours_per_machine_month"`

	Products  []productDocument  `yaml:"products"`
	Resources []resourceDocument `yaml:"resources"`
}

type productDocument struct {
	Name   string    `yaml:"name"`
	Profit float64   `yaml:"profit"`
	Hours  []float64 `yaml:"hours"`
	Market []int     `yaml:"market"`
}

type resourceDocument struct {
	Name         string `yaml:"name"`
	MachineCount int    `yaml:"machine_count,omitempty"`

	// An absent quota services every installed machine once
	MaintenanceQuota *int  `yaml:"maintenance_quota,omitempty"`
	Available        []int `yaml:"available,omitempty"`
}

// LoadFile reads one scenario file. A missing name falls back to the file
// name without extension. The result is not validated.
func LoadFile(path string) (*entities.ParameterSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}
	params, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario file %s: %w", path, err)
	}
	if params.Name == "" {
		params.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return params, nil
}

// Parse decodes a scenario document and applies defaults for absent keys
func Parse(data []byte) (*entities.ParameterSet, error) {
	var doc scenarioDocument
	if err := goyaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	variant, err := entities.ParseVariant(doc.Variant)
	if err != nil {
		return nil, err
	}

	params := &entities.ParameterSet{
		Name:                  doc.Name,
		Variant:               variant,
		NumProducts:           len(doc.Products),
		NumMonths:             doc.Months,
		NumResourceSteps:      len(doc.Resources),
		StockCostPerUnit:      floatOr(doc.StockCostPerUnit, entities.DefaultStockCostPerUnit),
		StockBound:            intOr(doc.StockBound, entities.DefaultStockBound),
		FinalStockRequirement: intOr(doc.FinalStockRequirement, entities.DefaultFinalStockRequirement),
		HoursPerMachineMonth:  floatOr(doc.HoursPerMachineMonth, entities.DefaultHoursPerMachineMonth),
	}
	if params.NumMonths == 0 && len(doc.Products) > 0 {
		params.NumMonths = len(doc.Products[0].Market)
	}

	for _, product := range doc.Products {
		params.ProductNames = append(params.ProductNames, product.Name)
		params.ProfitPerUnit = append(params.ProfitPerUnit, product.Profit)
		params.ProductionHours = append(params.ProductionHours, product.Hours)
		params.MarketLimit = append(params.MarketLimit, product.Market)
	}

	for _, resource := range doc.Resources {
		params.ResourceNames = append(params.ResourceNames, resource.Name)
		switch variant {
		case entities.FixedAvailability:
			params.MachinesAvailable = append(params.MachinesAvailable, resource.Available)
		case entities.ScheduledMaintenance:
			params.MachineCount = append(params.MachineCount, resource.MachineCount)
			params.MaintenanceQuota = append(params.MaintenanceQuota, intOr(resource.MaintenanceQuota, resource.MachineCount))
		}
	}

	return params, nil
}

// Marshal encodes params in the scenario file format
func Marshal(params *entities.ParameterSet) ([]byte, error) {
	doc := scenarioDocument{
		Name:                  params.Name,
		Variant:               variantKey(params.Variant),
		Months:                params.NumMonths,
		StockCostPerUnit:      &params.StockCostPerUnit,
		StockBound:            &params.StockBound,
		FinalStockRequirement: &params.FinalStockRequirement,
		HoursPerMachineMonth:  &params.HoursPerMachineMonth,
	}
	for i := 0; i < params.NumProducts; i++ {
		doc.Products = append(doc.Products, productDocument{
			Name:   params.ProductName(i),
			Profit: params.ProfitPerUnit[i],
			Hours:  params.ProductionHours[i],
			Market: params.MarketLimit[i],
		})
	}
	for k := 0; k < params.NumResourceSteps; k++ {
		resource := resourceDocument{Name: params.ResourceName(k)}
		if params.Variant == entities.ScheduledMaintenance {
			resource.MachineCount = params.MachineCount[k]
			quota := params.MaintenanceQuota[k]
			resource.MaintenanceQuota = &quota
		} else {
			resource.Available = params.MachinesAvailable[k]
		}
		doc.Resources = append(doc.Resources, resource)
	}
	return goyaml.Marshal(&doc)
}

func variantKey(v entities.Variant) string {
	if v == entities.ScheduledMaintenance {
		return "maintenance"
	}
	return "fixed"
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
