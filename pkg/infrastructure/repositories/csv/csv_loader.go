package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/vsinha/factoryplan/pkg/domain/entities"
)

// Scenario directory file names
const (
	SettingsFile          = "settings.csv"
	ProductsFile          = "products.csv"
	MarketLimitsFile      = "market_limits.csv"
	ResourcesFile         = "resources.csv"
	MachinesAvailableFile = "machines_available.csv"
)

// Loader handles loading planning scenarios from a directory of CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// ProductRow is one line of products.csv
type ProductRow struct {
	Name   string
	Profit float64
	Hours  []float64
}

// ResourceRow is one line of resources.csv
type ResourceRow struct {
	Name             string
	MachineCount     int
	MaintenanceQuota int
}

// LoadDir assembles a ParameterSet from a scenario directory. Settings absent
// from settings.csv, or the whole file, take their defaults; the name defaults
// to the directory name. The result is not validated.
func (l *Loader) LoadDir(dir string) (*entities.ParameterSet, error) {
	settings, err := l.LoadSettings(filepath.Join(dir, SettingsFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	params := &entities.ParameterSet{
		Name:                  filepath.Base(filepath.Clean(dir)),
		StockCostPerUnit:      entities.DefaultStockCostPerUnit,
		StockBound:            entities.DefaultStockBound,
		FinalStockRequirement: entities.DefaultFinalStockRequirement,
		HoursPerMachineMonth:  entities.DefaultHoursPerMachineMonth,
	}
	if err := applySettings(params, settings); err != nil {
		return nil, fmt.Errorf("%s: %w", SettingsFile, err)
	}

	products, err := l.LoadProducts(filepath.Join(dir, ProductsFile))
	if err != nil {
		return nil, err
	}
	params.NumProducts = len(products)
	for _, product := range products {
		params.ProductNames = append(params.ProductNames, product.Name)
		params.ProfitPerUnit = append(params.ProfitPerUnit, product.Profit)
		params.ProductionHours = append(params.ProductionHours, product.Hours)
	}

	market, err := l.loadMonthTable(filepath.Join(dir, MarketLimitsFile), "product", params.ProductNames)
	if err != nil {
		return nil, err
	}
	params.MarketLimit = market
	if params.NumMonths == 0 && len(market) > 0 {
		params.NumMonths = len(market[0])
	}

	resources, err := l.LoadResources(filepath.Join(dir, ResourcesFile))
	if err != nil {
		return nil, err
	}
	params.NumResourceSteps = len(resources)
	for _, resource := range resources {
		params.ResourceNames = append(params.ResourceNames, resource.Name)
	}

	switch params.Variant {
	case entities.FixedAvailability:
		available, err := l.loadMonthTable(filepath.Join(dir, MachinesAvailableFile), "resource", params.ResourceNames)
		if err != nil {
			return nil, err
		}
		params.MachinesAvailable = available
	case entities.ScheduledMaintenance:
		for _, resource := range resources {
			params.MachineCount = append(params.MachineCount, resource.MachineCount)
			params.MaintenanceQuota = append(params.MaintenanceQuota, resource.MaintenanceQuota)
		}
	}

	return params, nil
}

// LoadSettings loads key,value pairs from settings.csv
func (l *Loader) LoadSettings(filename string) (map[string]string, error) {
	records, err := readRecords(filename, "settings")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"key", "value"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("settings CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	settings := make(map[string]string, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("settings CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}
		key := strings.ToLower(strings.TrimSpace(record[0]))
		if _, exists := settings[key]; exists {
			return nil, fmt.Errorf("settings CSV row %d: duplicate key %s", i+2, key)
		}
		settings[key] = strings.TrimSpace(record[1])
	}
	return settings, nil
}

// LoadProducts loads products.csv: name, profit, then one hours column per resource step
func (l *Loader) LoadProducts(filename string) ([]ProductRow, error) {
	records, err := readRecords(filename, "products")
	if err != nil {
		return nil, err
	}

	header := records[0]
	if len(header) < 2 || !validateHeader(header[:2], []string{"name", "profit"}) {
		return nil, fmt.Errorf("products CSV header must start with name,profit, got %v", header)
	}

	var products []ProductRow
	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("products CSV row %d: expected %d columns, got %d", i+2, len(header), len(record))
		}

		profit, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("products CSV row %d: invalid profit: %s", i+2, record[1])
		}

		hours := make([]float64, 0, len(record)-2)
		for c, cell := range record[2:] {
			h, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("products CSV row %d: invalid hours for %s: %s", i+2, header[c+2], cell)
			}
			hours = append(hours, h)
		}

		products = append(products, ProductRow{
			Name:   strings.TrimSpace(record[0]),
			Profit: profit,
			Hours:  hours,
		})
	}
	return products, nil
}

// LoadResources loads resources.csv
func (l *Loader) LoadResources(filename string) ([]ResourceRow, error) {
	records, err := readRecords(filename, "resources")
	if err != nil {
		return nil, err
	}

	expectedHeader := []string{"name", "machine_count", "maintenance_quota"}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("resources CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	var resources []ResourceRow
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("resources CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		count, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("resources CSV row %d: invalid machine_count: %s", i+2, record[1])
		}
		quota, err := strconv.Atoi(strings.TrimSpace(record[2]))
		if err != nil {
			return nil, fmt.Errorf("resources CSV row %d: invalid maintenance_quota: %s", i+2, record[2])
		}

		resources = append(resources, ResourceRow{
			Name:             strings.TrimSpace(record[0]),
			MachineCount:     count,
			MaintenanceQuota: quota,
		})
	}
	return resources, nil
}

// loadMonthTable reads a table keyed by its first column with one integer
// column per month. Rows are returned in the order of names; every name must
// appear exactly once.
func (l *Loader) loadMonthTable(filename, keyColumn string, names []string) ([][]int, error) {
	base := filepath.Base(filename)
	records, err := readRecords(filename, strings.TrimSuffix(base, ".csv"))
	if err != nil {
		return nil, err
	}

	header := records[0]
	if len(header) < 2 || strings.ToLower(strings.TrimSpace(header[0])) != keyColumn {
		return nil, fmt.Errorf("%s header must start with %s and have at least one month, got %v", base, keyColumn, header)
	}

	rows := make(map[string][]int, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("%s row %d: expected %d columns, got %d", base, i+2, len(header), len(record))
		}
		key := strings.TrimSpace(record[0])
		if _, exists := rows[key]; exists {
			return nil, fmt.Errorf("%s row %d: duplicate %s %s", base, i+2, keyColumn, key)
		}

		values := make([]int, 0, len(record)-1)
		for c, cell := range record[1:] {
			n, err := strconv.Atoi(strings.TrimSpace(cell))
			if err != nil {
				return nil, fmt.Errorf("%s row %d: invalid value for %s: %s", base, i+2, header[c+1], cell)
			}
			values = append(values, n)
		}
		rows[key] = values
	}

	table := make([][]int, len(names))
	for i, name := range names {
		row, ok := rows[name]
		if !ok {
			return nil, fmt.Errorf("%s: no row for %s %s", base, keyColumn, name)
		}
		table[i] = row
		delete(rows, name)
	}
	if len(rows) > 0 {
		unknown := make([]string, 0, len(rows))
		for key := range rows {
			unknown = append(unknown, key)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("%s: unknown %s %s", base, keyColumn, strings.Join(unknown, ", "))
	}
	return table, nil
}

func readRecords(filename, kind string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}
	return records, nil
}

func applySettings(params *entities.ParameterSet, settings map[string]string) error {
	for key, value := range settings {
		var err error
		switch key {
		case "name":
			params.Name = value
		case "variant":
			params.Variant, err = entities.ParseVariant(value)
		case "months":
			params.NumMonths, err = strconv.Atoi(value)
		case "stock_cost_per_unit":
			params.StockCostPerUnit, err = strconv.ParseFloat(value, 64)
		case "stock_bound":
			params.StockBound, err = strconv.Atoi(value)
		case "final_stock_requirement":
			params.FinalStockRequirement, err = strconv.Atoi(value)
		case "hours_per_machine_month":
			params.HoursPerMachineMonth, err = strconv.ParseFloat(value, 64)
		default:
			return fmt.Errorf("unknown setting %s", key)
		}
		if err != nil {
			return fmt.Errorf("invalid %s: %s", key, value)
		}
	}
	return nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}
