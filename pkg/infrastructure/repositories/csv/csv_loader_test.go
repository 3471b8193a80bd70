package csv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/factoryplan/pkg/domain/entities"
	"github.com/vsinha/factoryplan/pkg/domain/services"
	testhelpers "github.com/vsinha/factoryplan/pkg/infrastructure/testing"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "lathe_shop")
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func smallMaintenanceFiles() map[string]string {
	return map[string]string{
		SettingsFile: "key,value\n" +
			"name,small_maintenance\n" +
			"variant,maintenance\n" +
			"stock_bound,10\n" +
			"final_stock_requirement,2\n" +
			"hours_per_machine_month,8\n",
		ProductsFile:     "name,profit,lathe\nWIDGET,5,1\nGADGET,3,0.5\n",
		MarketLimitsFile: "product,M1,M2,M3\nGADGET,6,8,3\nWIDGET,10,4,12\n",
		ResourcesFile:    "name,machine_count,maintenance_quota\nlathe,2,1\n",
	}
}

func TestLoadDir_ShippedScenario(t *testing.T) {
	params, err := NewLoader().LoadDir("../../../../scenarios/csv/factory_planning_1")
	require.NoError(t, err)

	expected := testhelpers.BuildFactoryPlanning1()
	expected.ProductNames = []string{"PROD1", "PROD2", "PROD3", "PROD4", "PROD5", "PROD6", "PROD7"}
	assert.Equal(t, expected, params)
	assert.NoError(t, services.ValidateParameters(params))
}

func TestLoadDir_MaintenanceScenario(t *testing.T) {
	params, err := NewLoader().LoadDir(writeFiles(t, smallMaintenanceFiles()))
	require.NoError(t, err)

	// market rows follow the order of products.csv, not of market_limits.csv
	assert.Equal(t, testhelpers.BuildSmallMaintenanceScenario(), params)
}

func TestLoadDir_DefaultsWithoutSettings(t *testing.T) {
	files := smallMaintenanceFiles()
	delete(files, SettingsFile)
	files[MachinesAvailableFile] = "resource,M1,M2,M3\nlathe,2,1,1\n"

	params, err := NewLoader().LoadDir(writeFiles(t, files))
	require.NoError(t, err)
	assert.Equal(t, "lathe_shop", params.Name)
	assert.Equal(t, entities.FixedAvailability, params.Variant)
	assert.Equal(t, 3, params.NumMonths)
	assert.Equal(t, entities.DefaultStockBound, params.StockBound)
	assert.Equal(t, entities.DefaultStockCostPerUnit, params.StockCostPerUnit)
	assert.Equal(t, [][]int{{2, 1, 1}}, params.MachinesAvailable)
	assert.Nil(t, params.MachineCount)
}

func TestLoadDir_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(files map[string]string)
		contains string
	}{
		{"unknown setting", func(f map[string]string) { f[SettingsFile] += "overtime,yes\n" }, "unknown setting"},
		{"bad setting value", func(f map[string]string) { f[SettingsFile] += "months,six\n" }, "invalid months"},
		{"duplicate setting", func(f map[string]string) { f[SettingsFile] += "stock_bound,5\n" }, "duplicate key"},
		{"bad profit", func(f map[string]string) { f[ProductsFile] = "name,profit,lathe\nWIDGET,lots,1\nGADGET,3,0.5\n" }, "invalid profit"},
		{"products header", func(f map[string]string) { f[ProductsFile] = "product,price\nWIDGET,5\n" }, "name,profit"},
		{"missing market row", func(f map[string]string) { f[MarketLimitsFile] = "product,M1,M2,M3\nWIDGET,10,4,12\n" }, "no row for product GADGET"},
		{"unknown market row", func(f map[string]string) { f[MarketLimitsFile] += "GIZMO,1,1,1\n" }, "unknown product GIZMO"},
		{"ragged market row", func(f map[string]string) { f[MarketLimitsFile] += "GIZMO,1\n" }, "expected 4 columns"},
		{"bad quota", func(f map[string]string) { f[ResourcesFile] = "name,machine_count,maintenance_quota\nlathe,2,x\n" }, "invalid maintenance_quota"},
		{"missing resources", func(f map[string]string) { delete(f, ResourcesFile) }, "failed to open resources file"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			files := smallMaintenanceFiles()
			tc.mutate(files)
			_, err := NewLoader().LoadDir(writeFiles(t, files))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestLoadDir_FixedNeedsMachinesAvailable(t *testing.T) {
	files := smallMaintenanceFiles()
	delete(files, SettingsFile)

	_, err := NewLoader().LoadDir(writeFiles(t, files))
	require.Error(t, err)
	assert.Contains(t, err.Error(), MachinesAvailableFile)
}
