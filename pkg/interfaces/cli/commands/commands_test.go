package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/factoryplan/pkg/domain/entities"
	"github.com/vsinha/factoryplan/pkg/domain/repositories"
	yamlrepo "github.com/vsinha/factoryplan/pkg/infrastructure/repositories/yaml"
	testhelpers "github.com/vsinha/factoryplan/pkg/infrastructure/testing"
)

// execute runs the command tree with a configuration file that does not
// exist, so every test starts from the default configuration
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithConfig(t, filepath.Join(t.TempDir(), "missing.yaml"), args...)
}

func executeWithConfig(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", configPath, "--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeScenario(t *testing.T, dir string, params *entities.ParameterSet) string {
	t.Helper()
	data, err := yamlrepo.Marshal(params)
	require.NoError(t, err)
	path := filepath.Join(dir, params.Name+".yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestSolveCommand_Text(t *testing.T) {
	path := writeScenario(t, t.TempDir(), testhelpers.BuildSmallFixedScenario())

	out, err := execute(t, "solve", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Factory plan: small_fixed (FixedAvailability)")
	assert.Contains(t, out, "Objective:  148.00")
	assert.Contains(t, out, "Production")
	assert.Contains(t, out, "Net profit")
}

func TestSolveCommand_MaintenanceJSON(t *testing.T) {
	path := writeScenario(t, t.TempDir(), testhelpers.BuildSmallMaintenanceScenario())

	out, err := execute(t, "solve", path, "--format", "json")
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded, "run")
	assert.Contains(t, out, "\"Optimal\"")
}

func TestSolveCommand_Relax(t *testing.T) {
	path := writeScenario(t, t.TempDir(), testhelpers.BuildSmallFixedScenario())

	out, err := execute(t, "solve", path, "--relax")
	require.NoError(t, err)
	assert.Contains(t, out, "Factory plan: small_fixed")
}

func TestSolveCommand_Errors(t *testing.T) {
	path := writeScenario(t, t.TempDir(), testhelpers.BuildSmallFixedScenario())

	_, err := execute(t, "solve", path, "--solver", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown solver")

	_, err = execute(t, "solve", filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)

	_, err = execute(t, "solve")
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeScenario(t, dir, testhelpers.BuildSmallMaintenanceScenario())
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`name: bad
variant: fixed
products:
  - name: A
    profit: 1
    hours: [1, 2]
    market: [1]
resources:
  - name: lathe
    available: [1]
`), 0644))

	out, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, good+": ok (ScheduledMaintenance, 2 products, 3 months, 1 resources)")

	out, err = execute(t, "validate", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 scenarios are invalid")
	assert.Contains(t, out, bad+":")
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, testhelpers.BuildSmallFixedScenario())

	out, err := execute(t, "export", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Maximize")
	assert.Contains(t, out, "Subject To")
	assert.Contains(t, out, "capacity_0_0:")
	assert.Contains(t, out, "End")

	lpFile := filepath.Join(dir, "model.lp")
	out, err = execute(t, "export", path, "-o", lpFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+lpFile+": 18 variables, 11 constraints")

	data, err := os.ReadFile(lpFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "General")
}

func TestRunsCommand_SaveListShow(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "runs.db")
	path := writeScenario(t, dir, testhelpers.BuildSmallFixedScenario())

	out, err := execute(t, "runs", "list", "--store", store)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")

	_, err = execute(t, "solve", path, "--save", "--store", store)
	require.NoError(t, err)

	out, err = execute(t, "runs", "list", "--store", store)
	require.NoError(t, err)
	assert.Contains(t, out, "small_fixed")

	out, err = execute(t, "runs", "list", "--store", store, "--format", "json")
	require.NoError(t, err)
	var listed []struct {
		ID       string `json:"id"`
		Scenario string `json:"scenario"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "small_fixed", listed[0].Scenario)

	out, err = execute(t, "runs", "show", listed[0].ID, "--store", store)
	require.NoError(t, err)
	assert.Contains(t, out, "Objective:  148.00")

	_, err = execute(t, "runs", "show", "no-such-run", "--store", store)
	require.Error(t, err)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestBatchCommand_Arguments(t *testing.T) {
	dir := t.TempDir()
	fixed := writeScenario(t, dir, testhelpers.BuildSmallFixedScenario())
	scheduled := writeScenario(t, dir, testhelpers.BuildSmallMaintenanceScenario())

	out, err := execute(t, "batch", fixed, scheduled, "--parallel", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Batch Summary (2 scenarios, 0 failed")
	assert.Contains(t, out, "Best: small_maintenance (178.00)")
}

func TestBatchCommand_ScenarioDirectory(t *testing.T) {
	dir := t.TempDir()
	scenarios := filepath.Join(dir, "scenarios")
	require.NoError(t, os.Mkdir(scenarios, 0755))
	writeScenario(t, scenarios, testhelpers.BuildSmallFixedScenario())
	writeScenario(t, scenarios, testhelpers.BuildSmallMaintenanceScenario())

	configPath := filepath.Join(dir, "factoryplan.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("planning:\n  parallelism: 1\n  scenario_dir: "+scenarios+"\n"), 0644))

	out, err := executeWithConfig(t, configPath, "batch")
	require.NoError(t, err)
	assert.Contains(t, out, "Batch Summary (2 scenarios, 0 failed")
	assert.Contains(t, out, "small_fixed")

	// A scenario of the configured directory resolves by name
	out, err = executeWithConfig(t, configPath, "solve", "small_maintenance")
	require.NoError(t, err)
	assert.Contains(t, out, "Objective:  178.00")
}

func TestBatchCommand_FailedScenario(t *testing.T) {
	dir := t.TempDir()
	infeasible := testhelpers.BuildSmallFixedScenario()
	infeasible.Name = "too_much_stock"
	infeasible.FinalStockRequirement = infeasible.StockBound + 1
	path := writeScenario(t, dir, infeasible)

	// An infeasible model is an outcome, not a failure
	out, err := execute(t, "batch", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Infeasible")
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()

	first, err := execute(t, "generate", "--seed", "42", "--products", "3", "--months", "4", "--resources", "2")
	require.NoError(t, err)
	second, err := execute(t, "generate", "--seed", "42", "--products", "3", "--months", "4", "--resources", "2")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for _, variant := range []string{"fixed", "maintenance"} {
		path := filepath.Join(dir, variant, "generated.yaml")
		out, err := execute(t, "generate", "--seed", "7", "--variant", variant, "-o", path, "-v")
		require.NoError(t, err)
		assert.Contains(t, out, "Generated")

		params, err := yamlrepo.LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 5, params.NumProducts)
		assert.Equal(t, 6, params.NumMonths)
		assert.Equal(t, 4, params.NumResourceSteps)

		out, err = execute(t, "validate", path)
		require.NoError(t, err, out)
	}

	_, err = execute(t, "generate", "--products", "0")
	assert.Error(t, err)
	_, err = execute(t, "generate", "--variant", "weekly")
	assert.Error(t, err)
}

func TestSolveCommand_Bottlenecks(t *testing.T) {
	path := writeScenario(t, t.TempDir(), testhelpers.BuildSmallFixedScenario())

	out, err := execute(t, "solve", path, "--bottlenecks", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Bottlenecks")
	assert.Contains(t, out, "Bottleneck: lathe in M")

	out, err = execute(t, "solve", path, "--bottlenecks", "2", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "\"binding_count\"")
}

func TestSolveCommand_HelpDescribesTimeLimitedPlans(t *testing.T) {
	out, err := execute(t, "solve", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "factory_planning_2")
	assert.Contains(t, out, "status Feasible")
	assert.Contains(t, out, "--time-limit")
}
