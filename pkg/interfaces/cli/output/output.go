package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vsinha/factoryplan/pkg/application/dto"
	"github.com/vsinha/factoryplan/pkg/domain/entities"
	"github.com/vsinha/factoryplan/pkg/domain/model"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	// MachineCount enables the maintenance table for scheduled-maintenance plans
	MachineCount []int
	// Writer receives console output; defaults to os.Stdout
	Writer io.Writer
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

// Generate renders result in the configured format
func Generate(result *dto.PlanResult, config Config) error {
	if result == nil || result.Run == nil || result.Plan == nil {
		return fmt.Errorf("no plan to render")
	}
	if config.Writer == nil {
		config.Writer = os.Stdout
	}

	switch config.Format {
	case "", "text":
		return generateTextOutput(result, config)
	case "json":
		return generateJSONOutput(result, config)
	case "csv":
		return generateCSVOutput(result, config)
	case "svg":
		return generateSVGOutput(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func statusStyle(status model.Status) lipgloss.Style {
	switch status {
	case model.Optimal:
		return goodStyle
	case model.Feasible:
		return warnStyle
	default:
		return badStyle
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(result *dto.PlanResult, config Config) error {
	w := config.Writer
	run, plan := result.Run, result.Plan

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Factory plan: %s (%s)", run.Scenario, run.Variant)))
	fmt.Fprintf(w, "Status:     %s\n", statusStyle(plan.Status).Render(plan.Status.String()))
	if plan.HasValues() {
		fmt.Fprintf(w, "Objective:  %.2f\n", plan.Objective)
	}
	if config.Verbose {
		stats := result.ModelStats
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf(
			"Model:      %d variables (%d integer), %d constraints, %d nonzeros",
			stats.Variables, stats.IntegerVariables, stats.Constraints, stats.NonZeros)))
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf(
			"Run:        %s, %d nodes, build %v, solve %v",
			run.ID, result.Nodes, run.BuildDuration, run.SolveDuration)))
	}
	fmt.Fprintln(w)

	if !plan.HasValues() {
		fmt.Fprintln(w, "No production plan: the solver reported", plan.Status.String())
		return nil
	}

	writeTable(w, "Production", plan.ProductNames, plan.Production)
	writeTable(w, "Sales", plan.ProductNames, plan.Sales)
	writeTable(w, "Stock", plan.ProductNames, plan.Stock)
	writeTable(w, "Unfulfilled demand", plan.ProductNames, plan.UnfulfilledDemand)
	if plan.MachinesAvailable != nil {
		writeTable(w, "Machines available", plan.ResourceNames, plan.MachinesAvailable)
		if len(config.MachineCount) == plan.MachinesAvailable.Rows() {
			writeTable(w, "Machines in maintenance", plan.ResourceNames, plan.MaintenanceSchedule(config.MachineCount))
		}
	}

	fmt.Fprintln(w, headingStyle.Render("Financials"))
	fmt.Fprintf(w, "%-14s %12s\n", "Revenue", plan.Financials.Revenue.StringFixed(2))
	fmt.Fprintf(w, "%-14s %12s\n", "Storage cost", plan.Financials.StorageCost.StringFixed(2))
	fmt.Fprintf(w, "%-14s %12s\n", "Net profit", plan.Financials.NetProfit.StringFixed(2))

	if result.Bottlenecks != nil {
		writeBottlenecks(w, result.Bottlenecks)
	}
	return nil
}

func writeBottlenecks(w io.Writer, analysis *entities.BottleneckAnalysis) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("Bottlenecks"))
	fmt.Fprintln(w, analysis.GetBottleneckSummary())
	if len(analysis.Bottlenecks) == 0 {
		return
	}
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%-20s %-6s %10s %10s %8s",
		"Resource", "Month", "Used", "Available", "Load")))
	for _, use := range analysis.Bottlenecks {
		load := fmt.Sprintf("%.0f%%", use.Utilization*100)
		if use.Binding {
			load = warnStyle.Render(load)
		}
		fmt.Fprintf(w, "%-20s %-6s %10.2f %10.2f %8s\n",
			use.Resource, entities.MonthName(use.Month), use.HoursUsed, use.HoursAvailable, load)
	}
}

func writeTable(w io.Writer, title string, rowNames []string, grid *entities.Grid[int]) {
	fmt.Fprintln(w, headingStyle.Render(title))

	width := 10
	for _, name := range rowNames {
		if len(name) > width {
			width = len(name)
		}
	}

	var header strings.Builder
	header.WriteString(fmt.Sprintf("%-*s", width, ""))
	for j := 0; j < grid.Cols(); j++ {
		header.WriteString(fmt.Sprintf(" %7s", entities.MonthName(j)))
	}
	fmt.Fprintln(w, mutedStyle.Render(header.String()))

	for i := 0; i < grid.Rows(); i++ {
		var line strings.Builder
		line.WriteString(fmt.Sprintf("%-*s", width, rowNames[i]))
		for _, v := range grid.Row(i) {
			line.WriteString(fmt.Sprintf(" %7d", v))
		}
		fmt.Fprintln(w, line.String())
	}
	fmt.Fprintln(w)
}

type jsonResult struct {
	Run        *entities.PlanRun `json:"run"`
	ModelStats model.Stats       `json:"model_stats"`
	Nodes      int               `json:"nodes"`

	Bottlenecks *entities.BottleneckAnalysis `json:"bottlenecks,omitempty"`
}

// generateJSONOutput creates JSON output
func generateJSONOutput(result *dto.PlanResult, config Config) error {
	jsonData, err := json.MarshalIndent(jsonResult{
		Run:        result.Run,
		ModelStats: result.ModelStats,
		Nodes:      result.Nodes,

		Bottlenecks: result.Bottlenecks,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.Writer, string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, "plan.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(config.Writer, "JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes one CSV file per plan table
func generateCSVOutput(result *dto.PlanResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}
	plan := result.Plan
	if !plan.HasValues() {
		return fmt.Errorf("plan has no values to export: %s", plan.Status)
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tables := []struct {
		file  string
		key   string
		names []string
		grid  *entities.Grid[int]
	}{
		{"production.csv", "product", plan.ProductNames, plan.Production},
		{"sales.csv", "product", plan.ProductNames, plan.Sales},
		{"stock.csv", "product", plan.ProductNames, plan.Stock},
		{"unfulfilled_demand.csv", "product", plan.ProductNames, plan.UnfulfilledDemand},
	}
	if plan.MachinesAvailable != nil {
		tables = append(tables, struct {
			file  string
			key   string
			names []string
			grid  *entities.Grid[int]
		}{"machines_available.csv", "resource", plan.ResourceNames, plan.MachinesAvailable})
	}

	for _, table := range tables {
		filename := filepath.Join(config.OutputDir, table.file)
		if err := writeGridCSV(filename, table.key, table.names, table.grid); err != nil {
			return fmt.Errorf("failed to write %s: %w", table.file, err)
		}
		if config.Verbose {
			fmt.Fprintf(config.Writer, "CSV results saved to: %s\n", filename)
		}
	}
	return nil
}

func writeGridCSV(filename, key string, names []string, grid *entities.Grid[int]) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{key}
	for j := 0; j < grid.Cols(); j++ {
		header = append(header, entities.MonthName(j))
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for i := 0; i < grid.Rows(); i++ {
		record := []string{names[i]}
		for _, v := range grid.Row(i) {
			record = append(record, strconv.Itoa(v))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// generateSVGOutput writes the schedule chart
func generateSVGOutput(result *dto.PlanResult, config Config) error {
	svg := NewScheduleChart(result.Plan, config.MachineCount).GenerateSVG()
	if config.OutputDir == "" {
		fmt.Fprintln(config.Writer, svg)
		return nil
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, "schedule.svg")
	if err := os.WriteFile(filename, []byte(svg), 0644); err != nil {
		return fmt.Errorf("failed to write SVG file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(config.Writer, "Schedule chart saved to: %s\n", filename)
	}
	return nil
}

// RenderRuns lists persisted runs as a text table or JSON
func RenderRuns(w io.Writer, runs []dto.Summary, format string) error {
	switch format {
	case "", "text":
		if len(runs) == 0 {
			fmt.Fprintln(w, mutedStyle.Render("No runs recorded"))
			return nil
		}
		fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("%-36s  %-20s  %-20s  %-10s  %12s  %s",
			"ID", "Scenario", "Variant", "Status", "Objective", "Created")))
		for _, run := range runs {
			fmt.Fprintf(w, "%-36s  %-20s  %-20s  %-10s  %12.2f  %s\n",
				run.ID, run.Scenario, run.Variant, statusStyle(run.Status).Render(run.Status.String()),
				run.Objective, run.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	case "json":
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
