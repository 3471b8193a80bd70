package commands

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vsinha/factoryplan/pkg/domain/entities"
	yamlrepo "github.com/vsinha/factoryplan/pkg/infrastructure/repositories/yaml"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Name       string
	Products   int
	Months     int
	Resources  int
	Variant    entities.Variant
	OutputFile string // stdout when empty
	Seed       int64  // Random seed for reproducible generation
	Verbose    bool
}

// GenerateCommand writes random but valid planning scenarios
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
	out    io.Writer
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig, out io.Writer) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
		out:    out,
	}
}

func newGenerateCommand(a *app) *cobra.Command {
	config := GenerateConfig{}
	var variant string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random planning scenario",
		Example: `  factoryplan generate --products 10 --months 12 --resources 6 -o scenarios/large.yaml
  factoryplan generate --variant maintenance --seed 12345`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := entities.ParseVariant(variant)
			if err != nil {
				return err
			}
			config.Variant = parsed
			return NewGenerateCommand(config, cmd.OutOrStdout()).Execute(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&config.Name, "name", "generated", "Scenario name")
	cmd.Flags().IntVar(&config.Products, "products", 5, "Number of products")
	cmd.Flags().IntVar(&config.Months, "months", 6, "Number of months in the horizon")
	cmd.Flags().IntVar(&config.Resources, "resources", 4, "Number of resource types")
	cmd.Flags().StringVar(&variant, "variant", "fixed", "fixed or maintenance")
	cmd.Flags().StringVarP(&config.OutputFile, "output", "o", "", "Scenario file to write (stdout when empty)")
	cmd.Flags().Int64Var(&config.Seed, "seed", 0, "Random seed for reproducible generation")
	cmd.Flags().BoolVarP(&config.Verbose, "verbose", "v", false, "Enable verbose output")
	return cmd
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if cmd.config.Products < 1 || cmd.config.Months < 1 || cmd.config.Resources < 1 {
		return fmt.Errorf("products, months and resources must all be at least 1")
	}

	params := cmd.generate()
	data, err := yamlrepo.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to encode scenario: %w", err)
	}

	if cmd.config.OutputFile == "" {
		_, err := cmd.out.Write(data)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cmd.config.OutputFile), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(cmd.config.OutputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write scenario: %w", err)
	}
	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "Generated %s scenario with %d products, %d months, %d resources in %s\n",
			params.Variant, params.NumProducts, params.NumMonths, params.NumResourceSteps, cmd.config.OutputFile)
	}
	return nil
}

// generate draws a scenario that always passes parameter validation
func (cmd *GenerateCommand) generate() *entities.ParameterSet {
	cfg := cmd.config
	params := &entities.ParameterSet{
		Name:                  cfg.Name,
		Variant:               cfg.Variant,
		NumProducts:           cfg.Products,
		NumMonths:             cfg.Months,
		NumResourceSteps:      cfg.Resources,
		StockCostPerUnit:      entities.DefaultStockCostPerUnit,
		StockBound:            entities.DefaultStockBound,
		FinalStockRequirement: entities.DefaultFinalStockRequirement,
		HoursPerMachineMonth:  entities.DefaultHoursPerMachineMonth,
	}

	for k := 0; k < cfg.Resources; k++ {
		params.ResourceNames = append(params.ResourceNames, fmt.Sprintf("STEP%d", k+1))
	}

	for i := 0; i < cfg.Products; i++ {
		params.ProductNames = append(params.ProductNames, fmt.Sprintf("PROD%d", i+1))
		params.ProfitPerUnit = append(params.ProfitPerUnit, float64(1+cmd.rand.Intn(12)))

		// Each product visits roughly 60% of the steps, and at least one
		hours := make([]float64, cfg.Resources)
		used := false
		for k := range hours {
			if cmd.rand.Float64() < 0.6 {
				hours[k] = cmd.hours()
				used = true
			}
		}
		if !used {
			hours[cmd.rand.Intn(cfg.Resources)] = cmd.hours()
		}
		params.ProductionHours = append(params.ProductionHours, hours)

		market := make([]int, cfg.Months)
		for j := range market {
			market[j] = 50 * cmd.rand.Intn(21)
		}
		params.MarketLimit = append(params.MarketLimit, market)
	}

	for k := 0; k < cfg.Resources; k++ {
		count := 1 + cmd.rand.Intn(4)
		switch cfg.Variant {
		case entities.ScheduledMaintenance:
			params.MachineCount = append(params.MachineCount, count)
			params.MaintenanceQuota = append(params.MaintenanceQuota, 1+cmd.rand.Intn(count))
		default:
			// One machine down in about a fifth of the months, never the
			// last machine in the last month so the final stock can be made
			available := make([]int, cfg.Months)
			for j := range available {
				available[j] = count
				if cmd.rand.Float64() < 0.2 && (count > 1 || j != cfg.Months-1) {
					available[j]--
				}
			}
			params.MachinesAvailable = append(params.MachinesAvailable, available)
		}
	}

	return params
}

// hours draws a per-unit processing time between 0.01 and 0.9
func (cmd *GenerateCommand) hours() float64 {
	return math.Round((0.01+cmd.rand.Float64()*0.89)*100) / 100
}
