package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vsinha/factoryplan/pkg/application/services/planning"
	"github.com/vsinha/factoryplan/pkg/infrastructure/lpformat"
)

func newExportCommand(a *app) *cobra.Command {
	var outputFile string
	cmd := &cobra.Command{
		Use:   "export <scenario>",
		Short: "Write the assembled model in CPLEX LP format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := a.loadScenario(args[0])
			if err != nil {
				return err
			}
			pm, err := planning.NewAssembler().Assemble(params)
			if err != nil {
				return err
			}

			if outputFile == "" {
				return lpformat.Write(cmd.OutOrStdout(), pm.Model)
			}

			file, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outputFile, err)
			}
			if err := lpformat.Write(file, pm.Model); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}

			stats := pm.Model.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d variables, %d constraints\n",
				outputFile, stats.Variables, stats.Constraints)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "File to write instead of stdout")
	return cmd
}
