package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/factoryplan/pkg/domain/services"
)

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario>...",
		Short: "Check scenarios for invalid parameters",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			validator := services.NewParameterValidator()
			invalid := 0

			for _, arg := range args {
				params, err := a.loadScenario(arg)
				if err != nil {
					fmt.Fprintf(out, "%s: %v\n", arg, err)
					invalid++
					continue
				}

				result := validator.Validate(params)
				if result.Valid() {
					fmt.Fprintf(out, "%s: ok (%s, %d products, %d months, %d resources)\n",
						arg, params.Variant, params.NumProducts, params.NumMonths, params.NumResourceSteps)
					continue
				}
				invalid++
				fmt.Fprintf(out, "%s: %d problems\n", arg, len(result.Errors))
				for _, problem := range result.Errors {
					fmt.Fprintf(out, "  - %v\n", problem)
				}
			}

			if invalid > 0 {
				return fmt.Errorf("%d of %d scenarios are invalid", invalid, len(args))
			}
			return nil
		},
	}
}
