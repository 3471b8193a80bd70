package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/factoryplan/pkg/application/dto"
	"github.com/vsinha/factoryplan/pkg/interfaces/cli/output"
)

func newRunsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse recorded planning runs",
	}

	var (
		limit      int
		listFormat string
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, closeRuns, err := a.openRuns()
			if err != nil {
				return err
			}
			defer closeRuns()

			recorded, err := runs.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			summaries := make([]dto.Summary, 0, len(recorded))
			for _, run := range recorded {
				summaries = append(summaries, dto.Summarize(run))
			}
			return output.RenderRuns(cmd.OutOrStdout(), summaries, listFormat)
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 = all)")
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "text", "Output format: text, json")

	var showFormat string
	showCmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the plan of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, closeRuns, err := a.openRuns()
			if err != nil {
				return err
			}
			defer closeRuns()

			run, err := runs.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if run.Plan == nil {
				return fmt.Errorf("run %s has no stored plan", run.ID)
			}
			return output.Generate(&dto.PlanResult{Run: run, Plan: run.Plan}, output.Config{
				Format: showFormat,
				Writer: cmd.OutOrStdout(),
			})
		},
	}
	showCmd.Flags().StringVarP(&showFormat, "format", "f", "text", "Output format: text, json, svg")

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}
