package main

import (
	"github.com/spf13/cobra"

	"github.com/rsned/shieldcalc-server/internal/shield/report"
)

func newCompareCmd(a *app) *cobra.Command {
	var (
		flags  requestFlags
		csvOut bool
	)

	cmd := &cobra.Command{
		Use:     "compare",
		Short:   "Rank every shield generator under the same constraints",
		Example: `  shieldcalc compare --total-cpu 120000 --available-cpu 60000 --csv > generators.csv`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := a.openEngine(ctx)
			if err != nil {
				return err
			}

			req, note := flags.request(cmd)
			if note != "" {
				a.log.Info(note)
			}

			resp, err := eng.CompareGenerators(ctx, req)
			if err != nil {
				return err
			}

			switch {
			case a.jsonOutput:
				return a.printJSON(resp)
			case csvOut:
				return report.WriteComparisonCSV(a.out, resp)
			default:
				return report.WriteComparison(a.out, resp)
			}
		},
	}

	flags.bind(cmd, false)
	cmd.Flags().BoolVar(&csvOut, "csv", false, "Output CSV")
	return cmd
}
