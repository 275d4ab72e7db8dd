package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rsned/shieldcalc-server/internal/shield/report"
	"github.com/rsned/shieldcalc-server/pkg/shield"
)

func newOptimizeCmd(a *app) *cobra.Command {
	var (
		flags    requestFlags
		settings string
		csvOut   bool
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Find the best shield booster configuration",
		Long: `Search every capacitor/charger combination within the tier caps and print
the one with the highest total shield capacity that fits the CPU budget and
meets the efficiency and recharge floors.

Exit codes:
  0 - A configuration was found
  1 - Error (invalid input, unknown generator, storage)
  2 - No configuration meets the constraints`,
		Example: `  shieldcalc optimize -g advanced --total-cpu 150000 --available-cpu 80000 --xeno 40
  shieldcalc optimize --settings cruiser --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := a.openEngine(ctx)
			if err != nil {
				return err
			}

			var req shield.Request
			if settings != "" {
				saved, err := eng.LoadSettings(ctx, settings)
				if err != nil {
					return err
				}
				req = saved.Request
			} else {
				var note string
				req, note = flags.request(cmd)
				if note != "" {
					a.log.Info(note)
				}
			}

			res, err := eng.Optimize(ctx, req)
			if err != nil {
				return err
			}

			switch {
			case a.jsonOutput:
				err = a.printJSON(res)
			case csvOut:
				err = report.WriteBreakdownCSV(a.out, eng.Catalog(), res)
			default:
				err = report.WriteResult(a.out, eng.Catalog(), res, req.MinEfficiencyPercent)
			}
			if err != nil {
				return fmt.Errorf("writing result: %w", err)
			}

			if !res.Feasible {
				return &exitError{code: 2}
			}
			return nil
		},
	}

	flags.bind(cmd, true)
	cmd.Flags().StringVar(&settings, "settings", "", "Optimize saved settings instead of flags")
	cmd.Flags().BoolVar(&csvOut, "csv", false, "Output the booster breakdown as CSV")
	return cmd
}
