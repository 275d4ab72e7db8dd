package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rsned/shieldcalc-server/internal/shield/report"
	"github.com/rsned/shieldcalc-server/pkg/shield"
)

func newGeneratorsCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "generators",
		Aliases: []string{"catalog"},
		Short:   "List shield generators (and with --all, boosters, reactors and blocks)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.openEngine(cmd.Context())
			if err != nil {
				return err
			}

			listing := eng.ListCatalog()
			if !all {
				listing = shield.CatalogListing{Generators: listing.Generators}
			}
			if a.jsonOutput {
				return a.printJSON(listing)
			}

			for _, g := range listing.Generators {
				fmt.Fprintf(a.out, "%-10s %-28s capacity %8s  recharge %6s/sec\n",
					g.ID, g.Name, report.FormatNumber(g.BaseCapacity), report.FormatNumber(g.BaseRecharge))
			}
			if !all {
				return nil
			}

			fmt.Fprintln(a.out)
			for _, c := range listing.Components {
				fmt.Fprintf(a.out, "%-20s %-9s %-8s cpu %7s  capacity %8s  recharge %6s  cap %d\n",
					c.ID, c.Kind, c.Tier, report.FormatNumber(c.CPUCost),
					report.FormatSigned(c.CapacityDelta), report.FormatSigned(c.RechargeDelta), c.TierCap)
			}
			fmt.Fprintln(a.out)
			for _, b := range listing.BlockTypes {
				fmt.Fprintf(a.out, "%-14s %-20s %s capacity per block\n", b.ID, b.Name, report.FormatSigned(b.CapacityPerBlock))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include boosters, reactors and hull blocks")
	return cmd
}
