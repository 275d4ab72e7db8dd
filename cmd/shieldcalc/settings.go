package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rsned/shieldcalc-server/internal/shield/sync"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Save, load and import named optimization settings",
	}
	cmd.AddCommand(
		newSettingsSaveCmd(a),
		newSettingsLoadCmd(a),
		newSettingsListCmd(a),
		newSettingsDeleteCmd(a),
		newSettingsImportCmd(a),
	)
	return cmd
}

func newSettingsSaveCmd(a *app) *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "save NAME",
		Short: "Save the request given by flags under NAME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := a.openEngine(ctx)
			if err != nil {
				return err
			}

			req, _ := flags.request(cmd)
			if err := eng.SaveSettings(ctx, args[0], req); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "saved %s\n", args[0])
			return nil
		},
	}
	flags.bind(cmd, true)
	return cmd
}

func newSettingsLoadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load NAME",
		Short: "Print saved settings as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := a.openEngine(ctx)
			if err != nil {
				return err
			}

			saved, err := eng.LoadSettings(ctx, args[0])
			if err != nil {
				return err
			}
			return a.printJSON(saved)
		},
	}
}

func newSettingsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := a.openEngine(ctx)
			if err != nil {
				return err
			}

			list, err := eng.ListSettings(ctx)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(list)
			}
			for _, s := range list {
				fmt.Fprintf(a.out, "%-20s %-10s total %v  available %v  (updated %s)\n",
					s.Name, s.Request.GeneratorID, s.Request.TotalCPU, s.Request.AvailableCPU, s.UpdatedAt)
			}
			return nil
		},
	}
}

func newSettingsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete saved settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := a.openEngine(ctx)
			if err != nil {
				return err
			}
			if err := eng.DeleteSettings(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted %s\n", args[0])
			return nil
		},
	}
}

func newSettingsImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import-legacy NAME FILE",
		Short: "Import settings saved by the old web calculator",
		Long: `Import a settings blob saved by the web calculator in browser localStorage
(key "` + sync.LegacyStorageKey + `"). FILE may hold the form object itself or a
localStorage dump containing that key.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.openEngine(ctx); err != nil {
				return err
			}

			req, err := sync.NewSyncer(a.database).ImportLegacySettingsFromFile(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(req)
			}
			fmt.Fprintf(a.out, "imported %s (%s, total CPU %v)\n", args[0], req.GeneratorID, req.TotalCPU)
			return nil
		},
	}
}
