package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rsned/shieldcalc-server/internal/config"
	"github.com/rsned/shieldcalc-server/internal/logger"
	"github.com/rsned/shieldcalc-server/internal/shield/db"
	"github.com/rsned/shieldcalc-server/internal/shield/engine"
	"github.com/rsned/shieldcalc-server/internal/shield/sync"
)

// exitError carries a non-zero exit code for results that are not failures,
// such as an infeasible optimization.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// app holds the global flags and the lazily opened engine.
type app struct {
	out    io.Writer
	errOut io.Writer

	dbPath     string
	jsonOutput bool
	verbose    bool

	cfg      *config.Config
	log      *slog.Logger
	database *db.DB
	engine   *engine.Engine
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut}
}

// execute runs the command line in args (os.Args when nil) and closes the
// database afterwards, whether or not the command failed.
func (a *app) execute(ctx context.Context, args []string) error {
	root := newRootCmd(a)
	if args != nil {
		root.SetArgs(args)
	}
	err := root.ExecuteContext(ctx)
	if a.database != nil {
		if cerr := a.database.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing database: %w", cerr))
		}
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "shieldcalc",
		Short: "Empyrion shield booster calculator",
		Long: `shieldcalc finds the shield capacitor and charger combination that gives
the most shield capacity for a generator within a CPU budget.

Environment Variables:
  SHIELD_DB_PATH       SQLite database for the catalog and saved settings
  SHIELD_CATALOG_PATH  Catalog file imported on first use
  LOG_LEVEL            debug, info, warn, error (default: info)
  LOG_FORMAT           text, json (default: text)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			if !cmd.Flags().Changed("db") && a.dbPath == "" {
				a.dbPath = cfg.DBPath
			}
			level := cfg.LogLevel
			if a.verbose {
				level = "debug"
			}
			a.log = logger.New(level, cfg.LogFormat, a.errOut)
			return nil
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (overrides SHIELD_DB_PATH)")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Output JSON instead of human-readable text")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newOptimizeCmd(a),
		newCompareCmd(a),
		newGeneratorsCmd(a),
		newSettingsCmd(a),
	)
	return root
}

// openEngine opens the database, seeds or imports the catalog on first use,
// and builds the engine.
func (a *app) openEngine(ctx context.Context) (*engine.Engine, error) {
	if a.engine != nil {
		return a.engine, nil
	}

	database, err := db.OpenAndInit(ctx, a.dbPath)
	if err != nil {
		return nil, err
	}
	a.database = database

	syncer := sync.NewSyncer(database)
	if a.cfg.CatalogPath != "" {
		src, err := database.GetSyncMetadata(ctx, sync.MetaCatalogSource)
		if err != nil {
			return nil, err
		}
		if src != a.cfg.CatalogPath {
			a.log.Info("importing catalog", "file", a.cfg.CatalogPath)
			if err := syncer.ImportCatalogFromFile(ctx, a.cfg.CatalogPath); err != nil {
				return nil, err
			}
		}
	} else if _, err := syncer.SeedDefaultCatalog(ctx); err != nil {
		return nil, err
	}

	eng, err := engine.NewFromDB(ctx, database, engine.Options{CacheSize: a.cfg.CacheSize, Logger: a.log})
	if err != nil {
		return nil, err
	}
	a.engine = eng
	return eng, nil
}

func (a *app) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}
