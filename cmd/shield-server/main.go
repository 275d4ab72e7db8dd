// Empyrion Shield Calculator MCP Server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rsned/shieldcalc-server/internal/config"
	"github.com/rsned/shieldcalc-server/internal/logger"
	"github.com/rsned/shieldcalc-server/internal/shield/db"
	"github.com/rsned/shieldcalc-server/internal/shield/engine"
	"github.com/rsned/shieldcalc-server/internal/shield/mcp"
	"github.com/rsned/shieldcalc-server/internal/shield/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Parse flags
	dbPath := flag.String("db", cfg.DBPath, "Path to SQLite database")
	importCatalog := flag.String("import-catalog", cfg.CatalogPath, "Import shield catalog from YAML or JSON file")
	importSettings := flag.String("import-settings", "", "Import legacy web calculator settings from JSON file")
	settingsName := flag.String("settings-name", "imported", "Name to save imported settings under")
	cacheSize := flag.Int("cache-size", cfg.CacheSize, "Optimizer result cache entries (0 disables)")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	flag.Parse()

	// Setup logging
	level := cfg.LogLevel
	if *verbose {
		level = "debug"
	}
	log := logger.New(level, cfg.LogFormat, os.Stderr)

	// Create context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down...")
		cancel()
	}()

	// Open database
	database, err := db.OpenAndInit(ctx, *dbPath)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close() }()

	syncer := sync.NewSyncer(database)

	if *importCatalog != "" {
		log.Info("importing catalog", "file", *importCatalog)
		if err := syncer.ImportCatalogFromFile(ctx, *importCatalog); err != nil {
			log.Error("failed to import catalog", "error", err)
			os.Exit(1)
		}
		log.Info("catalog imported successfully")
	} else if seeded, err := syncer.SeedDefaultCatalog(ctx); err != nil {
		log.Error("failed to seed default catalog", "error", err)
		os.Exit(1)
	} else if seeded {
		log.Info("seeded default catalog")
	}

	if *importSettings != "" {
		log.Info("importing legacy settings", "file", *importSettings, "name", *settingsName)
		if _, err := syncer.ImportLegacySettingsFromFile(ctx, *settingsName, *importSettings); err != nil {
			log.Error("failed to import settings", "error", err)
			os.Exit(1)
		}
		log.Info("settings imported successfully")

		// If only doing imports, exit
		if flag.NArg() == 0 {
			return
		}
	}

	// Create engine and server
	eng, err := engine.NewFromDB(ctx, database, engine.Options{CacheSize: *cacheSize, Logger: log})
	if err != nil {
		log.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}
	server := mcp.NewServer(eng, log)

	// Run MCP server
	log.Info("starting MCP server", "db", *dbPath)
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	fmt.Fprintln(os.Stderr, "server stopped")
}
