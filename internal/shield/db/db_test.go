package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rsned/shieldcalc-server/internal/shield/catalog"
	"github.com/rsned/shieldcalc-server/pkg/shield"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := OpenAndInit(context.Background(), MemoryPath)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestOpenAndInit_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "shield.db")
	database, err := OpenAndInit(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenAndInit: %v", err)
	}
	defer func() { _ = database.Close() }()

	// Schema creation is idempotent.
	if err := database.InitSchema(context.Background()); err != nil {
		t.Errorf("second InitSchema: %v", err)
	}
}

func TestOpen_AppliesPragmas(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		path        string
		journalMode string
	}{
		{"file", filepath.Join(t.TempDir(), "shield.db"), "wal"},
		{"memory", MemoryPath, "memory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			database, err := Open(ctx, tt.path)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer func() { _ = database.Close() }()

			var fk int
			if err := database.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
				t.Fatal(err)
			}
			if fk != 1 {
				t.Errorf("foreign_keys = %d, want 1", fk)
			}

			var mode string
			if err := database.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
				t.Fatal(err)
			}
			if !strings.EqualFold(mode, tt.journalMode) {
				t.Errorf("journal_mode = %q, want %q", mode, tt.journalMode)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{MemoryPath, ":memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"data/shield.db", "data/shield.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"},
		{"file:shield.db?mode=ro", "file:shield.db?mode=ro&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"},
	}
	for _, tt := range tests {
		if got := dsn(tt.path); got != tt.want {
			t.Errorf("dsn(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestInTransaction_RollsBack(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	boom := errors.New("boom")
	err := database.InTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sync_metadata (key, value, updated_at) VALUES ('k', 'v', datetime('now'))`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTransaction error = %v, want boom", err)
	}
	if got, err := database.GetSyncMetadata(ctx, "k"); err != nil || got != "" {
		t.Errorf("after rollback = %q, %v; want empty", got, err)
	}
}

func TestSyncMetadata(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	got, err := database.GetSyncMetadata(ctx, "catalog_source")
	if err != nil || got != "" {
		t.Fatalf("missing key = %q, %v; want empty", got, err)
	}

	for _, v := range []string{"embedded", "/tmp/catalog.yaml"} {
		if err := database.SetSyncMetadata(ctx, "catalog_source", v); err != nil {
			t.Fatalf("SetSyncMetadata: %v", err)
		}
		got, err := database.GetSyncMetadata(ctx, "catalog_source")
		if err != nil || got != v {
			t.Errorf("GetSyncMetadata = %q, %v; want %q", got, err, v)
		}
	}
}

func TestCatalogStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore(openTestDB(t))

	empty, err := store.IsEmpty(ctx)
	if err != nil || !empty {
		t.Fatalf("IsEmpty = %v, %v; want true", empty, err)
	}
	if cat, err := store.LoadCatalog(ctx); err != nil || cat != nil {
		t.Fatalf("LoadCatalog on empty store = %v, %v; want nil, nil", cat, err)
	}

	want, err := catalog.DefaultFile()
	if err != nil {
		t.Fatalf("DefaultFile: %v", err)
	}
	if err := store.ReplaceCatalog(ctx, want); err != nil {
		t.Fatalf("ReplaceCatalog: %v", err)
	}

	got, err := store.LoadFile(ctx)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("stored catalog differs:\ngot  %+v\nwant %+v", got, want)
	}

	cat, err := store.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if ids := cat.SearchedIDs(); len(ids) != 6 || ids[0] != "basic_capacitor" {
		t.Errorf("SearchedIDs = %v", ids)
	}
}

func TestCatalogStore_ReplaceRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogStore(openTestDB(t))

	good, err := catalog.DefaultFile()
	if err != nil {
		t.Fatalf("DefaultFile: %v", err)
	}
	if err := store.ReplaceCatalog(ctx, good); err != nil {
		t.Fatalf("ReplaceCatalog: %v", err)
	}

	bad := &catalog.File{Components: good.Components, BlockTypes: good.BlockTypes}
	if err := store.ReplaceCatalog(ctx, bad); err == nil {
		t.Fatal("expected an error for a catalog without generators")
	}

	got, err := store.LoadFile(ctx)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(got.Generators) != len(good.Generators) {
		t.Errorf("invalid import replaced the stored catalog: %d generators", len(got.Generators))
	}
}

func TestSettingsStore(t *testing.T) {
	ctx := context.Background()
	store := NewSettingsStore(openTestDB(t))

	if saved, err := store.GetSettings(ctx, "missing"); err != nil || saved != nil {
		t.Fatalf("GetSettings(missing) = %v, %v; want nil, nil", saved, err)
	}

	req := shield.Request{
		GeneratorID:          "advanced",
		TotalCPU:             150000,
		AvailableCPU:         75000,
		FixedReactorCounts:   map[string]int{"large_fusion": 2},
		BlockCounts:          map[string]int{"xeno": 40},
		MinEfficiencyPercent: 80,
		MinRechargeRate:      500,
	}
	if err := store.SaveSettings(ctx, "cruiser", req); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if err := store.SaveSettings(ctx, "angler", shield.Request{GeneratorID: "compact"}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	saved, err := store.GetSettings(ctx, "cruiser")
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if !reflect.DeepEqual(saved.Request, req) {
		t.Errorf("GetSettings request = %+v, want %+v", saved.Request, req)
	}
	if saved.UpdatedAt == "" {
		t.Error("expected UpdatedAt to be set")
	}

	req.AvailableCPU = 90000
	if err := store.SaveSettings(ctx, "cruiser", req); err != nil {
		t.Fatalf("overwriting settings: %v", err)
	}

	list, err := store.ListSettings(ctx)
	if err != nil {
		t.Fatalf("ListSettings: %v", err)
	}
	if len(list) != 2 || list[0].Name != "angler" || list[1].Name != "cruiser" {
		t.Fatalf("ListSettings = %+v", list)
	}
	if list[1].Request.AvailableCPU != 90000 {
		t.Errorf("overwritten AvailableCPU = %v, want 90000", list[1].Request.AvailableCPU)
	}

	deleted, err := store.DeleteSettings(ctx, "angler")
	if err != nil || !deleted {
		t.Errorf("DeleteSettings = %v, %v; want true", deleted, err)
	}
	deleted, err = store.DeleteSettings(ctx, "angler")
	if err != nil || deleted {
		t.Errorf("second DeleteSettings = %v, %v; want false", deleted, err)
	}
}
