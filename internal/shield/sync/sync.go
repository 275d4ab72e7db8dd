// Package sync loads shield reference data and legacy settings into the database.
package sync

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"github.com/rsned/shieldcalc-server/internal/shield/catalog"
	"github.com/rsned/shieldcalc-server/internal/shield/db"
	"github.com/rsned/shieldcalc-server/pkg/shield"
)

// Metadata keys written by the syncer.
const (
	MetaCatalogSource   = "catalog_source"
	MetaCatalogLastSync = "catalog_last_sync"
	MetaGeneratorCount  = "generators_count"
	MetaComponentCount  = "components_count"
	MetaBlockTypeCount  = "block_types_count"

	// EmbeddedSource marks a catalog seeded from the built-in defaults.
	EmbeddedSource = "embedded"
)

// LegacyStorageKey is the browser localStorage key the old web calculator
// saved its form under.
const LegacyStorageKey = "empyrionShieldCalc"

// legacyBlockKeys maps the web form's block fields to catalog block type ids.
var legacyBlockKeys = []struct {
	field string
	id    string
}{
	{"hull", "steel"},
	{"heavyHull", "hardenedSteel"},
	{"armoredHull", "combatSteel"},
	{"combatSteel", "xeno"},
}

// Syncer handles catalog and settings imports.
type Syncer struct {
	db *db.DB
}

// NewSyncer creates a new Syncer.
func NewSyncer(database *db.DB) *Syncer {
	return &Syncer{db: database}
}

// ImportCatalogFromFile replaces the stored catalog with a YAML or JSON file.
func (s *Syncer) ImportCatalogFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	f, err := catalog.ParseFile(data)
	if err != nil {
		return err
	}

	return s.storeCatalog(ctx, f, path)
}

// SeedDefaultCatalog stores the embedded catalog if the database has none.
// It reports whether anything was written.
func (s *Syncer) SeedDefaultCatalog(ctx context.Context) (bool, error) {
	store := db.NewCatalogStore(s.db)
	empty, err := store.IsEmpty(ctx)
	if err != nil || !empty {
		return false, err
	}

	f, err := catalog.DefaultFile()
	if err != nil {
		return false, err
	}
	if err := s.storeCatalog(ctx, f, EmbeddedSource); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Syncer) storeCatalog(ctx context.Context, f *catalog.File, source string) error {
	if err := db.NewCatalogStore(s.db).ReplaceCatalog(ctx, f); err != nil {
		return fmt.Errorf("storing catalog: %w", err)
	}

	meta := []struct{ key, value string }{
		{MetaCatalogSource, source},
		{MetaCatalogLastSync, time.Now().Format(time.RFC3339)},
		{MetaGeneratorCount, fmt.Sprintf("%d", len(f.Generators))},
		{MetaComponentCount, fmt.Sprintf("%d", len(f.Components))},
		{MetaBlockTypeCount, fmt.Sprintf("%d", len(f.BlockTypes))},
	}
	for _, m := range meta {
		if err := s.db.SetSyncMetadata(ctx, m.key, m.value); err != nil {
			return err
		}
	}

	return nil
}

// ParseLegacySettings converts a saved web-calculator form into a Request.
//
// The blob may be the form object itself or a localStorage dump holding it
// under LegacyStorageKey (either as an object or as a JSON string). Form
// values were stored as strings; numeric values are accepted too. Missing or
// empty fields read as zero, and a missing generator defaults to "regular".
func ParseLegacySettings(data []byte) (shield.Request, error) {
	if !gjson.ValidBytes(data) {
		return shield.Request{}, fmt.Errorf("%w: legacy settings are not valid JSON", shield.ErrInvalidRequest)
	}

	form := gjson.ParseBytes(data)
	if nested := form.Get(LegacyStorageKey); nested.Exists() {
		form = nested
		if nested.Type == gjson.String {
			if !gjson.Valid(nested.Str) {
				return shield.Request{}, fmt.Errorf("%w: %s does not hold JSON", shield.ErrInvalidRequest, LegacyStorageKey)
			}
			form = gjson.Parse(nested.Str)
		}
	}
	if !form.IsObject() {
		return shield.Request{}, fmt.Errorf("%w: legacy settings must be a JSON object", shield.ErrInvalidRequest)
	}

	req := shield.Request{
		GeneratorID:          form.Get("generatorType").String(),
		TotalCPU:             form.Get("totalCpu").Float(),
		AvailableCPU:         form.Get("availableCpu").Float(),
		MinEfficiencyPercent: form.Get("minEfficiency").Float(),
		MinRechargeRate:      form.Get("minRechargeRate").Float(),
		FixedReactorCounts: map[string]int{
			"small_fusion": int(form.Get("smallFusionCount").Int()),
			"large_fusion": int(form.Get("largeFusionCount").Int()),
		},
		BlockCounts: make(map[string]int, len(legacyBlockKeys)),
	}
	if req.GeneratorID == "" {
		req.GeneratorID = "regular"
	}

	blocks := form.Get("blockCounts")
	for _, k := range legacyBlockKeys {
		req.BlockCounts[k.id] = int(blocks.Get(k.field).Int())
	}

	if err := req.Validate(); err != nil {
		return shield.Request{}, err
	}
	return req, nil
}

// ImportLegacySettingsFromFile parses a legacy settings blob and saves it
// under name.
func (s *Syncer) ImportLegacySettingsFromFile(ctx context.Context, name, path string) (shield.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return shield.Request{}, fmt.Errorf("reading file: %w", err)
	}

	req, err := ParseLegacySettings(data)
	if err != nil {
		return shield.Request{}, err
	}

	if err := db.NewSettingsStore(s.db).SaveSettings(ctx, name, req); err != nil {
		return shield.Request{}, err
	}
	return req, nil
}
