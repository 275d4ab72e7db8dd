package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rsned/shieldcalc-server/internal/shield/catalog"
	"github.com/rsned/shieldcalc-server/pkg/shield"
)

// CatalogStore handles catalog data access.
type CatalogStore struct {
	db *DB
}

// NewCatalogStore creates a new CatalogStore.
func NewCatalogStore(db *DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// IsEmpty reports whether no generators have been stored yet.
func (s *CatalogStore) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM generators`).Scan(&n); err != nil {
		return false, fmt.Errorf("counting generators: %w", err)
	}
	return n == 0, nil
}

// ReplaceCatalog swaps the stored catalog for f in a single transaction.
// The file is validated first so a bad import never replaces a good catalog.
func (s *CatalogStore) ReplaceCatalog(ctx context.Context, f *catalog.File) error {
	if _, err := f.Build(); err != nil {
		return err
	}

	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"generators", "components", "block_types"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}

		genStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO generators (id, name, base_capacity, base_recharge, position)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing generator statement: %w", err)
		}
		defer func() { _ = genStmt.Close() }()

		compStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO components
			(id, name, kind, tier, cpu_cost, capacity_delta, recharge_delta, tier_cap, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing component statement: %w", err)
		}
		defer func() { _ = compStmt.Close() }()

		blockStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO block_types (id, name, capacity_per_block, position)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing block type statement: %w", err)
		}
		defer func() { _ = blockStmt.Close() }()

		for i, g := range f.Generators {
			if _, err := genStmt.ExecContext(ctx, g.ID, g.Name, g.BaseCapacity, g.BaseRecharge, i); err != nil {
				return fmt.Errorf("inserting generator %s: %w", g.ID, err)
			}
		}
		for i, c := range f.Components {
			_, err := compStmt.ExecContext(ctx,
				c.ID, c.Name, string(c.Kind), string(c.Tier),
				c.CPUCost, c.CapacityDelta, c.RechargeDelta, c.TierCap, i,
			)
			if err != nil {
				return fmt.Errorf("inserting component %s: %w", c.ID, err)
			}
		}
		for i, b := range f.BlockTypes {
			if _, err := blockStmt.ExecContext(ctx, b.ID, b.Name, b.CapacityPerBlock, i); err != nil {
				return fmt.Errorf("inserting block type %s: %w", b.ID, err)
			}
		}

		return nil
	})
}

// LoadFile reads the stored catalog rows in catalog order.
// Returns nil if no catalog has been stored.
func (s *CatalogStore) LoadFile(ctx context.Context) (*catalog.File, error) {
	empty, err := s.IsEmpty(ctx)
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, nil
	}

	f := &catalog.File{}

	genRows, err := s.db.QueryContext(ctx, `
		SELECT id, name, base_capacity, base_recharge
		FROM generators ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying generators: %w", err)
	}
	defer func() { _ = genRows.Close() }()
	for genRows.Next() {
		var g shield.Generator
		if err := genRows.Scan(&g.ID, &g.Name, &g.BaseCapacity, &g.BaseRecharge); err != nil {
			return nil, fmt.Errorf("scanning generator: %w", err)
		}
		f.Generators = append(f.Generators, g)
	}
	if err := genRows.Err(); err != nil {
		return nil, err
	}

	compRows, err := s.db.QueryContext(ctx, `
		SELECT id, name, kind, tier, cpu_cost, capacity_delta, recharge_delta, tier_cap
		FROM components ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying components: %w", err)
	}
	defer func() { _ = compRows.Close() }()
	for compRows.Next() {
		var c shield.Component
		var kind, tier string
		if err := compRows.Scan(&c.ID, &c.Name, &kind, &tier,
			&c.CPUCost, &c.CapacityDelta, &c.RechargeDelta, &c.TierCap); err != nil {
			return nil, fmt.Errorf("scanning component: %w", err)
		}
		c.Kind = shield.ComponentKind(kind)
		c.Tier = shield.Tier(tier)
		f.Components = append(f.Components, c)
	}
	if err := compRows.Err(); err != nil {
		return nil, err
	}

	blockRows, err := s.db.QueryContext(ctx, `
		SELECT id, name, capacity_per_block
		FROM block_types ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying block types: %w", err)
	}
	defer func() { _ = blockRows.Close() }()
	for blockRows.Next() {
		var b shield.BlockType
		if err := blockRows.Scan(&b.ID, &b.Name, &b.CapacityPerBlock); err != nil {
			return nil, fmt.Errorf("scanning block type: %w", err)
		}
		f.BlockTypes = append(f.BlockTypes, b)
	}

	return f, blockRows.Err()
}

// LoadCatalog builds a validated catalog from the stored rows.
// Returns nil if no catalog has been stored.
func (s *CatalogStore) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	f, err := s.LoadFile(ctx)
	if err != nil || f == nil {
		return nil, err
	}
	return f.Build()
}
