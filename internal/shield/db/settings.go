package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rsned/shieldcalc-server/pkg/shield"
)

// SettingsStore handles saved request settings.
type SettingsStore struct {
	db *DB
}

// NewSettingsStore creates a new SettingsStore.
func NewSettingsStore(db *DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// SaveSettings inserts or replaces the named settings.
func (s *SettingsStore) SaveSettings(ctx context.Context, name string, req shield.Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saved_settings (name, request_json, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(name) DO UPDATE SET
			request_json = excluded.request_json,
			updated_at = excluded.updated_at
	`, name, string(data))
	if err != nil {
		return fmt.Errorf("saving settings %s: %w", name, err)
	}

	return nil
}

// GetSettings retrieves the named settings.
// Returns nil if no settings are stored under that name.
func (s *SettingsStore) GetSettings(ctx context.Context, name string) (*shield.SavedSettings, error) {
	var raw string
	saved := &shield.SavedSettings{Name: name}

	err := s.db.QueryRowContext(ctx, `
		SELECT request_json, updated_at FROM saved_settings WHERE name = ?
	`, name).Scan(&raw, &saved.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}

	if err := json.Unmarshal([]byte(raw), &saved.Request); err != nil {
		return nil, fmt.Errorf("decoding settings %s: %w", name, err)
	}

	return saved, nil
}

// ListSettings returns every saved entry ordered by name.
func (s *SettingsStore) ListSettings(ctx context.Context) ([]shield.SavedSettings, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, request_json, updated_at FROM saved_settings ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []shield.SavedSettings
	for rows.Next() {
		var saved shield.SavedSettings
		var raw string
		if err := rows.Scan(&saved.Name, &raw, &saved.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning settings: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &saved.Request); err != nil {
			return nil, fmt.Errorf("decoding settings %s: %w", saved.Name, err)
		}
		out = append(out, saved)
	}

	return out, rows.Err()
}

// DeleteSettings removes the named settings. It reports whether a row existed.
func (s *SettingsStore) DeleteSettings(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_settings WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("deleting settings %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting settings %s: %w", name, err)
	}
	return n > 0, nil
}
