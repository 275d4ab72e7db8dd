package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rsned/shieldcalc-server/pkg/shield"
)

// SaveSettings stores req under name, replacing any previous entry.
func (e *Engine) SaveSettings(ctx context.Context, name string, req shield.Request) error {
	if e.settings == nil {
		return ErrNoStorage
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: settings name is required", shield.ErrInvalidRequest)
	}
	if err := req.Validate(); err != nil {
		return err
	}
	return e.settings.SaveSettings(ctx, name, req)
}

// LoadSettings returns the named settings or ErrSettingsNotFound.
func (e *Engine) LoadSettings(ctx context.Context, name string) (*shield.SavedSettings, error) {
	if e.settings == nil {
		return nil, ErrNoStorage
	}
	saved, err := e.settings.GetSettings(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, fmt.Errorf("%w: %s", shield.ErrSettingsNotFound, name)
	}
	return saved, nil
}

// ListSettings returns every saved entry ordered by name.
func (e *Engine) ListSettings(ctx context.Context) ([]shield.SavedSettings, error) {
	if e.settings == nil {
		return nil, ErrNoStorage
	}
	return e.settings.ListSettings(ctx)
}

// DeleteSettings removes the named settings or returns ErrSettingsNotFound.
func (e *Engine) DeleteSettings(ctx context.Context, name string) error {
	if e.settings == nil {
		return ErrNoStorage
	}
	deleted, err := e.settings.DeleteSettings(ctx, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s", shield.ErrSettingsNotFound, name)
	}
	return nil
}

// OptimizeSaved loads the named settings and optimizes them.
func (e *Engine) OptimizeSaved(ctx context.Context, name string) (*shield.Result, error) {
	saved, err := e.LoadSettings(ctx, name)
	if err != nil {
		return nil, err
	}
	return e.Optimize(ctx, saved.Request)
}

// IsClientError reports whether err was caused by the caller's input rather
// than by the engine or its storage.
func IsClientError(err error) bool {
	return errors.Is(err, shield.ErrInvalidRequest) ||
		errors.Is(err, shield.ErrUnknownGenerator) ||
		errors.Is(err, shield.ErrUnknownComponent) ||
		errors.Is(err, shield.ErrSettingsNotFound)
}
