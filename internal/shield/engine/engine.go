// Package engine contains the shield optimizer service logic: request
// validation, result caching, generator comparison and saved settings.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/rsned/shieldcalc-server/internal/shield/catalog"
	"github.com/rsned/shieldcalc-server/internal/shield/db"
	"github.com/rsned/shieldcalc-server/internal/shield/optimizer"
	"github.com/rsned/shieldcalc-server/pkg/shield"
)

// ErrNoStorage is returned by settings operations on an engine built without a database.
var ErrNoStorage = errors.New("settings storage not configured")

// Options configures an Engine.
type Options struct {
	// CacheSize is the number of optimizer results kept. 0 disables caching.
	CacheSize int
	Logger    *slog.Logger
}

// Engine is the main service for shield optimization.
type Engine struct {
	catalog  *catalog.Catalog
	settings *db.SettingsStore
	logger   *slog.Logger

	cache    *lru.Cache[string, *shield.Result]
	inflight singleflight.Group
}

// New creates an Engine over cat. database may be nil, in which case the
// settings operations return ErrNoStorage.
func New(cat *catalog.Catalog, database *db.DB, opts Options) (*Engine, error) {
	if cat == nil {
		return nil, errors.New("engine needs a catalog")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		catalog: cat,
		logger:  logger,
	}
	if database != nil {
		e.settings = db.NewSettingsStore(database)
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, *shield.Result](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating result cache: %w", err)
		}
		e.cache = cache
	}

	return e, nil
}

// NewFromDB creates an Engine using the catalog stored in database, falling
// back to the embedded default catalog when none has been stored.
func NewFromDB(ctx context.Context, database *db.DB, opts Options) (*Engine, error) {
	cat, err := db.NewCatalogStore(database).LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	if cat == nil {
		if cat, err = catalog.Default(); err != nil {
			return nil, err
		}
	}
	return New(cat, database, opts)
}

// Catalog returns the catalog the engine searches.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// CacheLen returns the number of cached results.
func (e *Engine) CacheLen() int {
	if e.cache == nil {
		return 0
	}
	return e.cache.Len()
}

// Optimize validates req and returns the best configuration for it.
// Infeasible requests are not errors; check Result.Feasible.
func (e *Engine) Optimize(ctx context.Context, req shield.Request) (*shield.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, ok := e.catalog.Generator(req.GeneratorID); !ok {
		return nil, fmt.Errorf("%w: %s", shield.ErrUnknownGenerator, req.GeneratorID)
	}
	return e.optimize(ctx, req)
}

// optimize runs a validated request through the cache.
func (e *Engine) optimize(ctx context.Context, req shield.Request) (*shield.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.cache == nil {
		return e.run(req), nil
	}

	key, err := cacheKey(req)
	if err != nil {
		return nil, err
	}
	if res, ok := e.cache.Get(key); ok {
		e.logger.Debug("optimizer cache hit", "generator", req.GeneratorID)
		return res.Clone(), nil
	}

	v, err, _ := e.inflight.Do(key, func() (any, error) {
		res := e.run(req)
		e.cache.Add(key, res)
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*shield.Result).Clone(), nil
}

func (e *Engine) run(req shield.Request) *shield.Result {
	start := time.Now()
	res := optimizer.Optimize(e.catalog, req)
	e.logger.Debug("optimized",
		"generator", req.GeneratorID,
		"feasible", res.Feasible,
		"capacity", res.TotalCapacity,
		"elapsed", time.Since(start),
	)
	return res
}

// cacheKey is the canonical JSON of req; encoding/json sorts map keys.
func cacheKey(req shield.Request) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding cache key: %w", err)
	}
	return string(data), nil
}

// ListCatalog returns every catalog entry in catalog order.
func (e *Engine) ListCatalog() shield.CatalogListing {
	return e.catalog.Listing()
}

// ComponentDetails looks up one component.
func (e *Engine) ComponentDetails(id string) (*shield.ComponentDetails, error) {
	comp, ok := e.catalog.Component(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", shield.ErrUnknownComponent, id)
	}
	return &shield.ComponentDetails{
		Component: comp,
		Searched:  comp.Kind != shield.KindReactor,
	}, nil
}
