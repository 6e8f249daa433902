package layout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nestlayout/pkg/cache"
	"github.com/matzehuels/nestlayout/pkg/engine"
	"github.com/matzehuels/nestlayout/pkg/observability"
)

// keyTypeLayout labels cache hook events emitted by CachedEngine.
const keyTypeLayout = "layout"

// CachedEngine decorates an engine with a result cache keyed by the hash of
// the graph description. Cache failures never fail a layout: read and decode
// errors fall through to the engine and write errors are logged.
type CachedEngine struct {
	Engine engine.Engine
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	Opts   cache.LayoutKeyOpts
	Logger *log.Logger
}

// NewCachedEngine wraps eng. Nil cache and keyer select the null cache and
// the default keyer; a zero ttl selects cache.TTLLayout.
func NewCachedEngine(eng engine.Engine, c cache.Cache, keyer cache.Keyer, ttl time.Duration, opts cache.LayoutKeyOpts, logger *log.Logger) *CachedEngine {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl <= 0 {
		ttl = cache.TTLLayout
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CachedEngine{Engine: eng, Cache: c, Keyer: keyer, TTL: ttl, Opts: opts, Logger: logger}
}

// Layout returns the cached result for g when present, and otherwise calls
// the wrapped engine and stores its result.
func (e *CachedEngine) Layout(ctx context.Context, g *engine.Graph) (*engine.Graph, error) {
	if cache.IsNull(e.Cache) {
		return e.Engine.Layout(ctx, g)
	}

	data, err := json.Marshal(g)
	if err != nil {
		return e.Engine.Layout(ctx, g)
	}
	key := e.Keyer.LayoutKey(cache.Hash(data), e.Opts)
	hooks := observability.Cache()

	if cached, hit, err := e.Cache.Get(ctx, key); err == nil && hit {
		var out engine.Graph
		if err := json.Unmarshal(cached, &out); err == nil {
			hooks.OnCacheHit(ctx, keyTypeLayout)
			return &out, nil
		}
		// Undecodable entries are recomputed
	} else if err != nil {
		e.Logger.Debug("cache read failed", "key", key, "error", err)
	}
	hooks.OnCacheMiss(ctx, keyTypeLayout)

	out, err := e.Engine.Layout(ctx, g)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(out); err == nil {
		if err := e.Cache.Set(ctx, key, encoded, e.TTL); err != nil {
			e.Logger.Warn("cache write failed", "key", key, "error", err)
		} else {
			hooks.OnCacheSet(ctx, keyTypeLayout, len(encoded))
		}
	}
	return out, nil
}

// Ensure CachedEngine implements engine.Engine.
var _ engine.Engine = (*CachedEngine)(nil)
