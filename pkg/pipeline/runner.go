package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nestlayout/pkg/cache"
	"github.com/matzehuels/nestlayout/pkg/engine"
	"github.com/matzehuels/nestlayout/pkg/layout"
	"github.com/matzehuels/nestlayout/pkg/scene"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it so that they share one code path.
//
// The Runner holds no per-run state: every run gets its own id assigner, so
// one Runner may serve concurrent requests.
type Runner struct {
	Engine  engine.Engine
	Cache   cache.Cache
	Keyer   cache.Keyer
	KeyOpts cache.LayoutKeyOpts
	TTL     time.Duration
	Logger  *log.Logger
}

// NewRunner creates a runner around eng.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(eng engine.Engine, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Engine: eng,
		Cache:  c,
		Keyer:  keyer,
		TTL:    cache.TTLLayout,
		Logger: logger,
	}
}

// Process decodes a tree from r, lays it out and writes it to w.
// Nothing is written when any stage fails.
func (r *Runner) Process(ctx context.Context, in io.Reader, w io.Writer, opts Options) (*Result, error) {
	root, err := scene.Decode(in)
	if err != nil {
		return nil, err
	}
	result, err := r.Execute(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	if err := scene.Encode(w, root); err != nil {
		return nil, err
	}
	return result, nil
}

// Execute assigns missing ids and lays out root in place.
func (r *Runner) Execute(ctx context.Context, root *scene.Node, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.logger(opts)

	result := &Result{Scene: root}
	result.AssignedIDs = scene.NewIDAssigner(opts.IDStart).Assign(root)
	result.Stats = scene.Collect(root)
	logger.Debug("assigned ids",
		"generated", result.AssignedIDs,
		"shapes", result.Stats.Shapes,
		"edges", result.Stats.Edges)

	eng := layout.NewCachedEngine(r.Engine, r.Cache, r.Keyer, r.TTL, r.KeyOpts, logger)
	start := time.Now()
	if err := layout.NewDriver(eng, logger).Layout(ctx, root); err != nil {
		return nil, err
	}
	result.LayoutTime = time.Since(start)

	logger.Debug("computed layout",
		"containers", result.Stats.Containers,
		"depth", result.Stats.Depth,
		"duration", result.LayoutTime)
	return result, nil
}

// Describe assigns missing ids and returns the engine description of root.
// With opts.Shallow it is exactly what the layout driver sends for the root.
func (r *Runner) Describe(ctx context.Context, root *scene.Node, opts Options) (*engine.Graph, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scene.NewIDAssigner(opts.IDStart).Assign(root)
	return layout.BuildContainer(root, opts.Shallow)
}

// Close releases the cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
