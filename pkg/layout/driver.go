package layout

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nestlayout/pkg/engine"
	"github.com/matzehuels/nestlayout/pkg/errors"
	"github.com/matzehuels/nestlayout/pkg/observability"
	"github.com/matzehuels/nestlayout/pkg/scene"
)

// Driver lays out a scene tree one container at a time.
//
// The walk is post-order: a container's children are laid out first, in
// array order, then the container itself. Edge-nodes are walked too, so
// shapes nested under an edge are positioned relative to that edge. Containers are never laid out
// concurrently, so the resulting engine call order is deterministic.
type Driver struct {
	Engine engine.Engine
	Logger *log.Logger
}

// NewDriver creates a driver. A nil logger discards output.
func NewDriver(eng engine.Engine, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Driver{Engine: eng, Logger: logger}
}

// Layout positions every shape in the tree rooted at root, writing
// registry.position on each non-edge child. Every node must already have an
// id (see [scene.IDAssigner]). The first failure aborts the walk; containers
// merged before it keep their positions.
func (d *Driver) Layout(ctx context.Context, root *scene.Node) error {
	return d.layout(ctx, root)
}

func (d *Driver) layout(ctx context.Context, n *scene.Node) error {
	for _, c := range n.Children {
		if err := d.layout(ctx, c); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	desc, err := BuildContainer(n, true)
	if err != nil {
		return err
	}
	if len(desc.Children) == 0 {
		return nil
	}

	hooks := observability.Layout()
	hooks.OnContainerStart(ctx, n.ID, len(desc.Children), len(desc.Edges))
	start := time.Now()
	result, err := d.Engine.Layout(ctx, desc)
	elapsed := time.Since(start)
	hooks.OnContainerComplete(ctx, n.ID, elapsed, err)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.GetCode(err) != "" {
			return err
		}
		return errors.Wrap(errors.ErrCodeEngine, err, "layout %s", n.ID)
	}

	if err := Merge(n, result); err != nil {
		return err
	}
	d.Logger.Debug("laid out container",
		"id", n.ID,
		"children", len(desc.Children),
		"edges", len(desc.Edges),
		"duration", elapsed)
	return nil
}
