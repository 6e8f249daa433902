// Package enginetest provides deterministic layout engines for tests.
package enginetest

import (
	"context"
	"sync"

	"github.com/matzehuels/nestlayout/pkg/engine"
)

// Row places children left to right in input order, Spacing apart, with
// y equal to the child's index times Spacing. It records every call.
type Row struct {
	mu    sync.Mutex
	calls []*engine.Graph
}

// Layout implements engine.Engine.
func (r *Row) Layout(ctx context.Context, g *engine.Graph) (*engine.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.calls = append(r.calls, g.Clone())
	r.mu.Unlock()

	out := g.Clone()
	x := 0.0
	for i, c := range out.Children {
		c.X = x
		c.Y = float64(i) * engine.Spacing
		x += c.Width + engine.Spacing
	}
	return out, nil
}

// Calls returns copies of the graphs passed to Layout, in call order.
func (r *Row) Calls() []*engine.Graph {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*engine.Graph, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallIDs returns the root id of every call, in order.
func (r *Row) CallIDs() []string {
	calls := r.Calls()
	ids := make([]string, len(calls))
	for i, c := range calls {
		ids[i] = c.ID
	}
	return ids
}

// Failing returns an engine that always fails with err.
func Failing(err error) engine.Engine {
	return engine.Func(func(context.Context, *engine.Graph) (*engine.Graph, error) {
		return nil, err
	})
}

// Dropping returns an engine that lays out with Row and then removes the
// child with the given id from the result.
func Dropping(id string) engine.Engine {
	var row Row
	return engine.Func(func(ctx context.Context, g *engine.Graph) (*engine.Graph, error) {
		out, err := row.Layout(ctx, g)
		if err != nil {
			return nil, err
		}
		kept := out.Children[:0]
		for _, c := range out.Children {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		out.Children = kept
		return out, nil
	})
}

// Ensure Row implements engine.Engine.
var _ engine.Engine = (*Row)(nil)
