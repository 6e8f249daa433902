package graphviz

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/nestlayout/pkg/engine"
	"github.com/matzehuels/nestlayout/pkg/errors"
)

// pointsPerInch converts between engine units (points) and Graphviz inches.
const pointsPerInch = 72.0

// formatPlain is Graphviz's line-oriented "plain" output format.
const formatPlain = graphviz.Format("plain")

// Engine lays out graph descriptions with the Graphviz dot algorithm.
//
// Each call to Layout creates its own Graphviz instance, so an Engine may be
// shared between goroutines.
type Engine struct{}

// New returns a Graphviz-backed layout engine.
func New() *Engine {
	return &Engine{}
}

// Layout positions the children of g. Children that carry their own children
// are laid out first and grown to fit them. The input is not modified.
func (e *Engine) Layout(ctx context.Context, g *engine.Graph) (*engine.Graph, error) {
	out := g.Clone()
	if err := e.layout(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) layout(ctx context.Context, g *engine.Graph) error {
	for _, c := range g.Children {
		if len(c.Children) == 0 {
			continue
		}
		if err := e.layout(ctx, c); err != nil {
			return err
		}
	}
	if len(g.Children) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dot, names, err := ToDOT(g)
	if err != nil {
		return err
	}
	plain, err := render(ctx, dot)
	if err != nil {
		return errors.Wrap(errors.ErrCodeEngine, err, "graphviz layout of %s", g.ID)
	}
	result, err := parsePlain(plain)
	if err != nil {
		return errors.Wrap(errors.ErrCodeEngine, err, "read graphviz output for %s", g.ID)
	}
	return apply(g, names, result)
}

// apply converts Graphviz centers (inches, y up) into top-left engine
// coordinates (points, y down), rounded to the precision of the plain output.
func apply(g *engine.Graph, names []string, result plainLayout) error {
	height := result.Height * pointsPerInch
	for i, c := range g.Children {
		p, ok := result.Nodes[names[i]]
		if !ok {
			return errors.New(errors.ErrCodeEngine, "graphviz output has no position for %s", c.ID)
		}
		c.X = roundPoints(p.X*pointsPerInch - c.Width/2)
		c.Y = roundPoints(height - p.Y*pointsPerInch - c.Height/2)
	}
	g.Width = max(g.Width, roundPoints(result.Width*pointsPerInch))
	g.Height = max(g.Height, roundPoints(height))
	return nil
}

// roundPoints rounds to hundredths of a point. Negative zero becomes zero.
func roundPoints(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0
	}
	return r
}

func render(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, formatPlain, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// Ensure Engine implements engine.Engine.
var _ engine.Engine = (*Engine)(nil)
