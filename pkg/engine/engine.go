// Package engine defines the graph description exchanged with a hierarchical
// layout engine, and the engine contract itself.
//
// The schema follows the layered-layout convention: a graph is a node with
// children, edges between those children, and ports on the children that
// edges can attach to. An engine fills in X and Y on every child and returns a
// congruent structure.
//
//	g := &engine.Graph{
//	    ID:            "root",
//	    LayoutOptions: engine.DefaultLayoutOptions(),
//	    Children:      []*engine.Graph{{ID: "a", Width: 150, Height: 100}},
//	}
//	out, err := eng.Layout(ctx, g)
package engine

import (
	"context"
	"slices"
)

// Fixed descriptor sizes.
const (
	NodeWidth  = 150.0
	NodeHeight = 100.0
	PortWidth  = 1.0
	PortHeight = 1.0
)

// Spacing is the distance kept between sibling nodes and between layers.
const Spacing = 40.0

// Layout option keys.
const (
	OptionAlgorithm            = "elk.algorithm"
	OptionDirection            = "org.eclipse.elk.direction"
	OptionSpacingNodeNode      = "org.eclipse.elk.spacing.nodeNode"
	OptionSpacingBetweenLayers = "org.eclipse.elk.layered.spacing.nodeNodeBetweenLayers"
	OptionPortSide             = "org.eclipse.elk.port.side"
)

// Layout option values.
const (
	AlgorithmLayered = "layered"
	DirectionDown    = "DOWN"
)

// Side is the border of a node a port sits on.
type Side string

// Port sides used by the translator.
const (
	SideNorth Side = "NORTH"
	SideSouth Side = "SOUTH"
)

// Graph is a node of the engine description. The root Graph describes one
// container; its Children are the nodes to position.
type Graph struct {
	ID            string         `json:"id"`
	X             float64        `json:"x,omitempty"`
	Y             float64        `json:"y,omitempty"`
	Width         float64        `json:"width,omitempty"`
	Height        float64        `json:"height,omitempty"`
	Ports         []Port         `json:"ports,omitempty"`
	Children      []*Graph       `json:"children,omitempty"`
	Edges         []Edge         `json:"edges,omitempty"`
	LayoutOptions map[string]any `json:"layoutOptions,omitempty"`
}

// Port is an attachment point on a node.
type Port struct {
	ID         string            `json:"id"`
	Width      float64           `json:"width"`
	Height     float64           `json:"height"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Side returns the port's side property.
func (p Port) Side() Side {
	return Side(p.Properties[OptionPortSide])
}

// Edge connects two children, optionally through ports.
type Edge struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Target     string `json:"target"`
	SourcePort string `json:"sourcePort,omitempty"`
	TargetPort string `json:"targetPort,omitempty"`
}

// Engine computes positions for the children of a graph description.
type Engine interface {
	// Layout returns a copy of g with X and Y set on every child.
	// The input is not modified.
	Layout(ctx context.Context, g *Graph) (*Graph, error)
}

// Func adapts a function to the Engine interface.
type Func func(ctx context.Context, g *Graph) (*Graph, error)

// Layout calls f.
func (f Func) Layout(ctx context.Context, g *Graph) (*Graph, error) { return f(ctx, g) }

// DefaultLayoutOptions returns the fixed configuration: layered algorithm,
// top-to-bottom, 40 units between nodes and between layers.
func DefaultLayoutOptions() map[string]any {
	return map[string]any{
		OptionAlgorithm:            AlgorithmLayered,
		OptionDirection:            DirectionDown,
		OptionSpacingNodeNode:      Spacing,
		OptionSpacingBetweenLayers: Spacing,
	}
}

// Child returns the direct child with the given id.
func (g *Graph) Child(id string) (*Graph, bool) {
	for _, c := range g.Children {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// ChildIDs returns the ids of the direct children in order.
func (g *Graph) ChildIDs() []string {
	ids := make([]string, len(g.Children))
	for i, c := range g.Children {
		ids[i] = c.ID
	}
	return ids
}

// Port returns the port with the given id.
func (g *Graph) Port(id string) (Port, bool) {
	i := slices.IndexFunc(g.Ports, func(p Port) bool { return p.ID == id })
	if i < 0 {
		return Port{}, false
	}
	return g.Ports[i], true
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	c := *g
	c.Ports = make([]Port, len(g.Ports))
	for i, p := range g.Ports {
		p.Properties = cloneStrings(p.Properties)
		c.Ports[i] = p
	}
	if g.Ports == nil {
		c.Ports = nil
	}
	c.Edges = slices.Clone(g.Edges)
	if g.LayoutOptions != nil {
		c.LayoutOptions = make(map[string]any, len(g.LayoutOptions))
		for k, v := range g.LayoutOptions {
			c.LayoutOptions[k] = v
		}
	}
	if g.Children != nil {
		c.Children = make([]*Graph, len(g.Children))
		for i, child := range g.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

func cloneStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
