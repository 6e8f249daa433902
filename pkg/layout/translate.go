package layout

import (
	"github.com/matzehuels/nestlayout/pkg/engine"
	"github.com/matzehuels/nestlayout/pkg/errors"
	"github.com/matzehuels/nestlayout/pkg/scene"
)

// PortSides maps every edge endpoint at one level to the side its port sits
// on: SOUTH for a source, NORTH for a target. Edges are applied in order, so
// an id used as both keeps the side of its last use.
func PortSides(edges []*scene.Node) map[string]engine.Side {
	sides := make(map[string]engine.Side, 2*len(edges))
	for _, e := range edges {
		sides[e.Src] = engine.SideSouth
		sides[e.Dst] = engine.SideNorth
	}
	return sides
}

// PortOwners maps the id of every grandchild reachable through shapes to the
// id of the shape that contains it.
func PortOwners(shapes []*scene.Node) (map[string]string, error) {
	owners := make(map[string]string)
	for _, s := range shapes {
		if s.ID == "" {
			return nil, missingID(s)
		}
		for _, gc := range s.Children {
			if gc.ID == "" {
				return nil, missingID(gc)
			}
			owners[gc.ID] = s.ID
		}
	}
	return owners, nil
}

// BuildContainer translates n into the description of one engine call.
//
// Every shape child becomes a fixed-size descriptor. In shallow mode a child
// carries one port per grandchild that an edge at this level attaches to, and
// the description stops there. In deep mode each child is itself described
// as a container, recursively, without ports.
func BuildContainer(n *scene.Node, shallow bool) (*engine.Graph, error) {
	if n.ID == "" {
		return nil, missingID(n)
	}
	edges, shapes := n.Partition()
	owners, err := PortOwners(shapes)
	if err != nil {
		return nil, err
	}

	g := &engine.Graph{
		ID:            n.ID,
		Width:         engine.NodeWidth,
		Height:        engine.NodeHeight,
		LayoutOptions: engine.DefaultLayoutOptions(),
	}
	for _, e := range edges {
		edge, err := BuildEdge(e, owners)
		if err != nil {
			return nil, err
		}
		g.Edges = append(g.Edges, edge)
	}

	var sides map[string]engine.Side
	if shallow {
		sides = PortSides(edges)
	}
	for _, s := range shapes {
		var child *engine.Graph
		if shallow {
			child = nodeDescriptor(s, sides)
		} else if child, err = BuildContainer(s, false); err != nil {
			return nil, err
		}
		g.Children = append(g.Children, child)
	}
	return g, nil
}

// BuildEdge translates an edge pseudo-node. Source and target are the shapes
// owning the endpoints; the endpoints themselves become the ports.
func BuildEdge(e *scene.Node, owners map[string]string) (engine.Edge, error) {
	if e.ID == "" {
		return engine.Edge{}, missingID(e)
	}
	source, ok := owners[e.Src]
	if !ok {
		return engine.Edge{}, errors.New(errors.ErrCodeUnknownPort,
			"edge %s: source %q is not a child of any sibling", e.ID, e.Src).WithFragment(e)
	}
	target, ok := owners[e.Dst]
	if !ok {
		return engine.Edge{}, errors.New(errors.ErrCodeUnknownPort,
			"edge %s: target %q is not a child of any sibling", e.ID, e.Dst).WithFragment(e)
	}
	return engine.Edge{
		ID:         e.ID,
		Source:     source,
		Target:     target,
		SourcePort: e.Src,
		TargetPort: e.Dst,
	}, nil
}

func nodeDescriptor(n *scene.Node, sides map[string]engine.Side) *engine.Graph {
	g := &engine.Graph{
		ID:     n.ID,
		Width:  engine.NodeWidth,
		Height: engine.NodeHeight,
	}
	for _, gc := range n.Shapes() {
		side, ok := sides[gc.ID]
		if !ok {
			continue
		}
		g.Ports = append(g.Ports, engine.Port{
			ID:         gc.ID,
			Width:      engine.PortWidth,
			Height:     engine.PortHeight,
			Properties: map[string]string{engine.OptionPortSide: string(side)},
		})
	}
	return g
}

func missingID(n *scene.Node) error {
	return errors.New(errors.ErrCodeMissingID, "%s node has no id", n.Kind).WithFragment(n)
}
