package graphviz

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/nestlayout/pkg/engine"
	"github.com/matzehuels/nestlayout/pkg/errors"
)

// compass maps port sides to Graphviz compass points.
var compass = map[engine.Side]string{
	engine.SideNorth: "n",
	engine.SideSouth: "s",
}

// ToDOT converts one level of a graph description to Graphviz DOT.
//
// Children are emitted as fixed-size boxes named n0, n1, ... in order; the
// returned names slice maps each child index to its DOT name. Edges attach to
// the compass point of their port's side. Nested children are ignored.
func ToDOT(g *engine.Graph) (string, []string, error) {
	names := make([]string, len(g.Children))
	byID := make(map[string]int, len(g.Children))
	for i, c := range g.Children {
		names[i] = "n" + strconv.Itoa(i)
		byID[c.ID] = i
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir(g.LayoutOptions))
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(spacing(g.LayoutOptions, engine.OptionSpacingNodeNode)))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(spacing(g.LayoutOptions, engine.OptionSpacingBetweenLayers)))
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("\n")

	for i, c := range g.Children {
		fmt.Fprintf(&buf, "  %s [width=%s, height=%s, comment=%q];\n",
			names[i], inches(c.Width), inches(c.Height), c.ID)
	}

	if len(g.Edges) > 0 {
		buf.WriteString("\n")
	}
	for _, e := range g.Edges {
		src, ok := byID[e.Source]
		if !ok {
			return "", nil, errors.New(errors.ErrCodeEngine, "edge %s: unknown source %q", e.ID, e.Source)
		}
		dst, ok := byID[e.Target]
		if !ok {
			return "", nil, errors.New(errors.ErrCodeEngine, "edge %s: unknown target %q", e.ID, e.Target)
		}
		attrs := edgeAttrs(g.Children[src], e.SourcePort, "tailport", g.Children[dst], e.TargetPort, "headport")
		fmt.Fprintf(&buf, "  %s -> %s%s;\n", names[src], names[dst], attrs)
	}

	buf.WriteString("}\n")
	return buf.String(), names, nil
}

func edgeAttrs(src *engine.Graph, srcPort, tailKey string, dst *engine.Graph, dstPort, headKey string) string {
	var attrs []string
	if pt, ok := portCompass(src, srcPort); ok {
		attrs = append(attrs, tailKey+"="+pt)
	}
	if pt, ok := portCompass(dst, dstPort); ok {
		attrs = append(attrs, headKey+"="+pt)
	}
	if len(attrs) == 0 {
		return ""
	}
	return " [" + strings.Join(attrs, ", ") + "]"
}

func portCompass(n *engine.Graph, portID string) (string, bool) {
	if portID == "" {
		return "", false
	}
	p, ok := n.Port(portID)
	if !ok {
		return "", false
	}
	pt, ok := compass[p.Side()]
	return pt, ok
}

func rankdir(opts map[string]any) string {
	switch opts[engine.OptionDirection] {
	case "UP":
		return "BT"
	case "RIGHT":
		return "LR"
	case "LEFT":
		return "RL"
	}
	return "TB"
}

func spacing(opts map[string]any, key string) float64 {
	switch v := opts[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return engine.Spacing
}

func inches(points float64) string {
	return strconv.FormatFloat(points/pointsPerInch, 'g', -1, 64)
}
