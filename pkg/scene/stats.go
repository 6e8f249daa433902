package scene

// Stats summarizes the shape of a scene tree.
type Stats struct {
	Shapes     int // non-edge nodes, root included
	Edges      int // edge pseudo-nodes
	Containers int // nodes with at least one shape child, edges included
	Depth      int // longest root-to-leaf path, counted in nodes
}

// Walk calls fn for every node in pre-order. Returning false skips the
// node's children.
func Walk(root *Node, fn func(n *Node, depth int) bool) {
	walk(root, 1, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}

// Collect computes Stats for the tree rooted at root.
func Collect(root *Node) Stats {
	var s Stats
	Walk(root, func(n *Node, depth int) bool {
		if depth > s.Depth {
			s.Depth = depth
		}
		if n.IsEdge() {
			s.Edges++
		} else {
			s.Shapes++
		}
		if len(n.Shapes()) > 0 {
			s.Containers++
		}
		return true
	})
	return s
}
