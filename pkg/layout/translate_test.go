package layout

import (
	"strings"
	"testing"

	"github.com/matzehuels/nestlayout/pkg/engine"
	"github.com/matzehuels/nestlayout/pkg/errors"
	"github.com/matzehuels/nestlayout/pkg/scene"
)

func mustScene(t *testing.T, doc string) *scene.Node {
	t.Helper()
	root, err := scene.Unmarshal([]byte(doc))
	if err != nil {
		t.Fatalf("Unmarshal(%s): %v", doc, err)
	}
	return root
}

func TestPortSides(t *testing.T) {
	root := mustScene(t, `{"children":[
		{"id":"e1","pointers":{"src":"a","dst":"b"}},
		{"id":"e2","pointers":{"src":"b","dst":"c"}}
	]}`)
	edges, _ := root.Partition()
	sides := PortSides(edges)

	want := map[string]engine.Side{
		"a": engine.SideSouth,
		"b": engine.SideSouth, // last write wins
		"c": engine.SideNorth,
	}
	if len(sides) != len(want) {
		t.Fatalf("got %d sides, want %d: %v", len(sides), len(want), sides)
	}
	for id, side := range want {
		if sides[id] != side {
			t.Errorf("side[%s] = %s, want %s", id, sides[id], side)
		}
	}
}

func TestPortOwners(t *testing.T) {
	root := mustScene(t, `{"id":"r","children":[
		{"id":"A","children":[{"id":"p1"},{"id":"p2"}]},
		{"id":"B","children":[{"id":"q1"}]},
		{"id":"C"}
	]}`)
	owners, err := PortOwners(root.Shapes())
	if err != nil {
		t.Fatalf("PortOwners: %v", err)
	}
	want := map[string]string{"p1": "A", "p2": "A", "q1": "B"}
	if len(owners) != len(want) {
		t.Fatalf("owners = %v", owners)
	}
	for id, owner := range want {
		if owners[id] != owner {
			t.Errorf("owner[%s] = %q, want %q", id, owners[id], owner)
		}
	}
}

func TestBuildEdgeResolvesOwners(t *testing.T) {
	root := mustScene(t, `{"id":"r","children":[
		{"id":"A","children":[{"id":"p1"}]},
		{"id":"B","children":[{"id":"p2"}]},
		{"id":"e","pointers":{"src":"p1","dst":"p2"}}
	]}`)
	edges, shapes := root.Partition()
	owners, err := PortOwners(shapes)
	if err != nil {
		t.Fatal(err)
	}
	got, err := BuildEdge(edges[0], owners)
	if err != nil {
		t.Fatalf("BuildEdge: %v", err)
	}
	want := engine.Edge{ID: "e", Source: "A", Target: "B", SourcePort: "p1", TargetPort: "p2"}
	if got != want {
		t.Errorf("BuildEdge = %+v, want %+v", got, want)
	}
}

func TestBuildEdgeUnknownPort(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown source",
			doc:  `{"id":"r","children":[{"id":"A","children":[{"id":"p"}]},{"id":"e","pointers":{"src":"zz","dst":"p"}}]}`,
			want: "zz",
		},
		{
			name: "unknown target",
			doc:  `{"id":"r","children":[{"id":"A","children":[{"id":"p"}]},{"id":"e","pointers":{"src":"p","dst":"zz"}}]}`,
			want: "zz",
		},
		{
			name: "sibling is not a port",
			doc:  `{"id":"r","children":[{"id":"A"},{"id":"B"},{"id":"e","pointers":{"src":"A","dst":"B"}}]}`,
			want: "A",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildContainer(mustScene(t, tt.doc), true)
			if !errors.Is(err, errors.ErrCodeUnknownPort) {
				t.Fatalf("err = %v, want UNKNOWN_PORT", err)
			}
			frag := errors.GetFragment(err)
			if !strings.Contains(frag, `"pointers"`) || !strings.Contains(frag, tt.want) {
				t.Errorf("fragment should carry the edge JSON, got:\n%s", frag)
			}
		})
	}
}

func TestBuildContainerMissingID(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"container", `{"children":[{"id":"a"}]}`},
		{"child", `{"id":"r","children":[{"name":"anonymous"}]}`},
		{"grandchild", `{"id":"r","children":[{"id":"a","children":[{"name":"anonymous"}]}]}`},
		{"edge", `{"id":"r","children":[{"id":"a","children":[{"id":"p"}]},{"pointers":{"src":"p","dst":"p"}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildContainer(mustScene(t, tt.doc), true)
			if !errors.Is(err, errors.ErrCodeMissingID) {
				t.Fatalf("err = %v, want MISSING_ID", err)
			}
			if errors.GetFragment(err) == "" {
				t.Error("MISSING_ID should carry the node's JSON")
			}
		})
	}
}

func TestBuildContainerShallow(t *testing.T) {
	root := mustScene(t, `{"id":"r","children":[
		{"id":"A","children":[{"id":"a1"},{"id":"a2"},{"id":"a3"}]},
		{"id":"e","pointers":{"src":"a1","dst":"b1"}},
		{"id":"B","children":[{"id":"b1"}]}
	]}`)
	g, err := BuildContainer(root, true)
	if err != nil {
		t.Fatalf("BuildContainer: %v", err)
	}

	if g.ID != "r" || g.Width != engine.NodeWidth || g.Height != engine.NodeHeight {
		t.Errorf("container = %s %vx%v", g.ID, g.Width, g.Height)
	}
	if len(g.Ports) != 0 {
		t.Errorf("container should have no ports, got %v", g.Ports)
	}
	if g.LayoutOptions[engine.OptionAlgorithm] != engine.AlgorithmLayered {
		t.Errorf("layoutOptions = %v", g.LayoutOptions)
	}
	if ids := strings.Join(g.ChildIDs(), ","); ids != "A,B" {
		t.Errorf("children = %s, want A,B (edges excluded, order kept)", ids)
	}
	if len(g.Edges) != 1 || g.Edges[0].Source != "A" || g.Edges[0].Target != "B" {
		t.Errorf("edges = %+v", g.Edges)
	}

	a, _ := g.Child("A")
	if len(a.Ports) != 1 {
		t.Fatalf("A ports = %+v, want only a1", a.Ports)
	}
	p := a.Ports[0]
	if p.ID != "a1" || p.Side() != engine.SideSouth || p.Width != engine.PortWidth || p.Height != engine.PortHeight {
		t.Errorf("A port = %+v", p)
	}
	if len(a.Children) != 0 {
		t.Error("shallow descriptors must not carry children")
	}

	b, _ := g.Child("B")
	if len(b.Ports) != 1 || b.Ports[0].Side() != engine.SideNorth {
		t.Errorf("B ports = %+v", b.Ports)
	}
}

func TestBuildContainerDeep(t *testing.T) {
	root := mustScene(t, `{"id":"r","children":[
		{"id":"X","children":[
			{"id":"a","children":[{"id":"a1"}]},
			{"id":"b","children":[{"id":"b1"}]},
			{"id":"inner","pointers":{"src":"a1","dst":"b1"}}
		]},
		{"id":"Y","children":[{"id":"y1"}]},
		{"id":"e","pointers":{"src":"a","dst":"y1"}}
	]}`)
	g, err := BuildContainer(root, false)
	if err != nil {
		t.Fatalf("BuildContainer: %v", err)
	}

	x, ok := g.Child("X")
	if !ok {
		t.Fatal("missing X")
	}
	if len(x.Ports) != 0 {
		t.Errorf("deep descriptors carry no ports, got %v", x.Ports)
	}
	if ids := strings.Join(x.ChildIDs(), ","); ids != "a,b" {
		t.Errorf("X children = %s", ids)
	}
	if len(g.Edges) != 1 || g.Edges[0].Source != "X" || g.Edges[0].Target != "Y" {
		t.Errorf("root edges = %+v", g.Edges)
	}
	if len(x.Edges) != 1 || x.Edges[0].Source != "a" || x.Edges[0].Target != "b" {
		t.Errorf("X edges = %+v", x.Edges)
	}
	if x.LayoutOptions == nil {
		t.Error("deep children carry their own layout options")
	}
	y, _ := g.Child("Y")
	if y1, ok := y.Child("y1"); !ok || len(y1.Children) != 0 {
		t.Errorf("Y should describe y1 as an empty container, got %+v", y.Children)
	}
}
