package graphviz

import (
	"context"
	"math"
	"testing"

	"github.com/matzehuels/nestlayout/pkg/engine"
)

// within reports whether got is within tol points of want. Graphviz prints
// plain coordinates with limited precision.
func within(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

func TestLayoutPortEdge(t *testing.T) {
	in := container()
	out, err := New().Layout(context.Background(), in)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if out == in {
		t.Fatal("Layout() must return a copy")
	}
	if in.Children[0].X != 0 || in.Children[0].Y != 0 || in.Children[1].Y != 0 {
		t.Error("Layout() modified its input")
	}

	a, ok := out.Child("A")
	if !ok {
		t.Fatal("missing A")
	}
	b, ok := out.Child("B")
	if !ok {
		t.Fatal("missing B")
	}
	if a.Width != engine.NodeWidth || a.Height != engine.NodeHeight {
		t.Errorf("A size = %v x %v", a.Width, a.Height)
	}
	if b.Y <= a.Y {
		t.Fatalf("target B (y=%v) should be below source A (y=%v)", b.Y, a.Y)
	}
	if gap := b.Y - (a.Y + a.Height); !within(gap, engine.Spacing, 0.5) {
		t.Errorf("layer gap = %v, want %v", gap, engine.Spacing)
	}
	if !within(a.X, b.X, 0.5) {
		t.Errorf("A.x = %v, B.x = %v, want them stacked", a.X, b.X)
	}
	if !within(a.Y, 0, 0.5) {
		t.Errorf("A.y = %v, want the top of the container", a.Y)
	}
	if out.Height < a.Height+engine.Spacing+b.Height-0.5 {
		t.Errorf("container height = %v, too small for both layers", out.Height)
	}
}

func TestLayoutSameRank(t *testing.T) {
	g := container()
	g.Edges = nil

	out, err := New().Layout(context.Background(), g)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	a, b := out.Children[0], out.Children[1]
	if !within(a.Y, b.Y, 0.5) {
		t.Errorf("unconnected nodes should share a rank: %v vs %v", a.Y, b.Y)
	}
	if d := math.Abs(b.X - a.X); !within(d, engine.NodeWidth+engine.Spacing, 0.5) {
		t.Errorf("horizontal distance = %v, want %v", d, engine.NodeWidth+engine.Spacing)
	}
}

func TestLayoutNestedChildren(t *testing.T) {
	g := &engine.Graph{
		ID:            "root",
		LayoutOptions: engine.DefaultLayoutOptions(),
		Children: []*engine.Graph{
			{
				ID: "G", Width: engine.NodeWidth, Height: engine.NodeHeight,
				LayoutOptions: engine.DefaultLayoutOptions(),
				Children: []*engine.Graph{
					{ID: "g1", Width: engine.NodeWidth, Height: engine.NodeHeight},
					{ID: "g2", Width: engine.NodeWidth, Height: engine.NodeHeight},
				},
			},
			{ID: "H", Width: engine.NodeWidth, Height: engine.NodeHeight},
		},
	}

	out, err := New().Layout(context.Background(), g)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	group, _ := out.Child("G")
	if want := 2*engine.NodeWidth + engine.Spacing; group.Width < want-0.5 {
		t.Errorf("G width = %v, want at least %v", group.Width, want)
	}
	g1, _ := group.Child("g1")
	g2, _ := group.Child("g2")
	if d := math.Abs(g2.X - g1.X); !within(d, engine.NodeWidth+engine.Spacing, 0.5) {
		t.Errorf("nested children distance = %v", d)
	}
	h, _ := out.Child("H")
	if h.X < group.X+group.Width-0.5 && h.X+h.Width > group.X+0.5 {
		t.Errorf("H (x=%v) overlaps grown G (x=%v, width=%v)", h.X, group.X, group.Width)
	}
}

func TestLayoutCoordinatesAreRounded(t *testing.T) {
	out, err := New().Layout(context.Background(), container())
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	for _, c := range out.Children {
		for _, v := range []float64{c.X, c.Y} {
			if v != math.Round(v*100)/100 || math.Signbit(v) && v == 0 {
				t.Errorf("%s coordinate %v is not rounded", c.ID, v)
			}
		}
	}
}

func TestLayoutCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Layout(ctx, container()); err != context.Canceled {
		t.Errorf("Layout() error = %v, want context.Canceled", err)
	}
}

func TestLayoutEmpty(t *testing.T) {
	g := &engine.Graph{ID: "root", Width: engine.NodeWidth, Height: engine.NodeHeight}
	out, err := New().Layout(context.Background(), g)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if out.Width != engine.NodeWidth || out.Height != engine.NodeHeight {
		t.Errorf("empty graph size changed: %v x %v", out.Width, out.Height)
	}
}

func TestRoundPoints(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-0.004799999999988813, 0},
		{0.00039999999999906777, 0},
		{140.0044, 140},
		{189.996, 190},
		{12.346, 12.35},
	}
	for _, tt := range tests {
		got := roundPoints(tt.in)
		if got != tt.want || math.Signbit(got) {
			t.Errorf("roundPoints(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
