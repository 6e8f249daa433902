package pipeline

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nestlayout/pkg/cache"
	"github.com/matzehuels/nestlayout/pkg/engine/enginetest"
	"github.com/matzehuels/nestlayout/pkg/errors"
	"github.com/matzehuels/nestlayout/pkg/scene"
)

var fixedStart = time.UnixMilli(1700000000000)

func newTestRunner(row *enginetest.Row) *Runner {
	return NewRunner(row, nil, nil, log.New(io.Discard))
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.IDStart.IsZero() {
		t.Error("IDStart should default to now")
	}

	opts = Options{IDStart: fixedStart}
	_ = opts.ValidateAndSetDefaults()
	if !opts.IDStart.Equal(fixedStart) {
		t.Error("explicit IDStart must be kept")
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(&enginetest.Row{}, nil, nil, nil)
	if !cache.IsNull(r.Cache) {
		t.Error("nil cache should become a NullCache")
	}
	if r.Keyer == nil || r.Logger == nil {
		t.Error("keyer and logger should be defaulted")
	}
	if r.TTL != cache.TTLLayout {
		t.Errorf("TTL = %v", r.TTL)
	}
}

func TestProcess(t *testing.T) {
	var row enginetest.Row
	r := newTestRunner(&row)
	defer r.Close()

	var out bytes.Buffer
	result, err := r.Process(context.Background(),
		strings.NewReader(`{"children":[{"id":"n1"},{"id":"n2"}]}`), &out, Options{IDStart: fixedStart})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	want := `{
  "children": [
    {
      "id": "n1",
      "registry": {
        "position": {
          "x": 0,
          "y": 0
        }
      }
    },
    {
      "id": "n2",
      "registry": {
        "position": {
          "x": 190,
          "y": 40
        }
      }
    }
  ],
  "id": "@id:nodeID_1700000000000"
}
`
	if out.String() != want {
		t.Errorf("output:\n%s\nwant:\n%s", out.String(), want)
	}
	if result.AssignedIDs != 1 {
		t.Errorf("AssignedIDs = %d, want 1", result.AssignedIDs)
	}
	if result.Stats.Shapes != 3 || result.Stats.Containers != 1 {
		t.Errorf("Stats = %+v", result.Stats)
	}
}

func TestProcessFailureWritesNothing(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"not json", `{"children":`, errors.ErrCodeInvalidInput},
		{"not an object", `[1,2]`, errors.ErrCodeInvalidInput},
		{"unknown port", `{"children":[{"id":"A"},{"pointers":{"src":"x","dst":"y"}}]}`, errors.ErrCodeUnknownPort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := newTestRunner(&enginetest.Row{}).Process(context.Background(),
				strings.NewReader(tt.in), &out, Options{})
			if !errors.Is(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
			if out.Len() != 0 {
				t.Errorf("nothing should be written on failure, got %q", out.String())
			}
		})
	}
}

func TestExecuteIdempotentIDs(t *testing.T) {
	root, err := scene.Unmarshal([]byte(`{"id":"r","children":[{"id":"a"},{"id":"e","pointers":{"src":"x","dst":"y"}},{"id":"b","children":[{"id":"x"},{"id":"y"}]}]}`))
	if err != nil {
		t.Fatal(err)
	}
	// Edge endpoints x and y are owned by b, so the edge resolves.
	result, err := newTestRunner(&enginetest.Row{}).Execute(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.AssignedIDs != 0 {
		t.Errorf("fully identified tree should keep its ids, generated %d", result.AssignedIDs)
	}
}

func TestExecuteUsesCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var row enginetest.Row
	r := NewRunner(&row, c, nil, log.New(io.Discard))
	defer r.Close()

	doc := `{"id":"r","children":[{"id":"a"},{"id":"b","children":[{"id":"c"}]}]}`
	for i := 0; i < 2; i++ {
		root, err := scene.Unmarshal([]byte(doc))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := r.Execute(context.Background(), root, Options{}); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if _, ok := root.Children[1].Children[0].Position(); !ok {
			t.Errorf("run %d: c has no position", i)
		}
	}
	if n := len(row.Calls()); n != 2 {
		t.Errorf("engine calls = %d, want 2 (second run served from cache)", n)
	}
}

func TestDescribe(t *testing.T) {
	doc := `{"id":"r","children":[{"id":"A","children":[{"id":"p"},{"id":"q"}]},{"id":"e","pointers":{"src":"p","dst":"p"}}]}`
	r := newTestRunner(&enginetest.Row{})

	for _, shallow := range []bool{true, false} {
		root, err := scene.Unmarshal([]byte(doc))
		if err != nil {
			t.Fatal(err)
		}
		g, err := r.Describe(context.Background(), root, Options{Shallow: shallow})
		if err != nil {
			t.Fatalf("Describe(shallow=%v): %v", shallow, err)
		}
		a, ok := g.Child("A")
		if !ok {
			t.Fatal("missing A")
		}
		if shallow && (len(a.Ports) != 1 || len(a.Children) != 0) {
			t.Errorf("shallow A = %+v", a)
		}
		if !shallow && (len(a.Ports) != 0 || len(a.Children) != 2) {
			t.Errorf("deep A = %+v", a)
		}
		if len(g.Edges) != 1 || g.Edges[0].Source != "A" {
			t.Errorf("edges = %+v", g.Edges)
		}
	}
}

func TestDescribeAssignsIDs(t *testing.T) {
	root, err := scene.Unmarshal([]byte(`{"children":[{}]}`))
	if err != nil {
		t.Fatal(err)
	}
	g, err := newTestRunner(&enginetest.Row{}).Describe(context.Background(), root, Options{IDStart: fixedStart})
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if g.ID != "@id:nodeID_1700000000000" || g.Children[0].ID != "@id:nodeID_1700000000001" {
		t.Errorf("ids = %s, %s", g.ID, g.Children[0].ID)
	}
}
