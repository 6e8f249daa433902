package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/nestlayout/pkg/engine"
	"github.com/matzehuels/nestlayout/pkg/engine/enginetest"
	"github.com/matzehuels/nestlayout/pkg/errors"
	"github.com/matzehuels/nestlayout/pkg/observability"
	"github.com/matzehuels/nestlayout/pkg/pipeline"
)

func newTestServer(eng engine.Engine, opts Options) http.Handler {
	logger := log.New(io.Discard)
	return New(pipeline.NewRunner(eng, nil, nil, logger), logger, opts).Handler()
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not JSON: %v\n%s", err, w.Body.String())
	}
	return resp
}

func TestLayout(t *testing.T) {
	h := newTestServer(&enginetest.Row{}, Options{})
	w := do(h, http.MethodPost, "/v1/layout", `{"id":"r","children":[{"id":"a"},{"id":"b"}]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get(HeaderShapes) != "3" || w.Header().Get(HeaderContainers) != "1" {
		t.Errorf("stats headers = %v", w.Header())
	}

	var out struct {
		ID       string `json:"id"`
		Children []struct {
			ID       string `json:"id"`
			Registry struct {
				Position *struct{ X, Y float64 } `json:"position"`
			} `json:"registry"`
		} `json:"children"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if out.ID != "r" || len(out.Children) != 2 {
		t.Fatalf("response = %s", w.Body.String())
	}
	for _, c := range out.Children {
		if c.Registry.Position == nil {
			t.Errorf("%s has no position", c.ID)
		}
	}
	if !strings.Contains(w.Body.String(), "\n  \"children\": [") {
		t.Error("response should be indented by two spaces")
	}
}

func TestLayoutErrors(t *testing.T) {
	tests := []struct {
		name   string
		eng    engine.Engine
		body   string
		status int
		code   errors.Code
	}{
		{"malformed json", &enginetest.Row{}, `{"children":`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown port", &enginetest.Row{}, `{"children":[{"id":"A"},{"pointers":{"src":"x","dst":"y"}}]}`, http.StatusBadRequest, errors.ErrCodeUnknownPort},
		{"engine failure", enginetest.Failing(stderrors.New("boom")), `{"children":[{"id":"a"}]}`, http.StatusInternalServerError, errors.ErrCodeEngine},
		{"layout mismatch", enginetest.Dropping("a"), `{"children":[{"id":"a"}]}`, http.StatusInternalServerError, errors.ErrCodeLayoutMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(newTestServer(tt.eng, Options{}), http.MethodPost, "/v1/layout", tt.body)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if resp := decodeError(t, w); resp.Code != tt.code {
				t.Errorf("code = %s, want %s", resp.Code, tt.code)
			}
		})
	}
}

func TestLayoutErrorFragment(t *testing.T) {
	h := newTestServer(&enginetest.Row{}, Options{})
	w := do(h, http.MethodPost, "/v1/layout", `{"children":[{"id":"A"},{"id":"bad-edge","pointers":{"src":"x","dst":"y"}}]}`)
	resp := decodeError(t, w)
	if !strings.Contains(resp.Fragment, "bad-edge") {
		t.Errorf("fragment = %q, want the offending edge", resp.Fragment)
	}
	if resp.Message == "" {
		t.Error("message should be set")
	}
}

func TestLayoutBodyTooLarge(t *testing.T) {
	h := newTestServer(&enginetest.Row{}, Options{MaxBodyBytes: 16})
	w := do(h, http.MethodPost, "/v1/layout", `{"children":[{"id":"a"},{"id":"b"},{"id":"c"}]}`)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}
}

func TestDescribe(t *testing.T) {
	h := newTestServer(&enginetest.Row{}, Options{})
	body := `{"id":"r","children":[{"id":"A","children":[{"id":"p"}]},{"id":"e","pointers":{"src":"p","dst":"p"}}]}`

	tests := []struct {
		query     string
		wantPorts int
		wantKids  int
	}{
		{"", 0, 1},
		{"?shallow=false", 0, 1},
		{"?shallow=true", 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := do(h, http.MethodPost, "/v1/describe"+tt.query, body)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			var g engine.Graph
			if err := json.Unmarshal(w.Body.Bytes(), &g); err != nil {
				t.Fatal(err)
			}
			a, ok := g.Child("A")
			if !ok {
				t.Fatal("missing A")
			}
			if len(a.Ports) != tt.wantPorts || len(a.Children) != tt.wantKids {
				t.Errorf("A = %+v", a)
			}
		})
	}
}

func TestDescribeBadQuery(t *testing.T) {
	w := do(newTestServer(&enginetest.Row{}, Options{}), http.MethodPost, "/v1/describe?shallow=maybe", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != errors.ErrCodeUsage {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestRequestID(t *testing.T) {
	h := newTestServer(&enginetest.Row{}, Options{})

	w := do(h, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK || w.Body.String() != "ok\n" {
		t.Errorf("healthz = %d %q", w.Code, w.Body.String())
	}
	if len(w.Header().Get(HeaderRequestID)) != 36 {
		t.Errorf("generated request id = %q", w.Header().Get(HeaderRequestID))
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "caller-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get(HeaderRequestID) != "caller-id" {
		t.Errorf("request id = %q, want caller-id", rec.Header().Get(HeaderRequestID))
	}
}

func TestRequestIDContext(t *testing.T) {
	var got string
	h := requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "abc" {
		t.Errorf("RequestID = %q", got)
	}
	if RequestID(context.Background()) != "" {
		t.Error("RequestID without middleware should be empty")
	}
}

func TestMetrics(t *testing.T) {
	observability.Reset()
	defer observability.Reset()

	reg := prometheus.NewRegistry()
	observability.NewPrometheus(reg).Register()
	h := newTestServer(&enginetest.Row{}, Options{Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})})

	do(h, http.MethodPost, "/v1/layout", `{"children":[{"id":"a"}]}`)
	w := do(h, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`nestlayout_http_requests_total{code="200",method="POST",route="/v1/layout"} 1`,
		`nestlayout_containers_total{result="ok"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestMetricsDisabled(t *testing.T) {
	w := do(newTestServer(&enginetest.Row{}, Options{}), http.MethodGet, "/metrics", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
