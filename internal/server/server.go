// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	POST /v1/layout              lay out the scene tree in the body
//	POST /v1/describe?shallow=   return the engine description of the body
//	GET  /healthz                liveness
//	GET  /metrics                Prometheus metrics, when configured
package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/nestlayout/pkg/errors"
	"github.com/matzehuels/nestlayout/pkg/pipeline"
	"github.com/matzehuels/nestlayout/pkg/scene"
)

// Response headers carrying scene statistics.
const (
	HeaderRequestID  = "X-Request-ID"
	HeaderShapes     = "X-Nestlayout-Shapes"
	HeaderEdges      = "X-Nestlayout-Edges"
	HeaderContainers = "X-Nestlayout-Containers"
)

// Options configures a Server.
type Options struct {
	// MaxBodyBytes limits request bodies. Zero means unlimited.
	MaxBodyBytes int64

	// Metrics serves GET /metrics when set.
	Metrics http.Handler
}

// Server handles layout requests. Every request gets its own id assigner;
// the runner and its engine are shared.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options
}

// New creates a server around runner.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger, opts: opts}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/describe", s.handleDescribe)
	})
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	root, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), root, pipeline.Options{Logger: loggerFrom(r.Context(), s.logger)})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := scene.Encode(&buf, root); err != nil {
		s.writeError(w, r, err)
		return
	}
	h := w.Header()
	h.Set(HeaderShapes, strconv.Itoa(result.Stats.Shapes))
	h.Set(HeaderEdges, strconv.Itoa(result.Stats.Edges))
	h.Set(HeaderContainers, strconv.Itoa(result.Stats.Containers))
	writeJSON(w, http.StatusOK, buf.Bytes())
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	shallow := false
	if v := r.URL.Query().Get("shallow"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeUsage, "shallow: invalid boolean %q", v))
			return
		}
		shallow = b
	}

	root, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.runner.Describe(r.Context(), root, pipeline.Options{Shallow: shallow})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, append(data, '\n'))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*scene.Node, error) {
	body := r.Body
	if s.opts.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	}
	return scene.Decode(body)
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Code     errors.Code `json:"code"`
	Message  string      `json:"message"`
	Fragment string      `json:"fragment,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	resp := errorResponse{
		Code:     code,
		Message:  errors.UserMessage(err),
		Fragment: errors.GetFragment(err),
	}

	logger := loggerFrom(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "code", code, "error", err)
	} else {
		logger.Warn("request rejected", "code", code, "error", errors.UserMessage(err))
	}

	data, _ := json.MarshalIndent(resp, "", "  ")
	writeJSON(w, status, append(data, '\n'))
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.IsClientError(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
