package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	containers        *prometheus.CounterVec
	containerDuration prometheus.Histogram
	containerChildren prometheus.Histogram
	cacheEvents       *prometheus.CounterVec
	cacheBytes        prometheus.Counter
	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		containers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nestlayout_containers_total",
				Help: "Containers laid out by the engine, by result.",
			},
			[]string{"result"},
		),
		containerDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nestlayout_container_duration_seconds",
				Help:    "Duration of one engine call.",
				Buckets: prometheus.DefBuckets,
			},
		),
		containerChildren: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nestlayout_container_children",
				Help:    "Number of children per laid out container.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nestlayout_cache_events_total",
				Help: "Cache lookups and writes, by key type and event.",
			},
			[]string{"key_type", "event"},
		),
		cacheBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "nestlayout_cache_written_bytes_total",
				Help: "Bytes written to the cache.",
			},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nestlayout_http_requests_total",
				Help: "HTTP requests, by method, route and status code.",
			},
			[]string{"method", "route", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nestlayout_http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	reg.MustRegister(
		p.containers,
		p.containerDuration,
		p.containerChildren,
		p.cacheEvents,
		p.cacheBytes,
		p.requests,
		p.requestDuration,
	)
	return p
}

func (p *Prometheus) OnContainerStart(_ context.Context, _ string, children, _ int) {
	p.containerChildren.Observe(float64(children))
}

func (p *Prometheus) OnContainerComplete(_ context.Context, _ string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.containers.WithLabelValues(result).Inc()
	p.containerDuration.Observe(d.Seconds())
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheEvents.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	p.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Register installs p as the layout, cache and HTTP hooks.
func (p *Prometheus) Register() {
	SetLayoutHooks(p)
	SetCacheHooks(p)
	SetHTTPHooks(p)
}

var (
	_ LayoutHooks = (*Prometheus)(nil)
	_ CacheHooks  = (*Prometheus)(nil)
	_ HTTPHooks   = (*Prometheus)(nil)
)
