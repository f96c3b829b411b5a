package metrics

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"StockAdvisor/internal/model"
)

// Metrics holds the Prometheus instruments. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ScoresTotal   *prometheus.CounterVec // labels: source, recommendation
	FetchErrors   *prometheus.CounterVec // labels: op
	CacheLookups  *prometheus.CounterVec // labels: result=hit|miss|stale
	ScoreDuration prometheus.Histogram
}

// NewMetrics creates the instruments on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ScoresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockadvisor_scores_total",
			Help: "Scores produced, by scoring path and recommendation",
		}, []string{"source", "recommendation"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockadvisor_fetch_errors_total",
			Help: "Market data fetches that failed after retries",
		}, []string{"op"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockadvisor_cache_lookups_total",
			Help: "Market data cache lookups by result",
		}, []string{"result"}),
		ScoreDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockadvisor_score_duration_seconds",
			Help:    "Time to collect and score one symbol",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		m.ScoresTotal,
		m.FetchErrors,
		m.CacheLookups,
		m.ScoreDuration,
	)
	return m
}

// ObserveScore counts a produced result and how long it took.
func (m *Metrics) ObserveScore(res model.ScoreResult, took time.Duration) {
	if m == nil {
		return
	}
	m.ScoresTotal.WithLabelValues(string(res.Source), string(res.Recommendation)).Inc()
	m.ScoreDuration.Observe(took.Seconds())
}

func (m *Metrics) ObserveFetchError(op string) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Server exposes /metrics over HTTP.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics server on addr.
func NewServer(addr string, m *Metrics) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[INFO] metrics server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[ERROR] metrics server: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	if err := s.srv.Shutdown(ctx); err != nil {
		log.Printf("[WARN] metrics server shutdown: %v", err)
	}
}
