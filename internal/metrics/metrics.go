package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects review metrics on its own registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry
	reviews  *prometheus.CounterVec
	attempts *prometheus.CounterVec
	duration prometheus.Histogram
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		reviews: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cra",
			Name:      "reviews_total",
			Help:      "Completed reviews by the path that produced the report.",
		}, []string{"path"}),
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cra",
			Name:      "backend_attempts_total",
			Help:      "Model backend calls by model and result.",
		}, []string{"model", "result"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cra",
			Name:      "review_duration_seconds",
			Help:      "Wall time of a single review.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}
}

// Registry exposes the underlying registry for scraping or tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveReview records a finished review and how it was produced.
func (r *Recorder) ObserveReview(path string, d time.Duration) {
	if r == nil {
		return
	}
	r.reviews.WithLabelValues(path).Inc()
	r.duration.Observe(d.Seconds())
}

// ObserveAttempt records one backend call.
func (r *Recorder) ObserveAttempt(model, result string) {
	if r == nil {
		return
	}
	r.attempts.WithLabelValues(model, result).Inc()
}
