package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	r := New()

	r.ObserveReview("heuristic", 10*time.Millisecond)
	r.ObserveReview("heuristic", 20*time.Millisecond)
	r.ObserveReview("backend", time.Second)
	r.ObserveAttempt("gpt-4", "ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.reviews.WithLabelValues("heuristic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.reviews.WithLabelValues("backend")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.attempts.WithLabelValues("gpt-4", "ok")))
}

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveReview("error", time.Second)
		r.ObserveAttempt("m", "failed")
	})
	assert.Nil(t, r.Registry())

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, w.Code)
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.ObserveReview("fallback", time.Millisecond)

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `cra_reviews_total{path="fallback"} 1`)
	assert.Contains(t, string(body), "cra_review_duration_seconds")
}
