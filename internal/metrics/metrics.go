// Package metrics exposes Prometheus collectors for the court.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RecordsCreated counts exchange records by action, responses included.
	RecordsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crushcourt",
		Name:      "records_created_total",
		Help:      "Exchange records created, by action.",
	}, []string{"action"})

	// Responses counts pending records closed by a response.
	Responses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crushcourt",
		Name:      "responses_total",
		Help:      "Responses recorded, by response action.",
	}, []string{"action"})

	// PointsGranted sums granted points by source.
	PointsGranted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crushcourt",
		Name:      "points_granted_total",
		Help:      "Points appended to the ledger, by source.",
	}, []string{"source"})

	// PointsDeducted sums the magnitude of negative grants by source.
	PointsDeducted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crushcourt",
		Name:      "points_deducted_total",
		Help:      "Points removed from the ledger by negative grants, by source.",
	}, []string{"source"})

	// GrantFailures counts best-effort grants that failed after the record committed.
	GrantFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crushcourt",
		Name:      "grant_failures_total",
		Help:      "Point grants that failed independently of their record write.",
	}, []string{"source"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "crushcourt",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// ObserveGrant adds a committed grant to the points counters. Counters only
// grow, so negative amounts go to PointsDeducted.
func ObserveGrant(source string, amount int) {
	switch {
	case amount > 0:
		PointsGranted.WithLabelValues(source).Add(float64(amount))
	case amount < 0:
		PointsDeducted.WithLabelValues(source).Add(float64(-amount))
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request latency keyed by the chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
