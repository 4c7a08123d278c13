package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "riserite"

var (
	sessionsRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sessions",
		Name:      "recorded_total",
		Help:      "Number of wake sessions written to the store, labeled by completion.",
	}, []string{"completed"})

	sessionPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "sessions",
		Name:      "last_session_recorded_timestamp_seconds",
		Help:      "Unix timestamp of the most recent wake session persisted.",
	})

	streakValues = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "streaks",
		Name:      "value_days",
		Help:      "Distribution of streak values returned to clients.",
		Buckets:   []float64{0, 1, 2, 3, 5, 7, 14, 21, 30},
	})

	storeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "operation_duration_seconds",
		Help:      "Latency of session store operations.",
		Buckets:   prometheus.ExponentialBuckets(0.002, 2, 10),
	}, []string{"backend", "op"})

	storeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "errors_total",
		Help:      "Session store operations that returned an error.",
	}, []string{"backend", "op"})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route template, method and status code.",
	}, []string{"route", "method", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route template.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
)

func init() {
	prometheus.MustRegister(sessionsRecorded, sessionPersistGauge, streakValues, storeDuration, storeErrors, httpRequests, httpDuration)
}

// RecordSessionPersisted counts a successful write and moves the watermark.
func RecordSessionPersisted(completed bool, ts time.Time) {
	sessionsRecorded.WithLabelValues(strconv.FormatBool(completed)).Inc()
	if ts.IsZero() {
		return
	}
	sessionPersistGauge.Set(float64(ts.Unix()))
}

// ObserveStreak records a computed streak.
func ObserveStreak(days int) {
	streakValues.Observe(float64(days))
}

// ObserveStoreOp records latency and failure of a store call.
func ObserveStoreOp(backend, op string, started time.Time, err error) {
	storeDuration.WithLabelValues(backend, op).Observe(time.Since(started).Seconds())
	if err != nil {
		storeErrors.WithLabelValues(backend, op).Inc()
	}
}

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(route, method string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
