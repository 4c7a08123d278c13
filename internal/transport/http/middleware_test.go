package httptransport

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusTeapot)
}

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	handler := RequestID(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	router := mux.NewRouter()
	router.Use(RequestID, Logger(log.New(&buf, "", 0)))
	router.HandleFunc("/user/{userId}/streak", okHandler).Methods(http.MethodGet)

	rec := httptest.NewRecorder()
	Metrics(router).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/u1/streak", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Contains(t, buf.String(), "GET /user/u1/streak 418")
	require.Contains(t, buf.String(), "request_id=")
}

func TestRateLimiterRejectsBurstOverflow(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	clock := time.Date(2026, time.October, 18, 6, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }
	handler := limiter.Middleware(http.HandlerFunc(okHandler))

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusTeapot, do("10.0.0.1"))
	require.Equal(t, http.StatusTeapot, do("10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))
	require.Equal(t, http.StatusTeapot, do("10.0.0.2"))

	clock = clock.Add(10 * time.Minute)
	require.Equal(t, http.StatusTeapot, do("10.0.0.1"))
	require.Len(t, limiter.visitors, 1)
}

func TestRateLimiterDisabled(t *testing.T) {
	limiter := NewRateLimiter(0, 0)
	handler := limiter.Middleware(http.HandlerFunc(okHandler))
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}
}

func TestClientIPForwardedForOnlyWhenTrusted(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.4:4321"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	require.Equal(t, "198.51.100.4", clientIP(req, false))
	require.Equal(t, "203.0.113.7", clientIP(req, true))
}

func TestRateLimiterIgnoresSpoofedForwardedFor(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	handler := limiter.Middleware(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for _, spoofed := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "198.51.100.4:4321"
		req.Header.Set("X-Forwarded-For", spoofed)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	require.Equal(t, []int{http.StatusTeapot, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestMetricsCountsUnmatchedRequests(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/user/{userId}/streak", okHandler).Methods(http.MethodGet)
	handler := Metrics(router)

	streak := httpRequests(t, "/user/{userId}/streak", http.MethodGet, "418")
	missing := httpRequests(t, "unmatched", http.MethodGet, "404")
	wrongMethod := httpRequests(t, "unmatched", http.MethodPost, "405")

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/user/u1/streak", nil),
		httptest.NewRequest(http.MethodGet, "/nope", nil),
		httptest.NewRequest(http.MethodPost, "/user/u1/streak", nil),
	} {
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Equal(t, streak+1, httpRequests(t, "/user/{userId}/streak", http.MethodGet, "418"))
	require.Equal(t, missing+1, httpRequests(t, "unmatched", http.MethodGet, "404"))
	require.Equal(t, wrongMethod+1, httpRequests(t, "unmatched", http.MethodPost, "405"))
}

func httpRequests(t *testing.T, route, method, status string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "riserite_http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["route"] == route && labels["method"] == method && labels["status"] == status {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}
