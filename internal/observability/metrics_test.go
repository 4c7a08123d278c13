package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordSessionPersisted(t *testing.T) {
	before := testutil.ToFloat64(sessionsRecorded.WithLabelValues("true"))

	ts := time.Date(2026, time.October, 18, 6, 0, 0, 0, time.UTC)
	RecordSessionPersisted(true, ts)

	require.Equal(t, before+1, testutil.ToFloat64(sessionsRecorded.WithLabelValues("true")))
	require.Equal(t, float64(ts.Unix()), testutil.ToFloat64(sessionPersistGauge))
}

func TestObserveStoreOpCountsErrors(t *testing.T) {
	before := testutil.ToFloat64(storeErrors.WithLabelValues("memory", "put"))

	ObserveStoreOp("memory", "put", time.Now(), nil)
	require.Equal(t, before, testutil.ToFloat64(storeErrors.WithLabelValues("memory", "put")))

	ObserveStoreOp("memory", "put", time.Now(), errors.New("boom"))
	require.Equal(t, before+1, testutil.ToFloat64(storeErrors.WithLabelValues("memory", "put")))
}

func TestObserveHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("/health", "GET", "200"))
	ObserveHTTPRequest("/health", "GET", 200, 3*time.Millisecond)
	require.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("/health", "GET", "200")))
}
