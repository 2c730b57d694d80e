package observability

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/bit2swaz/cache-janitor/internal/janitor"
)

func TestObservePass(t *testing.T) {
	okBefore := testutil.ToFloat64(Passes.WithLabelValues("ok"))
	expiredBefore := testutil.ToFloat64(EntryDispositions.WithLabelValues("remove_expired"))
	removedBefore := testutil.ToFloat64(EntryOutcomes.WithLabelValues("Removed"))
	inconsistentBefore := testutil.ToFloat64(InconsistentStates)

	started := time.Unix(1_700_000_000, 0)
	ObservePass(janitor.Report{
		Started:      started,
		Duration:     time.Second,
		Scanned:      3,
		Retained:     1,
		Removed:      2,
		Inconsistent: 1,
		ByDisposition: map[janitor.Disposition]int{
			janitor.Retain:                1,
			janitor.RemoveExpired:         1,
			janitor.RemoveUnfinishedStale: 1,
		},
	}, nil)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(Passes.WithLabelValues("ok")))
	assert.Equal(t, expiredBefore+1, testutil.ToFloat64(EntryDispositions.WithLabelValues("remove_expired")))
	assert.Equal(t, removedBefore+2, testutil.ToFloat64(EntryOutcomes.WithLabelValues("Removed")))
	assert.Equal(t, inconsistentBefore+1, testutil.ToFloat64(InconsistentStates))
	assert.Equal(t, float64(started.Unix()), testutil.ToFloat64(LastPass))
}

func TestObservePassUnavailable(t *testing.T) {
	before := testutil.ToFloat64(Passes.WithLabelValues("unavailable"))
	outcomesBefore := testutil.ToFloat64(EntryOutcomes.WithLabelValues("Retained"))

	ObservePass(janitor.Report{}, fmt.Errorf("%w: gone", janitor.ErrDirectoryUnavailable))

	assert.Equal(t, before+1, testutil.ToFloat64(Passes.WithLabelValues("unavailable")))
	assert.Equal(t, outcomesBefore, testutil.ToFloat64(EntryOutcomes.WithLabelValues("Retained")))
}

func TestPassResult(t *testing.T) {
	assert.Equal(t, "ok", PassResult(nil))
	assert.Equal(t, "cancelled", PassResult(context.Canceled))
	assert.Equal(t, "failed", PassResult(fmt.Errorf("boom")))
}

func TestMetricsMiddleware(t *testing.T) {
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPDuration, "janitor_http_duration_seconds"))
}
