package observability

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bit2swaz/cache-janitor/internal/janitor"
)

var (
	Passes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "janitor_passes_total",
		Help: "The total number of cleanup passes by result",
	}, []string{"result"})

	EntryDispositions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "janitor_entry_dispositions_total",
		Help: "Entries classified, by disposition",
	}, []string{"disposition"})

	EntryOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "janitor_entry_outcomes_total",
		Help: "Entries processed, by final outcome",
	}, []string{"outcome"})

	EntryErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "janitor_entry_errors_total",
		Help: "Entry-level failures (stat or remove) that did not abort a pass",
	})

	InconsistentStates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "janitor_inconsistent_states_total",
		Help: "Stale working files found next to their completed result",
	})

	PassDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "janitor_pass_duration_seconds",
		Help:    "Duration of cleanup passes.",
		Buckets: prometheus.DefBuckets,
	})

	LastPass = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "janitor_last_pass_timestamp_seconds",
		Help: "Unix time at which the last pass started",
	})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "janitor_http_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// PassResult labels a pass for janitor_passes_total.
func PassResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, janitor.ErrDirectoryUnavailable):
		return "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "failed"
	}
}

func ObservePass(r janitor.Report, err error) {
	Passes.WithLabelValues(PassResult(err)).Inc()
	if errors.Is(err, janitor.ErrDirectoryUnavailable) {
		return
	}

	for d, n := range r.ByDisposition {
		EntryDispositions.WithLabelValues(d.String()).Add(float64(n))
	}
	EntryOutcomes.WithLabelValues(string(janitor.Retained)).Add(float64(r.Retained))
	EntryOutcomes.WithLabelValues(string(janitor.Removed)).Add(float64(r.Removed))
	EntryErrors.Add(float64(r.Errors))
	InconsistentStates.Add(float64(r.Inconsistent))
	PassDuration.Observe(r.Duration.Seconds())
	LastPass.Set(float64(r.Started.Unix()))
}
