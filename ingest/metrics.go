package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ingestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "annualreports_ingestions_total",
			Help: "Ingested files by kind, status and error code.",
		},
		[]string{"kind", "status", "error"},
	)

	thumbnailFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "annualreports_thumbnail_failures_total",
			Help: "Reports stored without a thumbnail.",
		},
	)

	cleanupDeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "annualreports_cleanup_deletes_total",
			Help: "Compensating asset deletes by result.",
		},
		[]string{"result"},
	)
)

func observe(kind string, o UploadOutcome) {
	ingestionsTotal.WithLabelValues(kind, string(o.Status), o.Error).Inc()
}
