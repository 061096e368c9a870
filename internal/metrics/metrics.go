// Package metrics exposes Prometheus collectors for the archive.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mutarjim"

var (
	// Translations counts translation requests by style and result.
	Translations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "translations_total",
		Help:      "Translation requests by style and result.",
	}, []string{"style", "result"})

	// ProviderLatency observes provider call duration in seconds.
	ProviderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_latency_seconds",
		Help:      "Duration of translation provider calls.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
	}, []string{"provider"})

	// ExemplarsSelected observes how many saved pairs fit the budget.
	ExemplarsSelected = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "exemplars_selected",
		Help:      "Exemplar pairs accepted into personal-style prompts.",
		Buckets:   prometheus.LinearBuckets(0, 5, 10),
	})

	// RecordsSaved counts archive writes by operation (create, update, import).
	RecordsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_saved_total",
		Help:      "Archive records written.",
	}, []string{"op"})

	// DuplicatesRemoved counts rows deleted by deduplication.
	DuplicatesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "duplicates_removed_total",
		Help:      "Archive rows removed by deduplication.",
	})
)
