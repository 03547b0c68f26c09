package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the measurement pipeline counters. Registered once per
// process against the given registerer.
type Metrics struct {
	UploadsTotal    *prometheus.CounterVec
	ReportsTotal    *prometheus.CounterVec
	ELNPushesTotal  *prometheus.CounterVec
	ExtractDuration prometheus.Histogram
}

// NewMetrics creates and registers the pipeline metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bet_uploads_total",
			Help: "Workbook uploads by outcome.",
		}, []string{"status"}),
		ReportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bet_reports_generated_total",
			Help: "Report generations by outcome.",
		}, []string{"status"}),
		ELNPushesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bet_eln_pushes_total",
			Help: "Lab notebook pushes by outcome.",
		}, []string{"status"}),
		ExtractDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bet_extract_duration_seconds",
			Help:    "Time spent extracting a workbook.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// NopMetrics returns metrics bound to a throwaway registry, for tests and
// CLI runs that do not expose a scrape endpoint.
func NopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
