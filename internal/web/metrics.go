package web

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the conversion service.
type Metrics struct {
	Conversions    *prometheus.CounterVec
	RecordsEmitted prometheus.Counter
	ConversionTime prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	conversions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "csvxml_conversions_total",
		Help: "Total conversion requests by outcome",
	}, []string{"outcome"})

	recordsEmitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "csvxml_records_emitted_total",
		Help: "Total records emitted across all conversions",
	})

	conversionTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "csvxml_conversion_duration_seconds",
		Help:    "Time spent converting one document",
		Buckets: prometheus.DefBuckets,
	})

	reg.MustRegister(conversions, recordsEmitted, conversionTime)

	return &Metrics{
		Conversions:    conversions,
		RecordsEmitted: recordsEmitted,
		ConversionTime: conversionTime,
	}
}
