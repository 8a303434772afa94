package orcrow

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters row iterators update.
type Metrics struct {
	BatchesRead  prometheus.Counter
	RowsDecoded  prometheus.Counter
	Seeks        prometheus.Counter
	DecodeErrors *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	batchesRead := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orcrow_batches_read_total",
		Help: "Total batches filled by row readers",
	})

	rowsDecoded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orcrow_rows_decoded_total",
		Help: "Total rows decoded into Go values",
	})

	seeks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orcrow_seeks_total",
		Help: "Total row reader seeks, including backward refills",
	})

	decodeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orcrow_decode_errors_total",
		Help: "Total failed fills and decodes per shape",
	}, []string{"shape"})

	reg.MustRegister(batchesRead, rowsDecoded, seeks, decodeErrors)

	return &Metrics{
		BatchesRead:  batchesRead,
		RowsDecoded:  rowsDecoded,
		Seeks:        seeks,
		DecodeErrors: decodeErrors,
	}
}
