// Package observability exposes Prometheus counters for the reconciliation
// pipeline. Only the processed total is returned to callers; the per-action
// split lives here.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricPrefix = "ledgersync_"

var (
	RowsInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "rows_inserted_total",
		Help: "Ledger records inserted during reconciliation",
	})

	RowsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "rows_updated_total",
		Help: "Ledger records updated during reconciliation",
	})

	RowsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "rows_skipped_total",
		Help: "Unchanged ledger records visited but not rewritten",
	})

	UploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "uploads_total",
		Help: "Upload runs started",
	})

	UploadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "upload_failures_total",
		Help: "Upload runs aborted by a fatal error",
	})
)
