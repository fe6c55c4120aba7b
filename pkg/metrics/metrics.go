package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ingestion pipeline counters. Labelled by tenant so per-customer upload
// volume is visible on the shared dashboard.
var (
	RowsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hydrosense",
		Subsystem: "labdata",
		Name:      "rows_parsed_total",
		Help:      "Spreadsheet rows that survived parsing and row-level filtering.",
	}, []string{"tenant"})

	RowsInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hydrosense",
		Subsystem: "labdata",
		Name:      "rows_inserted_total",
		Help:      "Concentration rows inserted by the merge engine.",
	}, []string{"tenant"})

	RowsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hydrosense",
		Subsystem: "labdata",
		Name:      "rows_deleted_total",
		Help:      "Concentration rows removed by the orphan collector.",
	}, []string{"tenant"})

	IngestFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hydrosense",
		Subsystem: "labdata",
		Name:      "ingest_failures_total",
		Help:      "Ingestions that ended in a rolled-back transaction or parse failure.",
	}, []string{"tenant", "phase"})
)

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
