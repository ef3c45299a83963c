package main

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the ingest counters
type Metrics struct {
	RecordsRead     prometheus.Counter
	RecordsMerged   prometheus.Counter
	RecordsSent     prometheus.Counter
	RecordsFailed   prometheus.Counter
	RecordsArchived prometheus.Counter
	FilesProcessed  *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecordsRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "marc_ingest_records_read_total",
			Help: "Total number of MARC records read from batch files",
		}),
		RecordsMerged: factory.NewCounter(prometheus.CounterOpts{
			Name: "marc_ingest_records_merged_total",
			Help: "Total number of MARC records folded into a preceding record with the same id",
		}),
		RecordsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "marc_ingest_records_sent_total",
			Help: "Total number of records delivered to the outbound queue",
		}),
		RecordsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "marc_ingest_records_failed_total",
			Help: "Total number of records that could not be delivered or encoded",
		}),
		RecordsArchived: factory.NewCounter(prometheus.CounterOpts{
			Name: "marc_ingest_records_archived_total",
			Help: "Total number of records written to the record archive",
		}),
		FilesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "marc_ingest_files_total",
			Help: "Total number of batch files handled, by outcome",
		}, []string{"status"}),
	}
}

// serveMetrics exposes the default registry; it only returns on failure
func serveMetrics(address string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Printf("INFO: serving metrics on %s/metrics", address)
	if err := http.ListenAndServe(address, mux); err != nil {
		log.Printf("ERROR: metrics endpoint: %s", err.Error())
	}
}

//
// end of file
//
