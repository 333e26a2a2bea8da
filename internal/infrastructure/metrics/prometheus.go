package metrics

import (
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	FragmentsFramed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "log4j_fragments_framed_total",
			Help: "Event fragments framed from log files",
		},
		[]string{"source"},
	)

	FragmentsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "log4j_fragments_failed_total",
			Help: "Event fragments that could not be decoded",
		},
		[]string{"source"},
	)

	RecordsAccepted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "log4j_records_accepted_total",
			Help: "Decoded records accepted by the filter",
		},
	)

	RecordsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "log4j_records_rejected_total",
			Help: "Decoded records rejected by the filter",
		},
	)

	PublishedMessages = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "log4j_records_published_total",
			Help: "Records published to the message producer",
		},
	)

	PersistedRecords = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "log4j_records_persisted_total",
			Help: "Records stored by the record repository",
		},
	)

	ScanLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "log4j_scan_duration_seconds",
			Help:    "Duration of complete file scans",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(
		FragmentsFramed,
		FragmentsFailed,
		RecordsAccepted,
		RecordsRejected,
		PublishedMessages,
		PersistedRecords,
		ScanLatency,
	)
}

// SourceLabel reduces a source path to the value used for the "source"
// label. Only the base name is kept, with a trailing rotation suffix
// (".1", ".2024-05-01", ".gz") removed, so rotated copies of one log share
// a series.
func SourceLabel(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".gz")
	if i := strings.LastIndexByte(name, '.'); i > 0 && isRotationSuffix(name[i+1:]) {
		name = name[:i]
	}
	return name
}

func isRotationSuffix(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '-' && r != '_' {
			return false
		}
	}
	return true
}
