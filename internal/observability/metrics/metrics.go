package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "unipole_"

	// ResultSuccess labels a successful operation.
	ResultSuccess = "success"
	// ResultError labels a failed operation.
	ResultError = "error"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	importTotal   *prometheus.CounterVec
	importLatency *prometheus.HistogramVec
	importedUnits prometheus.Counter

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers the service metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method and status",
			},
			[]string{"method", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		)

		importTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "unit_imports_total",
				Help: "Total spreadsheet import attempts by result",
			},
			[]string{"result"},
		)
		importLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "unit_import_duration_seconds",
				Help:    "Spreadsheet import latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		importedUnits = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "units_imported_total",
				Help: "Total units stored through spreadsheet imports",
			},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "exports_total",
				Help: "Total export downloads by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_duration_seconds",
				Help:    "Export generation latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			importTotal,
			importLatency,
			importedUnits,
			exportTotal,
			exportLatency,
		)
	})
}

// ObserveHTTP records one handled request.
func ObserveHTTP(method, status string, elapsed time.Duration) {
	if httpRequests == nil {
		return
	}
	httpRequests.WithLabelValues(method, status).Inc()
	httpLatency.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveImport records one import attempt.
func ObserveImport(result string, count int, elapsed time.Duration) {
	if importTotal == nil {
		return
	}
	importTotal.WithLabelValues(result).Inc()
	importLatency.WithLabelValues(result).Observe(elapsed.Seconds())
	if count > 0 {
		importedUnits.Add(float64(count))
	}
}

// ObserveExport records one export download.
func ObserveExport(format, result string, elapsed time.Duration) {
	if exportTotal == nil {
		return
	}
	exportTotal.WithLabelValues(format, result).Inc()
	exportLatency.WithLabelValues(format).Observe(elapsed.Seconds())
}
