package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jittakal/xesgen/pkg/event"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Conversion metrics
	RowsRead            prometheus.Counter
	EventsAssembled     prometheus.Counter
	AttributesInferred  *prometheus.CounterVec
	UnresolvedMappings  prometheus.Counter
	BuildDuration       prometheus.Histogram
	ConversionsFinished *prometheus.CounterVec

	// Storage metrics
	FilesWritten         *prometheus.CounterVec
	FileSize             *prometheus.HistogramVec
	StorageWriteDuration *prometheus.HistogramVec
	StorageErrors        *prometheus.CounterVec

	// Publisher metrics
	EventsPublished *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		// Conversion metrics
		RowsRead: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "xesgen_rows_read_total",
				Help: "Total number of data rows read from input",
			},
		),
		EventsAssembled: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "xesgen_events_assembled_total",
				Help: "Total number of events assembled from rows",
			},
		),
		AttributesInferred: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xesgen_attributes_inferred_total",
				Help: "Total number of attribute values by inferred kind",
			},
			[]string{"kind"},
		),
		UnresolvedMappings: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "xesgen_unresolved_mappings_total",
				Help: "Total number of mapping entries whose column was not in the header",
			},
		),
		BuildDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "xesgen_build_duration_seconds",
				Help:    "Duration of log build operations",
				Buckets: prometheus.DefBuckets,
			},
		),
		ConversionsFinished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xesgen_conversions_total",
				Help: "Total number of finished conversions",
			},
			[]string{"status"},
		),

		// Storage metrics
		FilesWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xesgen_files_written_total",
				Help: "Total number of files written to storage",
			},
			[]string{"backend", "format", "status"},
		),
		FileSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xesgen_file_size_bytes",
				Help:    "Size of files written to storage",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KB to 256MB
			},
			[]string{"format"},
		),
		StorageWriteDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xesgen_storage_write_duration_seconds",
				Help:    "Duration of complete storage write operations including encoding",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend"},
		),
		StorageErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xesgen_storage_errors_total",
				Help: "Total number of storage errors",
			},
			[]string{"backend", "operation"},
		),

		// Publisher metrics
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xesgen_events_published_total",
				Help: "Total number of events published to Kafka",
			},
			[]string{"topic", "status"},
		),

		// HTTP metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xesgen_http_requests_total",
				Help: "Total number of HTTP requests handled",
			},
			[]string{"route", "status"},
		),
	}
}

// AddRowsRead adds n to the rows read counter.
func (m *Metrics) AddRowsRead(n int) {
	m.RowsRead.Add(float64(n))
}

// AddEventsAssembled adds n to the events assembled counter.
func (m *Metrics) AddEventsAssembled(n int) {
	m.EventsAssembled.Add(float64(n))
}

// AddAttributesInferred adds n to the counter of the given kind.
func (m *Metrics) AddAttributesInferred(kind event.Kind, n int) {
	if n == 0 {
		return
	}
	m.AttributesInferred.WithLabelValues(kind.String()).Add(float64(n))
}

// AddUnresolvedMappings adds n to the unresolved mappings counter.
func (m *Metrics) AddUnresolvedMappings(n int) {
	m.UnresolvedMappings.Add(float64(n))
}

// ObserveBuildDuration observes log build duration.
func (m *Metrics) ObserveBuildDuration(duration float64) {
	m.BuildDuration.Observe(duration)
}

// IncConversions increments the finished conversions counter.
func (m *Metrics) IncConversions(status string) {
	m.ConversionsFinished.WithLabelValues(status).Inc()
}

// IncFilesWritten increments files written counter.
func (m *Metrics) IncFilesWritten(backend string, format string, status string) {
	m.FilesWritten.WithLabelValues(backend, format, status).Inc()
}

// ObserveFileSize observes file size.
func (m *Metrics) ObserveFileSize(format string, size float64) {
	m.FileSize.WithLabelValues(format).Observe(size)
}

// ObserveStorageWriteDuration observes storage write duration.
func (m *Metrics) ObserveStorageWriteDuration(backend string, duration float64) {
	m.StorageWriteDuration.WithLabelValues(backend).Observe(duration)
}

// IncStorageErrors increments storage errors counter.
func (m *Metrics) IncStorageErrors(backend string, operation string) {
	m.StorageErrors.WithLabelValues(backend, operation).Inc()
}

// AddEventsPublished adds n to the published events counter.
func (m *Metrics) AddEventsPublished(topic string, status string, n int) {
	m.EventsPublished.WithLabelValues(topic, status).Add(float64(n))
}

// IncHTTPRequests increments the HTTP requests counter.
func (m *Metrics) IncHTTPRequests(route string, status int) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
