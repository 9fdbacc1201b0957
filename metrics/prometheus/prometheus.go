package prometheusmetrics

import (
	"time"

	"github.com/prebid/tcstring/config"
	"github.com/prebid/tcstring/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics defines the Prometheus metrics backing the MetricsEngine implementation.
type Metrics struct {
	Registry *prometheus.Registry

	connectionsClosed prometheus.Counter
	connectionsError  *prometheus.CounterVec
	connectionsOpened prometheus.Counter
	decodes           *prometheus.CounterVec
	decodeTimer       *prometheus.HistogramVec
}

const (
	connectionErrorLabel = "connection_error"
	statusLabel          = "status"
	versionLabel         = "version"
)

const (
	connectionAcceptError = "accept"
	connectionCloseError  = "close"
)

// NewMetrics registers the decode server metrics on a fresh registry. Every known label
// combination is created up front so that dashboards show zeros instead of missing series.
func NewMetrics(cfg config.PrometheusMetrics) *Metrics {
	registry := prometheus.NewRegistry()
	f := factory{cfg: cfg, auto: promauto.With(registry)}

	m := &Metrics{
		Registry: registry,
		connectionsClosed: f.counter("connections_closed",
			"Count of successful connections closed to the decode server."),
		connectionsError: f.counterVec("connections_error",
			"Count of errors for connection open and close attempts to the decode server labeled by type.",
			connectionErrorLabel),
		connectionsOpened: f.counter("connections_opened",
			"Count of successful connections opened to the decode server."),
		decodes: f.counterVec("decodes",
			"Count of consent strings decoded labeled by TCF version and outcome.",
			versionLabel, statusLabel),
		decodeTimer: f.histogramVec("decode_time_seconds",
			"Seconds to decode a consent string labeled by TCF version.",
			decodeTimeBuckets,
			versionLabel),
	}

	preloadLabelValues(m)
	return m
}

// Decoding takes microseconds, far below the default buckets.
var decodeTimeBuckets = []float64{0.00001, 0.000025, 0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.005}

// factory names metrics with the configured namespace and subsystem and registers them.
type factory struct {
	cfg  config.PrometheusMetrics
	auto promauto.Factory
}

func (f factory) counter(name, help string) prometheus.Counter {
	return f.auto.NewCounter(prometheus.CounterOpts(f.opts(name, help)))
}

func (f factory) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return f.auto.NewCounterVec(prometheus.CounterOpts(f.opts(name, help)), labels)
}

func (f factory) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return f.auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: f.cfg.Namespace,
		Subsystem: f.cfg.Subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
}

func (f factory) opts(name, help string) prometheus.Opts {
	return prometheus.Opts{
		Namespace: f.cfg.Namespace,
		Subsystem: f.cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
}

func (m *Metrics) RecordConnectionAccept(success bool) {
	if success {
		m.connectionsOpened.Inc()
	} else {
		m.connectionsError.With(prometheus.Labels{
			connectionErrorLabel: connectionAcceptError,
		}).Inc()
	}
}

func (m *Metrics) RecordConnectionClose(success bool) {
	if success {
		m.connectionsClosed.Inc()
	} else {
		m.connectionsError.With(prometheus.Labels{
			connectionErrorLabel: connectionCloseError,
		}).Inc()
	}
}

func (m *Metrics) RecordDecode(labels metrics.DecodeLabels) {
	m.decodes.With(prometheus.Labels{
		versionLabel: string(labels.Version),
		statusLabel:  string(labels.Status),
	}).Inc()
}

func (m *Metrics) RecordDecodeTime(labels metrics.DecodeLabels, length time.Duration) {
	m.decodeTimer.With(prometheus.Labels{
		versionLabel: string(labels.Version),
	}).Observe(length.Seconds())
}
