package config

import (
	"time"

	mainConfig "github.com/prebid/tcstring/config"
	"github.com/prebid/tcstring/metrics"
	prometheusmetrics "github.com/prebid/tcstring/metrics/prometheus"
	gometrics "github.com/rcrowley/go-metrics"
)

// NewMetricsEngine reads the configuration and returns the appropriate metrics engine
// for this instance.
func NewMetricsEngine(cfg *mainConfig.Configuration) *DetailedMetricsEngine {
	// Create a list of metrics engines to use.
	// Capacity of 2, as unlikely to have more than 2 metrics backends, and in the case
	// of 1 we won't use the list so it will be garbage collected.
	engineList := make(MultiMetricsEngine, 0, 2)
	returnEngine := DetailedMetricsEngine{}

	if cfg.Metrics.Influxdb.Host != "" {
		returnEngine.GoMetrics = metrics.NewMetrics(gometrics.NewPrefixedRegistry("tcstring."))
		engineList = append(engineList, returnEngine.GoMetrics)
	}
	if cfg.Metrics.Prometheus.Port != 0 {
		returnEngine.PrometheusMetrics = prometheusmetrics.NewMetrics(cfg.Metrics.Prometheus)
		engineList = append(engineList, returnEngine.PrometheusMetrics)
	}

	// Now return the proper metrics engine
	if len(engineList) > 1 {
		returnEngine.MetricsEngine = &engineList
	} else if len(engineList) == 1 {
		returnEngine.MetricsEngine = engineList[0]
	} else {
		returnEngine.MetricsEngine = &NilMetricsEngine{}
	}

	return &returnEngine
}

// DetailedMetricsEngine is a MultiMetricsEngine that preserves links to underlying metrics engines.
type DetailedMetricsEngine struct {
	metrics.MetricsEngine
	GoMetrics         *metrics.Metrics
	PrometheusMetrics *prometheusmetrics.Metrics
}

// MultiMetricsEngine logs metrics to multiple metrics databases The can be useful in transitioning
// an instance from one engine to another, you can run both in parallel to verify stats match up.
type MultiMetricsEngine []metrics.MetricsEngine

func (me *MultiMetricsEngine) RecordConnectionAccept(success bool) {
	for _, thisME := range *me {
		thisME.RecordConnectionAccept(success)
	}
}

func (me *MultiMetricsEngine) RecordConnectionClose(success bool) {
	for _, thisME := range *me {
		thisME.RecordConnectionClose(success)
	}
}

func (me *MultiMetricsEngine) RecordDecode(labels metrics.DecodeLabels) {
	for _, thisME := range *me {
		thisME.RecordDecode(labels)
	}
}

func (me *MultiMetricsEngine) RecordDecodeTime(labels metrics.DecodeLabels, length time.Duration) {
	for _, thisME := range *me {
		thisME.RecordDecodeTime(labels, length)
	}
}

// NilMetricsEngine implements the MetricsEngine interface where no metrics are actually captured. This is
// used if no metric backend is configured and also for tests.
type NilMetricsEngine struct{}

func (me *NilMetricsEngine) RecordConnectionAccept(success bool) {
}

func (me *NilMetricsEngine) RecordConnectionClose(success bool) {
}

func (me *NilMetricsEngine) RecordDecode(labels metrics.DecodeLabels) {
}

func (me *NilMetricsEngine) RecordDecodeTime(labels metrics.DecodeLabels, length time.Duration) {
}
