package server

import (
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prebid/tcstring/config"
	metricsconfig "github.com/prebid/tcstring/metrics/config"
)

// maxConcurrentScrapes bounds how many scrapes may gather metrics at the same time.
const maxConcurrentScrapes = 5

func newPrometheusServer(cfg *config.Configuration, metrics *metricsconfig.DetailedMetricsEngine) (*http.Server, error) {
	if metrics == nil || metrics.PrometheusMetrics == nil {
		return nil, errors.New("metrics.prometheus.port is set but no Prometheus metrics engine was built")
	}

	return &http.Server{
		Addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Metrics.Prometheus.Port)),
		Handler: promhttp.HandlerFor(metrics.PrometheusMetrics.Registry, promhttp.HandlerOpts{
			ErrorLog:            loggerForPrometheus{},
			MaxRequestsInFlight: maxConcurrentScrapes,
			Timeout:             cfg.Metrics.Prometheus.Timeout(),
		}),
	}, nil
}

// loggerForPrometheus sends promhttp errors to glog.
type loggerForPrometheus struct{}

func (loggerForPrometheus) Println(v ...interface{}) {
	glog.Warningln(v...)
}
