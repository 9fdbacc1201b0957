package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/golang/glog"
	"github.com/prebid/tcstring/config"
	"github.com/prebid/tcstring/metrics"
	metricsconfig "github.com/prebid/tcstring/metrics/config"
)

const (
	requestTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

// managedServer is one of the listeners run by Listen.
type managedServer struct {
	name   string
	server *http.Server
	// metrics records connections when set. Only the main listener is monitored.
	metrics metrics.MetricsEngine
}

// Listen serves the decode API, the admin API and, when configured, the Prometheus scrape endpoint.
// It blocks until SIGTERM or SIGINT has been received and every server has shut down.
func Listen(cfg *config.Configuration, handler http.Handler, adminHandler http.Handler, metricsEngine *metricsconfig.DetailedMetricsEngine) {
	servers, err := newManagedServers(cfg, handler, adminHandler, metricsEngine)
	if err != nil {
		glog.Errorf("Failed to set up the servers: %v", err)
		return
	}

	stopSignals := make(chan os.Signal, 1)
	signal.Notify(stopSignals, syscall.SIGTERM, syscall.SIGINT)

	done := make(chan struct{}, len(servers))
	stoppers := make([]chan<- os.Signal, 0, len(servers))
	for _, s := range servers {
		ln, err := newListener(s.server.Addr, s.metrics)
		if err != nil {
			glog.Errorf("%s server: %v", s.name, err)
			return
		}

		stopper := make(chan os.Signal)
		stoppers = append(stoppers, stopper)
		go shutdownAfterSignals(s.server, stopper, done)
		go runServer(s.server, s.name, ln)
	}

	wait(stopSignals, done, stoppers...)
}

func newManagedServers(cfg *config.Configuration, handler, adminHandler http.Handler, metricsEngine *metricsconfig.DetailedMetricsEngine) ([]managedServer, error) {
	mainServer := managedServer{name: "Main", server: newMainServer(cfg, handler)}
	if metricsEngine != nil {
		mainServer.metrics = metricsEngine
	}
	servers := []managedServer{
		mainServer,
		{name: "Admin", server: newAdminServer(cfg, adminHandler)},
	}

	if cfg.Metrics.Prometheus.Port != 0 {
		prometheusServer, err := newPrometheusServer(cfg, metricsEngine)
		if err != nil {
			return nil, err
		}
		servers = append(servers, managedServer{name: "Prometheus", server: prometheusServer})
	}
	return servers, nil
}

func newAdminServer(cfg *config.Configuration, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.AdminPort)),
		Handler: handler,
	}
}

func newMainServer(cfg *config.Configuration, handler http.Handler) *http.Server {
	if cfg.EnableGzip {
		handler = gziphandler.GzipHandler(handler)
	}

	return &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      handler,
		ReadTimeout:  requestTimeout,
		WriteTimeout: requestTimeout,
	}
}

func runServer(server *http.Server, name string, listener net.Listener) error {
	if server == nil {
		return errors.New("server is nil")
	}
	if listener == nil {
		return errors.New("listener is nil")
	}

	glog.Infof("%s server starting on: %s", name, server.Addr)
	err := server.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		glog.Infof("%s server stopped", name)
	} else {
		glog.Errorf("%s server quit with error: %v", name, err)
	}
	return err
}

// newListener opens a TCP listener on address. Connections are recorded when metricsEngine is set.
func newListener(address string, metricsEngine metrics.MetricsEngine) (net.Listener, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	if metricsEngine == nil {
		return ln, nil
	}
	return &monitorableListener{ln, metricsEngine}, nil
}

// wait forwards the first signal from inbound to every outbound channel, then blocks until
// each server has reported on done.
func wait(inbound <-chan os.Signal, done <-chan struct{}, outbound ...chan<- os.Signal) {
	sig := <-inbound

	for _, out := range outbound {
		go func(out chan<- os.Signal) { out <- sig }(out)
	}
	for range outbound {
		<-done
	}
}

func shutdownAfterSignals(server *http.Server, stopper <-chan os.Signal, done chan<- struct{}) {
	sig := <-stopper

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	glog.Infof("Stopping %s because of signal: %s", server.Addr, sig.String())
	if err := server.Shutdown(ctx); err != nil {
		glog.Errorf("Failed to shutdown %s: %v", server.Addr, err)
	}
	done <- struct{}{}
}
