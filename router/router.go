package router

import (
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prebid/tcstring/config"
	"github.com/prebid/tcstring/endpoints"
	metricsConf "github.com/prebid/tcstring/metrics/config"
	"github.com/prebid/tcstring/router/aspects"
	"github.com/rs/cors"
	influxdb "github.com/vrischmann/go-metrics-influxdb"
)

// NoCache http Handler wrapper, disabling caching via headers.
type NoCache struct {
	Handler http.Handler
}

func (m NoCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Add("Pragma", "no-cache")
	w.Header().Add("Expires", "0")
	m.Handler.ServeHTTP(w, r)
}

type Router struct {
	*httprouter.Router
	MetricsEngine *metricsConf.DetailedMetricsEngine
}

// New builds the public router. It also starts the InfluxDB reporter when one is configured.
func New(cfg *config.Configuration, version, revision string) *Router {
	r := &Router{
		Router:        httprouter.New(),
		MetricsEngine: metricsConf.NewMetricsEngine(cfg),
	}

	if r.MetricsEngine.GoMetrics != nil {
		go influxdb.InfluxDB(
			r.MetricsEngine.GoMetrics.MetricsRegistry,                          // metrics registry
			time.Second*time.Duration(cfg.Metrics.Influxdb.MetricSendInterval), // interval
			cfg.Metrics.Influxdb.Host,                                          // the InfluxDB url
			cfg.Metrics.Influxdb.Database,                                      // your InfluxDB database
			cfg.Metrics.Influxdb.Measurement,                                   // your measurement
			cfg.Metrics.Influxdb.Username,                                      // your InfluxDB user
			cfg.Metrics.Influxdb.Password,                                      // your InfluxDB password
			true,                                                               // align timestamps
		)
	}

	decode := endpoints.NewDecodeEndpoint(cfg.MaxConsentLength, r.MetricsEngine)
	getDecode, postDecode := httprouter.Handle(decode.Get), httprouter.Handle(decode.Post)
	if cfg.RequestTimeoutHeaders.Enabled() {
		getDecode = aspects.QueuedRequestTimeout(getDecode, cfg.RequestTimeoutHeaders)
		postDecode = aspects.QueuedRequestTimeout(postDecode, cfg.RequestTimeoutHeaders)
	}
	r.GET("/decode", getDecode)
	r.POST("/decode", postDecode)
	r.GET("/status", endpoints.NewStatusEndpoint(cfg.StatusResponse))
	r.Handler("GET", "/version", endpoints.NewVersionEndpoint(version, revision))

	return r
}

// Admin returns the handler for the admin port: build information and the pprof profiles.
func Admin(version, revision string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/version", endpoints.NewVersionEndpoint(version, revision))
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

func SupportCORS(handler http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowCredentials: true,
		AllowOriginFunc: func(string) bool {
			return true
		},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept"}})
	return c.Handler(handler)
}
