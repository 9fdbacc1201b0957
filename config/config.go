package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/prebid/tcstring/errortypes"
	"github.com/spf13/viper"
)

// Configuration specifies the static application config.
type Configuration struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	AdminPort  int    `mapstructure:"admin_port"`
	EnableGzip bool   `mapstructure:"enable_gzip"`
	// MaxConsentLength caps the consent strings accepted by the decode endpoint, in characters.
	MaxConsentLength int     `mapstructure:"max_consent_length"`
	StatusResponse   string  `mapstructure:"status_response"`
	Metrics          Metrics `mapstructure:"metrics"`
	// RequestTimeoutHeaders names the headers a fronting proxy uses to report queueing time.
	// Decodes are refused once a request has waited longer than its timeout.
	RequestTimeoutHeaders RequestTimeoutHeaders `mapstructure:"request_timeout_headers"`
}

type RequestTimeoutHeaders struct {
	RequestTimeInQueue    string `mapstructure:"request_time_in_queue"`
	RequestTimeoutInQueue string `mapstructure:"request_timeout_in_queue"`
}

// Enabled reports whether both headers are configured.
func (cfg RequestTimeoutHeaders) Enabled() bool {
	return cfg.RequestTimeInQueue != "" && cfg.RequestTimeoutInQueue != ""
}

type Metrics struct {
	Influxdb   InfluxMetrics     `mapstructure:"influxdb"`
	Prometheus PrometheusMetrics `mapstructure:"prometheus"`
}

type InfluxMetrics struct {
	Host        string `mapstructure:"host"`
	Database    string `mapstructure:"database"`
	Measurement string `mapstructure:"measurement"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	// MetricSendInterval is in seconds.
	MetricSendInterval int `mapstructure:"metric_send_interval"`
}

func (cfg *InfluxMetrics) validate(errs []error) []error {
	if cfg.Host == "" {
		return errs
	}
	if cfg.Database == "" {
		errs = append(errs, errors.New("metrics.influxdb.database must be set when metrics.influxdb.host is"))
	}
	if cfg.MetricSendInterval <= 0 {
		errs = append(errs, fmt.Errorf("metrics.influxdb.metric_send_interval must be positive. Got %d", cfg.MetricSendInterval))
	}
	return errs
}

type PrometheusMetrics struct {
	Port             int    `mapstructure:"port"`
	Namespace        string `mapstructure:"namespace"`
	Subsystem        string `mapstructure:"subsystem"`
	TimeoutMillisRaw int    `mapstructure:"timeout_ms"`
}

func (cfg *PrometheusMetrics) validate(errs []error) []error {
	errs = validatePort(errs, "metrics.prometheus.port", cfg.Port, true)
	if cfg.Port > 0 && cfg.TimeoutMillisRaw <= 0 {
		errs = append(errs, fmt.Errorf("metrics.prometheus.timeout_ms must be positive. Got %d", cfg.TimeoutMillisRaw))
	}
	return errs
}

// Timeout bounds how long the Prometheus listener may spend gathering metrics for a scrape.
func (cfg *PrometheusMetrics) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutMillisRaw) * time.Millisecond
}

func (cfg *Configuration) validate() []error {
	var errs []error
	errs = validatePort(errs, "port", cfg.Port, false)
	errs = validatePort(errs, "admin_port", cfg.AdminPort, false)
	if cfg.Port == cfg.AdminPort {
		errs = append(errs, fmt.Errorf("port and admin_port must be different. Both are %d", cfg.Port))
	}
	if cfg.MaxConsentLength <= 0 {
		errs = append(errs, fmt.Errorf("max_consent_length must be positive. Got %d", cfg.MaxConsentLength))
	}
	errs = cfg.Metrics.Influxdb.validate(errs)
	errs = cfg.Metrics.Prometheus.validate(errs)
	return errs
}

func validatePort(errs []error, key string, port int, allowZero bool) []error {
	if port == 0 && allowZero {
		return errs
	}
	if port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("%s must be in the range [1, 65535]. Got %d", key, port))
	}
	return errs
}

// New uses viper to get our server configurations.
func New(v *viper.Viper) (*Configuration, error) {
	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "viper failed to unmarshal app config")
	}

	if errs := c.validate(); len(errs) > 0 {
		return &c, errortypes.NewAggregateErrors("validation errors", errs)
	}
	return &c, nil
}

// SetupViper registers the defaults and binds environment variables prefixed with TCS_.
// If filename is not empty, the file of that name (any extension viper supports) is read from
// the working directory or /etc/config.
func SetupViper(v *viper.Viper, filename string) {
	if filename != "" {
		v.SetConfigName(filename)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/config")
	}

	v.SetDefault("host", "")
	v.SetDefault("port", 8000)
	v.SetDefault("admin_port", 6060)
	v.SetDefault("enable_gzip", false)
	v.SetDefault("max_consent_length", 16384)
	v.SetDefault("status_response", "")
	v.SetDefault("metrics.influxdb.host", "")
	v.SetDefault("metrics.influxdb.database", "")
	v.SetDefault("metrics.influxdb.measurement", "tcstring")
	v.SetDefault("metrics.influxdb.username", "")
	v.SetDefault("metrics.influxdb.password", "")
	v.SetDefault("metrics.influxdb.metric_send_interval", 20)
	v.SetDefault("metrics.prometheus.port", 0)
	v.SetDefault("metrics.prometheus.namespace", "")
	v.SetDefault("metrics.prometheus.subsystem", "")
	v.SetDefault("metrics.prometheus.timeout_ms", 10000)
	v.SetDefault("request_timeout_headers.request_time_in_queue", "")
	v.SetDefault("request_timeout_headers.request_timeout_in_queue", "")

	v.SetEnvPrefix("TCS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filename == "" {
		return
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			glog.Infof("No %s config file found. Using defaults and environment variables.", filename)
		} else {
			glog.Warningf("Failed to read config file %s: %v", filename, err)
		}
	}
}
