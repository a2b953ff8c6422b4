// Package metrics collects and exposes Prometheus metrics for the
// authentication flow.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics interface used by the service layer.
type Recorder interface {
	RecordLogin(provider string, outcome string)
	RecordCallbackDuration(provider string, duration time.Duration)
}

// Collector implements Recorder on top of Prometheus.
type Collector struct {
	logins           *prometheus.CounterVec
	callbackDuration *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics on the
// given registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authgw_logins_total",
			Help: "Authentication callback outcomes by provider.",
		}, []string{"provider", "outcome"}),
		callbackDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "authgw_callback_duration_seconds",
			Help:    "Duration of one authentication callback pass.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
	}

	reg.MustRegister(
		c.logins,
		c.callbackDuration,
	)

	return c
}

// RecordLogin records one callback outcome.
func (c *Collector) RecordLogin(provider string, outcome string) {
	c.logins.WithLabelValues(provider, outcome).Inc()
}

// RecordCallbackDuration records the duration of one callback pass.
func (c *Collector) RecordCallbackDuration(provider string, duration time.Duration) {
	c.callbackDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
