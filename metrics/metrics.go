// Package metrics collects and exposes Prometheus counters for the auth core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector counts the security-relevant auth events. A reuse detection in
// particular is the signal that a refresh token may have been stolen.
type Collector struct {
	loginSuccess  prometheus.Counter
	loginFailure  prometheus.Counter
	rotations     prometheus.Counter
	reuseDetected prometheus.Counter
	tokensSwept   prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewCollector creates a Collector and registers its metrics on the registry.
func NewCollector(reg *prometheus.Registry) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_login_success_total",
			Help: "Total number of successful logins.",
		}),
		loginFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_login_failure_total",
			Help: "Total number of failed login attempts.",
		}),
		rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_refresh_rotations_total",
			Help: "Total number of successful refresh-token rotations.",
		}),
		reuseDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_refresh_reuse_detected_total",
			Help: "Total number of refresh tokens presented after they were already consumed or revoked.",
		}),
		tokensSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_tokens_swept_total",
			Help: "Total number of expired or revoked ledger rows removed by the sweep.",
		}),
		gatherer: reg,
	}

	reg.MustRegister(c.loginSuccess, c.loginFailure, c.rotations, c.reuseDetected, c.tokensSwept)
	return c
}

func (c *Collector) RecordLoginSuccess()  { c.loginSuccess.Inc() }
func (c *Collector) RecordLoginFailure()  { c.loginFailure.Inc() }
func (c *Collector) RecordRotation()      { c.rotations.Inc() }
func (c *Collector) RecordReuseDetected() { c.reuseDetected.Inc() }

func (c *Collector) RecordTokensSwept(count int64) {
	c.tokensSwept.Add(float64(count))
}

// Handler returns the HTTP handler serving the /metrics scrape endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
