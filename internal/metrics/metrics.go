package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HealthChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journeyweb_healthz_checks_total",
		Help: "Backend health checks issued on navigation, by result.",
	}, []string{"result"})

	HealthCheckDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "journeyweb_healthz_check_duration_seconds",
		Help:    "Round-trip time of completed backend health checks.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	LandingRedirectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "journeyweb_landing_redirects_total",
		Help: "Logged-in visitors redirected away from the landing page.",
	})

	GuardsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "journeyweb_guards_active",
		Help: "Visitor guards currently mounted.",
	})
)
