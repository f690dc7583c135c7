package health

import (
	"database/sql"
	"time"

	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	maxGoroutines = 10000
	dbPingTimeout = time.Second
)

// NewProbes returns the handler behind /healthz and /readyz. Liveness fails
// when goroutines pile up; readiness also requires the session store DB to
// answer a ping. Check results are exported as Prometheus gauges on reg.
func NewProbes(db *sql.DB, reg prometheus.Registerer) healthcheck.Handler {
	var h healthcheck.Handler
	if reg != nil {
		h = healthcheck.NewMetricsHandler(reg, "journeyweb")
	} else {
		h = healthcheck.NewHandler()
	}
	h.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(maxGoroutines))
	if db != nil {
		h.AddReadinessCheck("session-db", healthcheck.DatabasePingCheck(db, dbPingTimeout))
	}
	return h
}
