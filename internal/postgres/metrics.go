package postgres

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store-level counters, exported on the application's /metrics endpoint.

var (
	connectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatapi",
		Subsystem: "store",
		Name:      "connects_total",
		Help:      "Connection attempts against PostgreSQL, by outcome.",
	}, []string{"status"})

	readyProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatapi",
		Subsystem: "store",
		Name:      "readiness_probes_total",
		Help:      "Liveness probes issued by AwaitReady, by outcome.",
	}, []string{"status"})

	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatapi",
		Subsystem: "store",
		Name:      "queries_total",
		Help:      "Store operations, by operation and outcome.",
	}, []string{"op", "status"})
)

// observe records the outcome of one store operation. Confirmed absence is
// its own outcome so lookups of unknown chats do not show up as failures.
func observe(op string, err error) {
	status := "ok"
	switch {
	case errors.Is(err, ErrChatNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	queriesTotal.WithLabelValues(op, status).Inc()
}
