// Package metrics holds the Prometheus collectors of the wall service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "namewall"

var (
	// Reads counts list reads by pipeline outcome (success, degraded, failed, no_contract).
	Reads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reads_total",
		Help:      "Name list reads by outcome.",
	}, []string{"outcome"})

	// Writes counts submissions by result.
	Writes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "writes_total",
		Help:      "Name submissions by result.",
	}, []string{"result"})

	// GuardFailures counts guard rejections by reason.
	GuardFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_failures_total",
		Help:      "Wallet/network guard rejections by reason.",
	}, []string{"reason"})

	// RPCDuration observes JSON-RPC call latency by method.
	RPCDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rpc_duration_seconds",
		Help:      "JSON-RPC call latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})

	// Submitting is 1 while a submission is outstanding.
	Submitting = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "submission_in_progress",
		Help:      "1 while a name submission is outstanding.",
	})

	registerOnce sync.Once
)

// MustRegisterMetrics registers every collector with the default registry. Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(Reads, Writes, GuardFailures, RPCDuration, Submitting)
	})
}

// RPCStatus maps an error to the status label of RPCDuration.
func RPCStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
