// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IntentsTotal counts dispatched skill requests by intent (or request
	// type) and outcome ("ok", "error", "unhandled").
	IntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "owlskill_intents_total",
		Help: "Skill requests dispatched, by intent and outcome.",
	}, []string{"intent", "outcome"})

	DispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "owlskill_dispatch_duration_seconds",
		Help:    "Time spent handling one skill request.",
		Buckets: prometheus.DefBuckets,
	})

	// UpstreamRequestsTotal counts KitchenOwl API calls. code is the HTTP
	// status, "error" for transport failures, or "open" when the breaker
	// rejected the call.
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "owlskill_upstream_requests_total",
		Help: "KitchenOwl API requests, by operation and result code.",
	}, []string{"operation", "code"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "owlskill_upstream_request_duration_seconds",
		Help:    "KitchenOwl API request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// BreakerState is 0 closed, 1 half-open, 2 open.
	BreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "owlskill_upstream_breaker_state",
		Help: "State of the KitchenOwl circuit breaker (0 closed, 1 half-open, 2 open).",
	})
)
