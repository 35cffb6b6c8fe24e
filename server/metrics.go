package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Chat metrics, exported on /metrics.
var (
	chatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apexdash_chat_requests_total",
		Help: "Chat requests by outcome (ok, bad_request, error).",
	}, []string{"outcome"})

	chatDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "apexdash_chat_duration_seconds",
		Help:    "End-to-end chat request duration.",
		Buckets: prometheus.DefBuckets,
	})
)
