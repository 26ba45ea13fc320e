package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	derivationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "derivada_derivations_total",
		Help: "Total derivation requests by outcome",
	}, []string{"outcome"})

	ruleFirings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "derivada_rule_firings_total",
		Help: "Total rewrite rule applications by rule",
	}, []string{"rule"})

	deriveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "derivada_derive_duration_seconds",
		Help:    "Duration of a single derivation including parsing",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
	})

	resultNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "derivada_result_nodes",
		Help:    "Node count of produced derivatives",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
)

const (
	outcomeOK          = "ok"
	outcomeNoRule      = "no_rule"
	outcomeSyntaxError = "syntax_error"
	outcomeRejected    = "rejected"
)
