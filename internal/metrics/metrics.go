// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Endpoint labels
const (
	EndpointAdd    = "add"
	EndpointRename = "rename"
	EndpointTree   = "tree"
	EndpointPage   = "page"
)

// Outcome labels
const (
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeRedirected = "redirected"
	OutcomeDisabled   = "disabled"
)

var (
	// categoryRequests counts category endpoint calls.
	// Labels: endpoint (add, rename, tree, page), outcome (success, failure, redirected, disabled)
	categoryRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "canopy",
		Subsystem: "categories",
		Name:      "requests_total",
		Help:      "Total category endpoint requests by outcome",
	}, []string{"endpoint", "outcome"})

	// categoryLatency measures how long the category endpoints take.
	// Labels: endpoint
	categoryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "canopy",
		Subsystem: "categories",
		Name:      "request_duration_seconds",
		Help:      "Category endpoint latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"endpoint"})

	// treeNodes is the node count of the last serialized tree.
	treeNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "canopy",
		Subsystem: "tree",
		Name:      "nodes",
		Help:      "Number of category nodes in the last rendered tree",
	})
)

// ObserveRequest records one category request.
func ObserveRequest(endpoint, outcome string, started time.Time) {
	categoryRequests.WithLabelValues(endpoint, outcome).Inc()
	categoryLatency.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}

// SetTreeNodes records the size of the tree just rendered.
func SetTreeNodes(n int) {
	treeNodes.Set(float64(n))
}
