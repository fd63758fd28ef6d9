package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics
var (
	NodeRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rag_node_runs_total",
			Help: "Total number of agent node executions",
		},
		[]string{"stage", "outcome"},
	)
	NodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "rag_node_duration_seconds",
			Help: "Duration of agent node executions",
		},
		[]string{"stage"},
	)
	GatewayFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rag_gateway_failures_total",
			Help: "Total number of language model gateway failures",
		},
		[]string{"stage", "kind"},
	)
	RetrievalCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rag_retrieval_cache_total",
			Help: "Retrieval cache lookups by result",
		},
		[]string{"result"},
	)
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rag_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "route", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "rag_http_request_duration_seconds",
			Help: "Duration of HTTP API requests",
		},
		[]string{"method", "route"},
	)
	DocumentsIndexed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rag_documents_indexed",
			Help: "Number of document chunks in the vector store",
		},
	)
)

func init() {
	prometheus.MustRegister(NodeRunsTotal)
	prometheus.MustRegister(NodeDuration)
	prometheus.MustRegister(GatewayFailuresTotal)
	prometheus.MustRegister(RetrievalCacheTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(DocumentsIndexed)
}

// ObserveNode records one node execution.
func ObserveNode(stage, outcome string, start time.Time) {
	NodeRunsTotal.WithLabelValues(stage, outcome).Inc()
	NodeDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
