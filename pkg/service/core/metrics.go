package core

import "github.com/prometheus/client_golang/prometheus"

// QueryExecutions counts query runs against target databases, labeled
// by engine and outcome. Registered on the metrics registry in main.
var QueryExecutions = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "insightpilot",
	Name:      "query_executions_total",
	Help:      "Query executions by database engine and outcome.",
}, []string{"engine", "outcome"})
