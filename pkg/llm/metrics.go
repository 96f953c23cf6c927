package llm

import "github.com/prometheus/client_golang/prometheus"

// GenerationAttempts counts generation attempts per provider, including
// the fallback walks. Registered on the metrics registry in main.
var GenerationAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "insightpilot",
	Name:      "llm_generation_attempts_total",
	Help:      "LLM generation attempts by provider and outcome.",
}, []string{"provider", "outcome"})
