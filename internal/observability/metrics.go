// Package observability registers the Prometheus collectors exported on /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carbon_tracker",
		Subsystem: "activities",
		Name:      "mutations_total",
		Help:      "Activity writes by operation and activity type.",
	}, []string{"operation", "type"})
	unknownFactor = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carbon_tracker",
		Subsystem: "activities",
		Name:      "unknown_factor_total",
		Help:      "Activities saved with a category that has no emission factor (footprint forced to 0).",
	}, []string{"type"})
	footprintHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "carbon_tracker",
		Subsystem: "activities",
		Name:      "footprint_kg",
		Help:      "Carbon footprint of saved activities in kg CO2.",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
	}, []string{"type"})
	recommendations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carbon_tracker",
		Subsystem: "advisor",
		Name:      "recommendations_total",
		Help:      "Recommendation responses by the tier that produced them.",
	}, []string{"source"})
)

func init() {
	prometheus.MustRegister(activityMutations, unknownFactor, footprintHistogram, recommendations)
}

// RecordActivityWrite counts a create/update/delete and observes the stored footprint.
// knownFactor is ignored for deletes.
func RecordActivityWrite(operation, activityType string, footprint float64, knownFactor bool) {
	activityMutations.WithLabelValues(operation, activityType).Inc()
	if operation == "delete" {
		return
	}
	footprintHistogram.WithLabelValues(activityType).Observe(footprint)
	if !knownFactor {
		unknownFactor.WithLabelValues(activityType).Inc()
	}
}

// RecordRecommendation counts a recommendation response by source (rules, external, fallback, onboarding).
func RecordRecommendation(source string) {
	recommendations.WithLabelValues(source).Inc()
}
