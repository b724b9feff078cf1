package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// LifecycleMetrics records counters for the order lifecycle operations.
type LifecycleMetrics struct {
	assignments   *prometheus.CounterVec
	unassignments *prometheus.CounterVec
	completions   *prometheus.CounterVec
	bulkBatchSize *prometheus.HistogramVec
}

// NewLifecycleMetrics registers the lifecycle metrics on the provided registerer.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_assignments_total",
		Help: "Agent assignment attempts by outcome.",
	}, []string{"outcome"})
	unassignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_unassignments_total",
		Help: "Agent unassignment attempts by outcome.",
	}, []string{"outcome"})
	completions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_completions_total",
		Help: "Delivery completion recordings by outcome.",
	}, []string{"outcome"})
	bulkBatchSize := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bulk_operation_batch_size",
		Help:    "Number of orders submitted to bulk lifecycle operations.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
	}, []string{"operation"})
	reg.MustRegister(assignments, unassignments, completions, bulkBatchSize)
	return &LifecycleMetrics{
		assignments:   assignments,
		unassignments: unassignments,
		completions:   completions,
		bulkBatchSize: bulkBatchSize,
	}
}

// IncAssignment counts one assignment attempt with the given outcome.
func (m *LifecycleMetrics) IncAssignment(outcome string) {
	if m == nil || m.assignments == nil {
		return
	}
	m.assignments.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncUnassignment counts one unassignment attempt with the given outcome.
func (m *LifecycleMetrics) IncUnassignment(outcome string) {
	if m == nil || m.unassignments == nil {
		return
	}
	m.unassignments.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncCompletion counts one delivery completion with the given outcome.
func (m *LifecycleMetrics) IncCompletion(outcome string) {
	if m == nil || m.completions == nil {
		return
	}
	m.completions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveBulkBatch records the input size of a bulk operation.
func (m *LifecycleMetrics) ObserveBulkBatch(operation string, size int) {
	if m == nil || m.bulkBatchSize == nil {
		return
	}
	m.bulkBatchSize.WithLabelValues(normalizeLabel(operation)).Observe(float64(size))
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, " ", "_")
}
