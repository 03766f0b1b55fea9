// Copyright (c) 2026 Jeremy Hahn
// Copyright (c) 2026 Automate The Things, LLC
//
// This file is part of go-biometric-storage.
//
// go-biometric-storage is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package metrics provides Prometheus instrumentation for biometric
// storage operations: operation counters, latency histograms, error
// counters by taxonomy code, and authentication outcome counters.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all metrics.
	Namespace = "biostorage"

	// Label names
	LabelOperation = "operation"
	LabelStatus    = "status"
	LabelErrorCode = "error_code"
	LabelOutcome   = "outcome"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Operation names
	OpWrite           = "write"
	OpRead            = "read"
	OpDelete          = "delete"
	OpAuthenticate    = "authenticate"
	OpCanAuthenticate = "can_authenticate"
)

var (
	// OperationsTotal counts storage operations by type and status.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of storage operations by type and status",
		},
		[]string{LabelOperation, LabelStatus},
	)

	// OperationDuration tracks operation latency. The buckets span quick
	// no-auth reads through challenges waiting on a human.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of storage operations in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30, 60},
		},
		[]string{LabelOperation},
	)

	// ErrorsTotal counts errors by operation and taxonomy code.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by operation and error code",
		},
		[]string{LabelOperation, LabelErrorCode},
	)

	// AuthOutcomesTotal counts terminal authentication outcomes.
	AuthOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "auth_outcomes_total",
			Help:      "Total number of terminal authentication outcomes",
		},
		[]string{LabelOutcome},
	)

	// KeyInvalidationsTotal counts detected key invalidations, split by
	// the phase that detected them.
	KeyInvalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "key_invalidations_total",
			Help:      "Total number of detected key invalidations by operation",
		},
		[]string{LabelOperation},
	)
)

// RecordOperation increments the operation counter with the given status.
func RecordOperation(operation, status string) {
	OperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration observes the duration of an operation.
func RecordDuration(operation string, d time.Duration) {
	OperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordError increments the error counter for an operation and code.
func RecordError(operation, errorCode string) {
	ErrorsTotal.WithLabelValues(operation, errorCode).Inc()
}

// RecordAuthOutcome increments the authentication outcome counter.
func RecordAuthOutcome(outcome string) {
	AuthOutcomesTotal.WithLabelValues(outcome).Inc()
}

// RecordKeyInvalidation increments the invalidation counter.
func RecordKeyInvalidation(operation string) {
	KeyInvalidationsTotal.WithLabelValues(operation).Inc()
}

// Timer measures and records the duration of a single operation.
type Timer struct {
	operation string
	start     time.Time
}

// NewTimer starts a timer for operation.
func NewTimer(operation string) *Timer {
	return &Timer{operation: operation, start: time.Now()}
}

// ObserveDuration records the elapsed time and returns it.
func (t *Timer) ObserveDuration() time.Duration {
	d := time.Since(t.start)
	RecordDuration(t.operation, d)
	return d
}
