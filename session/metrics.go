// SPDX-License-Identifier: MIT

package session

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "fphi"

// Stage labels.
const (
	stageCluster  = "cluster"
	stageEVD      = "evd"
	stageEstimate = "estimate"
)

// metrics are registered on the session's own registry.
type metrics struct {
	runs          *prometheus.CounterVec
	failures      *prometheus.CounterVec
	skipped       prometheus.Counter
	stageDuration *prometheus.HistogramVec
	lastH2r       *prometheus.GaugeVec
	lastIter      *prometheus.GaugeVec
	subjects      *prometheus.GaugeVec
}

// newMetrics registers the session collectors on reg; a registry that
// already holds them is rejected.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stage_runs_total",
			Help:      "Stage executions by stage.",
		}, []string{"stage"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stage_failures_total",
			Help:      "Stage executions that returned an error, by stage.",
		}, []string{"stage"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "kinship_records_skipped_total",
			Help:      "Malformed kinship records skipped while clustering.",
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		lastH2r: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_h2r",
			Help:      "Most recent heritability estimate by trait.",
		}, []string{"trait"}),
		lastIter: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_iterations",
			Help:      "Likelihood evaluations of the most recent estimate by trait.",
		}, []string{"trait"}),
		subjects: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_subjects",
			Help:      "Subjects in the most recent decomposition by trait.",
		}, []string{"trait"}),
	}
	for _, c := range []prometheus.Collector{
		m.runs, m.failures, m.skipped, m.stageDuration, m.lastH2r, m.lastIter, m.subjects,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("session: register metrics: %w", err)
		}
	}

	return m, nil
}

// observe times fn under stage and counts its outcome.
func (m *metrics) observe(stage string, fn func() error) error {
	timer := prometheus.NewTimer(m.stageDuration.WithLabelValues(stage))
	defer timer.ObserveDuration()
	m.runs.WithLabelValues(stage).Inc()
	err := fn()
	if err != nil {
		m.failures.WithLabelValues(stage).Inc()
	}

	return err
}
