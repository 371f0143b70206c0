// observability.go: Lifecycle metrics and audit trail
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"errors"
	"time"

	"github.com/agilira/go-timecache"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	tracerName    = "github.com/agilira/go-adapters"
	metricsPrefix = "goadapters"
)

// lifecycleMetrics records hook durations and failure outcomes.
// A nil *lifecycleMetrics records nothing.
type lifecycleMetrics struct {
	hookDuration *prometheus.HistogramVec
	hookFailures *prometheus.CounterVec
}

func newLifecycleMetrics(registerer prometheus.Registerer) (*lifecycleMetrics, error) {
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsPrefix,
			Name:      "hook_duration_seconds",
			Help:      "Duration of adapter lifecycle hook invocations.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"adapter", "hook"},
	)
	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsPrefix,
			Name:      "hook_failures_total",
			Help:      "Adapter lifecycle hook failures by outcome (swallowed or escalated).",
		},
		[]string{"adapter", "hook", "outcome"},
	)

	var err error
	if duration, err = registerOrReuse(registerer, duration); err != nil {
		return nil, err
	}
	if failures, err = registerOrReuse(registerer, failures); err != nil {
		return nil, err
	}

	return &lifecycleMetrics{hookDuration: duration, hookFailures: failures}, nil
}

// registerOrReuse registers c, or returns the equivalent collector already
// registered (several managers may share one registry).
func registerOrReuse[C prometheus.Collector](registerer prometheus.Registerer, c C) (C, error) {
	if err := registerer.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (lm *lifecycleMetrics) observeHook(adapter, hook string, elapsed time.Duration) {
	if lm == nil {
		return
	}
	lm.hookDuration.WithLabelValues(adapter, hook).Observe(elapsed.Seconds())
}

func (lm *lifecycleMetrics) observeFailure(adapter, hook, outcome string) {
	if lm == nil {
		return
	}
	lm.hookFailures.WithLabelValues(adapter, hook, outcome).Inc()
}

// audit writes a lifecycle event to the argus audit trail, when configured.
func (m *AdapterManager[R]) audit(eventType string, context map[string]interface{}) {
	if m.auditor == nil {
		return
	}

	context["component"] = "adapter_manager"
	context["run_id"] = m.runID
	context["timestamp"] = timecache.CachedTime().Format(time.RFC3339)

	m.auditor.LogSecurityEvent(eventType, "Adapter lifecycle event", context)
}

func (m *AdapterManager[R]) closeAudit() {
	if m.auditor == nil {
		return
	}
	if err := m.auditor.Close(); err != nil {
		m.logger.Warn("Failed to close lifecycle audit logger", "error", err)
	}
}
