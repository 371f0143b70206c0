// manager.go: Adapter manager implementation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/agilira/argus"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Phase is the lifecycle stage of the manager itself.
type Phase int32

const (
	PhaseConstructed Phase = iota
	PhaseInitializing
	PhaseRunning
	PhaseRoutesConfigured
	PhaseShuttingDown
	PhaseStopped
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseConstructed:
		return "constructed"
	case PhaseInitializing:
		return "initializing"
	case PhaseRunning:
		return "running"
	case PhaseRoutesConfigured:
		return "routes_configured"
	case PhaseShuttingDown:
		return "shutting_down"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Hook names used in logs, spans, metrics and error context
const (
	hookInit        = "init"
	hookBeforeRun   = "before_run"
	hookAfterRoute  = "after_route"
	hookBeforeStop  = "before_stop"
	hookAfterStop   = "after_stop"
	hookHandleError = "handle_error"
)

// AdapterManager drives registered adapters through the application lifecycle.
//
// Adapters run one at a time, in priority order (ties keep registration order),
// for every phase. Startup phases fail fast: an error escalated by an adapter's
// HandleError aborts the phase. Shutdown is best-effort: every adapter gets both
// stop hooks whatever the others do.
//
// The manager applies no timeout to hooks. An adapter that never returns stalls
// the pipeline; pass a context with a deadline and honor it in the adapter.
//
// Example usage:
//
//	manager := NewAdapterManager[chi.Router](app, DefaultManagerOptions())
//	manager.Register(NewGRPCHealthAdapter(":9090", logger))
//	manager.Register(&MetricsAdapter{})
//
//	if err := manager.InitAll(ctx); err != nil {
//	    return err
//	}
//	app, err := manager.BeforeRun(ctx)
//	if err != nil {
//	    return err
//	}
//	router, err := manager.ConfigureRoutes(ctx, chi.NewRouter())
//	// serve router ...
//	return manager.StopAll(ctx)
type AdapterManager[R any] struct {
	adapters []registeredAdapter[R]
	app      Context

	shutdown shutdownBroadcaster
	logger   Logger
	tracer   trace.Tracer
	metrics  *lifecycleMetrics
	auditor  *argus.AuditLogger
	runID    string

	mu      sync.RWMutex
	phase   atomic.Int32
	stopped atomic.Bool
}

type registeredAdapter[R any] struct {
	adapter  Adapter[R]
	name     string
	priority Priority
}

// ManagerOptions configures logging and observability of an AdapterManager.
type ManagerOptions struct {
	// Logger accepts a Logger or nil (silent)
	Logger any

	// TracerProvider used for hook spans; nil uses the global otel provider
	TracerProvider trace.TracerProvider

	// Registerer receives the lifecycle metrics; nil disables metrics
	Registerer prometheus.Registerer

	// Audit enables an argus audit trail of lifecycle events when non-nil
	Audit *argus.AuditConfig
}

// DefaultManagerOptions returns options with a silent logger, the global
// tracer provider and no metrics or audit trail.
func DefaultManagerOptions() ManagerOptions {
	return ManagerOptions{}
}

// NewAdapterManager creates a manager owning app as its initial context.
func NewAdapterManager[R any](app Context, options ManagerOptions) *AdapterManager[R] {
	logger := NewLogger(options.Logger)

	provider := options.TracerProvider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}

	m := &AdapterManager[R]{
		app:    app,
		logger: logger,
		tracer: provider.Tracer(tracerName),
		runID:  uuid.NewString(),
	}
	m.logger = logger.With("run_id", m.runID)

	if options.Registerer != nil {
		metrics, err := newLifecycleMetrics(options.Registerer)
		if err != nil {
			m.logger.Warn("Failed to register lifecycle metrics", "error", err)
		} else {
			m.metrics = metrics
		}
	}

	if options.Audit != nil {
		auditor, err := argus.NewAuditLogger(*options.Audit)
		if err != nil {
			m.logger.Warn("Failed to create lifecycle audit logger", "error", err)
		} else {
			m.auditor = auditor
		}
	}

	return m
}

// Register adds an adapter and re-sorts the adapter list by priority.
// The adapter's priority is read here, once.
func (m *AdapterManager[R]) Register(adapter Adapter[R]) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.adapters = append(m.adapters, registeredAdapter[R]{
		adapter:  adapter,
		name:     adapter.Name(),
		priority: adapter.Priority(),
	})
	slices.SortStableFunc(m.adapters, func(a, b registeredAdapter[R]) int {
		return cmp.Compare(a.priority, b.priority)
	})

	m.logger.Debug("Adapter registered",
		"adapter", adapter.Name(),
		"priority", adapter.Priority().String(),
		"total", len(m.adapters))
}

// Adapters returns the names of the registered adapters in execution order.
func (m *AdapterManager[R]) Adapters() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.adapters))
	for i, reg := range m.adapters {
		names[i] = reg.name
	}
	return names
}

// Len returns the number of registered adapters.
func (m *AdapterManager[R]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.adapters)
}

// Context returns a copy of the manager's canonical context.
func (m *AdapterManager[R]) Context() Context {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.app.Clone()
}

// Phase returns the current manager phase. PhaseInitializing is entered when
// InitAll starts and is kept once it returns, whether it succeeded or not.
// PhaseRunning and PhaseRoutesConfigured are only set on success, so a failed
// BeforeRun or ConfigureRoutes leaves the previous phase in place. Phase does
// not report failures; the error returned by the phase method does.
func (m *AdapterManager[R]) Phase() Phase {
	return Phase(m.phase.Load())
}

// RunID identifies this manager instance in logs and audit records.
func (m *AdapterManager[R]) RunID() string {
	return m.runID
}

// ShutdownSignal subscribes to the shutdown broadcast sent by StopAll.
// Subscriptions created after the broadcast never resolve.
func (m *AdapterManager[R]) ShutdownSignal() *ShutdownSubscription {
	if m.shutdown.isSent() {
		m.logger.Warn("Shutdown signal subscribed after broadcast, it will never fire")
	}
	return m.shutdown.subscribe()
}

func (m *AdapterManager[R]) setPhase(p Phase) {
	previous := Phase(m.phase.Swap(int32(p)))
	if previous != p {
		m.audit("phase_changed", map[string]interface{}{
			"from": previous.String(),
			"to":   p.String(),
		})
	}
}

func (m *AdapterManager[R]) snapshot() []registeredAdapter[R] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.adapters)
}

func adapterNames[R any](adapters []registeredAdapter[R]) []string {
	names := make([]string, len(adapters))
	for i, reg := range adapters {
		names[i] = reg.name
	}
	return names
}
