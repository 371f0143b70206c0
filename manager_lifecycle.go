// manager_lifecycle.go: Lifecycle phase methods for AdapterManager
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"context"
	"errors"
	"strings"
)

// Lifecycle Phase Methods

// InitAll calls Init on every adapter in priority order.
//
// A failing Init is offered to the adapter's HandleError. If HandleError
// escalates, the phase stops immediately: the remaining adapters are never
// initialized and the escalated error is returned wrapped as a setup error.
func (m *AdapterManager[R]) InitAll(ctx context.Context) error {
	m.setPhase(PhaseInitializing)

	adapters := m.snapshot()
	m.logger.Info("init adapter", "adapters", strings.Join(adapterNames(adapters), ","))

	for _, reg := range adapters {
		err := m.invoke(ctx, reg, hookInit, func(ctx context.Context) error {
			return reg.adapter.Init(ctx)
		})
		if err == nil {
			continue
		}
		if escalated := m.routeError(ctx, reg, hookInit, err); escalated != nil {
			m.audit("adapter_setup_failed", map[string]interface{}{"adapter": reg.name, "error": escalated.Error()})
			return NewAdapterSetupError(reg.name, escalated)
		}
	}
	return nil
}

// BeforeRun folds the application context through every adapter's BeforeRun.
//
// Each adapter receives a copy of the context produced by the previous one. When
// an error is swallowed the fold continues with the last good context. When an
// error is escalated the partially folded context is discarded and the manager's
// context is left as it was. On success the folded context becomes the manager's
// context and a copy of it is returned.
func (m *AdapterManager[R]) BeforeRun(ctx context.Context) (Context, error) {
	adapters := m.snapshot()
	m.logger.Info("before run adapter", "adapters", strings.Join(adapterNames(adapters), ","))

	current := m.Context()
	for _, reg := range adapters {
		var next Context
		err := m.invoke(ctx, reg, hookBeforeRun, func(ctx context.Context) error {
			var hookErr error
			next, hookErr = reg.adapter.BeforeRun(ctx, current.Clone())
			return hookErr
		})
		if err != nil {
			if escalated := m.routeError(ctx, reg, hookBeforeRun, err); escalated != nil {
				m.audit("adapter_before_run_failed", map[string]interface{}{"adapter": reg.name, "error": escalated.Error()})
				return Context{}, NewAdapterContextTransformError(reg.name, escalated)
			}
			continue
		}
		current = next
	}

	m.mu.Lock()
	m.app = current
	m.mu.Unlock()

	m.setPhase(PhaseRunning)
	return current.Clone(), nil
}

// ConfigureRoutes passes the routing surface through every adapter's AfterRoute
// and returns the result. Adapters see a read-only copy of the manager's context.
// Error routing follows BeforeRun.
func (m *AdapterManager[R]) ConfigureRoutes(ctx context.Context, router R) (R, error) {
	adapters := m.snapshot()
	m.logger.Info("after router adapter", "adapters", strings.Join(adapterNames(adapters), ","))

	app := m.Context()
	current := router
	for _, reg := range adapters {
		var next R
		err := m.invoke(ctx, reg, hookAfterRoute, func(ctx context.Context) error {
			var hookErr error
			next, hookErr = reg.adapter.AfterRoute(ctx, app.Clone(), current)
			return hookErr
		})
		if err != nil {
			if escalated := m.routeError(ctx, reg, hookAfterRoute, err); escalated != nil {
				m.audit("adapter_after_route_failed", map[string]interface{}{"adapter": reg.name, "error": escalated.Error()})
				var zero R
				return zero, NewAdapterRouteAugmentError(reg.name, escalated)
			}
			continue
		}
		current = next
	}

	m.setPhase(PhaseRoutesConfigured)
	return current, nil
}

// StopAll broadcasts shutdown, then runs BeforeStop on every adapter, then
// AfterStop on every adapter.
//
// Unlike the startup phases, an escalated error does not stop the sweep: it is
// logged and collected, and every remaining adapter still gets its stop hooks.
// The collected errors are returned joined. StopAll runs once; later calls
// return a manager-already-stopped error without broadcasting again.
func (m *AdapterManager[R]) StopAll(ctx context.Context) error {
	if !m.stopped.CompareAndSwap(false, true) {
		return NewManagerAlreadyStoppedError()
	}

	m.setPhase(PhaseShuttingDown)

	notified, _ := m.shutdown.broadcast()
	m.logger.Info("Shutdown broadcast sent", "subscribers", notified)

	adapters := m.snapshot()
	app := m.Context()

	var errs []error
	sweep := func(hook string, call func(ctx context.Context, adapter Adapter[R]) error) {
		for _, reg := range adapters {
			err := m.invoke(ctx, reg, hook, func(ctx context.Context) error {
				return call(ctx, reg.adapter)
			})
			if err == nil {
				continue
			}
			if escalated := m.routeError(ctx, reg, hook, err); escalated != nil {
				m.logger.Error("Adapter shutdown hook failed, continuing",
					"adapter", reg.name,
					"hook", hook,
					"error", escalated)
				m.audit("adapter_shutdown_failed", map[string]interface{}{
					"adapter": reg.name,
					"hook":    hook,
					"error":   escalated.Error(),
				})
				errs = append(errs, NewAdapterShutdownError(reg.name, hook, escalated))
			}
		}
	}

	m.logger.Info("before stop adapter", "adapters", strings.Join(adapterNames(adapters), ","))
	sweep(hookBeforeStop, func(ctx context.Context, adapter Adapter[R]) error {
		return adapter.BeforeStop(ctx, app.Clone())
	})

	m.logger.Info("after stop adapter", "adapters", strings.Join(adapterNames(adapters), ","))
	sweep(hookAfterStop, func(ctx context.Context, adapter Adapter[R]) error {
		return adapter.AfterStop(ctx, app.Clone())
	})

	m.setPhase(PhaseStopped)
	m.closeAudit()

	if len(errs) > 0 {
		m.logger.Warn("Adapter manager stopped with errors", "failures", len(errs))
		return errors.Join(errs...)
	}
	m.logger.Info("Adapter manager stopped")
	return nil
}

// routeError offers err to the adapter's HandleError and returns what it escalates.
func (m *AdapterManager[R]) routeError(ctx context.Context, reg registeredAdapter[R], hook string, err error) error {
	escalated := m.invoke(ctx, reg, hookHandleError, func(ctx context.Context) error {
		return reg.adapter.HandleError(ctx, err)
	})

	if escalated == nil {
		m.logger.Warn("Adapter error handled",
			"adapter", reg.name,
			"hook", hook,
			"error", err)
		m.metrics.observeFailure(reg.name, hook, "swallowed")
		return nil
	}

	m.logger.Error("Adapter error escalated",
		"adapter", reg.name,
		"hook", hook,
		"error", escalated)
	m.metrics.observeFailure(reg.name, hook, "escalated")
	return escalated
}
