// adapter.go: Core adapter interfaces and types
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"context"
)

// Priority orders adapters across every lifecycle phase. Lower values run first.
type Priority int

const (
	PriorityHigh   Priority = 0
	PriorityNormal Priority = 1
	PriorityLow    Priority = 2
)

// String returns the priority name.
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// State is the lifecycle stage an adapter reports about itself.
// The manager never checks it against the hooks that actually ran.
type State int

const (
	StateInitialized State = iota
	StateRunning
	StateStopped
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Adapter is a pluggable unit driven through the application lifecycle.
// R is the routing surface the adapters augment (for HTTP services, chi.Router).
//
// Embed BaseAdapter[R] to inherit no-op defaults for every optional hook;
// Name and State have no default and must always be provided.
//
// Each hook receives its own copy of the application Context. BeforeRun returns
// the (possibly extended) Context handed to the next adapter, AfterRoute returns
// the (possibly wrapped) routing surface handed to the next adapter.
type Adapter[R any] interface {
	// Name identifies the adapter in logs and errors. Duplicates are allowed.
	Name() string

	// Priority is read once, at registration.
	Priority() Priority

	// State reports the adapter's own view of its lifecycle stage
	State() State

	// Init performs one-shot setup
	Init(ctx context.Context) error

	// BeforeRun may attach resources to the application context
	BeforeRun(ctx context.Context, app Context) (Context, error)

	// AfterRoute may wrap or extend the routing surface
	AfterRoute(ctx context.Context, app Context, router R) (R, error)

	// BeforeStop is called once shutdown has been broadcast
	BeforeStop(ctx context.Context, app Context) error

	// AfterStop is called after every adapter has run BeforeStop
	AfterStop(ctx context.Context, app Context) error

	// HandleError receives every error returned (or panic raised) by this
	// adapter's hooks. Returning nil swallows the error, returning an error
	// escalates it to the manager.
	HandleError(ctx context.Context, err error) error
}

// BaseAdapter provides the default behavior of every optional Adapter hook.
type BaseAdapter[R any] struct{}

// Priority implements Adapter interface (normal priority)
func (BaseAdapter[R]) Priority() Priority { return PriorityNormal }

// Init implements Adapter interface (no-op)
func (BaseAdapter[R]) Init(ctx context.Context) error { return nil }

// BeforeRun implements Adapter interface (returns the context unchanged)
func (BaseAdapter[R]) BeforeRun(ctx context.Context, app Context) (Context, error) {
	return app, nil
}

// AfterRoute implements Adapter interface (returns the router unchanged)
func (BaseAdapter[R]) AfterRoute(ctx context.Context, app Context, router R) (R, error) {
	return router, nil
}

// BeforeStop implements Adapter interface (no-op)
func (BaseAdapter[R]) BeforeStop(ctx context.Context, app Context) error { return nil }

// AfterStop implements Adapter interface (no-op)
func (BaseAdapter[R]) AfterStop(ctx context.Context, app Context) error { return nil }

// HandleError implements Adapter interface (re-raises the error)
func (BaseAdapter[R]) HandleError(ctx context.Context, err error) error { return err }
