// Package goadapters provides a lifecycle runtime for pluggable adapters in Go
// HTTP services. Adapters are registered, ordered by priority, initialized,
// allowed to extend a shared application context and to augment the router,
// and finally torn down in a coordinated, failure-aware sequence.
//
// Key Features:
//   - Type-safe adapters and context store using Go generics
//   - Priority ordering with stable tie-breaking on registration order
//   - Fail-fast startup, best-effort shutdown with joined errors
//   - One-shot shutdown broadcast for background work and readiness probes
//   - Panic recovery in every hook, routed through the adapter's HandleError
//   - Layered YAML/JSON/TOML configuration with APP_ environment overrides
//   - Tracing, metrics and audit trail of the lifecycle
//
// Basic Usage:
//
//	type RedisAdapter struct {
//		goadapters.BaseAdapter[chi.Router]
//		client *redis.Client
//	}
//
//	func (a *RedisAdapter) Name() string                 { return "redis" }
//	func (a *RedisAdapter) State() goadapters.State      { return goadapters.StateRunning }
//
//	func (a *RedisAdapter) BeforeRun(ctx context.Context, app goadapters.Context) (goadapters.Context, error) {
//		a.client = redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
//		goadapters.Set(&app, a.client)
//		return app, nil
//	}
//
//	// Application wires adapters and routes together
//	err := goadapters.Run(ctx, myApp{}, goadapters.DefaultRunOptions())
//
// Lifecycle:
// Run creates the context from APP_ENVIRONMENT and ./configs, then calls
// InitAll, BeforeRun and ConfigureRoutes on the AdapterManager, serves until a
// stop signal, and finishes with StopAll. The manager can also be driven
// directly for non-HTTP routing surfaces, since it is generic over the router type.
//
// Copyright (c) 2025 AGILira - A. Giordano
// SPDX-License-Identifier: MPL-2.0
package goadapters
