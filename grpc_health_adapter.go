// grpc_health_adapter.go: Built-in adapter exposing the standard gRPC health service
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCHealthAdapter serves grpc.health.v1.Health on its own listener so
// orchestrators probing over gRPC see the application's lifecycle.
//
// The listener is bound in Init, so a busy port fails startup. BeforeRun starts
// serving and stores the *health.Server in the Context for other adapters to
// register their services. BeforeStop flips every service to NOT_SERVING and
// AfterStop stops the server gracefully.
//
// Example usage:
//
//	adapter := NewGRPCHealthAdapter(":9090", logger)
//	manager.Register(adapter)
//	// later, in another adapter's BeforeRun:
//	if hs, ok := Get[*health.Server](app); ok {
//	    hs.SetServingStatus("orders", healthpb.HealthCheckResponse_SERVING)
//	}
type GRPCHealthAdapter struct {
	BaseAdapter[chi.Router]

	address  string
	logger   Logger
	services []string
	options  []grpc.ServerOption

	mu       sync.Mutex
	listener net.Listener
	bound    net.Addr
	server   *grpc.Server
	health   *health.Server
	served   chan error

	state atomic.Int32
}

// NewGRPCHealthAdapter creates an adapter listening on address. services are
// marked SERVING next to the overall ("") status.
func NewGRPCHealthAdapter(address string, logger Logger, services ...string) *GRPCHealthAdapter {
	return &GRPCHealthAdapter{
		address:  address,
		logger:   NewLogger(logger).With("adapter", "grpc_health"),
		services: services,
	}
}

// WithServerOptions adds grpc.ServerOption values (credentials, interceptors)
// used when the server is created.
func (a *GRPCHealthAdapter) WithServerOptions(opts ...grpc.ServerOption) *GRPCHealthAdapter {
	a.options = append(a.options, opts...)
	return a
}

func (a *GRPCHealthAdapter) Name() string       { return "grpc_health" }
func (a *GRPCHealthAdapter) Priority() Priority { return PriorityHigh }
func (a *GRPCHealthAdapter) State() State       { return State(a.state.Load()) }

// Addr returns the address bound by Init, or nil before Init. It is kept
// after the listener is released.
func (a *GRPCHealthAdapter) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bound
}

// Init binds the listener.
func (a *GRPCHealthAdapter) Init(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", a.address)
	if err != nil {
		a.state.Store(int32(StateFailed))
		return NewServerBindError(a.address, err)
	}

	a.mu.Lock()
	a.listener = listener
	a.bound = listener.Addr()
	a.mu.Unlock()

	a.state.Store(int32(StateInitialized))
	return nil
}

// BeforeRun starts serving and publishes the health server in the context.
func (a *GRPCHealthAdapter) BeforeRun(ctx context.Context, app Context) (Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.listener == nil {
		return app, NewServerBindError(a.address, errors.New("listener not initialized"))
	}

	a.server = grpc.NewServer(a.options...)
	a.health = health.NewServer()
	healthpb.RegisterHealthServer(a.server, a.health)

	a.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	for _, service := range a.services {
		a.health.SetServingStatus(service, healthpb.HealthCheckResponse_SERVING)
	}

	a.served = make(chan error, 1)
	server, listener, served := a.server, a.listener, a.served
	go func() {
		served <- server.Serve(listener)
	}()

	a.state.Store(int32(StateRunning))
	a.logger.Info("gRPC health service started", "address", listener.Addr().String())

	Set(&app, a.health)
	return app, nil
}

// BeforeStop reports NOT_SERVING for every service.
func (a *GRPCHealthAdapter) BeforeStop(ctx context.Context, app Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.health != nil {
		a.health.Shutdown()
		a.logger.Info("gRPC health service draining")
	}
	return nil
}

// AfterStop stops the server gracefully, or releases the listener if serving
// never started.
func (a *GRPCHealthAdapter) AfterStop(ctx context.Context, app Context) error {
	a.mu.Lock()
	server, listener, served := a.server, a.listener, a.served
	a.server, a.listener = nil, nil
	a.mu.Unlock()

	defer a.state.Store(int32(StateStopped))

	if server == nil {
		if listener != nil {
			return listener.Close()
		}
		return nil
	}

	stopped := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		server.Stop()
		<-stopped
	}

	if err := <-served; err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return NewServerFailedError(err)
	}
	a.logger.Info("gRPC health service stopped")
	return nil
}
