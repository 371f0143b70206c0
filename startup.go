// startup.go: Application bootstrap
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
)

// Application describes a service driven by Run.
type Application interface {
	// AppName names the service in logs and the banner
	AppName() string

	// Version is printed in the banner
	Version() string

	// Adapters returns the adapters to register, in any order
	Adapters(ctx context.Context, app Context) ([]Adapter[chi.Router], error)

	// Routes returns the application routes. It receives the context produced
	// by the adapters' BeforeRun.
	Routes(app Context) chi.Router
}

// RunOptions configures Run.
type RunOptions struct {
	// Context is passed to CreateContext
	Context ContextOptions

	// App, when set, is used instead of calling CreateContext
	App *Context

	// Logger overrides the zap logger built from the logger config block
	Logger Logger

	// Manager configures the adapter manager. Its Logger is replaced by the
	// runtime logger when nil.
	Manager ManagerOptions

	// Banner receives the startup banner; nil means os.Stdout
	Banner io.Writer

	// Signals stop the server; nil means SIGINT and SIGTERM
	Signals []os.Signal

	// Listener, when set, is served instead of binding server.host:server.port
	Listener net.Listener
}

// DefaultRunOptions returns options using ./configs, ./.env and the config
// driven logger.
func DefaultRunOptions() RunOptions {
	return RunOptions{Context: DefaultContextOptions()}
}

// Run boots app and serves it until ctx is cancelled or a stop signal arrives.
//
// The sequence is: create the context, build the logger, print the banner,
// InitAll, BeforeRun, build the router and ConfigureRoutes, serve, StopAll.
// If BeforeRun or ConfigureRoutes fails, StopAll still runs so adapters that
// already acquired resources can release them.
func Run(ctx context.Context, app Application, opts RunOptions) error {
	appCtx, err := runContext(opts)
	if err != nil {
		return err
	}

	logger, err := runLogger(app, appCtx, opts)
	if err != nil {
		return err
	}

	out := opts.Banner
	if out == nil {
		out = os.Stdout
	}
	PrintBanner(out, app.AppName(), app.Version(), appCtx)

	managerOpts := opts.Manager
	if managerOpts.Logger == nil {
		managerOpts.Logger = logger
	}
	manager := NewAdapterManager[chi.Router](appCtx, managerOpts)

	adapters, err := app.Adapters(ctx, appCtx.Clone())
	if err != nil {
		return err
	}
	for _, adapter := range adapters {
		manager.Register(adapter)
	}
	logger.Info("adapters loaded", "adapters", manager.Adapters())

	// Adapters that got past Init may hold resources (listeners, clients), so
	// every startup failure runs the stop hooks.
	if err := manager.InitAll(ctx); err != nil {
		return errors.Join(err, stopManager(ctx, manager))
	}

	router, err := startRoutes(ctx, app, manager, logger)
	if err != nil {
		return errors.Join(err, stopManager(ctx, manager))
	}

	signals := opts.Signals
	if signals == nil {
		signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	serveCtx, stop := signal.NotifyContext(ctx, signals...)
	defer stop()

	var serveErr error
	switch {
	case opts.Listener != nil:
		serveErr = ServeListener(serveCtx, opts.Listener, router, logger)
	case appCtx.Config != nil:
		serveErr = Serve(serveCtx, appCtx.Config.Server, router, logger)
	default:
		serveErr = NewConfigValidationError("server configuration is missing", nil)
	}

	return errors.Join(serveErr, stopManager(ctx, manager))
}

func startRoutes(ctx context.Context, app Application, manager *AdapterManager[chi.Router], logger Logger) (chi.Router, error) {
	appCtx, err := manager.BeforeRun(ctx)
	if err != nil {
		return nil, err
	}

	router, err := NewRouter(appCtx, app.Routes(appCtx), NewHealthHandler(manager.ShutdownSignal()), logger)
	if err != nil {
		return nil, err
	}
	return manager.ConfigureRoutes(ctx, router)
}

// stopManager runs StopAll on a context that survives the cancellation which
// triggered the shutdown.
func stopManager(ctx context.Context, manager *AdapterManager[chi.Router]) error {
	return manager.StopAll(context.WithoutCancel(ctx))
}

func runContext(opts RunOptions) (Context, error) {
	if opts.App != nil {
		return opts.App.Clone(), nil
	}
	return CreateContext(opts.Context)
}

func runLogger(app Application, appCtx Context, opts RunOptions) (Logger, error) {
	if opts.Logger != nil {
		return opts.Logger, nil
	}
	var cfg LoggerConfig
	if appCtx.Config != nil {
		cfg = appCtx.Config.Logger
	}
	logger, err := NewZapLoggerFromConfig(cfg, app.AppName())
	if err != nil {
		return nil, err
	}
	return logger, nil
}
