// server.go: HTTP serving with graceful shutdown
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

const (
	// DefaultShutdownTimeout bounds how long in-flight requests may drain.
	DefaultShutdownTimeout = 30 * time.Second

	defaultReadHeaderTimeout = 10 * time.Second
)

// Serve binds cfg's host:port and serves handler until ctx is cancelled, then
// drains in-flight requests for at most DefaultShutdownTimeout.
func Serve(ctx context.Context, cfg ServerConfig, handler http.Handler, logger Logger) error {
	address := cfg.Address()
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return NewServerBindError(address, err)
	}
	return ServeListener(ctx, listener, handler, logger)
}

// ServeListener is Serve over an existing listener. The listener is closed when
// ServeListener returns.
func ServeListener(ctx context.Context, listener net.Listener, handler http.Handler, logger Logger) error {
	logger = NewLogger(logger)
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening on", "address", listener.Addr().String())
		serveErr <- server.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return NewServerFailedError(err)
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received, draining requests")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		_ = server.Close()
		return NewServerFailedError(err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return NewServerFailedError(err)
	}
	return nil
}
