// middleware.go: Configurable HTTP interceptions
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"net/http"
	"runtime"
	"time"

	"github.com/docker/go-units"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	poweredByHeader = "x-powered-by"
	poweredByValue  = "butter"
)

var defaultCORSMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// applyInterceptions installs the middlewares enabled in cfg on router, outermost
// first: request id, x-powered-by, panic catching (development only), payload
// limit, compression, timeout, CORS.
func applyInterceptions(router chi.Router, app Context, logger Logger) error {
	router.Use(RequestID)
	router.Use(PoweredBy)

	if app.Environment.IsDevelopment() {
		router.Use(CatchPanic(logger))
	}

	if app.Config == nil {
		return nil
	}
	ic := app.Config.Server.Interceptions

	if ic.LimitPayload != nil && ic.LimitPayload.Enable {
		limit, err := ParseBodyLimit(ic.LimitPayload.BodyLimit)
		if err != nil {
			return err
		}
		router.Use(LimitPayload(limit))
		logger.Info("[Middleware] +limit payload", "data", ic.LimitPayload.BodyLimit)
	}

	if ic.Compression != nil && ic.Compression.Enable {
		router.Use(chimiddleware.Compress(5))
		logger.Info("[Middleware] +compression")
	}

	if ic.TimeoutRequest != nil && ic.TimeoutRequest.Enable {
		router.Use(chimiddleware.Timeout(time.Duration(ic.TimeoutRequest.Timeout) * time.Millisecond))
		logger.Info("[Middleware] +timeout")
	}

	if ic.CORS != nil && ic.CORS.Enable {
		router.Use(cors.Handler(corsOptions(ic.CORS)))
		logger.Info("[Middleware] +cors")
	}

	return nil
}

// corsOptions starts permissive and narrows down to whatever cfg lists.
func corsOptions(cfg *CORSConfig) cors.Options {
	opts := cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: defaultCORSMethods,
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{RequestIDHeader},
	}
	if len(cfg.AllowOrigins) > 0 {
		opts.AllowedOrigins = cfg.AllowOrigins
	}
	if len(cfg.AllowHeaders) > 0 {
		opts.AllowedHeaders = cfg.AllowHeaders
	}
	if len(cfg.AllowMethods) > 0 {
		opts.AllowedMethods = cfg.AllowMethods
	}
	if cfg.MaxAge > 0 {
		opts.MaxAge = cfg.MaxAge
	}
	return opts
}

// ParseBodyLimit parses a human readable size such as "5mb" or "512kb" into bytes.
func ParseBodyLimit(limit string) (int64, error) {
	size, err := units.FromHumanSize(limit)
	if err != nil {
		return 0, NewConfigValidationError("invalid body limit "+limit, err)
	}
	if size <= 0 {
		return 0, NewConfigValidationError("body limit must be positive: "+limit, nil)
	}
	return size, nil
}

// LimitPayload rejects requests whose body exceeds limit bytes. Requests with a
// declared Content-Length over the limit get 413 straight away; others are cut
// off by http.MaxBytesReader while the handler reads.
func LimitPayload(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				_ = JSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
					Message:    "length limit exceeded",
					StatusCode: http.StatusRequestEntityTooLarge,
				})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// PoweredBy sets the x-powered-by response header.
func PoweredBy(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(poweredByHeader, poweredByValue)
		next.ServeHTTP(w, r)
	})
}

// CatchPanic turns a handler panic into a JSON 500 and logs it.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func CatchPanic(logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				buf := make([]byte, 64<<10)
				n := runtime.Stack(buf, false)
				message := panicMessage(recovered)
				logger.Error("server_panic", "err.msg", message, "stack", string(buf[:n]))

				Error(w, NewInternalError(message))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func panicMessage(recovered any) string {
	switch v := recovered.(type) {
	case string:
		return v
	case error:
		return v.Error()
	default:
		return "no error details"
	}
}
