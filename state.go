// state.go: Exposing adapter state to HTTP handlers
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"context"
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"
)

type injectedKey struct {
	t reflect.Type
}

// Inject returns a middleware that makes value available to handlers through
// FromRequest. Adapters typically call it from AfterRoute:
//
//	func (a *CacheAdapter) AfterRoute(ctx context.Context, app goadapters.Context, r chi.Router) (chi.Router, error) {
//	    client, _ := goadapters.Get[*redis.Client](app)
//	    return goadapters.WrapRouter(r, goadapters.Inject(client)), nil
//	}
func Inject[T any](value T) func(http.Handler) http.Handler {
	key := injectedKey{t: reflect.TypeFor[T]()}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), key, value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromRequest returns the value of type T injected by Inject.
func FromRequest[T any](r *http.Request) (T, bool) {
	value, ok := r.Context().Value(injectedKey{t: reflect.TypeFor[T]()}).(T)
	return value, ok
}

// WrapRouter returns a new router that runs middlewares in front of r.
//
// chi rejects Use once a mux has routes, and the router handed to AfterRoute
// already has them. Wrapping is how an adapter adds router-wide middleware.
// Routes registered on the returned router take precedence over r's.
func WrapRouter(r chi.Router, middlewares ...func(http.Handler) http.Handler) chi.Router {
	wrapped := chi.NewRouter()
	wrapped.Use(middlewares...)
	wrapped.Mount("/", r)
	return wrapped
}
