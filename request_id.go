// request_id.go: Request id interception
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"context"
	"crypto/rand"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RequestIDHeader carries the request id on requests and responses.
const RequestIDHeader = "x-request-id"

const maxRequestIDLength = 255

type requestIDContextKey struct{}

var (
	requestIDCleanup = regexp.MustCompile(`[^\w\-@]`)

	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewRequestID returns a time-sortable ULID string.
func NewRequestID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// sanitizeRequestID strips characters outside [A-Za-z0-9_-@] and truncates to
// 255 characters. An empty result means the id is unusable.
func sanitizeRequestID(raw string) string {
	cleaned := requestIDCleanup.ReplaceAllString(raw, "")
	if len(cleaned) > maxRequestIDLength {
		cleaned = cleaned[:maxRequestIDLength]
	}
	return cleaned
}

// RequestID keeps a caller supplied x-request-id (sanitized) or generates one,
// stores it in the request context and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := sanitizeRequestID(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = NewRequestID()
		}

		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDContextKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the id assigned by RequestID.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey{}).(string)
	return id, ok
}
