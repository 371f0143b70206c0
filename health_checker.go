// health_checker.go: Liveness and readiness endpoints
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"net/http"

	"github.com/agilira/go-timecache"
)

const (
	HealthzPath = "/healthz"
	ReadyzPath  = "/readyz"
)

// Health is the body served by the health endpoints.
type Health struct {
	OK        bool  `json:"ok"`
	Timestamp int64 `json:"timestamp"`
}

// HealthHandler serves /healthz and /readyz. Readiness is withdrawn once the
// subscribed shutdown signal fires, so load balancers stop routing traffic
// while adapters drain.
type HealthHandler struct {
	shutdown *ShutdownSubscription
}

// NewHealthHandler creates a handler tied to shutdown. A nil subscription keeps
// the service ready forever.
func NewHealthHandler(shutdown *ShutdownSubscription) *HealthHandler {
	return &HealthHandler{shutdown: shutdown}
}

// Healthz always reports ok while the process serves requests.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	_ = JSON(w, http.StatusOK, Health{OK: true, Timestamp: timecache.CachedTime().Unix()})
}

// Readyz reports 503 after the shutdown broadcast.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.shutdown != nil && h.shutdown.Fired() {
		_ = JSON(w, http.StatusServiceUnavailable, Health{OK: false, Timestamp: timecache.CachedTime().Unix()})
		return
	}
	_ = JSON(w, http.StatusOK, Health{OK: true, Timestamp: timecache.CachedTime().Unix()})
}
