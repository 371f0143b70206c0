// testing_helpers_test.go: Shared fixtures for adapter lifecycle tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// eventLog records hook invocations across adapters, in order.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	copy(out, l.events)
	return out
}

// testRouter is a minimal routing surface: the names of the adapters that
// augmented it, in order.
type testRouter []string

// mockAdapter is a configurable adapter. Nil hook funcs fall back to recording
// the call and behaving like BaseAdapter.
type mockAdapter struct {
	BaseAdapter[testRouter]

	name     string
	priority Priority
	log      *eventLog

	initFn        func(ctx context.Context) error
	beforeRunFn   func(ctx context.Context, app Context) (Context, error)
	afterRouteFn  func(ctx context.Context, app Context, r testRouter) (testRouter, error)
	beforeStopFn  func(ctx context.Context, app Context) error
	afterStopFn   func(ctx context.Context, app Context) error
	handleErrorFn func(ctx context.Context, err error) error

	handled []error
	mu      sync.Mutex
}

func newMockAdapter(name string, priority Priority, log *eventLog) *mockAdapter {
	return &mockAdapter{name: name, priority: priority, log: log}
}

func (m *mockAdapter) Name() string       { return m.name }
func (m *mockAdapter) Priority() Priority { return m.priority }
func (m *mockAdapter) State() State       { return StateInitialized }

func (m *mockAdapter) Init(ctx context.Context) error {
	m.log.add("%s:init", m.name)
	if m.initFn != nil {
		return m.initFn(ctx)
	}
	return nil
}

func (m *mockAdapter) BeforeRun(ctx context.Context, app Context) (Context, error) {
	m.log.add("%s:before_run", m.name)
	if m.beforeRunFn != nil {
		return m.beforeRunFn(ctx, app)
	}
	return app, nil
}

func (m *mockAdapter) AfterRoute(ctx context.Context, app Context, r testRouter) (testRouter, error) {
	m.log.add("%s:after_route", m.name)
	if m.afterRouteFn != nil {
		return m.afterRouteFn(ctx, app, r)
	}
	return append(r, m.name), nil
}

func (m *mockAdapter) BeforeStop(ctx context.Context, app Context) error {
	m.log.add("%s:before_stop", m.name)
	if m.beforeStopFn != nil {
		return m.beforeStopFn(ctx, app)
	}
	return nil
}

func (m *mockAdapter) AfterStop(ctx context.Context, app Context) error {
	m.log.add("%s:after_stop", m.name)
	if m.afterStopFn != nil {
		return m.afterStopFn(ctx, app)
	}
	return nil
}

func (m *mockAdapter) HandleError(ctx context.Context, err error) error {
	m.mu.Lock()
	m.handled = append(m.handled, err)
	m.mu.Unlock()

	if m.handleErrorFn != nil {
		return m.handleErrorFn(ctx, err)
	}
	return err
}

func (m *mockAdapter) handledErrors() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]error(nil), m.handled...)
}

func swallow(ctx context.Context, err error) error { return nil }

// writeConfigDir writes base.yaml and <env>.yaml into a temp dir.
func writeConfigDir(t *testing.T, base, env string, environment Environment) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(base), 0o600); err != nil {
		t.Fatalf("failed to write base config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, environment.String()+".yaml"), []byte(env), 0o600); err != nil {
		t.Fatalf("failed to write %s config: %v", environment, err)
	}
	return dir
}

const testBaseConfig = `
server:
  port: 5000
  host: 127.0.0.1
  base_url: http://127.0.0.1:5000
  protocol: http
  interceptions:
    limit_payload:
      enable: true
      body_limit: 1kb
secret:
  cookie: base-cookie
  token_expiration: 3600
  cookie_expiration: 3600
logger:
  enable: true
  level: info
settings:
  greeting: hello
  retries: 3
adapters:
  cache:
    addr: 127.0.0.1:6379
    db: 2
`

const testDevelopmentConfig = `
server:
  port: 5001
logger:
  level: debug
`
