// config_watch_adapter_test.go: Tests for the configuration watching adapter
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigWatchAdapter_ReloadsOnChange(t *testing.T) {
	dir := writeConfigDir(t, testBaseConfig, testDevelopmentConfig, EnvironmentDevelopment)
	t.Setenv(EnvironmentVariable, "development")

	app, err := CreateContext(ContextOptions{ConfigDir: dir})
	require.NoError(t, err)

	changes := make(chan ConfigChange, 8)
	options := DefaultConfigWatchOptions()
	options.PollInterval = 50 * time.Millisecond
	options.CacheTTL = 10 * time.Millisecond
	options.OnChange = func(change ConfigChange) { changes <- change }

	adapter := NewConfigWatchAdapter(options, NewTestLogger())
	manager := NewAdapterManager[chi.Router](app, DefaultManagerOptions())
	manager.Register(adapter)

	ctx := context.Background()
	require.NoError(t, manager.InitAll(ctx))
	folded, err := manager.BeforeRun(ctx)
	require.NoError(t, err)
	defer func() { _ = manager.StopAll(ctx) }()

	published, ok := Get[*ConfigWatchAdapter](folded)
	require.True(t, ok)
	assert.Same(t, adapter, published)
	assert.Equal(t, 5001, adapter.Latest().Server.Port)

	// Let the watcher record the initial file state before changing it
	time.Sleep(150 * time.Millisecond)
	updated := "server:\n  port: 5050\nlogger:\n  level: warn\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "development.yaml"), []byte(updated), 0o600))

	select {
	case change := <-changes:
		require.NoError(t, change.Err)
		require.NotNil(t, change.Config)
		assert.Equal(t, 5050, change.Config.Server.Port)
	case <-time.After(5 * time.Second):
		t.Fatal("no configuration change observed")
	}
	assert.Equal(t, 5050, adapter.Latest().Server.Port)
	assert.Equal(t, StateRunning, adapter.State())

	// The manager's context is never rewritten by a reload
	assert.Equal(t, 5001, manager.Context().Config.Server.Port)
}

func TestConfigWatchAdapter_InvalidChangeKeepsLatest(t *testing.T) {
	dir := writeConfigDir(t, testBaseConfig, testDevelopmentConfig, EnvironmentDevelopment)
	t.Setenv(EnvironmentVariable, "development")

	app, err := CreateContext(ContextOptions{ConfigDir: dir})
	require.NoError(t, err)

	changes := make(chan ConfigChange, 8)
	options := DefaultConfigWatchOptions()
	options.PollInterval = 50 * time.Millisecond
	options.CacheTTL = 10 * time.Millisecond
	options.OnChange = func(change ConfigChange) { changes <- change }

	adapter := NewConfigWatchAdapter(options, nil)
	ctx := context.Background()
	require.NoError(t, adapter.Init(ctx))
	_, err = adapter.BeforeRun(ctx, app)
	require.NoError(t, err)
	defer func() { _ = adapter.BeforeStop(ctx, app) }()

	time.Sleep(150 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "development.yaml"), []byte("logger:\n  level: chatty\n"), 0o600))

	select {
	case change := <-changes:
		assert.Error(t, change.Err)
		assert.Nil(t, change.Config)
	case <-time.After(5 * time.Second):
		t.Fatal("no configuration change observed")
	}
	assert.Equal(t, 5001, adapter.Latest().Server.Port)
}

func TestConfigWatchAdapter_WithoutSourcePassesThrough(t *testing.T) {
	adapter := NewConfigWatchAdapter(ConfigWatchOptions{}, nil)
	ctx := context.Background()
	require.NoError(t, adapter.Init(ctx))

	app := NewContext()
	Set(&app, 42)

	out, err := adapter.BeforeRun(ctx, app)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())
	assert.Nil(t, adapter.Latest())

	// Stopping an adapter that never started watching is a no-op
	assert.NoError(t, adapter.BeforeStop(ctx, out))
	assert.Equal(t, StateStopped, adapter.State())
}

func TestConfigWatchAdapter_SwallowsErrors(t *testing.T) {
	adapter := NewConfigWatchAdapter(ConfigWatchOptions{}, nil)
	assert.NoError(t, adapter.HandleError(context.Background(), assert.AnError))
	assert.Equal(t, PriorityLow, adapter.Priority())
}
