// config_watch_adapter.go: Built-in adapter watching configuration files with Argus
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
	"github.com/go-chi/chi/v5"
)

// ConfigChange describes a reload attempt triggered by a file change.
type ConfigChange struct {
	Path   string
	Config *Config // nil when the reload failed
	Err    error
}

// ConfigWatchOptions configures a ConfigWatchAdapter.
type ConfigWatchOptions struct {
	// PollInterval is how often Argus checks the files
	PollInterval time.Duration

	// CacheTTL caches file stat results
	CacheTTL time.Duration

	// Audit configures the Argus audit trail of config changes
	Audit argus.AuditConfig

	// OnChange is called after every reload attempt
	OnChange func(ConfigChange)
}

// DefaultConfigWatchOptions returns a 2 second poll interval with auditing off.
func DefaultConfigWatchOptions() ConfigWatchOptions {
	return ConfigWatchOptions{
		PollInterval: 2 * time.Second,
		CacheTTL:     time.Second,
		Audit: argus.AuditConfig{
			Enabled:  false,
			MinLevel: argus.AuditInfo,
		},
	}
}

// ConfigWatchAdapter watches the files the configuration was loaded from and
// re-validates them on every change. The Context configuration stays immutable;
// the latest valid snapshot is available through Latest, and OnChange lets the
// application react.
//
// The adapter runs with low priority and swallows its own errors: a broken
// watcher is reported but never stops the application.
type ConfigWatchAdapter struct {
	BaseAdapter[chi.Router]

	options ConfigWatchOptions
	logger  Logger

	mu      sync.Mutex
	watcher *argus.Watcher
	source  ConfigSource
	env     Environment
	started bool

	latest atomic.Pointer[Config]
	state  atomic.Int32
}

// NewConfigWatchAdapter creates the adapter. A nil logger is silent.
func NewConfigWatchAdapter(options ConfigWatchOptions, logger Logger) *ConfigWatchAdapter {
	if options.PollInterval <= 0 {
		options.PollInterval = DefaultConfigWatchOptions().PollInterval
	}
	return &ConfigWatchAdapter{
		options: options,
		logger:  NewLogger(logger).With("adapter", "config_watch"),
	}
}

func (a *ConfigWatchAdapter) Name() string       { return "config_watch" }
func (a *ConfigWatchAdapter) Priority() Priority { return PriorityLow }
func (a *ConfigWatchAdapter) State() State       { return State(a.state.Load()) }

// Init prepares the Argus watcher.
func (a *ConfigWatchAdapter) Init(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.watcher = argus.New(argus.Config{
		PollInterval:         a.options.PollInterval,
		CacheTTL:             a.options.CacheTTL,
		MaxWatchedFiles:      8,
		Audit:                a.options.Audit,
		OptimizationStrategy: argus.OptimizationSingleEvent,
		ErrorHandler: func(err error, path string) {
			a.logger.Error("Config file watching error", "error", err, "file", path)
		},
	})
	a.state.Store(int32(StateInitialized))
	return nil
}

// BeforeRun starts watching the files recorded in the context's ConfigSource.
// Without a ConfigSource there is nothing to watch and the context passes through.
func (a *ConfigWatchAdapter) BeforeRun(ctx context.Context, app Context) (Context, error) {
	source, ok := Get[ConfigSource](app)
	if !ok || len(source.Files) == 0 {
		a.logger.Warn("No configuration source in context, config watching disabled")
		return app, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.watcher == nil {
		return app, NewConfigWatcherError("watcher not initialized", nil)
	}
	a.source = source
	a.env = app.Environment
	a.latest.Store(app.Config)

	for _, path := range source.Files {
		if err := a.watcher.Watch(path, a.handleChange); err != nil {
			a.state.Store(int32(StateFailed))
			return app, NewConfigWatcherError("failed to watch config file", err)
		}
	}
	if err := a.watcher.Start(); err != nil {
		a.state.Store(int32(StateFailed))
		return app, NewConfigWatcherError("failed to start config watcher", err)
	}
	a.started = true
	a.state.Store(int32(StateRunning))

	a.logger.Info("Config watching started", "files", source.Files, "poll_interval", a.options.PollInterval)

	Set(&app, a)
	return app, nil
}

// BeforeStop stops the watcher.
func (a *ConfigWatchAdapter) BeforeStop(ctx context.Context, app Context) error {
	a.mu.Lock()
	watcher, started := a.watcher, a.started
	a.started = false
	a.mu.Unlock()

	a.state.Store(int32(StateStopped))
	if !started {
		return nil
	}
	if err := watcher.Stop(); err != nil {
		return NewConfigWatcherError("failed to stop config watcher", err)
	}
	a.logger.Info("Config watching stopped")
	return nil
}

// HandleError logs and swallows every error.
func (a *ConfigWatchAdapter) HandleError(ctx context.Context, err error) error {
	a.logger.Warn("Config watch adapter error ignored", "error", err)
	return nil
}

// Latest returns the most recent valid configuration.
func (a *ConfigWatchAdapter) Latest() *Config {
	return a.latest.Load()
}

func (a *ConfigWatchAdapter) handleChange(event argus.ChangeEvent) {
	a.logger.Info("Configuration file change detected",
		"path", event.Path,
		"mod_time", event.ModTime,
		"size", event.Size,
		"is_create", event.IsCreate,
		"is_delete", event.IsDelete,
		"is_modify", event.IsModify)

	if event.IsDelete {
		a.logger.Warn("Configuration file was deleted, keeping last valid configuration", "path", event.Path)
		return
	}

	a.mu.Lock()
	dir, env := a.source.Dir, a.env
	a.mu.Unlock()

	change := ConfigChange{Path: event.Path}
	cfg, err := LoadConfig(dir, env)
	if err != nil {
		a.logger.Error("Reloaded configuration is invalid", "path", event.Path, "error", err)
		change.Err = err
	} else {
		a.latest.Store(cfg)
		change.Config = cfg
		a.logger.Info("Configuration reloaded", "path", event.Path)
	}

	if a.options.OnChange != nil {
		a.options.OnChange(change)
	}
}
