// errors.go: structured error definitions for the go-adapters runtime
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for the go-adapters runtime
const (
	// Configuration errors (1700-1799)
	ErrCodeConfigNotFound        = "CONFIG_1701"
	ErrCodeConfigParseError      = "CONFIG_1702"
	ErrCodeConfigValidationError = "CONFIG_1703"
	ErrCodeConfigWatcherError    = "CONFIG_1704"
	ErrCodeInvalidEnvironment    = "CONFIG_1708"
	ErrCodeSettingsDecodeError   = "CONFIG_1709"

	// Adapter lifecycle errors (2100-2199)
	ErrCodeAdapterSetup            = "ADAPTER_2101"
	ErrCodeAdapterContextTransform = "ADAPTER_2102"
	ErrCodeAdapterRouteAugment     = "ADAPTER_2103"
	ErrCodeAdapterShutdown         = "ADAPTER_2104"
	ErrCodeAdapterInternal         = "ADAPTER_2105"
	ErrCodeManagerAlreadyStopped   = "ADAPTER_2106"

	// Serving errors (2300-2399)
	ErrCodeServerBind        = "SERVER_2301"
	ErrCodeServerFailed      = "SERVER_2302"
	ErrCodeStaticAssetsError = "SERVER_2303"
	ErrCodeNotFound          = "SERVER_2304"
	ErrCodeBadRequest        = "SERVER_2305"
	ErrCodeUnauthorized      = "SERVER_2306"
	ErrCodeInternal          = "SERVER_2307"
)

// Configuration error constructors

func NewConfigNotFoundError(path string) *errors.Error {
	return errors.New(ErrCodeConfigNotFound, "Configuration file not found").
		WithUserMessage("The configuration file could not be found").
		WithContext("config_path", path).
		WithSeverity("error")
}

func NewConfigParseError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigParseError, "Configuration parse error").
		WithUserMessage("Failed to parse configuration file").
		WithContext("config_path", path).
		WithSeverity("error")
}

func NewConfigValidationError(message string, cause error) *errors.Error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeConfigValidationError, "Configuration validation error: "+message).
			WithUserMessage("Configuration validation failed").
			WithSeverity("error")
	}
	return errors.New(ErrCodeConfigValidationError, "Configuration validation error: "+message).
		WithUserMessage("Configuration validation failed").
		WithSeverity("error")
}

func NewConfigWatcherError(message string, cause error) *errors.Error {
	if cause == nil {
		return errors.New(ErrCodeConfigWatcherError, "Configuration watcher error: "+message).
			WithUserMessage("Configuration monitoring failed").
			WithSeverity("error")
	}
	return errors.Wrap(cause, ErrCodeConfigWatcherError, "Configuration watcher error: "+message).
		WithUserMessage("Configuration monitoring failed").
		WithSeverity("error")
}

func NewInvalidEnvironmentError(value string) *errors.Error {
	return errors.New(ErrCodeInvalidEnvironment,
		fmt.Sprintf("%s is not a supported environment. Use either `development` or `production`.", value)).
		WithUserMessage("Unsupported runtime environment").
		WithContext("environment", value).
		WithSeverity("error")
}

func NewSettingsDecodeError(section string, cause error) *errors.Error {
	if cause == nil {
		return errors.New(ErrCodeSettingsDecodeError, "Settings section missing: "+section).
			WithUserMessage("Configuration section not found").
			WithContext("section", section).
			WithSeverity("error")
	}
	return errors.Wrap(cause, ErrCodeSettingsDecodeError, "Settings decode error").
		WithUserMessage("Failed to decode configuration section").
		WithContext("section", section).
		WithSeverity("error")
}

// Adapter lifecycle error constructors

func NewAdapterSetupError(adapter string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeAdapterSetup, "Adapter setup failed").
		WithUserMessage("An adapter failed to initialize").
		WithContext("adapter", adapter).
		WithContext("phase", PhaseInitializing.String()).
		WithSeverity("critical")
}

func NewAdapterContextTransformError(adapter string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeAdapterContextTransform, "Adapter context transform failed").
		WithUserMessage("An adapter failed to prepare the application context").
		WithContext("adapter", adapter).
		WithContext("phase", PhaseRunning.String()).
		WithSeverity("critical")
}

func NewAdapterRouteAugmentError(adapter string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeAdapterRouteAugment, "Adapter route augmentation failed").
		WithUserMessage("An adapter failed to configure routes").
		WithContext("adapter", adapter).
		WithContext("phase", PhaseRoutesConfigured.String()).
		WithSeverity("critical")
}

func NewAdapterShutdownError(adapter string, hook string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeAdapterShutdown, "Adapter shutdown failed").
		WithUserMessage("An adapter failed to shut down cleanly").
		WithContext("adapter", adapter).
		WithContext("hook", hook).
		WithContext("phase", PhaseShuttingDown.String()).
		WithSeverity("error")
}

func NewAdapterInternalError(adapter string, hook string, recovered interface{}) *errors.Error {
	return errors.New(ErrCodeAdapterInternal, fmt.Sprintf("Adapter panicked: %v", recovered)).
		WithUserMessage("An adapter failed unexpectedly").
		WithContext("adapter", adapter).
		WithContext("hook", hook).
		WithSeverity("critical")
}

func NewManagerAlreadyStoppedError() *errors.Error {
	return errors.New(ErrCodeManagerAlreadyStopped, "Adapter manager already stopped").
		WithUserMessage("Shutdown has already been performed").
		WithSeverity("warning")
}

// Serving error constructors

func NewServerBindError(address string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeServerBind, "Server bind failed").
		WithUserMessage("The server could not listen on the configured address").
		WithContext("address", address).
		WithSeverity("critical")
}

func NewServerFailedError(cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeServerFailed, "Server failed").
		WithUserMessage("The server stopped unexpectedly").
		WithSeverity("error")
}

func NewStaticAssetsError(folder, fallback string) *errors.Error {
	return errors.New(ErrCodeStaticAssetsError,
		fmt.Sprintf("static path are not found, Folder %s fallback: %s", folder, fallback)).
		WithUserMessage("Static assets are misconfigured").
		WithContext("folder", folder).
		WithContext("fallback", fallback).
		WithSeverity("error")
}

// HTTP-facing error constructors

func NewNotFoundError(message string) *errors.Error {
	return errors.New(ErrCodeNotFound, message).
		WithUserMessage(message).
		WithSeverity("warning")
}

func NewBadRequestError(message string) *errors.Error {
	return errors.New(ErrCodeBadRequest, message).
		WithUserMessage(message).
		WithSeverity("warning")
}

func NewUnauthorizedError(message string) *errors.Error {
	return errors.New(ErrCodeUnauthorized, message).
		WithUserMessage(message).
		WithSeverity("warning")
}

func NewInternalError(message string) *errors.Error {
	return errors.New(ErrCodeInternal, message).
		WithUserMessage(message).
		WithSeverity("error")
}
