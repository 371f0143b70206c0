// zap_logger.go: Logger binding for go.uber.org/zap
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a *zap.Logger to the Logger interface.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps logger. A nil logger yields a no-op zap logger.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{sugar: logger.Sugar()}
}

// NewZapLoggerFromConfig builds a console logger at the configured level.
// A disabled logger section still reports errors, like an unset level.
func NewZapLoggerFromConfig(cfg LoggerConfig, appName string) (*ZapLogger, error) {
	level := zapcore.ErrorLevel
	if cfg.Enable && cfg.Level != "" {
		if err := level.UnmarshalText([]byte(normalizeLevel(cfg.Level))); err != nil {
			return nil, NewConfigValidationError("invalid logger level "+cfg.Level, err)
		}
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return NewZapLogger(logger.Named(appName)), nil
}

// normalizeLevel maps the trace level, which zap lacks, onto debug.
func normalizeLevel(level string) string {
	if level == "trace" {
		return "debug"
	}
	return level
}

func (z *ZapLogger) Debug(msg string, args ...any) { z.sugar.Debugw(msg, args...) }
func (z *ZapLogger) Info(msg string, args ...any)  { z.sugar.Infow(msg, args...) }
func (z *ZapLogger) Warn(msg string, args ...any)  { z.sugar.Warnw(msg, args...) }
func (z *ZapLogger) Error(msg string, args ...any) { z.sugar.Errorw(msg, args...) }

// With implements Logger interface
func (z *ZapLogger) With(args ...any) Logger {
	return &ZapLogger{sugar: z.sugar.With(args...)}
}

// Sync flushes buffered log entries.
func (z *ZapLogger) Sync() error {
	return z.sugar.Sync()
}
