// panic_recovery.go: Hook invocation with panic recovery, tracing and timing
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// invoke runs one adapter hook. A panic inside the hook is recovered and
// returned as an adapter-internal error, so it takes the same HandleError
// route as a returned error.
func (m *AdapterManager[R]) invoke(ctx context.Context, reg registeredAdapter[R], hook string, fn func(ctx context.Context) error) (err error) {
	ctx, span := m.tracer.Start(ctx, "adapter."+hook,
		trace.WithAttributes(
			attribute.String("adapter.name", reg.name),
			attribute.String("adapter.priority", reg.priority.String()),
			attribute.String("adapter.hook", hook),
		))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 64<<10)
			n := runtime.Stack(buf, false)
			m.logger.Error("Panic recovered in adapter hook",
				"adapter", reg.name,
				"hook", hook,
				"panic", r,
				"stack", string(buf[:n]))
			err = NewAdapterInternalError(reg.name, hook, r)
		}

		elapsed := time.Since(start)
		m.metrics.observeHook(reg.name, hook, elapsed)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		m.logger.Debug("Adapter hook completed",
			"adapter", reg.name,
			"hook", hook,
			"duration", elapsed,
			"failed", err != nil)
	}()

	return fn(ctx)
}
