// shutdown_signal.go: One-shot shutdown broadcast
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"context"
	"sync"
)

// ShutdownSubscription resolves once, when the manager broadcasts shutdown.
type ShutdownSubscription struct {
	done chan struct{}
}

// Done returns a channel closed when shutdown is broadcast.
func (s *ShutdownSubscription) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until shutdown is broadcast or ctx is done.
func (s *ShutdownSubscription) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fired reports whether this subscription has been resolved.
func (s *ShutdownSubscription) Fired() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// shutdownBroadcaster gives every subscription its own channel, registered at
// subscription time, and closes all of them exactly once. A subscription taken
// after the broadcast is never resolved.
type shutdownBroadcaster struct {
	mu          sync.Mutex
	subscribers []chan struct{}
	sent        bool
}

func (b *shutdownBroadcaster) subscribe() *ShutdownSubscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan struct{})
	if !b.sent {
		b.subscribers = append(b.subscribers, ch)
	}
	return &ShutdownSubscription{done: ch}
}

// broadcast resolves every pending subscription and returns how many were
// notified. Only the first call has any effect.
func (b *shutdownBroadcaster) broadcast() (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sent {
		return 0, false
	}
	b.sent = true

	for _, ch := range b.subscribers {
		close(ch)
	}
	notified := len(b.subscribers)
	b.subscribers = nil
	return notified, true
}

func (b *shutdownBroadcaster) isSent() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sent
}
