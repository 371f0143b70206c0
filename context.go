// context.go: Application context with a type-indexed extension store
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"fmt"
	"reflect"
)

// Context is the shared execution state threaded through the adapter lifecycle.
//
// It carries the runtime environment, the loaded configuration and an extension
// store holding at most one value per distinct Go type. Adapters use the store
// to hand typed state to each other (a connection pool, a client, a registry)
// without the manager knowing the concrete types involved.
//
// Context follows copy-on-write threading: the manager hands every hook its own
// Clone and keeps whatever the hook returns. A Context is not safe for concurrent
// mutation; once startup completes it is only read.
//
// Example usage:
//
//	app := NewContext()
//	goadapters.Set(&app, pool)
//	if pool, ok := goadapters.Get[*sql.DB](app); ok {
//	    // use pool
//	}
type Context struct {
	// Environment the application is running in (zero value when unset)
	Environment Environment

	// Config is the loaded configuration snapshot, immutable once loaded
	Config *Config

	store map[reflect.Type]storeEntry
}

// Cloner is implemented by extension values that need a deep copy when the
// Context is cloned. Values that don't implement it are copied by assignment.
type Cloner[T any] interface {
	Clone() T
}

type storeEntry struct {
	value any
	clone func(any) any
}

// NewContext creates an empty Context.
func NewContext() Context {
	return Context{}
}

// Set stores value under the identity of T and returns the value it replaced.
// The second result reports whether a previous value of type T existed.
func Set[T any](c *Context, value T) (T, bool) {
	if c.store == nil {
		c.store = make(map[reflect.Type]storeEntry)
	}

	key := reflect.TypeFor[T]()
	previous, replaced := c.store[key]
	c.store[key] = storeEntry{value: value, clone: cloneFuncFor[T]()}

	if !replaced {
		var zero T
		return zero, false
	}
	prev, _ := previous.value.(T)
	return prev, true
}

// Get returns the value stored for type T.
func Get[T any](c Context) (T, bool) {
	entry, ok := c.store[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	value, _ := entry.value.(T)
	return value, true
}

// MustGet returns the value stored for type T and panics when it is absent.
func MustGet[T any](c Context) T {
	value, ok := Get[T](c)
	if !ok {
		panic(fmt.Sprintf("goadapters: no value of type %s in context", reflect.TypeFor[T]()))
	}
	return value
}

// Clear removes all extension values. Environment and Config are kept.
func (c *Context) Clear() {
	clear(c.store)
}

// IsEmpty reports whether the extension store holds no values.
func (c Context) IsEmpty() bool {
	return len(c.store) == 0
}

// Len returns the number of extension values.
func (c Context) Len() int {
	return len(c.store)
}

// Clone returns a copy whose extension store can be mutated without affecting c.
func (c Context) Clone() Context {
	cloned := Context{
		Environment: c.Environment,
		Config:      c.Config,
	}
	if c.store == nil {
		return cloned
	}

	cloned.store = make(map[reflect.Type]storeEntry, len(c.store))
	for key, entry := range c.store {
		cloned.store[key] = storeEntry{value: entry.clone(entry.value), clone: entry.clone}
	}
	return cloned
}

func cloneFuncFor[T any]() func(any) any {
	return func(v any) any {
		if cloner, ok := v.(Cloner[T]); ok {
			return cloner.Clone()
		}
		return v
	}
}
