// Package poscache memoizes per-position lookups for the file currently being
// analysed. Entries live until the file identity changes or Clear is called;
// there is no other eviction.
package poscache

import (
	"github.com/shinyvision/sniffctx/internal/token"
)

// Method tags the lookup a cached value belongs to.
type Method uint8

const (
	MethodUseStatements Method = iota + 1
	MethodNamespace
	MethodSplitUse
)

// Key identifies a cached value within one file.
type Key struct {
	Method   Method
	Scope    int
	Position int
}

// Cache is not safe for concurrent use; each tracking context owns one.
type Cache struct {
	enabled bool
	file    token.Identity
	entries map[Key]any
}

func New() *Cache {
	return &Cache{
		enabled: true,
		entries: make(map[Key]any),
	}
}

// SetEnabled toggles memoization. A disabled cache misses on every lookup and
// drops every store.
func (c *Cache) SetEnabled(enabled bool) {
	c.enabled = enabled
}

func (c *Cache) Enabled() bool {
	return c.enabled
}

// IsCached reports whether a value is stored for key in file.
func (c *Cache) IsCached(file *token.File, key Key) bool {
	_, ok := c.Get(file, key)
	return ok
}

// Get returns the value stored for key in file.
func (c *Cache) Get(file *token.File, key Key) (any, bool) {
	if !c.enabled || file == nil || file.Identity() != c.file {
		return nil, false
	}
	v, ok := c.entries[key]
	return v, ok
}

// Set stores value for key in file. Storing for a different file than the
// one currently recorded drops every existing entry first.
func (c *Cache) Set(file *token.File, key Key, value any) {
	if !c.enabled || file == nil {
		return
	}
	if id := file.Identity(); id != c.file {
		clear(c.entries)
		c.file = id
	}
	c.entries[key] = value
}

// Clear drops every entry.
func (c *Cache) Clear() {
	clear(c.entries)
	c.file = token.Identity{}
}

func (c *Cache) Len() int {
	return len(c.entries)
}

// Lookup is a typed Get.
func Lookup[T any](c *Cache, file *token.File, key Key) (T, bool) {
	var zero T
	v, ok := c.Get(file, key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
