// Package tracking answers which namespace and which imports are in effect at
// an arbitrary token position of a PHP file. Both trackers absorb tokens
// monotonically, backfill on demand when queried ahead of the host loop and
// reset whenever they are handed a different file.
package tracking

import (
	"slices"
	"sync"

	"github.com/shinyvision/sniffctx/internal/poscache"
	"github.com/shinyvision/sniffctx/internal/token"
	"github.com/tliron/commonlog"
)

var logger = commonlog.GetLoggerf("sniffctx.tracking")

// Context owns one tracker of each kind and the position cache they share.
// A Context is bound to a single goroutine; run one per worker.
type Context struct {
	Cache      *poscache.Cache
	Imports    *ImportTracker
	Namespaces *NamespaceTracker
}

// NewContext creates a tracking context. A nil cache gets a fresh one.
func NewContext(cache *poscache.Cache) *Context {
	if cache == nil {
		cache = poscache.New()
	}
	return &Context{
		Cache:      cache,
		Imports:    newImportTracker(cache),
		Namespaces: newNamespaceTracker(cache),
	}
}

var (
	defaultOnce    sync.Once
	defaultContext *Context
)

// Default returns the process-wide context, creating it on first use.
func Default() *Context {
	defaultOnce.Do(func() {
		defaultContext = NewContext(nil)
	})
	return defaultContext
}

// TargetTokens returns the union of both trackers' target kinds.
func (c *Context) TargetTokens() []token.Kind {
	kinds := append(c.Imports.TargetTokens(), c.Namespaces.TargetTokens()...)
	slices.Sort(kinds)
	return slices.Compact(kinds)
}

// BeginFile binds both trackers to file.
func (c *Context) BeginFile(file *token.File) {
	c.Imports.BeginFile(file)
	c.Namespaces.BeginFile(file)
}

// Track forwards pos to both trackers.
func (c *Context) Track(file *token.File, pos int) {
	c.Imports.Track(file, pos)
	c.Namespaces.Track(file, pos)
}

// Reset clears all per-file state of both trackers and the cache.
func (c *Context) Reset() {
	c.Imports.Reset()
	c.Namespaces.Reset()
}
