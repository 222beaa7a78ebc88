package sniff

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shinyvision/sniffctx/internal/token"
	"github.com/shinyvision/sniffctx/internal/tracking"
	"github.com/tliron/commonlog"
)

var logger = commonlog.GetLoggerf("sniffctx.sniff")

// Runner visits every token of a file once, in order. It is bound to one
// tracking context and must not be shared between goroutines.
type Runner struct {
	tracking  *tracking.Context
	sniffs    []Sniff
	listeners map[token.Kind][]Sniff
	targets   map[token.Kind]bool
}

// NewRunner creates a runner driving ctx. A nil ctx gets a fresh context.
func NewRunner(ctx *tracking.Context, sniffs ...Sniff) *Runner {
	if ctx == nil {
		ctx = tracking.NewContext(nil)
	}
	r := &Runner{
		tracking:  ctx,
		sniffs:    sniffs,
		listeners: make(map[token.Kind][]Sniff),
		targets:   make(map[token.Kind]bool),
	}
	for _, s := range sniffs {
		for _, kind := range s.Register() {
			r.listeners[kind] = append(r.listeners[kind], s)
		}
	}
	for _, kind := range ctx.TargetTokens() {
		r.targets[kind] = true
	}
	return r
}

// Tracking returns the context the runner drives.
func (r *Runner) Tracking() *tracking.Context {
	return r.tracking
}

// Run processes file and returns its violations ordered by position. Sniff
// failures are joined into the returned error; the remaining sniffs still
// run.
func (r *Runner) Run(file *token.File) ([]Violation, error) {
	r.tracking.BeginFile(file)
	sf := &File{File: file, Tracking: r.tracking}

	var errs []error
	for pos, tok := range file.All() {
		if r.targets[tok.Kind] {
			r.tracking.Track(file, pos)
		}
		for _, s := range r.listeners[tok.Kind] {
			if err := s.Process(sf, pos); err != nil {
				logger.Errorf("%s failed on %s at %d: %v", s.Code(), file.Path(), pos, err)
				errs = append(errs, fmt.Errorf("%s: %w", s.Code(), err))
			}
		}
	}

	sort.SliceStable(sf.violations, func(i, j int) bool {
		return sf.violations[i].Pos < sf.violations[j].Pos
	})
	return sf.violations, errors.Join(errs...)
}
