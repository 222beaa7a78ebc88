// Package sniff runs analysis rules over a token stream. The Runner is the
// token-visiting loop: it forwards target tokens to the context trackers and
// hands each registered token to the sniffs listening for its kind.
package sniff

import (
	"fmt"
	"slices"
	"sort"

	"github.com/shinyvision/sniffctx/internal/token"
	"github.com/shinyvision/sniffctx/internal/tracking"
)

// Severity of a violation.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Violation is a single finding.
type Violation struct {
	Code     string
	Message  string
	Severity Severity
	Pos      int
	Line     int
	Column   int
}

// Sniff is an analysis rule.
type Sniff interface {
	// Code is the unique "Category.Name" identifier of the sniff.
	Code() string
	// Register returns the token kinds Process is called for.
	Register() []token.Kind
	Process(file *File, pos int) error
}

// File is the view of the file under analysis handed to sniffs.
type File struct {
	*token.File
	Tracking   *tracking.Context
	violations []Violation
}

func (f *File) AddError(pos int, code, format string, args ...any) {
	f.add(SeverityError, pos, code, format, args...)
}

func (f *File) AddWarning(pos int, code, format string, args ...any) {
	f.add(SeverityWarning, pos, code, format, args...)
}

func (f *File) add(severity Severity, pos int, code, format string, args ...any) {
	tok := f.At(pos)
	f.violations = append(f.violations, Violation{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Severity: severity,
		Pos:      pos,
		Line:     tok.Line,
		Column:   tok.Column,
	})
}

var registry = map[string]func() Sniff{}

// Register makes a sniff available by code. It panics on a duplicate or empty
// code, which can only come from a programming error.
func Register(factory func() Sniff) {
	code := factory().Code()
	if code == "" {
		panic("sniff: empty code")
	}
	if _, exists := registry[code]; exists {
		panic("sniff: duplicate code " + code)
	}
	registry[code] = factory
}

// Codes returns the codes of all registered sniffs, sorted.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Known reports whether code names a registered sniff.
func Known(code string) bool {
	_, ok := registry[code]
	return ok
}

// Enabled instantiates every registered sniff whose code is not in disabled.
func Enabled(disabled []string) []Sniff {
	var out []Sniff
	for _, code := range Codes() {
		if slices.Contains(disabled, code) {
			continue
		}
		out = append(out, registry[code]())
	}
	return out
}
