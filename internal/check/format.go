package check

import (
	"fmt"
	"io"

	"github.com/shinyvision/sniffctx/internal/sniff"
)

// Summary counts what a run reported.
type Summary struct {
	Files    int
	Errors   int
	Warnings int
	Failures int
}

// Failed reports whether the run should exit with a non-zero status.
func (s Summary) Failed() bool {
	return s.Errors+s.Warnings+s.Failures > 0
}

// Write prints one line per violation as path:line:col severity code message,
// with one-based line and column, followed by one line per file that could not
// be checked.
func (c *Checker) Write(w io.Writer, results []Result) (Summary, error) {
	sum := Summary{Files: len(results)}
	for _, res := range results {
		path := c.cfg.Rel(res.Path)
		for _, v := range res.Violations {
			if v.Severity == sniff.SeverityError {
				sum.Errors++
			} else {
				sum.Warnings++
			}
			if _, err := fmt.Fprintf(w, "%s:%d:%d %s %s %s\n",
				path, v.Line+1, v.Column+1, v.Severity, v.Code, v.Message); err != nil {
				return sum, err
			}
		}
		if res.Err != nil {
			sum.Failures++
			if _, err := fmt.Fprintf(w, "%s: %v\n", path, res.Err); err != nil {
				return sum, err
			}
		}
	}
	return sum, nil
}
