// Package report renders run results as an HTML report file and as a colored
// console summary.
package report

import (
	"time"

	"github.com/cposada23/qaharness/pkg/suite"
)

// Run aggregates everything one harness invocation produced.
type Run struct {
	Target    string
	BaseURL   string
	StartedAt time.Time
	Duration  time.Duration
	Suites    []suite.SuiteResult
}

// Passed returns the total passing case count.
func (r Run) Passed() int {
	n := 0
	for _, s := range r.Suites {
		n += s.Passed
	}
	return n
}

// Failed returns the total failing case count.
func (r Run) Failed() int {
	n := 0
	for _, s := range r.Suites {
		n += s.Failed
	}
	return n
}

// OK reports whether every case passed.
func (r Run) OK() bool {
	return r.Failed() == 0
}
