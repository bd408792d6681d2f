package domain

import (
	"context"
	"strings"
	"time"

	"github.com/fatih/camelcase"
)

// CheckStatus is the tri-state outcome of a single check.
type CheckStatus string

const (
	StatusNotRun CheckStatus = "not_run"
	StatusFailed CheckStatus = "failed"
	StatusPassed CheckStatus = "passed"
)

// CheckResult records what happened to one named check.
type CheckResult struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Status CheckStatus `json:"status"`
	Detail string      `json:"detail,omitempty"`
}

func (r CheckResult) Passed() bool { return r.Status == StatusPassed }

// Key returns the snake_case form of the check ID.
func (r CheckResult) Key() string {
	words := camelcase.Split(r.ID)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// DisplayName turns a CamelCase check ID into space separated words.
// "TokenConfiguration" becomes "Token Configuration".
func DisplayName(id string) string {
	return strings.Join(camelcase.Split(id), " ")
}

// Step is one entry of a gated pipeline. Requires names the ID of the step
// that must have passed before this one is attempted.
type Step struct {
	ID       string
	Requires string
	Run      func(ctx context.Context) (string, error)
}

// Report is the ordered, finished outcome of a pipeline run.
type Report struct {
	Title      string        `json:"title"`
	Results    []CheckResult `json:"results"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// OK reports whether every check passed and no run-level error occurred.
func (r Report) OK() bool {
	if r.Error != "" || len(r.Results) == 0 {
		return false
	}
	for _, res := range r.Results {
		if !res.Passed() {
			return false
		}
	}
	return true
}

// Result looks up a check by ID.
func (r Report) Result(id string) (CheckResult, bool) {
	for _, res := range r.Results {
		if res.ID == id {
			return res, true
		}
	}
	return CheckResult{}, false
}

// Counts returns the number of passed, failed and not-run checks.
func (r Report) Counts() (passed, failed, notRun int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		default:
			notRun++
		}
	}
	return passed, failed, notRun
}
