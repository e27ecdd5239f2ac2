// Package checks evaluates a project against an ordered catalog of
// maintenance checks.
//
// A Check pairs a name and a remediation hint with a Predicate. The Runner
// evaluates predicates in registration order; a predicate that errors or
// panics counts as a failed check and the run carries on.
package checks

import "context"

// Predicate decides whether a project satisfies one check.
type Predicate interface {
	Evaluate(ctx context.Context, p *Project) (bool, error)
}

// PredicateFunc adapts a function to Predicate.
type PredicateFunc func(ctx context.Context, p *Project) (bool, error)

// Evaluate implements Predicate.
func (f PredicateFunc) Evaluate(ctx context.Context, p *Project) (bool, error) {
	return f(ctx, p)
}

// Check is one entry of a catalog.
type Check struct {
	Name      string
	Fix       string
	Predicate Predicate
}

// Result is the outcome of a single check. Fix is nil when the check passed.
// Err holds an absorbed predicate fault; it is not part of the JSON form,
// which is exactly {name, passed, fix}.
type Result struct {
	Name   string  `json:"name"`
	Passed bool    `json:"passed"`
	Fix    *string `json:"fix"`
	Err    string  `json:"-"`
}

// Summary aggregates the results of one run.
type Summary struct {
	Passed  int      `json:"passed"`
	Failed  int      `json:"failed"`
	Total   int      `json:"total"`
	Results []Result `json:"results"`
}

// OK reports whether every check passed.
func (s Summary) OK() bool {
	return s.Failed == 0
}

// Failures returns the failed results in order.
func (s Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
