package checks

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Observer is notified after each check is evaluated.
type Observer func(index int, r Result)

// Runner evaluates a registry sequentially.
type Runner struct {
	Registry *Registry
	Observer Observer
}

// NewRunner returns a Runner over reg.
func NewRunner(reg *Registry) *Runner {
	return &Runner{Registry: reg}
}

// Run evaluates every check in order. It never returns early: predicate
// errors and panics are recorded as failures.
func (r *Runner) Run(ctx context.Context, p *Project) Summary {
	checks := r.Registry.Checks()
	summary := Summary{Total: len(checks), Results: make([]Result, 0, len(checks))}

	for i, c := range checks {
		res := evaluate(ctx, c, p)
		if res.Passed {
			summary.Passed++
		} else {
			summary.Failed++
		}
		summary.Results = append(summary.Results, res)
		if r.Observer != nil {
			r.Observer(i, res)
		}
	}
	return summary
}

func evaluate(ctx context.Context, c Check, p *Project) (res Result) {
	res.Name = c.Name
	defer func() {
		if rec := recover(); rec != nil {
			res.Passed = false
			res.Err = fmt.Sprintf("panic: %v", rec)
			res.Fix = fixPtr(c.Fix)
			log.WithFields(log.Fields{"check": c.Name, "panic": rec}).Debug("check panicked")
		}
	}()

	ok, err := c.Predicate.Evaluate(ctx, p)
	entry := log.WithFields(log.Fields{"check": c.Name, "passed": ok && err == nil})
	if err != nil {
		res.Err = err.Error()
		entry = entry.WithError(err)
	}
	entry.Debug("check evaluated")

	res.Passed = ok && err == nil
	if !res.Passed {
		res.Fix = fixPtr(c.Fix)
	}
	return res
}

func fixPtr(s string) *string {
	return &s
}
