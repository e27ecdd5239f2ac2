package checks

import "fmt"

// Registry is an ordered set of checks with unique names.
type Registry struct {
	checks []Check
	names  map[string]struct{}
}

// NewRegistry returns a registry holding checks in the given order.
func NewRegistry(checks ...Check) *Registry {
	r := &Registry{names: make(map[string]struct{}, len(checks))}
	for _, c := range checks {
		r.Register(c)
	}
	return r
}

// Register appends c. It panics on a duplicate or empty name or a nil
// predicate, since catalogs are fixed at build time.
func (r *Registry) Register(c Check) {
	if c.Name == "" {
		panic("checks: empty check name")
	}
	if c.Predicate == nil {
		panic(fmt.Sprintf("checks: check %q has no predicate", c.Name))
	}
	if _, dup := r.names[c.Name]; dup {
		panic(fmt.Sprintf("checks: duplicate check %q", c.Name))
	}
	if r.names == nil {
		r.names = map[string]struct{}{}
	}
	r.names[c.Name] = struct{}{}
	r.checks = append(r.checks, c)
}

// Checks returns a copy of the registered checks in order.
func (r *Registry) Checks() []Check {
	out := make([]Check, len(r.checks))
	copy(out, r.checks)
	return out
}

// Names returns the check names in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.checks))
	for _, c := range r.checks {
		names = append(names, c.Name)
	}
	return names
}

// Len returns the number of registered checks.
func (r *Registry) Len() int {
	return len(r.checks)
}
