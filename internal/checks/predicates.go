package checks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/JonathanRyzowy/maintenance-release-operator/internal/manifest"
)

// FileExists passes when any path matching one of the patterns exists.
// Patterns are doublestar globs relative to the project root, so variants
// can be written as "README{.md,.txt}".
type FileExists struct {
	Patterns []string
}

// AnyFile is shorthand for FileExists over literal names or patterns.
func AnyFile(patterns ...string) FileExists {
	return FileExists{Patterns: patterns}
}

// Evaluate implements Predicate.
func (f FileExists) Evaluate(_ context.Context, p *Project) (bool, error) {
	for _, pattern := range f.Patterns {
		matches, err := doublestar.Glob(p.FS, pattern)
		if err != nil {
			return false, fmt.Errorf("glob %q: %w", pattern, err)
		}
		if len(matches) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// Exclusive fails only when every one of Paths exists at once.
type Exclusive struct {
	Paths []string
}

// Evaluate implements Predicate.
func (e Exclusive) Evaluate(_ context.Context, p *Project) (bool, error) {
	for _, path := range e.Paths {
		if !p.Exists(path) {
			return true, nil
		}
	}
	return len(e.Paths) < 2, nil
}

// manifestOrAbsent loads the manifest, mapping a missing file to (nil, nil).
func manifestOrAbsent(p *Project) (*manifest.Manifest, error) {
	m, err := p.Manifest()
	if errors.Is(err, manifest.ErrNotFound) {
		return nil, nil
	}
	return m, err
}

// TestScript passes when the manifest defines a test script other than the
// npm init placeholder.
type TestScript struct{}

// Evaluate implements Predicate.
func (TestScript) Evaluate(_ context.Context, p *Project) (bool, error) {
	m, err := manifestOrAbsent(p)
	if err != nil || m == nil {
		return false, err
	}
	return m.HasRealTestScript(), nil
}

// EngineConstraint passes when engines[Engine] is a valid version range.
type EngineConstraint struct {
	Engine string
}

// Evaluate implements Predicate.
func (e EngineConstraint) Evaluate(_ context.Context, p *Project) (bool, error) {
	m, err := manifestOrAbsent(p)
	if err != nil || m == nil {
		return false, err
	}
	raw := strings.TrimSpace(m.Engines()[e.Engine])
	if raw == "" {
		return false, nil
	}
	if _, err := semver.NewConstraint(raw); err != nil {
		return false, fmt.Errorf("engines.%s %q: %w", e.Engine, raw, err)
	}
	return true, nil
}

// NoOutdated passes when the package manager reports nothing outdated.
// Without a manifest there is nothing to report.
type NoOutdated struct{}

// Evaluate implements Predicate.
func (NoOutdated) Evaluate(ctx context.Context, p *Project) (bool, error) {
	if !p.HasManifest() {
		return true, nil
	}
	if p.PM == nil {
		return false, errors.New("no package manager configured")
	}
	report, err := p.PM.Outdated(ctx)
	if err != nil {
		return false, err
	}
	return len(report) == 0, nil
}

// NoSevereVulnerabilities passes when the audit finds no high or critical
// vulnerabilities. It is skipped unless the manifest, a lockfile and the
// installed dependencies are all present.
type NoSevereVulnerabilities struct {
	Lockfiles  []string
	InstallDir string
}

// Evaluate implements Predicate.
func (n NoSevereVulnerabilities) Evaluate(ctx context.Context, p *Project) (bool, error) {
	if !p.HasManifest() || !p.Exists(n.InstallDir) {
		return true, nil
	}
	hasLock := false
	for _, lf := range n.Lockfiles {
		if p.Exists(lf) {
			hasLock = true
			break
		}
	}
	if !hasLock {
		return true, nil
	}
	if p.PM == nil {
		return false, errors.New("no package manager configured")
	}
	vulns, err := p.PM.Audit(ctx)
	if err != nil {
		return false, err
	}
	return vulns.Severe() == 0, nil
}
