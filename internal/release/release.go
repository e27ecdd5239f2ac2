// Package release bumps a project's version, records it in the changelog and
// commits and tags the result.
//
// The sequence is linear. Each stage must succeed before the next starts;
// nothing is written until the working tree is clean and CI has passed.
// Failures after the first write are reported but not rolled back.
package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/JonathanRyzowy/maintenance-release-operator/internal/changelog"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/git"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/manifest"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/output"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/semver"
)

// VCS is the version control surface a release needs.
type VCS interface {
	RequireClean(ctx context.Context) error
	CommitsSince(ctx context.Context, tag string, limit int) ([]git.Commit, error)
	Add(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, message string) error
	TagAnnotated(ctx context.Context, name, message string) error
}

// PackageManager runs the project's CI script.
type PackageManager interface {
	RunScript(ctx context.Context, script string, stdout, stderr io.Writer) error
}

// Options configures an Orchestrator. Manifest and Changelog are relative to
// Root.
type Options struct {
	Root        string
	Manifest    string
	Changelog   string
	CIScript    string
	CommitLimit int
	// Stdout and Stderr receive the CI script's output.
	Stdout io.Writer
	Stderr io.Writer
	Now    func() time.Time
}

func (o *Options) applyDefaults() {
	if o.Manifest == "" {
		o.Manifest = "package.json"
	}
	if o.Changelog == "" {
		o.Changelog = "CHANGELOG.md"
	}
	if o.CIScript == "" {
		o.CIScript = "ci"
	}
	if o.CommitLimit <= 0 {
		o.CommitLimit = 10
	}
	if o.Stdout == nil {
		o.Stdout = io.Discard
	}
	if o.Stderr == nil {
		o.Stderr = io.Discard
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Result describes a completed or planned release.
type Result struct {
	Bump             semver.BumpType `json:"bump"`
	Previous         string          `json:"previous_version"`
	Version          string          `json:"version"`
	Tag              string          `json:"tag"`
	Date             string          `json:"date"`
	Commits          []string        `json:"commits"`
	Files            []string        `json:"files"`
	ChangelogCreated bool            `json:"changelog_created"`
	DryRun           bool            `json:"dry_run"`
}

// Orchestrator runs releases for one project.
type Orchestrator struct {
	vcs      VCS
	pm       PackageManager
	opts     Options
	observer Observer
}

// New returns an Orchestrator.
func New(vcs VCS, pm PackageManager, opts Options) *Orchestrator {
	opts.applyDefaults()
	return &Orchestrator{vcs: vcs, pm: pm, opts: opts}
}

// SetObserver registers fn to receive stage events.
func (o *Orchestrator) SetObserver(fn Observer) {
	o.observer = fn
}

// run holds the state threaded through one release.
type run struct {
	bump     semver.BumpType
	manifest *manifest.Manifest
	result   Result
}

// Run performs a release with the given bump type ("" means patch).
func (o *Orchestrator) Run(ctx context.Context, bump string) (*Result, error) {
	r := &run{}
	steps := []struct {
		stage Stage
		fn    func(context.Context, *run) (string, error)
	}{
		{StageValidateType, o.validateType(bump)},
		{StageCheckCleanTree, o.checkCleanTree},
		{StageRunCI, o.runCI},
		{StageReadManifest, o.readManifest},
		{StageComputeNext, o.computeNext},
		{StageWriteManifest, o.writeManifest},
		{StageWriteChangelog, o.writeChangelog},
		{StageCommitAndTag, o.commitAndTag},
	}

	for _, step := range steps {
		if err := o.stage(ctx, step.stage, r, step.fn); err != nil {
			return nil, err
		}
	}
	o.emit(Event{Stage: StageDone, Kind: StageCompleted, Detail: r.result.Tag})
	return &r.result, nil
}

// Plan computes what Run would do without running CI or writing anything.
// The bump type, working tree and manifest are still validated.
func (o *Orchestrator) Plan(ctx context.Context, bump string) (*Result, error) {
	return o.plan(ctx, bump, true)
}

// Preview is Plan without the clean working tree requirement.
func (o *Orchestrator) Preview(ctx context.Context, bump string) (*Result, error) {
	return o.plan(ctx, bump, false)
}

func (o *Orchestrator) plan(ctx context.Context, bump string, requireClean bool) (*Result, error) {
	r := &run{}
	r.result.DryRun = true
	type step struct {
		stage Stage
		fn    func(context.Context, *run) (string, error)
	}
	steps := []step{{StageValidateType, o.validateType(bump)}}
	if requireClean {
		steps = append(steps, step{StageCheckCleanTree, o.checkCleanTree})
	}
	steps = append(steps,
		step{StageReadManifest, o.readManifest},
		step{StageComputeNext, o.computeNext},
	)

	for _, s := range steps {
		if err := o.stage(ctx, s.stage, r, s.fn); err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(o.path(o.opts.Changelog)); errors.Is(err, fs.ErrNotExist) {
		r.result.ChangelogCreated = true
	}
	r.result.Files = []string{o.opts.Manifest, o.opts.Changelog}
	return &r.result, nil
}

func (o *Orchestrator) stage(ctx context.Context, s Stage, r *run, fn func(context.Context, *run) (string, error)) error {
	entry := log.WithField("stage", s)
	entry.Debug("stage started")
	o.emit(Event{Stage: s, Kind: StageStarted})

	if err := ctx.Err(); err != nil {
		o.emit(Event{Stage: s, Kind: StageFailed, Err: err})
		return output.NewInternalError("release interrupted", err)
	}

	detail, err := fn(ctx, r)
	if err != nil {
		entry.WithError(err).Debug("stage failed")
		o.emit(Event{Stage: s, Kind: StageFailed, Err: err})
		return err
	}
	entry.WithField("detail", detail).Debug("stage completed")
	o.emit(Event{Stage: s, Kind: StageCompleted, Detail: detail})
	return nil
}

func (o *Orchestrator) emit(e Event) {
	if o.observer != nil {
		o.observer(e)
	}
}

func (o *Orchestrator) path(rel string) string {
	return filepath.Join(o.opts.Root, rel)
}

func (o *Orchestrator) validateType(bump string) func(context.Context, *run) (string, error) {
	return func(_ context.Context, r *run) (string, error) {
		t, err := semver.ParseBumpType(bump)
		if err != nil {
			return "", output.NewValidationError(fmt.Sprintf("invalid version type: %s", bump), err).
				WithHint("Use major, minor, or patch.")
		}
		r.bump = t
		r.result.Bump = t
		return string(t), nil
	}
}

func (o *Orchestrator) checkCleanTree(ctx context.Context, _ *run) (string, error) {
	err := o.vcs.RequireClean(ctx)
	switch {
	case err == nil:
		return "working tree is clean", nil
	case errors.Is(err, git.ErrDirtyTree):
		return "", output.NewPreconditionError(err.Error(), err).
			WithHint("Commit or stash changes before releasing.")
	default:
		return "", output.NewPreconditionError("could not check working tree", err)
	}
}

func (o *Orchestrator) runCI(ctx context.Context, _ *run) (string, error) {
	if err := o.pm.RunScript(ctx, o.opts.CIScript, o.opts.Stdout, o.opts.Stderr); err != nil {
		return "", output.NewPreconditionError("CI checks failed", err).
			WithHint("Fix issues before releasing.")
	}
	return "CI checks passed", nil
}

func (o *Orchestrator) readManifest(_ context.Context, r *run) (string, error) {
	m, err := manifest.Load(o.path(o.opts.Manifest))
	if err != nil {
		return "", output.NewIOError("could not read "+o.opts.Manifest, err)
	}
	current, err := m.RequireVersion()
	if err != nil {
		return "", output.NewIOError(o.opts.Manifest+" has no version", err)
	}
	r.manifest = m
	r.result.Previous = current
	return current, nil
}

func (o *Orchestrator) computeNext(ctx context.Context, r *run) (string, error) {
	next, err := semver.Next(r.result.Previous, string(r.bump))
	if err != nil {
		return "", output.NewValidationError("invalid version format: "+r.result.Previous, err)
	}
	r.result.Version = next
	r.result.Tag = "v" + next
	r.result.Date = o.opts.Now().UTC().Format(changelog.DateLayout)
	r.result.Commits = o.commitSubjects(ctx, "v"+r.result.Previous)
	return r.result.Previous + " → " + next, nil
}

// commitSubjects collects the subjects since the previous tag. Any failure
// yields no subjects; the changelog then records a maintenance release.
func (o *Orchestrator) commitSubjects(ctx context.Context, tag string) []string {
	commits, err := o.vcs.CommitsSince(ctx, tag, o.opts.CommitLimit)
	if err != nil {
		log.WithError(err).WithField("tag", tag).Debug("collecting commits failed")
		return []string{}
	}
	return git.Subjects(commits)
}

func (o *Orchestrator) writeManifest(_ context.Context, r *run) (string, error) {
	r.manifest.SetVersion(r.result.Version)
	if err := r.manifest.Save(o.path(o.opts.Manifest)); err != nil {
		return "", output.NewIOError("could not write "+o.opts.Manifest, err)
	}
	return o.opts.Manifest + " updated", nil
}

func (o *Orchestrator) writeChangelog(_ context.Context, r *run) (string, error) {
	path := o.path(o.opts.Changelog)

	content := changelog.DefaultHeader
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		content = string(data)
	case errors.Is(err, fs.ErrNotExist):
		r.result.ChangelogCreated = true
	default:
		return "", output.NewIOError("could not read "+o.opts.Changelog, err)
	}

	updated := changelog.Insert(content, changelog.Entry{
		Version: r.result.Version,
		Date:    o.opts.Now().UTC(),
		Changes: r.result.Commits,
	})
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return "", output.NewIOError("could not write "+o.opts.Changelog, err)
	}
	return o.opts.Changelog + " updated", nil
}

func (o *Orchestrator) commitAndTag(ctx context.Context, r *run) (string, error) {
	files := []string{o.opts.Manifest, o.opts.Changelog}
	tag := r.result.Tag

	if err := o.vcs.Add(ctx, files...); err != nil {
		return "", output.NewSubprocessError("git operations failed", err)
	}
	if err := o.vcs.Commit(ctx, "chore: release "+tag); err != nil {
		return "", output.NewSubprocessError("git operations failed", err)
	}
	if err := o.vcs.TagAnnotated(ctx, tag, "Release "+tag); err != nil {
		return "", output.NewSubprocessError("git operations failed", err)
	}
	r.result.Files = files
	return tag, nil
}
