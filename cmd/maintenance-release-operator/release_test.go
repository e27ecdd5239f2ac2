package main

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonathanRyzowy/maintenance-release-operator/internal/execx"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/execx/execxtest"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/output"
)

// npmOnly sends npm invocations to a fake and everything else to the real runner.
type npmOnly struct {
	fake *execxtest.Fake
}

func (r npmOnly) Run(ctx context.Context, cmd execx.Cmd) (execx.Result, error) {
	if cmd.Name == "npm" {
		return r.fake.Run(ctx, cmd)
	}
	return execx.Default.Run(ctx, cmd)
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.CommandContext(context.Background(), "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

// releaseRepo creates a git repo at version 1.0.0 with a tag and one
// commit after it. Skips when git is not installed.
func releaseRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	runGit(t, dir, "config", "user.email", "test@test.com")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "commit.gpgsign", "false")
	runGit(t, dir, "config", "tag.gpgsign", "false")

	writeFiles(t, dir, map[string]string{"package.json": healthyManifest})
	runGit(t, dir, "add", "package.json")
	runGit(t, dir, "commit", "-q", "-m", "initial")
	runGit(t, dir, "tag", "-a", "v1.0.0", "-m", "Release v1.0.0")

	writeFiles(t, dir, map[string]string{"index.js": "module.exports = 1\n"})
	runGit(t, dir, "add", "index.js")
	runGit(t, dir, "commit", "-q", "-m", "feat: add entry point")
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRelease_InvalidType(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"package.json": healthyManifest})
	fake := execxtest.New()

	_, stderr, err := execute(t, fake, "--root", root, "release", "huge")
	require.Error(t, err)
	assert.Equal(t, output.KindValidation, output.KindOf(err))
	assert.Contains(t, stderr, "Error: invalid version type: huge")
	assert.Contains(t, stderr, "Use major, minor, or patch.")
	assert.Empty(t, fake.Calls)
	assert.Equal(t, healthyManifest, readFile(t, filepath.Join(root, "package.json")))
}

func TestRelease_TooManyArgs(t *testing.T) {
	isolate(t)
	code, _, stderr := runCLI(t, "--root", t.TempDir(), "release", "major", "minor")

	assert.Equal(t, output.ExitFailure, code)
	assert.Contains(t, stderr, "accepts at most 1 arg")
}

func TestRelease_Patch(t *testing.T) {
	isolate(t)
	dir := releaseRepo(t)
	fake := execxtest.New().On("npm run ci", execx.Result{Stdout: "all green\n"})

	stdout, _, err := execute(t, npmOnly{fake}, "--root", dir, "release")
	require.NoError(t, err)

	assert.Contains(t, stdout, "🔍 Running pre-release checks...")
	assert.Contains(t, stdout, "✅ Working tree is clean")
	assert.Contains(t, stdout, "all green")
	assert.Contains(t, stdout, "🚀 Releasing version: 1.0.0 → 1.0.1")
	assert.Contains(t, stdout, "✅ Created tag v1.0.1")
	assert.Contains(t, stdout, "🎉 Release v1.0.1 complete!")
	assert.Contains(t, stdout, "  git push origin main\n  git push origin v1.0.1\n")
	assert.Contains(t, stdout, "npm publish")

	assert.Contains(t, readFile(t, filepath.Join(dir, "package.json")), `"version": "1.0.1"`)
	assert.Contains(t, readFile(t, filepath.Join(dir, "CHANGELOG.md")), "- feat: add entry point")
	assert.Equal(t, "chore: release v1.0.1", runGit(t, dir, "log", "-1", "--pretty=format:%s"))
	assert.Equal(t, "tag", runGit(t, dir, "cat-file", "-t", "v1.0.1"))
	assert.Equal(t, []string{"npm run ci"}, fake.Lines())
}

func TestRelease_JSON(t *testing.T) {
	isolate(t)
	dir := releaseRepo(t)
	fake := execxtest.New().On("npm run ci", execx.Result{Stdout: "all green\n"})

	stdout, stderr, err := execute(t, npmOnly{fake}, "--root", dir, "--json", "release", "minor")
	require.NoError(t, err)
	assert.Contains(t, stderr, "all green", "CI output stays off stdout")

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got), stdout)
	assert.Equal(t, "minor", got["bump"])
	assert.Equal(t, "1.0.0", got["previous_version"])
	assert.Equal(t, "1.1.0", got["version"])
	assert.Equal(t, "v1.1.0", got["tag"])
}

func TestRelease_DirtyTree(t *testing.T) {
	isolate(t)
	dir := releaseRepo(t)
	writeFiles(t, dir, map[string]string{"index.js": "module.exports = 2\n"})
	fake := execxtest.New()

	_, stderr, err := execute(t, npmOnly{fake}, "--root", dir, "release", "major")
	require.Error(t, err)
	assert.Equal(t, output.KindPrecondition, output.KindOf(err))
	assert.Contains(t, stderr, "working tree is dirty")
	assert.Contains(t, stderr, "Commit or stash changes before releasing.")
	assert.Empty(t, fake.Calls, "CI does not run on a dirty tree")
	assert.Equal(t, healthyManifest, readFile(t, filepath.Join(dir, "package.json")))
}

func TestRelease_CIFailure(t *testing.T) {
	isolate(t)
	dir := releaseRepo(t)
	fake := execxtest.New().On("npm run ci", execx.Result{Code: 1, Stderr: "2 tests failed\n"})

	_, stderr, err := execute(t, npmOnly{fake}, "--root", dir, "release")
	require.Error(t, err)
	assert.Contains(t, stderr, "CI checks failed")
	assert.Contains(t, stderr, "Fix issues before releasing.")
	assert.Equal(t, healthyManifest, readFile(t, filepath.Join(dir, "package.json")))
	assert.NoFileExists(t, filepath.Join(dir, "CHANGELOG.md"))
}

func TestRelease_DryRun(t *testing.T) {
	isolate(t)
	dir := releaseRepo(t)
	fake := execxtest.New()

	stdout, _, err := execute(t, npmOnly{fake}, "--root", dir, "release", "--dry-run", "major")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Dry run: major release: 1.0.0 → 2.0.0")
	assert.Contains(t, stdout, "CHANGELOG.md (new)")
	assert.Contains(t, stdout, "tag v2.0.0")
	assert.Contains(t, stdout, "- feat: add entry point")
	assert.NotContains(t, stdout, "🚀 Releasing version")

	assert.Empty(t, fake.Calls)
	assert.Equal(t, healthyManifest, readFile(t, filepath.Join(dir, "package.json")))
	assert.NoFileExists(t, filepath.Join(dir, "CHANGELOG.md"))
	assert.Empty(t, runGit(t, dir, "status", "--porcelain"))
	assert.Empty(t, runGit(t, dir, "tag", "--list", "v2.0.0"))
}
