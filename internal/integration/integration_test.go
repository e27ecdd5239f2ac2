//go:build integration

// Package integration provides integration tests for the maintenance-release-operator CLI.
// These tests build the binary, create real git repositories and run full
// command workflows against them. npm is replaced by a stub script on PATH.
//
// Run with: go test -tags=integration ./internal/integration/...
package integration

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// npmStub answers the npm subcommands the CLI uses. NPM_STUB_FAIL makes
// "npm run" fail.
const npmStub = `#!/bin/sh
case "$1" in
run)
  if [ -n "$NPM_STUB_FAIL" ]; then echo "tests failed" >&2; exit 1; fi
  echo "ci ok"
  ;;
outdated)
  echo "{}"
  ;;
audit)
  echo '{"metadata":{"vulnerabilities":{"info":0,"low":0,"moderate":0,"high":0,"critical":0,"total":0}}}'
  ;;
esac
`

const manifest = `{
  "name": "demo",
  "version": "0.9.0",
  "scripts": {
    "test": "node --test"
  },
  "engines": {
    "node": ">=20"
  }
}
`

// testRepo is a helper for creating and managing test git repositories.
type testRepo struct {
	t      *testing.T
	dir    string
	binary string
	env    []string
}

// newTestRepo builds the binary and initializes a git repo with the npm stub on PATH.
func newTestRepo(t *testing.T) *testRepo {
	t.Helper()

	tools := t.TempDir()
	binary := filepath.Join(tools, "maintenance-release-operator")
	buildCmd := exec.Command("go", "build", "-o", binary, "./cmd/maintenance-release-operator")
	buildCmd.Dir = findProjectRoot(t)
	buildCmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	if output, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to build binary: %v\n%s", err, output)
	}
	if err := os.WriteFile(filepath.Join(tools, "npm"), []byte(npmStub), 0o755); err != nil {
		t.Fatalf("failed to write npm stub: %v", err)
	}

	repo := &testRepo{
		t:      t,
		dir:    t.TempDir(),
		binary: binary,
		env: append(os.Environ(),
			"PATH="+tools+string(os.PathListSeparator)+os.Getenv("PATH"),
			"MRO_CONFIG_HOME="+t.TempDir(),
		),
	}

	repo.git("init", "--initial-branch=main")
	repo.git("config", "user.email", "test@example.com")
	repo.git("config", "user.name", "Test User")
	repo.git("config", "commit.gpgsign", "false")
	repo.git("config", "tag.gpgsign", "false")

	return repo
}

// findProjectRoot locates the project root by finding go.mod.
func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// git runs a git command in the test repo.
func (r *testRepo) git(args ...string) string {
	r.t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %v failed: %v\n%s", args, err, output)
	}
	return strings.TrimSpace(string(output))
}

// createFile creates a file with the given content.
func (r *testRepo) createFile(name, content string) {
	r.t.Helper()

	path := filepath.Join(r.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		r.t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		r.t.Fatalf("failed to write file %s: %v", name, err)
	}
}

func (r *testRepo) readFile(name string) string {
	r.t.Helper()

	data, err := os.ReadFile(filepath.Join(r.dir, name))
	if err != nil {
		r.t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}

// commit stages everything and commits it.
func (r *testRepo) commit(msg string) {
	r.t.Helper()

	r.git("add", "-A")
	r.git("commit", "-m", msg)
}

// healthy lays down a project that passes every check.
func (r *testRepo) healthy() {
	r.t.Helper()

	r.createFile("package.json", manifest)
	r.createFile("README.md", "# demo\n")
	r.createFile("LICENSE", "MIT\n")
	r.createFile("CHANGELOG.md", "# Changelog\n\nAll notable changes to this project will be documented in this file.\n")
	r.createFile(".gitignore", "node_modules\n")
	r.createFile(".github/workflows/ci.yml", "on: push\n")
	r.createFile("package-lock.json", "{}\n")
	r.createFile("node_modules/.keep", "")
	r.commit("chore: scaffold")
	r.git("tag", "-a", "v0.9.0", "-m", "Release v0.9.0")
}

// run executes the binary and returns stdout, stderr and the exit code.
func (r *testRepo) run(extraEnv []string, args ...string) (string, string, int) {
	r.t.Helper()

	cmd := exec.Command(r.binary, args...)
	cmd.Dir = r.dir
	cmd.Env = append(append([]string{}, r.env...), extraEnv...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return stdout.String(), stderr.String(), 0
	case errors.As(err, &exitErr):
		return stdout.String(), stderr.String(), exitErr.ExitCode()
	default:
		r.t.Fatalf("running %v: %v", args, err)
		return "", "", -1
	}
}

func TestCheckHealthyProject(t *testing.T) {
	repo := newTestRepo(t)
	repo.healthy()

	stdout, stderr, code := repo.run(nil, "check")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0\nstdout: %s\nstderr: %s", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "Passed: 11/11") {
		t.Errorf("stdout missing totals:\n%s", stdout)
	}
}

func TestCheckEmptyProjectJSON(t *testing.T) {
	repo := newTestRepo(t)

	stdout, _, code := repo.run(nil, "check", "--json")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}

	var summary struct {
		Failed int `json:"failed"`
		Total  int `json:"total"`
	}
	if err := json.Unmarshal([]byte(stdout), &summary); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if summary.Total != 11 || summary.Failed != 8 {
		t.Errorf("summary = %+v, want 8 of 11 failed", summary)
	}
}

// TestReleaseCycle runs two releases in a row and checks that each changelog
// section lists only the commits since the previous tag.
func TestReleaseCycle(t *testing.T) {
	repo := newTestRepo(t)
	repo.healthy()

	repo.createFile("index.js", "module.exports = 1\n")
	repo.commit("feat: add entry point")

	stdout, stderr, code := repo.run(nil, "release", "minor")
	if code != 0 {
		t.Fatalf("first release exit = %d\nstdout: %s\nstderr: %s", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "🎉 Release v0.10.0 complete!") {
		t.Errorf("stdout missing completion banner:\n%s", stdout)
	}

	repo.createFile("index.js", "module.exports = 2\n")
	repo.commit("fix: return two")

	if _, stderr, code := repo.run(nil, "release"); code != 0 {
		t.Fatalf("second release exit = %d\nstderr: %s", code, stderr)
	}

	if got := repo.git("describe", "--tags", "--abbrev=0"); got != "v0.10.1" {
		t.Errorf("latest tag = %q, want v0.10.1", got)
	}
	if got := repo.git("status", "--porcelain"); got != "" {
		t.Errorf("working tree not clean after release:\n%s", got)
	}
	if !strings.Contains(repo.readFile("package.json"), `"version": "0.10.1"`) {
		t.Errorf("package.json not bumped:\n%s", repo.readFile("package.json"))
	}

	changelog := repo.readFile("CHANGELOG.md")
	newer := strings.Index(changelog, "## [0.10.1]")
	older := strings.Index(changelog, "## [0.10.0]")
	if newer < 0 || older < 0 || newer > older {
		t.Fatalf("changelog sections missing or out of order:\n%s", changelog)
	}
	if section := changelog[newer:older]; !strings.Contains(section, "- fix: return two") || strings.Contains(section, "feat: add entry point") {
		t.Errorf("0.10.1 section has wrong commits:\n%s", section)
	}
}

func TestReleaseFailingCI(t *testing.T) {
	repo := newTestRepo(t)
	repo.healthy()

	_, stderr, code := repo.run([]string{"NPM_STUB_FAIL=1"}, "release", "major")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "CI checks failed") {
		t.Errorf("stderr missing CI failure:\n%s", stderr)
	}
	if repo.readFile("package.json") != manifest {
		t.Error("package.json changed after failed CI")
	}
	if got := repo.git("tag", "--list", "v1.0.0"); got != "" {
		t.Errorf("tag created after failed CI: %q", got)
	}
}

func TestReleaseDirtyTree(t *testing.T) {
	repo := newTestRepo(t)
	repo.healthy()
	repo.createFile("scratch.txt", "wip\n")

	_, stderr, code := repo.run(nil, "release")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "working tree is dirty") {
		t.Errorf("stderr missing dirty tree error:\n%s", stderr)
	}
}
