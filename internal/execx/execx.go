// Package execx runs external tools and captures their exit code and output.
//
// Everything that shells out (git, npm) goes through the Runner interface so
// callers can substitute a scripted fake in tests.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ErrNotFound is returned when the executable cannot be located.
var ErrNotFound = errors.New("executable not found")

// Cmd describes one invocation.
type Cmd struct {
	Dir  string
	Name string
	Args []string
	// Stdout and Stderr, when set, receive the output live in addition to
	// it being captured in the Result.
	Stdout io.Writer
	Stderr io.Writer
	// Env entries are appended to the inherited environment.
	Env []string
}

// String renders the command line for logs and error messages.
func (c Cmd) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result is the outcome of a command that started.
type Result struct {
	Code   int
	Stdout string
	Stderr string
}

// OK reports whether the command exited zero.
func (r Result) OK() bool {
	return r.Code == 0
}

// Runner runs external commands. A non-zero exit is reported in Result.Code,
// not as an error; the error is reserved for commands that could not run.
type Runner interface {
	Run(ctx context.Context, cmd Cmd) (Result, error)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, c Cmd) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = teeTo(&stdout, c.Stdout)
	cmd.Stderr = teeTo(&stderr, c.Stderr)

	entry := log.WithFields(log.Fields{"cmd": c.String(), "dir": c.Dir})
	entry.Debug("exec")

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.Code = exitErr.ExitCode()
			entry.WithField("code", res.Code).Debug("exec finished")
			return res, nil
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return res, fmt.Errorf("%s: %w", c.Name, ErrNotFound)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("%s: %w", c.String(), ctxErr)
		}
		return res, fmt.Errorf("running %s: %w", c.String(), err)
	}

	entry.WithField("code", 0).Debug("exec finished")
	return res, nil
}

func teeTo(buf *bytes.Buffer, live io.Writer) io.Writer {
	if live == nil {
		return buf
	}
	return io.MultiWriter(buf, live)
}

// Default is the Runner used when none is injected.
var Default Runner = ExecRunner{}
