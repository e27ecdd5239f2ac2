// Package execxtest provides a scripted execx.Runner for tests.
package execxtest

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/JonathanRyzowy/maintenance-release-operator/internal/execx"
)

// Response is the canned outcome for a command line.
type Response struct {
	Result execx.Result
	Err    error
}

// Fake answers commands from a table keyed by "name arg1 arg2 ...".
// Unknown commands fail with exit code 127. Every call is recorded.
type Fake struct {
	Responses map[string]Response
	Calls     []execx.Cmd
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{Responses: map[string]Response{}}
}

// On registers a response for the given command line.
func (f *Fake) On(line string, res execx.Result) *Fake {
	f.Responses[line] = Response{Result: res}
	return f
}

// OnError registers a start failure for the given command line.
func (f *Fake) OnError(line string, err error) *Fake {
	f.Responses[line] = Response{Err: err}
	return f
}

// Run implements execx.Runner.
func (f *Fake) Run(_ context.Context, cmd execx.Cmd) (execx.Result, error) {
	f.Calls = append(f.Calls, cmd)
	resp, ok := f.Responses[cmd.String()]
	if !ok {
		return execx.Result{Code: 127, Stderr: fmt.Sprintf("unexpected command: %s", cmd)}, nil
	}
	if resp.Err != nil {
		return execx.Result{}, resp.Err
	}
	if cmd.Stdout != nil {
		_, _ = io.WriteString(cmd.Stdout, resp.Result.Stdout)
	}
	if cmd.Stderr != nil {
		_, _ = io.WriteString(cmd.Stderr, resp.Result.Stderr)
	}
	return resp.Result, nil
}

// Lines returns the recorded command lines in call order.
func (f *Fake) Lines() []string {
	lines := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		lines = append(lines, c.String())
	}
	return lines
}

// Called reports whether any recorded command line starts with prefix.
func (f *Fake) Called(prefix string) bool {
	for _, line := range f.Lines() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
