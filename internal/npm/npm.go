// Package npm wraps the npm commands mro relies on.
//
// outdated and audit exit non-zero when they have something to report, so the
// exit code is ignored and stdout is parsed instead.
package npm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonathanRyzowy/maintenance-release-operator/internal/execx"
)

// ErrScriptFailed is returned when an npm script exits non-zero.
var ErrScriptFailed = errors.New("script failed")

// Client runs npm in a project root.
type Client struct {
	root   string
	runner execx.Runner
	binary string
}

// New returns a Client for root. A nil runner uses execx.Default; an empty
// binary uses "npm".
func New(root string, runner execx.Runner, binary string) *Client {
	if runner == nil {
		runner = execx.Default
	}
	if binary == "" {
		binary = "npm"
	}
	return &Client{root: root, runner: runner, binary: binary}
}

func (c *Client) cmd(args ...string) execx.Cmd {
	return execx.Cmd{Dir: c.root, Name: c.binary, Args: args}
}

// OutdatedPackage is one entry of `npm outdated --json`.
type OutdatedPackage struct {
	Current  string `json:"current"`
	Wanted   string `json:"wanted"`
	Latest   string `json:"latest"`
	Location string `json:"location,omitempty"`
}

// Outdated runs `npm outdated --json` and returns the report keyed by
// package name. An empty report means every dependency is current.
func (c *Client) Outdated(ctx context.Context) (map[string]OutdatedPackage, error) {
	res, err := c.runner.Run(ctx, c.cmd("outdated", "--json"))
	if err != nil {
		return nil, fmt.Errorf("npm outdated: %w", err)
	}

	out := strings.TrimSpace(res.Stdout)
	if out == "" {
		if !res.OK() {
			return nil, fmt.Errorf("npm outdated exited %d: %s", res.Code, strings.TrimSpace(res.Stderr))
		}
		return map[string]OutdatedPackage{}, nil
	}

	// Workspaces report an array per package; only the key count matters.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		return nil, fmt.Errorf("parsing npm outdated output: %w", err)
	}
	report := make(map[string]OutdatedPackage, len(raw))
	for name, msg := range raw {
		var pkg OutdatedPackage
		_ = json.Unmarshal(msg, &pkg)
		report[name] = pkg
	}
	return report, nil
}

// Vulnerabilities are the severity counts of `npm audit --json`.
type Vulnerabilities struct {
	Info     int `json:"info"`
	Low      int `json:"low"`
	Moderate int `json:"moderate"`
	High     int `json:"high"`
	Critical int `json:"critical"`
	Total    int `json:"total"`
}

// Severe returns the number of high and critical findings.
func (v Vulnerabilities) Severe() int {
	return v.High + v.Critical
}

type auditReport struct {
	Metadata struct {
		Vulnerabilities Vulnerabilities `json:"vulnerabilities"`
	} `json:"metadata"`
	Error *struct {
		Code    string `json:"code"`
		Summary string `json:"summary"`
	} `json:"error"`
}

// Audit runs `npm audit --json` and returns the severity counts.
func (c *Client) Audit(ctx context.Context) (Vulnerabilities, error) {
	res, err := c.runner.Run(ctx, c.cmd("audit", "--json"))
	if err != nil {
		return Vulnerabilities{}, fmt.Errorf("npm audit: %w", err)
	}

	out := strings.TrimSpace(res.Stdout)
	if out == "" {
		return Vulnerabilities{}, fmt.Errorf("npm audit exited %d with no report: %s", res.Code, strings.TrimSpace(res.Stderr))
	}

	var report auditReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		return Vulnerabilities{}, fmt.Errorf("parsing npm audit output: %w", err)
	}
	if report.Error != nil {
		return Vulnerabilities{}, fmt.Errorf("npm audit: %s: %s", report.Error.Code, report.Error.Summary)
	}
	return report.Metadata.Vulnerabilities, nil
}

// RunScript runs `npm run <script>`, streaming its output to stdout and
// stderr. A non-zero exit wraps ErrScriptFailed.
func (c *Client) RunScript(ctx context.Context, script string, stdout, stderr io.Writer) error {
	cmd := c.cmd("run", script)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	res, err := c.runner.Run(ctx, cmd)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.String(), err)
	}
	if !res.OK() {
		return fmt.Errorf("%s exited with code %d: %w", cmd.String(), res.Code, ErrScriptFailed)
	}
	return nil
}
