package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonathanRyzowy/maintenance-release-operator/internal/execx"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/output"
)

// ErrDirtyTree is returned by RequireClean when the working tree has changes.
var ErrDirtyTree = errors.New("working tree is dirty")

// Client runs git commands in a fixed repository root.
type Client struct {
	root   string
	runner execx.Runner
	binary string
}

// New creates a Client. A nil runner uses execx.Default; an empty binary uses "git".
func New(root string, runner execx.Runner, binary string) *Client {
	if runner == nil {
		runner = execx.Default
	}
	if binary == "" {
		binary = "git"
	}
	return &Client{root: root, runner: runner, binary: binary}
}

// Root returns the directory the client operates in.
func (c *Client) Root() string {
	return c.root
}

// Run executes a git command with the given arguments.
// It captures stdout and returns it with surrounding whitespace trimmed.
// Returns an *output.ExitError on failure.
func (c *Client) Run(ctx context.Context, args ...string) (string, error) {
	res, err := c.runner.Run(ctx, execx.Cmd{Dir: c.root, Name: c.binary, Args: args})
	if err != nil {
		if errors.Is(err, execx.ErrNotFound) {
			return "", output.NewSubprocessError("git not found: ensure git is installed and in PATH", err)
		}
		return "", output.NewSubprocessError("git "+firstArg(args)+" failed", err)
	}
	if !res.OK() {
		errMsg := strings.TrimSpace(res.Stderr)
		if errMsg == "" {
			errMsg = fmt.Sprintf("exit status %d", res.Code)
		}
		return "", output.NewSubprocessError("git "+firstArg(args)+" failed: "+errMsg, nil)
	}
	return strings.TrimSpace(res.Stdout), nil
}

// IsRepo reports whether the root is inside a git repository.
func (c *Client) IsRepo(ctx context.Context) bool {
	_, err := c.Run(ctx, "rev-parse", "--git-dir")
	return err == nil
}

// Status returns the porcelain status lines, one per changed path.
func (c *Client) Status(ctx context.Context) ([]string, error) {
	out, err := c.Run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// RequireClean fails with ErrDirtyTree if the working tree has pending changes.
// A failing status query is returned as is.
func (c *Client) RequireClean(ctx context.Context) error {
	changes, err := c.Status(ctx)
	if err != nil {
		return err
	}
	if len(changes) > 0 {
		return fmt.Errorf("%w: %d changed path(s)", ErrDirtyTree, len(changes))
	}
	return nil
}

// RefExists reports whether ref resolves to an object.
func (c *Client) RefExists(ctx context.Context, ref string) bool {
	if ref == "" {
		return false
	}
	_, err := c.Run(ctx, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	return err == nil
}

// Add stages exactly the given paths.
func (c *Client) Add(ctx context.Context, paths ...string) error {
	_, err := c.Run(ctx, append([]string{"add", "--"}, paths...)...)
	return err
}

// Commit records the staged changes with message.
func (c *Client) Commit(ctx context.Context, message string) error {
	_, err := c.Run(ctx, "commit", "-m", message)
	return err
}

// TagAnnotated creates an annotated tag at HEAD.
func (c *Client) TagAnnotated(ctx context.Context, name, message string) error {
	_, err := c.Run(ctx, "tag", "-a", name, "-m", message)
	return err
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
