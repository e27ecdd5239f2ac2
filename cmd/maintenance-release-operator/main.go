// Package main provides the entry point for the maintenance-release-operator CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/JonathanRyzowy/maintenance-release-operator/internal/config"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/execx"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/output"
)

// Build info set via ldflags at build time by goreleaser.
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2024-01-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

// app holds the state shared by all commands of one invocation.
type app struct {
	rootFlag string
	json     bool
	verbose  bool
	color    string

	// Set by the persistent pre-run.
	root string
	cfg  *config.Config

	runner execx.Runner
}

// printer returns a Printer for cmd honouring --json and --color.
func (a *app) printer(cmd *cobra.Command) *output.Printer {
	out := cmd.OutOrStdout()
	mode := a.color
	if mode == "" && a.cfg != nil {
		mode = a.cfg.Color
	}
	return output.NewPrinter(out, a.json, output.UseColor(mode, out)).WithStderr(cmd.ErrOrStderr())
}

// report renders err through p and marks it handled so the error handler
// does not print it again.
func report(p *output.Printer, err error) error {
	if err == nil || output.IsSilent(err) {
		return err
	}
	p.Error(err)

	var exitErr *output.ExitError
	if errors.As(err, &exitErr) {
		exitErr.Silent = true
		return err
	}
	return &output.ExitError{
		Code:    output.ExitFailure,
		Kind:    output.KindInternal,
		Message: err.Error(),
		Cause:   err,
		Silent:  true,
	}
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code. A panic anywhere
// below it is reported and exits 1.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			printer := output.NewPrinter(stdout, false, output.UseColor(output.ColorAuto, stderr)).WithStderr(stderr)
			printer.Error(output.NewInternalError(fmt.Sprintf("unexpected failure: %v", r), nil))
			code = output.ExitFailure
		}
	}()

	cmd := newRootCmd(&app{runner: execx.Default})
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := fang.Execute(ctx, cmd,
		fang.WithVersion(buildVersion()),
		fang.WithErrorHandler(handleError),
		fang.WithNotifySignal(os.Interrupt),
	)
	return output.GetExitCode(err)
}

// handleError prints errors that no command rendered itself, such as flag
// parsing failures from cobra.
func handleError(w io.Writer, _ fang.Styles, err error) {
	if output.IsSilent(err) {
		return
	}
	var exitErr *output.ExitError
	if !errors.As(err, &exitErr) {
		exitErr = output.NewUsageError(err.Error()).WithHint("Run with --help for usage")
	}
	output.NewPrinter(w, false, output.UseColor(output.ColorAuto, w)).Error(exitErr)
}

// newRootCmd creates the root command for the CLI.
func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintenance-release-operator",
		Short: "Keep your repo healthy",
		Long: `maintenance-release-operator - Keep your repo healthy

Checks a project for the files and settings a maintained npm package should
have, and cuts releases: bump the version, update CHANGELOG.md, commit and tag.

Examples:
  maintenance-release-operator check
  maintenance-release-operator check --json
  maintenance-release-operator release minor
  maintenance-release-operator release --dry-run`,
		Version:       buildVersion(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			// Usage errors stay on stderr, in JSON mode too.
			printer := output.NewPrinter(cmd.ErrOrStderr(), a.json, output.UseColor(a.color, cmd.ErrOrStderr()))
			err := output.NewUsageError("unknown command: " + args[0]).WithHint("Run with --help for usage")
			return report(printer, err)
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if usageOnly(cmd, args) {
				return nil
			}
			return a.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.rootFlag, "root", ".", "Project root directory")
	cmd.PersistentFlags().BoolVar(&a.json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&a.color, "color", "", "Color output: auto, always, never")

	lipgloss.SetHasDarkBackground(true)

	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "agent", Title: "Agent Commands:"})
	addGroupedCommand(cmd, newCheckCmd(a), "core")
	addGroupedCommand(cmd, newReleaseCmd(a), "core")
	addGroupedCommand(cmd, newServeCmd(a), "agent")

	return cmd
}

// usageOnly reports whether cmd only prints usage: the bare root command or
// cobra's help command. Those never depend on project configuration.
func usageOnly(cmd *cobra.Command, args []string) bool {
	return cmd.Name() == "help" || (!cmd.HasParent() && len(args) == 0)
}

// addGroupedCommand adds a subcommand with a group assignment.
func addGroupedCommand(parent *cobra.Command, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}

// setup resolves the project root, loads configuration and configures logging.
func (a *app) setup(cmd *cobra.Command) error {
	switch a.color {
	case "", output.ColorAuto, output.ColorAlways, output.ColorNever:
	default:
		return report(a.printer(cmd), output.NewUsageError("invalid --color value: "+a.color).
			WithHint("Use auto, always, or never."))
	}

	root, err := filepath.Abs(a.rootFlag)
	if err != nil {
		return report(a.printer(cmd), output.NewValidationError("invalid project root", err))
	}
	if info, statErr := os.Stat(root); statErr != nil || !info.IsDir() {
		return report(a.printer(cmd), output.NewValidationError("project root is not a directory: "+root, statErr))
	}
	a.root = root

	cfg, err := config.Load(root)
	if err != nil {
		return report(a.printer(cmd), output.NewValidationError("invalid configuration", err))
	}
	a.cfg = cfg

	configureLogging(cmd.ErrOrStderr(), a.verbose || cfg.Debug)
	log.WithFields(log.Fields{"root": root, "manifest": cfg.Manifest, "changelog": cfg.Changelog}).Debug("configuration loaded")
	return nil
}

// configureLogging routes diagnostics to w. Only warnings and errors are
// shown unless debug is set.
func configureLogging(w io.Writer, debug bool) {
	log.SetOutput(w)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.WarnLevel)
	if debug {
		log.SetLevel(log.DebugLevel)
	}
}
