package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonathanRyzowy/maintenance-release-operator/internal/checks"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/npm"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/output"
)

// checkFlags holds the command-line flags for the check command.
type checkFlags struct {
	quiet bool
}

// newCheckCmd creates the check command.
func newCheckCmd(a *app) *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run maintenance checks on the current repo",
		Long: `Run maintenance checks on the project.

Checks, in order:
  package.json, README, LICENSE, CHANGELOG and .gitignore exist
  package-lock.json and pnpm-lock.yaml are not both present
  .github/workflows/ci.yml (or .yaml) exists
  package.json has a real "test" script and declares engines.node
  npm outdated reports nothing
  npm audit reports no high or critical vulnerabilities

Exits 1 when any check fails.

Examples:
  maintenance-release-operator check            # Run all checks
  maintenance-release-operator check --quiet    # Only show failures
  maintenance-release-operator check --json     # Output results as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, a, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.quiet, "quiet", false, "Only show failing checks")

	return cmd
}

// runCheck executes the check command.
func runCheck(cmd *cobra.Command, a *app, flags *checkFlags) error {
	printer := a.printer(cmd)

	project := checks.NewProject(a.root, a.cfg.Manifest, npm.New(a.root, a.runner, a.cfg.NPM))
	runner := checks.NewRunner(checks.DefaultCatalog())

	if !printer.IsJSON() {
		printer.Println("🔍 Running maintenance checks...")
		printer.Println()
		runner.Observer = func(_ int, r checks.Result) {
			printCheckResult(printer, r, flags.quiet)
		}
	}

	summary := runner.Run(cmd.Context(), project)

	if printer.IsJSON() {
		if err := printer.WriteJSON(summary); err != nil {
			return report(printer, output.NewIOError("writing results", err))
		}
	} else {
		printCheckSummary(printer, summary)
	}

	if !summary.OK() {
		return output.NewChecksFailedError(summary.Failed)
	}
	return nil
}

// printCheckResult prints one check line, plus its fix when it failed.
func printCheckResult(printer *output.Printer, r checks.Result, quiet bool) {
	if r.Passed {
		if !quiet {
			printer.Print("  %s %s\n", printer.Mark(true), r.Name)
		}
		return
	}

	printer.Print("  %s %s\n", printer.Mark(false), r.Name)
	if r.Fix != nil {
		printer.Print("     %s %s\n", printer.Styles().Dim.Render("→"), *r.Fix)
	}
	if r.Err != "" {
		printer.Print("     %s\n", printer.Styles().Dim.Render("("+r.Err+")"))
	}
}

// printCheckSummary prints the totals between two rules.
func printCheckSummary(printer *output.Printer, s checks.Summary) {
	printer.Println()
	printer.Rule()
	printer.Print("  Passed: %d/%d\n", s.Passed, s.Total)
	if s.Failed > 0 {
		printer.Print("  %s\n", printer.Styles().Warning.Render(fmt.Sprintf("⚠️  %d issue(s) found", s.Failed)))
	} else {
		printer.Print("  %s\n", printer.Styles().Success.Render("🎉 All checks passed!"))
	}
	printer.Rule()
	printer.Println()
}
