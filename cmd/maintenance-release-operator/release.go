package main

import (
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonathanRyzowy/maintenance-release-operator/internal/changelog"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/git"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/npm"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/output"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/release"
)

// releaseFlags holds the command-line flags for the release command.
type releaseFlags struct {
	dryRun bool
}

// newReleaseCmd creates the release command.
func newReleaseCmd(a *app) *cobra.Command {
	flags := &releaseFlags{}

	cmd := &cobra.Command{
		Use:   "release [major|minor|patch]",
		Short: "Bump the version, update the changelog, commit and tag",
		Long: `Cut a release.

Requires a clean working tree and a passing "npm run ci". Then:
  1. Bumps "version" in package.json (default: patch)
  2. Adds a CHANGELOG.md section listing the commits since the last tag
  3. Commits both files as "chore: release vX.Y.Z"
  4. Creates the annotated tag vX.Y.Z

Nothing is pushed. Use --dry-run to see the plan without running CI or
changing any file.

Examples:
  maintenance-release-operator release              # Patch release
  maintenance-release-operator release minor        # Minor release
  maintenance-release-operator release --dry-run    # Preview only`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"major", "minor", "patch"},
		RunE: func(cmd *cobra.Command, args []string) error {
			bump := ""
			if len(args) > 0 {
				bump = args[0]
			}
			return runRelease(cmd, a, flags, bump)
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show what would be released without changing anything")

	return cmd
}

// runRelease executes the release command.
func runRelease(cmd *cobra.Command, a *app, flags *releaseFlags, bump string) error {
	printer := a.printer(cmd)

	// CI output would corrupt the JSON document on stdout.
	var ciOut io.Writer = cmd.OutOrStdout()
	if printer.IsJSON() {
		ciOut = cmd.ErrOrStderr()
	}

	orch := release.New(
		git.New(a.root, a.runner, a.cfg.Git),
		npm.New(a.root, a.runner, a.cfg.NPM),
		release.Options{
			Root:        a.root,
			Manifest:    a.cfg.Manifest,
			Changelog:   a.cfg.Changelog,
			CIScript:    a.cfg.CIScript,
			CommitLimit: a.cfg.CommitLimit,
			Stdout:      ciOut,
			Stderr:      cmd.ErrOrStderr(),
		},
	)

	if !printer.IsJSON() {
		orch.SetObserver(releaseProgress(printer, a, flags.dryRun))
	}

	var (
		res *release.Result
		err error
	)
	if flags.dryRun {
		res, err = orch.Plan(cmd.Context(), bump)
	} else {
		res, err = orch.Run(cmd.Context(), bump)
	}
	if err != nil {
		return report(printer, err)
	}

	if printer.IsJSON() {
		if err := printer.WriteJSON(res); err != nil {
			return report(printer, output.NewIOError("writing result", err))
		}
		return nil
	}

	if flags.dryRun {
		printReleasePlan(printer, res)
		return nil
	}
	printNextSteps(printer, a, res)
	return nil
}

// releaseProgress renders stage transitions as they happen.
func releaseProgress(printer *output.Printer, a *app, dryRun bool) release.Observer {
	ok := printer.Mark(true)
	return func(e release.Event) {
		if e.Kind == release.StageFailed {
			return
		}
		started := e.Kind == release.StageStarted

		switch e.Stage {
		case release.StageValidateType:
			if started {
				printer.Println("🔍 Running pre-release checks...")
				printer.Println()
			}
		case release.StageCheckCleanTree:
			if !started {
				printer.Print("%s Working tree is clean\n", ok)
			}
		case release.StageRunCI:
			if started {
				printer.Println("🧪 Running CI checks...")
			} else {
				printer.Print("%s CI checks passed\n\n", ok)
			}
		case release.StageComputeNext:
			if !started && !dryRun {
				printer.Print("🚀 Releasing version: %s\n\n", e.Detail)
			}
		case release.StageWriteManifest:
			if started {
				printer.Print("📝 Updating %s...\n", a.cfg.Manifest)
			} else {
				printer.Print("%s %s\n", ok, e.Detail)
			}
		case release.StageWriteChangelog:
			if started {
				printer.Print("📝 Updating %s...\n", a.cfg.Changelog)
			} else {
				printer.Print("%s %s\n", ok, e.Detail)
			}
		case release.StageCommitAndTag:
			if started {
				printer.Println("📦 Creating git commit and tag...")
			} else {
				printer.Print("%s Created tag %s\n", ok, e.Detail)
			}
		case release.StageReadManifest, release.StageDone:
		}
	}
}

// printNextSteps prints the completion banner and the push commands.
func printNextSteps(printer *output.Printer, a *app, res *release.Result) {
	printer.Println()
	printer.Print("%s\n", printer.Styles().Success.Render("🎉 Release "+res.Tag+" complete!"))
	printer.Println()
	printer.Println("Next steps:")
	printer.Print("  git push %s %s\n", a.cfg.Remote, a.cfg.Branch)
	printer.Print("  git push %s %s\n", a.cfg.Remote, res.Tag)
	if a.cfg.PublishReminder {
		printer.Println("  npm publish  # if publishing to npm")
	}
	printer.Println()
}

// printReleasePlan describes a dry run.
func printReleasePlan(printer *output.Printer, res *release.Result) {
	styles := printer.Styles()

	printer.Println()
	printer.Print("%s %s release: %s → %s\n", styles.Accent.Render("Dry run:"), res.Bump, res.Previous, res.Version)

	printer.Section("Would update")
	for _, f := range res.Files {
		note := ""
		if res.ChangelogCreated && f == res.Files[len(res.Files)-1] {
			note = styles.Dim.Render(" (new)")
		}
		printer.Print("  %s%s\n", f, note)
	}
	printer.Print("  tag %s\n", res.Tag)

	printer.Section("Changelog entry")
	day, err := time.Parse(changelog.DateLayout, res.Date)
	if err != nil {
		day = time.Now().UTC()
	}
	entry := changelog.Entry{Version: res.Version, Date: day, Changes: res.Commits}
	for _, line := range strings.Split(strings.TrimRight(entry.Render(), "\n"), "\n") {
		printer.Print("  %s\n", line)
	}
	printer.Println()
	printer.Print("%s\n", styles.Dim.Render("CI was not run and nothing was written."))
}
