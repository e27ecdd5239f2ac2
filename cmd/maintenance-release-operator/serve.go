package main

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/JonathanRyzowy/maintenance-release-operator/internal/checks"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/git"
	mromcp "github.com/JonathanRyzowy/maintenance-release-operator/internal/mcp"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/npm"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/release"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run as a Model Context Protocol (MCP) server over stdio.

Exposes the maintenance checks and release preview as read-only MCP tools
for agent environments.

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "mro": {
        "command": "maintenance-release-operator",
        "args": ["serve", "--root", "/path/to/project"]
      }
    }
  }

Available tools: check, next_version`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return newMCPServer(a).Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}

// newMCPServer wires the MCP tools to the configured project.
func newMCPServer(a *app) *mcp.Server {
	pm := npm.New(a.root, a.runner, a.cfg.NPM)

	checker := mromcp.CheckerFunc(func(ctx context.Context) checks.Summary {
		project := checks.NewProject(a.root, a.cfg.Manifest, pm)
		return checks.NewRunner(checks.DefaultCatalog()).Run(ctx, project)
	})

	planner := release.New(git.New(a.root, a.runner, a.cfg.Git), pm, release.Options{
		Root:        a.root,
		Manifest:    a.cfg.Manifest,
		Changelog:   a.cfg.Changelog,
		CIScript:    a.cfg.CIScript,
		CommitLimit: a.cfg.CommitLimit,
	})

	return mromcp.NewServer(buildVersion(), checker, planner)
}
