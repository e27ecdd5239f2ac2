// Package mcp provides a Model Context Protocol server for mro.
// It exposes the maintenance checks and release planning as read-only tools.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/JonathanRyzowy/maintenance-release-operator/internal/checks"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/release"
)

// Checker runs the maintenance catalog against the served project.
type Checker interface {
	Check(ctx context.Context) checks.Summary
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) checks.Summary

// Check implements Checker.
func (f CheckerFunc) Check(ctx context.Context) checks.Summary {
	return f(ctx)
}

// Planner previews releases without side effects.
type Planner interface {
	Preview(ctx context.Context, bump string) (*release.Result, error)
}

// NewServer creates an MCP server with all mro tools registered.
func NewServer(version string, checker Checker, planner Planner) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "mro",
		Version: version,
	}, nil)
	registerTools(server, checker, planner)
	return server
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for read-only tools. The check tool
// reaches the npm registry, so neither tool is closed-world.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(true),
	}
}

func registerTools(server *mcp.Server, checker Checker, planner Planner) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "check",
		Description: "Run the repository maintenance checks (manifest, README, LICENSE, CHANGELOG, .gitignore, lockfiles, CI workflow, test script, Node engine, outdated and vulnerable dependencies). Returns pass/fail per check with a suggested fix for each failure.",
		Annotations: readOnlyAnnotations(),
	}, handleCheck(checker))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "next_version",
		Description: "Preview the next release: current version, next version for a major/minor/patch bump, and the commit subjects the changelog entry would list. Does not modify anything.",
		Annotations: readOnlyAnnotations(),
	}, handleNextVersion(planner))
}
