package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/JonathanRyzowy/maintenance-release-operator/internal/checks"
)

// --- Check tool ---

// CheckInput is the input for the check tool (no parameters needed).
type CheckInput struct{}

// CheckResult is one check outcome.
type CheckResult struct {
	Name   string `json:"name"            jsonschema:"check name"`
	Passed bool   `json:"passed"          jsonschema:"whether the check passed"`
	Fix    string `json:"fix,omitempty"   jsonschema:"suggested fix, set only for failed checks"`
	Error  string `json:"error,omitempty" jsonschema:"why the check could not be evaluated"`
}

// CheckOutput is the output for the check tool.
type CheckOutput struct {
	Passed  int           `json:"passed"  jsonschema:"number of passing checks"`
	Failed  int           `json:"failed"  jsonschema:"number of failing checks"`
	Total   int           `json:"total"   jsonschema:"number of checks run"`
	Results []CheckResult `json:"results" jsonschema:"results in catalog order"`
}

func handleCheck(checker Checker) mcp.ToolHandlerFor[CheckInput, CheckOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ CheckInput) (*mcp.CallToolResult, CheckOutput, error) {
		return nil, toCheckOutput(checker.Check(ctx)), nil
	}
}

func toCheckOutput(s checks.Summary) CheckOutput {
	out := CheckOutput{
		Passed:  s.Passed,
		Failed:  s.Failed,
		Total:   s.Total,
		Results: make([]CheckResult, 0, len(s.Results)),
	}
	for _, r := range s.Results {
		res := CheckResult{Name: r.Name, Passed: r.Passed, Error: r.Err}
		if r.Fix != nil {
			res.Fix = *r.Fix
		}
		out.Results = append(out.Results, res)
	}
	return out
}

// --- Next version tool ---

// NextVersionInput is the input for the next_version tool.
type NextVersionInput struct {
	Bump string `json:"bump,omitempty" jsonschema:"major, minor or patch (default patch)"`
}

// NextVersionOutput is the output for the next_version tool.
type NextVersionOutput struct {
	Current          string   `json:"current"           jsonschema:"version in the manifest"`
	Next             string   `json:"next"              jsonschema:"version the release would write"`
	Tag              string   `json:"tag"               jsonschema:"tag the release would create"`
	Commits          []string `json:"commits"           jsonschema:"commit subjects for the changelog entry"`
	ChangelogCreated bool     `json:"changelog_created" jsonschema:"whether the changelog would be created"`
}

func handleNextVersion(planner Planner) mcp.ToolHandlerFor[NextVersionInput, NextVersionOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input NextVersionInput) (*mcp.CallToolResult, NextVersionOutput, error) {
		res, err := planner.Preview(ctx, input.Bump)
		if err != nil {
			return nil, NextVersionOutput{}, fmt.Errorf("planning release: %w", err)
		}
		return nil, NextVersionOutput{
			Current:          res.Previous,
			Next:             res.Version,
			Tag:              res.Tag,
			Commits:          res.Commits,
			ChangelogCreated: res.ChangelogCreated,
		}, nil
	}
}
