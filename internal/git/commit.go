package git

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Commit represents a git commit with its metadata.
type Commit struct {
	SHA     string    // Full 40-character SHA
	Short   string    // Abbreviated SHA (typically 7 chars)
	Subject string    // First line of commit message
	Author  string    // Author name
	Date    time.Time // Commit date
}

// LogQuery selects commits for Log.
type LogQuery struct {
	Range    string // e.g. "v1.2.3..HEAD"; empty means HEAD
	Max      int    // 0 means unlimited
	NoMerges bool
}

// commitSeparator is used to delimit commits in log output.
const commitSeparator = "---COMMIT-BOUNDARY---"

// fieldSeparator is used to delimit fields within a commit.
const fieldSeparator = "---FIELD---"

// logFormat renders SHA, short SHA, subject, author and unix timestamp.
var logFormat = strings.Join([]string{"%H", "%h", "%s", "%an", "%at"}, fieldSeparator) + commitSeparator

// Log returns the commits matching q, newest first.
func (c *Client) Log(ctx context.Context, q LogQuery) ([]Commit, error) {
	args := []string{"log", "--pretty=format:" + logFormat}
	if q.NoMerges {
		args = append(args, "--no-merges")
	}
	if q.Max > 0 {
		args = append(args, "--max-count="+strconv.Itoa(q.Max))
	}
	if q.Range != "" {
		args = append(args, q.Range)
	}

	out, err := c.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return parseCommits(out), nil
}

// CommitsSince returns the non-merge commits after tag up to HEAD. When tag
// does not resolve, it returns the most recent limit non-merge commits instead.
func (c *Client) CommitsSince(ctx context.Context, tag string, limit int) ([]Commit, error) {
	if c.RefExists(ctx, tag) {
		return c.Log(ctx, LogQuery{Range: tag + "..HEAD", NoMerges: true})
	}
	return c.Log(ctx, LogQuery{Max: limit, NoMerges: true})
}

// Subjects extracts the non-empty subject lines of commits, preserving order.
func Subjects(commits []Commit) []string {
	subjects := make([]string, 0, len(commits))
	for _, commit := range commits {
		if commit.Subject != "" {
			subjects = append(subjects, commit.Subject)
		}
	}
	return subjects
}

// parseCommits parses the custom formatted git log output into Commit structs.
func parseCommits(out string) []Commit {
	if out == "" {
		return nil
	}

	var commits []Commit
	for _, commitStr := range strings.Split(out, commitSeparator) {
		commitStr = strings.TrimSpace(commitStr)
		if commitStr == "" {
			continue
		}
		if commit, ok := parseCommitFields(commitStr); ok {
			commits = append(commits, commit)
		}
	}
	return commits
}

// parseCommitFields parses a single commit string into a Commit struct.
func parseCommitFields(commitStr string) (Commit, bool) {
	fields := strings.Split(commitStr, fieldSeparator)
	if len(fields) < 5 {
		return Commit{}, false
	}

	timestamp, err := strconv.ParseInt(strings.TrimSpace(fields[4]), 10, 64)
	if err != nil {
		timestamp = 0
	}

	return Commit{
		SHA:     strings.TrimSpace(fields[0]),
		Short:   strings.TrimSpace(fields[1]),
		Subject: strings.TrimSpace(fields[2]),
		Author:  strings.TrimSpace(fields[3]),
		Date:    time.Unix(timestamp, 0),
	}, true
}
