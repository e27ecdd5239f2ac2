// Package changelog reads and extends Keep-a-Changelog style files.
//
// A document is a top-level heading block followed by version sections, each
// introduced by a "## [version] - date" line, newest first. Insert places a
// new section ahead of the existing ones and leaves every other byte alone.
package changelog

import (
	"regexp"
	"strings"
	"time"
)

// DefaultHeader is written when a project has no changelog yet.
const DefaultHeader = "# Changelog\n\nAll notable changes to this project will be documented in this file.\n\n"

// FallbackChange is the single bullet used when a release has no commits.
const FallbackChange = "Maintenance release"

// DateLayout formats section dates as ISO calendar dates.
const DateLayout = "2006-01-02"

const sectionPrefix = "## ["

var sectionLine = regexp.MustCompile(`^## \[([^\]]+)\](?:\s+-\s+(\S+))?`)

// Entry is a new version section.
type Entry struct {
	Version string
	Date    time.Time
	Changes []string
}

// Render formats the entry as a section: heading, blank line, one bullet per
// change, trailing newline.
func (e Entry) Render() string {
	changes := e.Changes
	if len(changes) == 0 {
		changes = []string{FallbackChange}
	}

	var b strings.Builder
	b.WriteString(sectionPrefix + e.Version + "] - " + e.Date.Format(DateLayout) + "\n\n")
	for _, change := range changes {
		b.WriteString("- " + change + "\n")
	}
	return b.String()
}

// Section is an existing version section.
type Section struct {
	Version string
	Date    string
	Line    int // zero-based line index of the heading
}

// Document is a changelog split into lines.
type Document struct {
	lines []string
}

// Parse splits content into a Document. It never fails: any text is a
// changelog, possibly one without sections.
func Parse(content string) *Document {
	return &Document{lines: strings.Split(content, "\n")}
}

// String joins the document back into file content.
func (d *Document) String() string {
	return strings.Join(d.lines, "\n")
}

// Sections returns the version sections in document order.
func (d *Document) Sections() []Section {
	var sections []Section
	for i, line := range d.lines {
		m := sectionLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		sections = append(sections, Section{Version: m[1], Date: m[2], Line: i})
	}
	return sections
}

// Versions returns the section versions in document order.
func (d *Document) Versions() []string {
	sections := d.Sections()
	versions := make([]string, 0, len(sections))
	for _, s := range sections {
		versions = append(versions, s.Version)
	}
	return versions
}

// insertIndex finds the line before which a new section goes: the first
// section heading, or else the first line after the top-level heading and
// any blank lines following it. A document with neither gets it at the top.
func (d *Document) insertIndex() int {
	for i, line := range d.lines {
		if strings.HasPrefix(line, sectionPrefix) {
			if i > 0 {
				return i
			}
			break
		}
	}

	for i, line := range d.lines {
		if strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "##") {
			idx := i + 1
			for idx < len(d.lines) && strings.TrimSpace(d.lines[idx]) == "" {
				idx++
			}
			return idx
		}
	}
	return 0
}

// Insert adds entry as the newest section.
func (d *Document) Insert(entry Entry) {
	idx := d.insertIndex()
	lines := make([]string, 0, len(d.lines)+1)
	lines = append(lines, d.lines[:idx]...)
	lines = append(lines, entry.Render())
	lines = append(lines, d.lines[idx:]...)
	d.lines = lines
}

// Insert is a convenience wrapper returning content with entry added.
func Insert(content string, entry Entry) string {
	doc := Parse(content)
	doc.Insert(entry)
	return doc.String()
}
