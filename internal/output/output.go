package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const ruleWidth = 33

// Styles are the lipgloss styles commands render with. With color off every
// style is empty and renders text unchanged.
type Styles struct {
	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Dim     lipgloss.Style
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
}

func newStyles(color bool) *Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return &Styles{plain, plain, plain, plain, plain, plain, plain}
	}
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	return &Styles{
		Error:   fg("9").Bold(true),
		Success: fg("10"),
		Warning: fg("11"),
		Dim:     fg("8"),
		Title:   fg("12").Bold(true),
		Muted:   lipgloss.NewStyle().Faint(true),
		Accent:  fg("13"),
	}
}

// Printer writes command results either as text for people or as a single
// JSON document for scripts. Human-mode errors go to a separate writer.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	json   bool
	styles *Styles
}

// NewPrinter returns a Printer writing to out. color enables styling in
// human mode; it has no effect on JSON.
func NewPrinter(out io.Writer, jsonMode, color bool) *Printer {
	return &Printer{out: out, errOut: out, json: jsonMode, styles: newStyles(color)}
}

// WithStderr routes human-mode errors to w. JSON errors stay on the main
// writer so the document is complete on its own.
func (p *Printer) WithStderr(w io.Writer) *Printer {
	p.errOut = w
	return p
}

// IsJSON reports whether the printer emits JSON.
func (p *Printer) IsJSON() bool {
	return p.json
}

// Styles exposes the printer's styles for command-specific rendering.
func (p *Printer) Styles() *Styles {
	return p.styles
}

// Error renders err. JSON mode writes {"error","code","kind"}; human mode
// writes "Error: message" followed by the hint, if any. The cause is appended
// unless the message already includes it.
func (p *Printer) Error(err error) {
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		exitErr = &ExitError{Code: ExitFailure, Kind: KindInternal, Message: err.Error()}
	}

	if p.json {
		mustWrite(fmt.Fprintf(p.out, "%s\n", ErrorJSON(exitErr.Message, exitErr.Code, exitErr.Kind)))
		return
	}

	msg := exitErr.Message
	if exitErr.Cause != nil && !strings.Contains(msg, exitErr.Cause.Error()) {
		msg += ": " + exitErr.Cause.Error()
	}
	mustWrite(fmt.Fprintf(p.errOut, "%s: %s\n", p.styles.Error.Render("Error"), msg))
	if exitErr.Hint != "" {
		mustWrite(fmt.Fprintln(p.errOut, p.styles.Dim.Render(exitErr.Hint)))
	}
}

// WriteJSON writes v as indented JSON followed by a newline.
func (p *Printer) WriteJSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ErrorJSON returns the JSON error document {"error","code","kind"}.
// kind is omitted when empty.
func ErrorJSON(message string, code int, kind Kind) []byte {
	doc := struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
		Kind  Kind   `json:"kind,omitempty"`
	}{message, code, kind}
	data, _ := json.Marshal(doc)
	return data
}

// Print writes formatted text without adding a newline.
func (p *Printer) Print(format string, args ...any) {
	mustWrite(fmt.Fprintf(p.out, format, args...))
}

// Println writes args followed by a newline.
func (p *Printer) Println(args ...any) {
	mustWrite(fmt.Fprintln(p.out, args...))
}

// Section writes a blank line, the title, and an underline as wide as it.
func (p *Printer) Section(title string) {
	underline := strings.Repeat("─", lipgloss.Width(title))
	mustWrite(fmt.Fprintf(p.out, "\n%s\n%s\n", p.styles.Title.Render(title), p.styles.Muted.Render(underline)))
}

// Rule writes a horizontal separator.
func (p *Printer) Rule() {
	mustWrite(fmt.Fprintln(p.out, p.styles.Muted.Render(strings.Repeat("─", ruleWidth))))
}

// Mark returns the pass or fail marker.
func (p *Printer) Mark(ok bool) string {
	if ok {
		return p.styles.Success.Render("✅")
	}
	return p.styles.Error.Render("❌")
}

// mustWrite panics on a failed write to stdout, stderr or a buffer; there is
// nowhere left to report it.
func mustWrite(_ int, err error) {
	if err != nil {
		panic(fmt.Sprintf("write failed: %v", err))
	}
}
