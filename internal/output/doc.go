// Package output renders command results for the mro CLI.
//
// A command produces either text for a terminal or exactly one JSON
// document, chosen by --json:
//
//	out := cmd.OutOrStdout()
//	printer := output.NewPrinter(out, jsonMode, output.UseColor(mode, out)).
//		WithStderr(cmd.ErrOrStderr())
//
//	printer.WriteJSON(summary)
//	printer.Print("  %s %s\n", printer.Mark(ok), name)
//	printer.Error(err) // "Error: ..." on stderr, {"error":...} on stdout with --json
//
// Styling uses lipgloss and is off when the writer is not a terminal or
// --color never is given.
//
// Failures are *ExitError values. The process exit code is ExitSuccess (0)
// or ExitFailure (1); the Kind (validation, precondition, io, subprocess,
// checks_failed, usage, internal) travels in JSON errors and lets callers
// and tests tell failures apart.
package output
