// Package ui formats modsync's human-facing terminal output.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

var (
	out    io.Writer = os.Stdout
	errOut io.Writer = os.Stderr
)

// SetWriters overrides the output writers (for testing). A nil writer
// restores the default.
func SetWriters(stdout, stderr io.Writer) {
	out, errOut = stdout, stderr
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
}

var stdoutColor = detectColor(os.Stdout)
var stderrColor = detectColor(os.Stderr)

func detectColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetColorEnabled overrides color detection (for testing).
func SetColorEnabled(enabled bool) {
	stdoutColor = enabled
	stderrColor = enabled
}

func style(enabled bool, code, s string) string {
	if !enabled {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// Bold returns s wrapped in bold ANSI codes.
func Bold(s string) string { return style(stdoutColor, "1", s) }

// Dim returns s wrapped in dim ANSI codes.
func Dim(s string) string { return style(stdoutColor, "2", s) }

// Green returns s wrapped in green ANSI codes.
func Green(s string) string { return style(stdoutColor, "32", s) }

// Yellow returns s wrapped in yellow ANSI codes.
func Yellow(s string) string { return style(stdoutColor, "33", s) }

// Section prints a bold title with a thin underline.
func Section(title string) {
	fmt.Fprintln(out, Bold(title))
	fmt.Fprintln(out, Dim(strings.Repeat("─", len(title))))
}

// Change prints one property update as "name: old => new", or
// "name: value (no change)".
func Change(name, from, to string) {
	fmt.Fprintln(out, FormatChange(name, from, to))
}

// FormatChange renders the line Change prints.
func FormatChange(name, from, to string) string {
	if from == to {
		return fmt.Sprintf("%s: %s %s", Bold(name), to, Dim("(no change)"))
	}
	if from == "" {
		from = Dim("(unset)")
	}
	return fmt.Sprintf("%s: %s => %s", Bold(name), from, Green(to))
}

// Printf writes formatted output to stdout.
func Printf(format string, args ...any) {
	fmt.Fprintf(out, format, args...)
}

// Warnf prints a formatted user-facing warning to stderr.
func Warnf(format string, args ...any) {
	fmt.Fprintf(errOut, "%s %s\n", style(stderrColor, "33", "Warning:"), fmt.Sprintf(format, args...))
}

// Errorf prints a formatted user-facing error to stderr.
func Errorf(format string, args ...any) {
	fmt.Fprintf(errOut, "%s %s\n", style(stderrColor, "31", "Error:"), fmt.Sprintf(format, args...))
}

// Infof prints a formatted user-facing message to stderr with no prefix.
func Infof(format string, args ...any) {
	fmt.Fprintf(errOut, format+"\n", args...)
}
