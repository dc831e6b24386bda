package ui

import (
	"fmt"
	"io"
	"os"

	"rigup/pkg/types"
)

// Line prefixes are part of the operator-facing contract: humans and
// scripts alike rely on "- " marking progress and "* " marking milestones.
const (
	infoPrefix      = "- "
	milestonePrefix = "* "
)

// ConsoleNotifier writes progress lines to a terminal or pipe.
type ConsoleNotifier struct {
	out    io.Writer
	format Format
}

// NewConsoleNotifier creates a notifier on stdout with auto-detected format
func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{out: os.Stdout, format: DetectFormat(os.Stdout)}
}

// NewNotifier creates a notifier writing to out with the given format.
// FormatAuto on an arbitrary writer renders as plain text.
func NewNotifier(out io.Writer, format Format) *ConsoleNotifier {
	return &ConsoleNotifier{out: out, format: format}
}

// Info prints a progress line prefixed with "- "
func (n *ConsoleNotifier) Info(format string, args ...interface{}) {
	n.line(infoPrefix, "info", fmt.Sprintf(format, args...))
}

// Milestone prints a section line prefixed with "* "
func (n *ConsoleNotifier) Milestone(format string, args ...interface{}) {
	n.line(milestonePrefix, "milestone", fmt.Sprintf(format, args...))
}

// line emits prefix + text. The prefix is never styled, so the literal
// marker survives in both formats.
func (n *ConsoleNotifier) line(prefix, styleName, text string) {
	if n.format == FormatTerminal {
		text = Style(styleName).Render(text)
	}
	fmt.Fprintln(n.out, prefix+text)
}

var _ types.Notifier = (*ConsoleNotifier)(nil)
