// Package ui renders git-sense's terminal output: coloured status lines,
// spinners while GitHub is queried, and the hidden prompt for secrets.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	blue   = color.New(color.FgBlue)
	yellow = color.New(color.FgYellow)
	gray   = color.New(color.FgHiBlack)
)

const dividerWidth = 40

// Terminal writes user-facing output for one command invocation.
type Terminal struct {
	out    io.Writer
	errOut io.Writer
	coord  *Coordinator

	// spinners animate only when stderr is a terminal.
	spinners bool
	// canPrompt is true when stdin is a terminal.
	canPrompt  bool
	readSecret func() ([]byte, error)
}

// Option configures a Terminal.
type Option func(*Terminal)

// WithInteractive overrides terminal detection.
func WithInteractive(spinners, canPrompt bool) Option {
	return func(t *Terminal) {
		t.spinners = spinners
		t.canPrompt = canPrompt
	}
}

// WithSecretReader replaces the hidden stdin reader used by PromptSecret.
func WithSecretReader(fn func() ([]byte, error)) Option {
	return func(t *Terminal) {
		t.readSecret = fn
	}
}

// New creates a Terminal writing to out and errOut. Interactivity is detected
// from the process's stdin and stderr.
func New(out, errOut io.Writer, opts ...Option) *Terminal {
	t := &Terminal{
		out:        out,
		errOut:     errOut,
		coord:      NewCoordinator(),
		spinners:   isTerminal(os.Stderr),
		canPrompt:  isTerminal(os.Stdin),
		readSecret: readStdinSecret,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func readStdinSecret() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Out is the writer for primary output such as streamed completions.
func (t *Terminal) Out() io.Writer {
	return t.out
}

// Success prints a green check mark followed by the message.
func (t *Terminal) Success(format string, args ...any) {
	t.status(t.out, green, "✓", format, args...)
}

// Info prints a blue arrow followed by the message.
func (t *Terminal) Info(format string, args ...any) {
	t.status(t.out, blue, "→", format, args...)
}

// Warning prints a yellow warning sign followed by the message.
func (t *Terminal) Warning(format string, args ...any) {
	t.status(t.out, yellow, "⚠", format, args...)
}

// Error prints "Error: <message>" to the error writer.
func (t *Terminal) Error(message string) {
	t.status(t.errOut, red, "Error:", "%s", message)
}

// Muted prints the message in grey.
func (t *Terminal) Muted(format string, args ...any) {
	unlock := t.coord.Lock()
	defer unlock()
	gray.Fprintln(t.out, fmt.Sprintf(format, args...))
}

// Println prints plain text.
func (t *Terminal) Println(a ...any) {
	unlock := t.coord.Lock()
	defer unlock()
	fmt.Fprintln(t.out, a...)
}

// Newline prints an empty line.
func (t *Terminal) Newline() {
	t.Println()
}

// SectionHeader prints a blue title surrounded by blank lines.
func (t *Terminal) SectionHeader(title, emoji string) {
	if emoji != "" {
		title = emoji + " " + title
	}
	unlock := t.coord.Lock()
	defer unlock()
	blue.Fprintln(t.out, "\n"+title+"\n")
}

// Divider prints a grey horizontal rule.
func (t *Terminal) Divider() {
	t.Muted("%s", strings.Repeat("─", dividerWidth))
}

// Footer closes a report with the amount of history it was based on.
func (t *Terminal) Footer(commits, prs int) {
	t.Divider()
	t.Muted("Based on %d commits and %d pull requests", commits, prs)
}

func (t *Terminal) status(w io.Writer, c *color.Color, symbol, format string, args ...any) {
	unlock := t.coord.Lock()
	defer unlock()
	c.Fprint(w, symbol)
	fmt.Fprintln(w, " "+fmt.Sprintf(format, args...))
}
