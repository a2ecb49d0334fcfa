package ui

import (
	"fmt"
	"strings"

	gserrors "github.com/tshields86/git-sense/pkg/errors"
)

// ErrNotInteractive is returned by PromptSecret when stdin is not a terminal.
var ErrNotInteractive = gserrors.New("stdin is not a terminal")

// CanPrompt reports whether the user can be asked for input.
func (t *Terminal) CanPrompt() bool {
	return t.canPrompt
}

// PromptSecret shows label on stderr and reads one line from stdin without
// echoing it. Surrounding whitespace is trimmed.
func (t *Terminal) PromptSecret(label string) (string, error) {
	if !t.canPrompt {
		return "", ErrNotInteractive
	}

	unlock := t.coord.Lock()
	defer unlock()

	fmt.Fprintf(t.errOut, "%s ", label)
	b, err := t.readSecret()
	fmt.Fprintln(t.errOut) // Move to next line after password entry
	if err != nil {
		return "", gserrors.Wrap(err, "failed to read input")
	}

	return strings.TrimSpace(string(b)), nil
}
