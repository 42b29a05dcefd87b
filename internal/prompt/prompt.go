// Package prompt asks the user for the account and the access token.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	xterm "github.com/charmbracelet/x/term"
)

// ErrEmpty is returned when the user submits an empty answer.
var ErrEmpty = errors.New("empty input")

// Prompter reads answers from an input stream. When the input is a terminal,
// secrets are read without echo.
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	fd     uintptr
	isTerm bool
}

// New creates a Prompter reading from in and writing prompts to out.
func New(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok && xterm.IsTerminal(f.Fd()) {
		p.fd = f.Fd()
		p.isTerm = true
	}
	return p
}

// Ask prints label and returns the trimmed line the user enters.
func (p *Prompter) Ask(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read %q: %w", strings.TrimSpace(label), err)
	}
	return nonEmpty(line)
}

// AskSecret prints label and reads a line without echoing it on terminals.
func (p *Prompter) AskSecret(label string) (string, error) {
	if !p.isTerm {
		return p.Ask(label)
	}
	fmt.Fprint(p.out, label)
	secret, err := xterm.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", strings.TrimSpace(label), err)
	}
	return nonEmpty(string(secret))
}

func nonEmpty(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmpty
	}
	return s, nil
}
