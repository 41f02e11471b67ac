package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Notifier is the user-visible feedback surface.
type Notifier interface {
	Success(msg string)
	Warn(msg string)
	Fail(msg string)
}

// Prompter collects input from the user.
type Prompter interface {
	Prompt(label string, secret bool) (string, error)
	Confirm(question string) (bool, error)
}

// Terminal implements Notifier and Prompter on a reader/writer pair.
type Terminal struct {
	in  *bufio.Reader
	fd  int
	out io.Writer

	success lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
}

// NewTerminal wraps in and out. Secret prompts are masked when in is a TTY.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &Terminal{
		in:      bufio.NewReader(in),
		fd:      fd,
		out:     out,
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		fail:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// Out is the writer feedback and screens are drawn to.
func (t *Terminal) Out() io.Writer { return t.out }

func (t *Terminal) Success(msg string) { fmt.Fprintln(t.out, t.success.Render("✓ "+msg)) }
func (t *Terminal) Warn(msg string)    { fmt.Fprintln(t.out, t.warn.Render("! "+msg)) }
func (t *Terminal) Fail(msg string)    { fmt.Fprintln(t.out, t.fail.Render("✗ "+msg)) }

// Prompt prints label and reads one trimmed line.
func (t *Terminal) Prompt(label string, secret bool) (string, error) {
	fmt.Fprint(t.out, label+" ")
	if secret && t.fd >= 0 {
		raw, err := term.ReadPassword(t.fd)
		fmt.Fprintln(t.out)
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}
	return t.ReadLine()
}

// ReadLine reads one trimmed line. A final line without a newline is returned
// before io.EOF is reported.
func (t *Terminal) ReadLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. Anything but y or yes is a no.
func (t *Terminal) Confirm(question string) (bool, error) {
	answer, err := t.Prompt(question+" [y/N]", false)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
