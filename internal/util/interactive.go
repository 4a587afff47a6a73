package util

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrPromptAborted is returned when the user quits a prompt or input ends.
var ErrPromptAborted = errors.New("prompt aborted")

// Prompter asks questions on Out and reads answers from In. A single
// buffered reader is kept so consecutive prompts on piped input see every line.
type Prompter struct {
	Out    io.Writer
	reader *bufio.Reader
}

// NewPrompter returns a prompter reading from in and writing to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{Out: out, reader: bufio.NewReader(in)}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrPromptAborted
		}
		return "", fmt.Errorf("failed to read user input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Ask prompts for a value. An empty answer keeps def; "q" aborts.
func (p *Prompter) Ask(question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.Out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.Out, "%s: ", question)
	}
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "q", "quit":
		return "", ErrPromptAborted
	}
	return answer, nil
}

// Confirm prompts a yes/no question; anything but yes is no.
func (p *Prompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.Out, "%s [y]es / [n]o: ", question)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// ANSI color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Colorize wraps text in color when enabled.
func Colorize(text, color string, enabled bool) string {
	if !enabled || color == "" {
		return text
	}
	return color + text + ColorReset
}

// ColorizeSummary colors the lines of an index diff summary: additions
// green, removals red, changes yellow.
func ColorizeSummary(summary string, enabled bool) string {
	if !enabled {
		return summary
	}
	lines := strings.Split(summary, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "+"):
			lines[i] = ColorGreen + line + ColorReset
		case strings.HasPrefix(trimmed, "-"):
			lines[i] = ColorRed + line + ColorReset
		case strings.HasPrefix(trimmed, "~"):
			lines[i] = ColorYellow + line + ColorReset
		}
	}
	return strings.Join(lines, "\n")
}
