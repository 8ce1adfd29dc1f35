package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the user yes/no questions on the terminal.
type Prompter struct {
	reader *LineReader
	out    io.Writer
}

// NewPrompter creates a prompter reading from in and writing to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		reader: NewLineReader(in),
		out:    out,
	}
}

// Confirm asks a yes/no question and returns the answer. An empty
// response takes the default.
func (p *Prompter) Confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}

	fmt.Fprintf(p.out, "%s %s ", FormatPrompt(question), hint)

	line, err := p.reader.ReadLine(ctx)
	if err != nil {
		return false, err
	}

	switch strings.ToLower(line) {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognized answer: %q", line)
	}
}
