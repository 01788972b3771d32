package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var errNoInput = errors.New("no more input")

// prompter asks questions on the terminal one line at a time.
type prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{scanner: bufio.NewScanner(in), out: out}
}

// Ask prints label and returns the trimmed answer, or def when the answer is
// blank.
func (p *prompter) Ask(label string, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", errNoInput
	}

	answer := strings.TrimSpace(p.scanner.Text())
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Require asks until the answer is not blank.
func (p *prompter) Require(label string) (string, error) {
	for {
		answer, err := p.Ask(label, "")
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
		fmt.Fprintf(p.out, "%s is required\n", label)
	}
}

func (p *prompter) Confirm(label string, def bool) (bool, error) {
	d := "n"
	if def {
		d = "y"
	}
	answer, err := p.Ask(label+" (y/n)", d)
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

// orAsk returns v when it is set and prompts for it otherwise.
func (p *prompter) orAsk(v string, label string) (string, error) {
	if v != "" {
		return v, nil
	}
	return p.Require(label)
}
