package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter asks the operator for missing input. Secrets are read without
// echo when stdin is a terminal.
type prompter struct {
	reader *bufio.Reader
	out    io.Writer
	fd     int
	tty    bool
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{reader: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.tty = true
	}
	return p
}

func (p *prompter) Ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *prompter) AskSecret(label string) (string, error) {
	if !p.tty {
		return p.Ask(label)
	}

	fmt.Fprintf(p.out, "%s: ", label)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(string(b)), nil
}

// fill asks for value only when it is still empty.
func (p *prompter) fill(value *string, label string, secret bool) error {
	if strings.TrimSpace(*value) != "" {
		return nil
	}
	ask := p.Ask
	if secret {
		ask = p.AskSecret
	}
	v, err := ask(label)
	if err != nil {
		return err
	}
	*value = v
	return nil
}
