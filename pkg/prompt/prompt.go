package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoAnswer is returned by Choice when input ends before a valid answer.
var ErrNoAnswer = errors.New("no answer before end of input")

// Prompter asks questions on a terminal-like pair of streams.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Choice asks a yes/no question until it gets Y or N, in either case.
func (p *Prompter) Choice(question string) (bool, error) {
	for {
		fmt.Fprintf(p.out, "%s [Y,N] ", question)

		line, err := p.in.ReadString('\n')
		switch strings.ToUpper(strings.TrimRight(line, "\r\n")) {
		case "Y":
			return true, nil
		case "N":
			return false, nil
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, ErrNoAnswer
			}
			return false, err
		}

		fmt.Fprintln(p.out, "Invalid input.")
	}
}

// Pause prints message and waits for a line of input.
func (p *Prompter) Pause(message string) error {
	fmt.Fprint(p.out, message)

	_, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}
