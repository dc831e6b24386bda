package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"rigup/pkg/types"
)

// ConsolePrompter asks y/n questions on the terminal.
type ConsolePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsolePrompter creates a prompter on stdin/stdout
func NewConsolePrompter() *ConsolePrompter {
	return &ConsolePrompter{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

// NewPrompter creates a prompter reading from in and writing to out
func NewPrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	return &ConsolePrompter{in: bufio.NewReader(in), out: out}
}

// YesNo prints the question followed by " (y/n) " and reads a single
// character. Only y or Y count as yes; anything else, including a read
// failure, is no. The rest of the input line is drained so a following
// prompt starts clean.
func (p *ConsolePrompter) YesNo(question string) bool {
	fmt.Fprint(p.out, question+" (y/n) ")

	r, _, err := p.in.ReadRune()
	if err != nil {
		fmt.Fprintln(p.out)
		return false
	}
	if r != '\n' {
		p.drainLine()
	}
	fmt.Fprintln(p.out)

	return r == 'y' || r == 'Y'
}

// drainLine consumes input up to and including the next newline
func (p *ConsolePrompter) drainLine() {
	for {
		r, _, err := p.in.ReadRune()
		if err != nil || r == '\n' {
			return
		}
	}
}

var _ types.Prompter = (*ConsolePrompter)(nil)

// ScriptedPrompter replays canned answers, recording each question it
// was asked. It exists for tests and non-interactive callers.
type ScriptedPrompter struct {
	Answers []bool
	Asked   []string
	next    int
}

// YesNo pops the next canned answer, defaulting to no when exhausted
func (p *ScriptedPrompter) YesNo(question string) bool {
	p.Asked = append(p.Asked, question)
	if p.next >= len(p.Answers) {
		return false
	}
	answer := p.Answers[p.next]
	p.next++
	return answer
}

var _ types.Prompter = (*ScriptedPrompter)(nil)
