// Package ui prints release progress and asks for confirmation on a terminal.
package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// UI is the user interaction surface of a release run.
type UI interface {
	Info(text string)
	Success(text string)
	Warn(text string)
	Confirm(ctx context.Context, message string) (bool, error)
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	promptStyle  = lipgloss.NewStyle().Bold(true)
)

type answer struct {
	line string
	err  error
}

// Console implements UI over a reader and a writer.
type Console struct {
	mu      sync.Mutex
	in      *bufio.Reader
	out     io.Writer
	once    sync.Once
	answers chan answer
}

// NewConsole creates a Console reading answers from in and printing to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out, answers: make(chan answer)}
}

func (c *Console) Info(text string) {
	c.writeLine(text)
}

func (c *Console) Success(text string) {
	c.writeLine(successStyle.Render(text))
}

func (c *Console) Warn(text string) {
	c.writeLine(warningStyle.Render(text))
}

func (c *Console) writeLine(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, text)
}

// Confirm asks message and waits for an answer. Only "y" and "yes" confirm;
// end of input counts as no. A canceled wait leaves the pending line for the
// next Confirm.
func (c *Console) Confirm(ctx context.Context, message string) (bool, error) {
	c.mu.Lock()
	fmt.Fprint(c.out, promptStyle.Render(message+", proceed?")+" [y/N] ")
	c.mu.Unlock()
	c.once.Do(func() { go c.readAnswers() })
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a, ok := <-c.answers:
		if !ok {
			return false, nil
		}
		if a.err != nil && a.err != io.EOF {
			return false, fmt.Errorf("failed to read answer: %w", a.err)
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

// readAnswers is the only reader of c.in. It closes c.answers once input ends.
func (c *Console) readAnswers() {
	defer close(c.answers)
	for {
		line, err := c.in.ReadString('\n')
		c.answers <- answer{line: line, err: err}
		if err != nil {
			return
		}
	}
}
