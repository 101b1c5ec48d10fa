package bot

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Console is where the bot reports progress and reads manual answers when
// voice confirmation gives up.
type Console interface {
	io.Writer
	// Answer blocks until the operator answers a pending yes/no question.
	Answer(ctx context.Context) (bool, error)
}

// StdConsole is the --no-ui console on plain stdio.
type StdConsole struct {
	out io.Writer
	in  *bufio.Scanner
}

func NewStdConsole(out io.Writer, in io.Reader) *StdConsole {
	return &StdConsole{out: out, in: bufio.NewScanner(in)}
}

func (c *StdConsole) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

func (c *StdConsole) Answer(ctx context.Context) (bool, error) {
	type answer struct {
		yes bool
		err error
	}
	ch := make(chan answer, 1)
	go func() {
		for {
			fmt.Fprint(c.out, "answer y/n > ")
			if !c.in.Scan() {
				ch <- answer{err: io.EOF}
				return
			}
			switch strings.ToLower(strings.TrimSpace(c.in.Text())) {
			case "y", "yes", "はい":
				ch <- answer{yes: true}
				return
			case "n", "no", "いいえ":
				ch <- answer{yes: false}
				return
			}
			fmt.Fprintln(c.out, "please answer y or n")
		}
	}()

	select {
	case a := <-ch:
		return a.yes, a.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
