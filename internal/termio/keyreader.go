package termio

import (
	"fmt"
	"os"

	goterm "golang.org/x/term"
)

// KeyReader reads single keypresses from stdin in raw terminal mode,
// delivering them over a channel. It backs "testament pr"'s reviewed-test
// narrowing prompt (cmd.promptNarrowTests), which runs outside the
// full-screen TUI event loop and so doesn't go through tcell's input
// handling.
type KeyReader struct {
	ch       chan byte
	oldState *goterm.State
	done     chan struct{}
	term     *Terminal
}

// NewKeyReader puts stdin into raw mode and starts a goroutine reading
// single bytes into its internal key channel. Returns nil if stdin is not
// a terminal.
func NewKeyReader(t *Terminal) *KeyReader {
	fd := int(os.Stdin.Fd())
	if !goterm.IsTerminal(fd) {
		return nil
	}

	old, err := goterm.MakeRaw(fd)
	if err != nil {
		return nil
	}

	t.SetRawMode(true)

	kr := &KeyReader{
		ch:       make(chan byte, 16),
		oldState: old,
		done:     make(chan struct{}),
		term:     t,
	}

	go kr.readLoop()
	return kr
}

func (k *KeyReader) readLoop() {
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			close(k.ch)
			return
		}
		if n == 1 {
			select {
			case k.ch <- buf[0]:
			case <-k.done:
				return
			}
		}
	}
}

// ReadLineFiltered reads a line, calling onChange after every keystroke
// with the input so far; onChange returns how many lines it rendered so
// they can be cleared before the next redraw. Used for the PR command's
// test-name filter prompt.
func (k *KeyReader) ReadLineFiltered(prompt string, onChange func(input string) int) (string, bool) {
	prevLines := onChange("")
	fmt.Fprint(os.Stderr, prompt)

	var line []byte
	for b := range k.ch {
		switch {
		case b == '\r' || b == '\n':
			fmt.Fprint(os.Stderr, "\r\n")
			return string(line), true
		case b == 3, b == 27:
			fmt.Fprint(os.Stderr, "\r\n")
			return "", false
		case b == 127 || b == 8:
			if len(line) > 0 {
				line = line[:len(line)-1]
			}
		case b >= 32:
			line = append(line, b)
		default:
			continue
		}

		k.term.ClearLines(prevLines + 1)
		prevLines = onChange(string(line))
		fmt.Fprint(os.Stderr, prompt+string(line))
	}
	return "", false
}

// Close restores the terminal to its original state and stops the
// reader goroutine.
func (k *KeyReader) Close() error {
	select {
	case <-k.done:
		return nil
	default:
	}
	close(k.done)
	k.term.SetRawMode(false)
	return goterm.Restore(int(os.Stdin.Fd()), k.oldState)
}
