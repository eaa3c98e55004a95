package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrUserCancelled means the participant declined to choose a destination.
// It is a neutral outcome, not a failure.
var ErrUserCancelled = errors.New("user cancelled export")

// Picker asks where the archive should be saved.
type Picker interface {
	PromptSavePath(ctx context.Context, suggestedName string) (string, error)
}

// FixedPicker returns a path chosen ahead of time, e.g. by the UI or a CLI
// flag. An empty path counts as a cancel.
type FixedPicker string

func (p FixedPicker) PromptSavePath(ctx context.Context, suggestedName string) (string, error) {
	if strings.TrimSpace(string(p)) == "" {
		return "", ErrUserCancelled
	}
	return string(p), nil
}

// PromptPicker asks on a terminal. Pressing enter accepts the suggested
// name; typing "n" or closing the input cancels.
//
// Reads go through one buffered reader kept for the picker's lifetime. A
// read blocked on the input cannot be interrupted, so when ctx is cancelled
// the read goroutine outlives the call; the next prompt consumes its line
// instead of starting a second read.
type PromptPicker struct {
	in  *bufio.Reader
	out io.Writer

	mu      sync.Mutex
	pending chan promptLine
}

type promptLine struct {
	text string
	ok   bool
}

// NewPromptPicker prompts on out and reads answers from in.
func NewPromptPicker(in io.Reader, out io.Writer) *PromptPicker {
	return &PromptPicker{in: bufio.NewReader(in), out: out}
}

func (p *PromptPicker) PromptSavePath(ctx context.Context, suggestedName string) (string, error) {
	fmt.Fprintf(p.out, "Save archive as [%s] (n to cancel): ", suggestedName)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line := <-p.readLine():
		p.mu.Lock()
		p.pending = nil
		p.mu.Unlock()

		switch {
		case !line.ok, strings.EqualFold(line.text, "n"):
			return "", ErrUserCancelled
		case line.text == "":
			return suggestedName, nil
		default:
			return line.text, nil
		}
	}
}

// readLine starts a read unless an earlier one is still outstanding.
func (p *PromptPicker) readLine() <-chan promptLine {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		ch := make(chan promptLine, 1)
		go func() {
			text, err := p.in.ReadString('\n')
			ch <- promptLine{text: strings.TrimSpace(text), ok: err == nil || text != ""}
		}()
		p.pending = ch
	}
	return p.pending
}
