package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// InterruptNotice explains a Ctrl-C-canceled sorting session to the
// operator. Signal handling itself lives with the root command; this only
// classifies the resulting error after the run.
type InterruptNotice struct {
	writer      io.Writer
	once        sync.Once
	interrupted bool
}

// NewInterruptNotice creates a notice writing to writer (stdout when nil).
func NewInterruptNotice(writer io.Writer) *InterruptNotice {
	if writer == nil {
		writer = os.Stdout
	}
	return &InterruptNotice{writer: writer}
}

// Handle reports whether err is the cancellation of ctx, i.e. the
// operator interrupted the session rather than something failing. The
// explanation is printed once.
func (n *InterruptNotice) Handle(ctx context.Context, err error) bool {
	if err == nil || !errors.Is(err, context.Canceled) || ctx.Err() == nil {
		return false
	}

	n.interrupted = true
	n.once.Do(func() {
		msg := "\n" + FormatWarning("Sorting interrupted!") +
			"\n" + FormatInfo("Files already moved stay in place. Run again to continue.") + "\n"
		if _, werr := fmt.Fprint(n.writer, msg); werr != nil {
			// Best effort, we are shutting down anyway.
			fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", werr)
		}
	})
	return true
}

// WasInterrupted returns true once Handle has classified an interrupt.
func (n *InterruptNotice) WasInterrupted() bool {
	return n.interrupted
}
