package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterruptNotice_ClassifiesCanceledSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	notice := NewInterruptNotice(&out)

	assert.True(t, notice.Handle(ctx, context.Canceled))
	assert.True(t, notice.WasInterrupted())
	assert.Contains(t, out.String(), "Sorting interrupted")
}

func TestInterruptNotice_WrappedCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	notice := NewInterruptNotice(&out)

	err := fmt.Errorf("sorting aborted: %w", context.Canceled)
	assert.True(t, notice.Handle(ctx, err))
}

func TestInterruptNotice_IgnoresRealFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	notice := NewInterruptNotice(&out)

	assert.False(t, notice.Handle(ctx, errors.New("disk full")))
	assert.False(t, notice.WasInterrupted())
	assert.Empty(t, out.String())
}

func TestInterruptNotice_IgnoresCancellationWithLiveContext(t *testing.T) {
	var out bytes.Buffer
	notice := NewInterruptNotice(&out)

	// A canceled sub-operation while the session context is still live is
	// not an operator interrupt.
	assert.False(t, notice.Handle(context.Background(), context.Canceled))
	assert.Empty(t, out.String())
}

func TestInterruptNotice_NilError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	notice := NewInterruptNotice(&bytes.Buffer{})
	assert.False(t, notice.Handle(ctx, nil))
}

func TestInterruptNotice_PrintsOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	notice := NewInterruptNotice(&out)

	assert.True(t, notice.Handle(ctx, context.Canceled))
	first := out.String()
	assert.True(t, notice.Handle(ctx, context.Canceled))
	assert.Equal(t, first, out.String(), "the explanation must not repeat")
}
