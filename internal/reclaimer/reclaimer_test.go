package reclaimer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeSweeper struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSweeper) ReclaimExpired(context.Context) (int, error) {
	f.calls.Add(1)
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

func TestReclaimerRunsSweepsUntilCancelled(t *testing.T) {
	t.Parallel()

	sw := &fakeSweeper{}
	r := New(sw, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return sw.calls.Load() >= 3 },
		time.Second, time.Millisecond, "sweeps should keep firing")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestReclaimerKeepsSweepingAfterFailure(t *testing.T) {
	t.Parallel()

	sw := &fakeSweeper{err: errors.New("db gone")}
	r := New(sw, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	assert.Eventually(t, func() bool { return sw.calls.Load() >= 2 },
		time.Second, time.Millisecond, "a failed sweep must not stop the loop")
}

func TestNewDefaultsInterval(t *testing.T) {
	t.Parallel()
	r := New(&fakeSweeper{}, 0)
	assert.Equal(t, 5*time.Second, r.interval)
}
