package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a buffer written by the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsMessage(t *testing.T) {
	out := &syncBuffer{}
	s := newSpinner("Rendering study.yml...")
	s.out = out
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !bytes.Contains([]byte(out.String()), []byte("Rendering study.yml...")) {
		t.Errorf("spinner output %q does not contain the message", out.String())
	}
	if s.Cancelled() {
		t.Error("Cancelled() = true after a plain Stop")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Testing with context...")
	s.out = &syncBuffer{}
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, "Testing with timeout...")
	s.out = &syncBuffer{}
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Testing idempotent stop...")
	s.out = &syncBuffer{}
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := newSpinner("never started")
	s.out = &syncBuffer{}

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a spinner that was never started")
	}
}

func TestSpinnerStopWithMessages(t *testing.T) {
	s := newSpinner("Testing...")
	s.out = &syncBuffer{}
	s.Start()
	s.StopWithSuccess("Done!")

	s = newSpinner("Testing...")
	s.out = &syncBuffer{}
	s.Start()
	s.StopWithError("Failed!")
}
