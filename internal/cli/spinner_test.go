package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
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

func TestSpinnerDraws(t *testing.T) {
	var w syncBuffer
	s := newSpinner(context.Background(), &w, "Rendering png")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Update("Rendering pdf")
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	out := w.String()
	if !strings.Contains(out, "Rendering png") || !strings.Contains(out, "Rendering pdf") {
		t.Errorf("spinner output missing messages: %q", out)
	}
	if s.Cancelled() {
		t.Error("Cancelled() after Stop should be false")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinner(ctx, io.Discard, "Testing with context...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
	if !s.Cancelled() {
		t.Error("Stop after cancellation should keep Cancelled() true")
	}
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinner(ctx, io.Discard, "Testing with timeout...")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), io.Discard, "Testing idempotent stop...")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithMessage(t *testing.T) {
	var out bytes.Buffer
	old := stdout
	stdout = &out
	t.Cleanup(func() { stdout = old })

	s := newSpinner(context.Background(), io.Discard, "Working")
	s.Start()
	s.StopWithSuccess("Done")
	s2 := newSpinner(context.Background(), io.Discard, "Working")
	s2.Start()
	s2.StopWithError("Failed")

	if !strings.Contains(out.String(), "Done") || !strings.Contains(out.String(), "Failed") {
		t.Errorf("output = %q", out.String())
	}
}
