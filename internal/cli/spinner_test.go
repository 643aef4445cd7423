package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

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

func testSpinner(ctx context.Context, msg string) (*spinner, *syncBuffer) {
	var out syncBuffer
	s := newSpinner(ctx, msg)
	s.w = &out
	return s, &out
}

func TestSpinnerDrawsMessage(t *testing.T) {
	s, out := testSpinner(context.Background(), "Fetching data")
	s.start()
	time.Sleep(200 * time.Millisecond)
	s.stop()

	if !strings.Contains(out.String(), "Fetching data") {
		t.Errorf("spinner output %q does not contain the message", out.String())
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s, _ := testSpinner(context.Background(), "stop")
	s.start()
	s.stop()
	s.stop()
	s.stop()
}

func TestSpinnerCancelledByContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, _ := testSpinner(ctx, "cancel")
	s.start()

	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.cancelled() {
		t.Error("spinner should report cancellation after the context ends")
	}
}

func TestSpinnerNotCancelledWhileRunning(t *testing.T) {
	s, _ := testSpinner(context.Background(), "running")
	s.start()
	defer s.stop()

	if s.cancelled() {
		t.Error("running spinner reported cancellation")
	}
}

func TestSpinnerFail(t *testing.T) {
	s, out := testSpinner(context.Background(), "download")
	s.start()
	s.fail("download failed")

	if !strings.Contains(out.String(), "download failed") {
		t.Errorf("spinner output %q does not contain the failure", out.String())
	}
}

func TestSpinnerStopIsNotCancellation(t *testing.T) {
	s, _ := testSpinner(context.Background(), "stopped")
	s.start()
	s.stop()

	if s.cancelled() {
		t.Error("explicit stop reported as cancellation")
	}
}
