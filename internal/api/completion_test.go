package api_test

import (
	"context"
	"errors"
	"io"
	"runtime"
	"testing"
	"time"

	"github.com/doclens/doclens/internal/api"
)

type scriptedStream struct {
	chunks []string
	i      int
	closed bool
}

func (s *scriptedStream) Recv() (string, error) {
	if s.i >= len(s.chunks) {
		return "", io.EOF
	}
	chunk := s.chunks[s.i]
	s.i++
	return chunk, nil
}

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}

type failingStream struct {
	scriptedStream
	err error
}

func (s *failingStream) Recv() (string, error) {
	if s.i >= len(s.chunks) {
		return "", s.err
	}
	return s.scriptedStream.Recv()
}

// endlessStream never finishes, every Recv yields another chunk.
type endlessStream struct{}

func (endlessStream) Recv() (string, error) { return "chunk ", nil }
func (endlessStream) Close() error          { return nil }

func TestStreamReadAll(t *testing.T) {
	stream := &scriptedStream{chunks: []string{"Hel", "lo ", "world"}}

	acc, err := api.StreamReadAll(context.Background(), stream)
	if err != nil {
		t.Fatalf("expected nil error, got '%v'", err)
	}
	if acc != "Hello world" {
		t.Errorf("invalid accumulated content, got '%s'", acc)
	}
	if !stream.closed {
		t.Error("expected the underlying stream closed")
	}
}

func TestStreamReadAllError(t *testing.T) {
	wantErr := errors.New("upstream failure")
	stream := &failingStream{
		scriptedStream: scriptedStream{chunks: []string{"partial"}},
		err:            wantErr,
	}

	acc, err := api.StreamReadAll(context.Background(), stream)
	if !errors.Is(err, wantErr) {
		t.Errorf("expected the stream error, got '%v'", err)
	}
	if acc != "partial" {
		t.Errorf("invalid accumulated content, got '%s'", acc)
	}
	if !stream.closed {
		t.Error("expected the underlying stream closed")
	}
}

func TestStreamReadAllCancelled(t *testing.T) {
	before := runtime.NumGoroutine()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := api.StreamReadAll(ctx, endlessStream{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got '%v'", err)
	}

	// the reader goroutine must not stay blocked on its channel send
	deadline := time.Now().Add(time.Second)
	for runtime.NumGoroutine() > before {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d goroutines after cancellation, got %d", before, runtime.NumGoroutine())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
