package transport_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/doclens/doclens/internal/api"
	"github.com/doclens/doclens/internal/transport"
)

type stubStream struct {
	id       string
	payloads []transport.ResultPayload
	next     int
}

func (s *stubStream) Publish(ctx context.Context, payload transport.ResultPayload) error {
	s.payloads = append(s.payloads, payload)
	return nil
}

func (s *stubStream) Recv(ctx context.Context) (*transport.ResultPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.payloads) {
		return nil, errors.New("stream drained")
	}
	payload := s.payloads[s.next]
	s.next++
	return &payload, nil
}

func (s *stubStream) GetID() string {
	return s.id
}

type stubTransport struct {
	streams map[string]*stubStream
}

func (t *stubTransport) GetResultStream(id string) (transport.ResultStream, error) {
	rs, ok := t.streams[id]
	if !ok {
		return nil, fmt.Errorf("unknown stream: %s", id)
	}
	return rs, nil
}

func (t *stubTransport) SetTrace(ctx context.Context, trace *transport.RequestTrace) error {
	return nil
}

func (t *stubTransport) GetTrace(ctx context.Context, traceId string) (*transport.RequestTrace, error) {
	return nil, errors.New("no traces")
}

func TestAwaitResult(t *testing.T) {
	stream := &stubStream{
		id: "task-1",
		payloads: []transport.ResultPayload{
			{Status: "PROGRESS"},
			{Status: transport.StatusDone, Result: &api.PipelineResult{}},
		},
	}
	tr := &stubTransport{streams: map[string]*stubStream{"task-1": stream}}

	payload, err := transport.AwaitResult(context.Background(), tr, "task-1")
	if err != nil {
		t.Fatalf("expected nil error, got '%v'", err)
	}
	if payload.Status != transport.StatusDone {
		t.Errorf("expected a terminal payload, got status '%s'", payload.Status)
	}
	if payload.Result == nil {
		t.Error("expected the payload to carry a result")
	}
}

func TestAwaitResultFailedTask(t *testing.T) {
	stream := &stubStream{
		id: "task-2",
		payloads: []transport.ResultPayload{
			{Status: transport.StatusErr, Error: "analysis failed"},
		},
	}
	tr := &stubTransport{streams: map[string]*stubStream{"task-2": stream}}

	payload, err := transport.AwaitResult(context.Background(), tr, "task-2")
	if err != nil {
		t.Fatalf("expected nil error, got '%v'", err)
	}
	if payload.Status != transport.StatusErr || payload.Error == "" {
		t.Errorf("expected an error payload, got %+v", payload)
	}
}

func TestAwaitResultUnknownStream(t *testing.T) {
	tr := &stubTransport{streams: map[string]*stubStream{}}

	_, err := transport.AwaitResult(context.Background(), tr, "missing")
	if err == nil {
		t.Error("expected an error for an unknown stream")
	}
}

func TestAwaitResultCancelled(t *testing.T) {
	stream := &stubStream{id: "task-3"}
	tr := &stubTransport{streams: map[string]*stubStream{"task-3": stream}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := transport.AwaitResult(ctx, tr, "task-3")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got '%v'", err)
	}
}

func TestTraceStatusString(t *testing.T) {
	cases := map[transport.TraceStatus]string{
		transport.TraceStatusUnspecified: "UNSPECIFIED",
		transport.TraceStatusRunning:     "RUNNING",
		transport.TraceStatusCompleted:   "COMPLETED",
		transport.TraceStatusFailed:      "FAILED",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("expected '%s', got '%s'", want, got)
		}
	}
}
