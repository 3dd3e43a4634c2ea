// Copyright 2025 Alan Matykiewicz
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to use,
// copy, modify, merge, publish, distribute, sublicense, and/or sell copies of the
// Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES
// OF MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
// NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT
// HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY,
// WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.

// Package transport hands finished pipeline results to external
// consumers and tracks request traces.
package transport

import (
	"context"
	"time"

	"github.com/doclens/doclens/internal/api"
)

var TraceExpiry = time.Hour * 24

type Transport interface {
	GetResultStream(id string) (ResultStream, error)
	SetTrace(ctx context.Context, trace *RequestTrace) error
	GetTrace(ctx context.Context, traceId string) (*RequestTrace, error)
}

// ResultStream delivers the outcome of a single analysis task to
// whoever is waiting on it.
type ResultStream interface {
	Publish(ctx context.Context, payload ResultPayload) error

	Recv(ctx context.Context) (*ResultPayload, error)

	GetID() string
}

type ResultPayload struct {
	Status string `json:"status"`

	Result *api.PipelineResult `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
}

const (
	StatusDone = "DONE"
	StatusErr  = "ERR"
)

type RequestTrace struct {
	ID          string `redis:"id"`
	Status      int    `redis:"status"`
	StartedAt   int64  `redis:"started_at"`
	CompletedAt int64  `redis:"completed_at"`
	Persona     string `redis:"persona"`
	Job         string `redis:"job"`
	User        string `redis:"user"`
}

type TraceStatus int

const (
	TraceStatusUnspecified = iota
	TraceStatusRunning
	TraceStatusCompleted
	TraceStatusFailed
)

func (s TraceStatus) String() string {
	switch s {
	case TraceStatusRunning:
		return "RUNNING"
	case TraceStatusCompleted:
		return "COMPLETED"
	case TraceStatusFailed:
		return "FAILED"
	}
	return "UNSPECIFIED"
}

// AwaitResult blocks on the task's result stream until a terminal
// payload is published or ctx expires.
func AwaitResult(ctx context.Context, t Transport, id string) (*ResultPayload, error) {
	rs, err := t.GetResultStream(id)
	if err != nil {
		return nil, err
	}

	for {
		payload, err := rs.Recv(ctx)
		if err != nil {
			return nil, err
		}
		if payload.Status == StatusDone || payload.Status == StatusErr {
			return payload, nil
		}
	}
}
