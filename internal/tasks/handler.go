package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/doclens/doclens/internal/pipeline"
	"github.com/doclens/doclens/internal/transport"
	"github.com/hibiken/asynq"
)

type AnalyzeTaskHandler struct {
	transport transport.Transport
	pipeline  *pipeline.Pipeline
}

func NewAnalyzeTaskHandler(transport transport.Transport, pipeline *pipeline.Pipeline) *AnalyzeTaskHandler {
	return &AnalyzeTaskHandler{
		transport: transport,
		pipeline:  pipeline,
	}
}

func (h AnalyzeTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if t.Type() != TypeAnalyze {
		return fmt.Errorf("unrecognized task type (%w)", asynq.SkipRetry)
	}

	var p analyzeTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	slog.Info("received analyze task", "user", p.User, "persona", p.Persona, "job", p.Job, "documents", len(p.Documents))

	id := t.ResultWriter().TaskID()
	slog.Info("task id", "id", id)
	rs, err := h.transport.GetResultStream(id)
	if err != nil {
		slog.Error("failed to initialize result stream", "err", err)
		return fmt.Errorf("failed to initialize result stream: %v (%w)", err, asynq.SkipRetry)
	}

	trace := &transport.RequestTrace{
		ID:          id,
		Status:      transport.TraceStatusRunning,
		StartedAt:   time.Now().UnixNano(),
		CompletedAt: 0,
		Persona:     p.Persona,
		Job:         p.Job,
		User:        p.User,
	}
	err = h.transport.SetTrace(ctx, trace)
	if err != nil {
		slog.Error("failed to set trace", "id", id, "err", err)
	}

	req := pipeline.Request{
		Documents: p.Documents,
		Persona:   p.Persona,
		Job:       p.Job,
	}

	result, err := h.pipeline.Process(ctx, req)
	if err != nil {
		rs.Publish(ctx, transport.ResultPayload{
			Status: transport.StatusErr,
			Error:  "analysis failed",
		})

		trace.CompletedAt = time.Now().UnixNano()
		trace.Status = transport.TraceStatusFailed
		if terr := h.transport.SetTrace(ctx, trace); terr != nil {
			slog.Error("failed to set trace", "id", id, "err", terr)
		}

		return fmt.Errorf("analysis failed: %v (%w)", err, asynq.SkipRetry)
	}

	err = rs.Publish(ctx, transport.ResultPayload{
		Status: transport.StatusDone,
		Result: result,
	})
	if err != nil {
		slog.Warn("failed to publish result to stream", "id", id)
	}

	trace.CompletedAt = time.Now().UnixNano()
	trace.Status = transport.TraceStatusCompleted
	err = h.transport.SetTrace(ctx, trace)
	if err != nil {
		slog.Error("failed to set trace", "id", id, "err", err)
	}

	return nil
}
