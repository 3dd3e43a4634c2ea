// Package tasks defines the asynq task types accepted by the worker
// and the payloads they carry.
package tasks

import (
	"encoding/json"

	"github.com/doclens/doclens/internal/api"
	"github.com/doclens/doclens/internal/pipeline"
	"github.com/hibiken/asynq"
)

const (
	TypeAnalyze = "doclens:analyze"
)

type analyzeTaskPayload struct {
	Persona   string
	Job       string
	User      string
	Documents []api.Document
}

func NewAnalyzeTask(req pipeline.Request, user string) (*asynq.Task, error) {
	tp := analyzeTaskPayload{
		Persona:   req.Persona,
		Job:       req.Job,
		User:      user,
		Documents: req.Documents,
	}
	payload, err := json.Marshal(tp)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAnalyze, payload), nil
}
