package provider

import (
	"context"
	"errors"

	"github.com/doclens/doclens/internal/api"
)

var (
	ErrInvalidEmbedderType = errors.New("no embedder found for given type")
	ErrInvalidJudgeType    = errors.New("no judge found for given type")
	ErrInvalidRefinerType  = errors.New("no refiner found for given type")
)

// Embedder maps text to a fixed-length vector suitable for
// cosine-similarity comparison.
type Embedder interface {
	EmbedQuery(ctx context.Context, q string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Judge is the optional external judging service. Implementations are
// network-bound; callers wrap Judge calls with a deadline and fall back
// to local scoring on any error.
type Judge interface {
	Judge(ctx context.Context, req api.JudgeRequest) (*api.JudgeResponse, error)
}

// Refiner produces an intent-aware description of a paragraph.
type Refiner interface {
	Refine(ctx context.Context, req api.RefineRequest) (string, error)
}
