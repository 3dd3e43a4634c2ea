package jina

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/doclens/doclens/internal/http"
)

const (
	Endpoint            = "https://api.jina.ai"
	EmbedItemsMaxLength = 2048

	defaultEmbedModel = "jina-embeddings-v3"
)

type embeddingResponse struct {
	Model     string `json:"model"`
	UsageInfo struct {
		TotalTokens  int `json:"total_tokens"`
		PromptTokens int `json:"prompt_tokens"`
	} `json:"usage"`
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

type JinaAIProvider struct {
	client     http.Client
	vectorDims uint
}

func New() *JinaAIProvider {
	c := http.NewClient(
		Endpoint,
		http.WithMaxRetries(3),
		http.WithApiKey(os.Getenv("JINA_API_KEY")),
	)
	p := &JinaAIProvider{
		client:     c,
		vectorDims: 1024,
	}
	return p
}

func (p JinaAIProvider) GetDimensions() uint {
	return p.vectorDims
}

func (p JinaAIProvider) EmbedQuery(ctx context.Context, q string) ([]float32, error) {
	vecs, err := p.embed(ctx, []string{q}, "retrieval.query")
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (p JinaAIProvider) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += EmbedItemsMaxLength {
		end := start + EmbedItemsMaxLength
		if end > len(texts) {
			end = len(texts)
		}

		vecs, err := p.embed(ctx, texts[start:end], "retrieval.passage")
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vecs...)
	}

	return vectors, nil
}

func (p JinaAIProvider) embed(ctx context.Context, texts []string, task string) ([][]float32, error) {
	payload := map[string]any{
		"model":      defaultEmbedModel,
		"task":       task,
		"dimensions": p.vectorDims,
		"input":      texts,
	}

	var resp embeddingResponse
	if err := p.client.Post(ctx, "/v1/embeddings", payload, &resp); err != nil {
		return nil, fmt.Errorf("embed request failed: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embed request failed: expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	sort.Slice(resp.Data, func(i, j int) bool {
		return resp.Data[i].Index < resp.Data[j].Index
	})

	vectors := make([][]float32, 0, len(resp.Data))
	for _, d := range resp.Data {
		vectors = append(vectors, d.Embedding)
	}
	return vectors, nil
}
