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

package doclens_cohere

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/doclens/doclens/internal/api"
	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

const (
	EmbedMaxTexts = 96

	defaultEmbedModel  = "embed-multilingual-v3.0"
	defaultRerankModel = "rerank-v3.5"
)

type CohereProvider struct {
	client *cohereclient.Client
}

func New() *CohereProvider {
	c := cohereclient.NewClient(
		cohereclient.WithToken(os.Getenv("COHERE_API_KEY")),
		cohereclient.WithHTTPClient(
			&http.Client{
				Timeout: 60 * time.Second,
			},
		),
	)
	return &CohereProvider{
		client: c,
	}
}

func (p CohereProvider) GetDimensions() uint {
	return 1024
}

func (p CohereProvider) EmbedQuery(ctx context.Context, q string) ([]float32, error) {
	resp, err := p.client.V2.Embed(
		ctx,
		&cohere.V2EmbedRequest{
			Texts:          []string{q},
			Model:          defaultEmbedModel,
			InputType:      cohere.EmbedInputTypeSearchQuery,
			EmbeddingTypes: []cohere.EmbeddingType{cohere.EmbeddingTypeFloat},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("embed request failed: %w", err)
	}

	f32 := make([]float32, 0, len(resp.Embeddings.Float[0]))
	for _, f := range resp.Embeddings.Float[0] {
		f32 = append(f32, float32(f))
	}

	return f32, nil
}

func (p CohereProvider) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	parts := ((len(texts) - 1) / EmbedMaxTexts) + 1
	for i := range parts {
		start, end := i*EmbedMaxTexts, (i+1)*EmbedMaxTexts
		if end > len(texts) {
			end = len(texts)
		}

		resp, err := p.client.V2.Embed(
			ctx,
			&cohere.V2EmbedRequest{
				Texts:          texts[start:end],
				Model:          defaultEmbedModel,
				InputType:      cohere.EmbedInputTypeSearchDocument,
				EmbeddingTypes: []cohere.EmbeddingType{cohere.EmbeddingTypeFloat},
			},
		)
		if err != nil {
			return nil, fmt.Errorf("embed request failed: %w", err)
		}

		for _, cohereVector := range resp.Embeddings.Float {
			vector := make([]float32, 0, len(cohereVector))
			for _, f64 := range cohereVector {
				vector = append(vector, float32(f64))
			}
			vectors = append(vectors, vector)
		}
	}

	return vectors, nil
}

// Judge scores a section with the rerank endpoint. Rerank returns no
// textual reasoning, so the response reasoning names the model that
// produced the score.
func (p CohereProvider) Judge(ctx context.Context, req api.JudgeRequest) (*api.JudgeResponse, error) {
	if req.Content == "" {
		return nil, fmt.Errorf("judge request failed: missing section content")
	}

	model := defaultRerankModel
	if req.ModelName != "" {
		model = req.ModelName
	}

	query := req.Intent.Job
	if req.Intent.Persona != "" {
		query = fmt.Sprintf("%s: %s", req.Intent.Persona, req.Intent.Job)
	}

	returnDocuments := false
	coReq := &cohere.V2RerankRequest{
		Query:           query,
		Documents:       []string{req.Title + "\n" + req.Content},
		Model:           model,
		ReturnDocuments: &returnDocuments,
	}

	resp, err := p.client.V2.Rerank(ctx, coReq)
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}

	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("rerank request failed: empty result set")
	}

	return &api.JudgeResponse{
		Score:     min(max(resp.Results[0].RelevanceScore, 0), 1),
		Reasoning: fmt.Sprintf("relevance scored by %s", model),
	}, nil
}
