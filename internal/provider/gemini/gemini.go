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

package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/doclens/doclens/internal/api"
	"github.com/doclens/doclens/internal/provider/prompt"
	"google.golang.org/genai"
)

const (
	defaultGenerativeModel = "gemini-2.0-flash"
	defaultEmbeddingModel  = "gemini-embedding-exp-03-07"
)

type GeminiProvider struct {
	client     *genai.Client
	vectorDims *int32
}

func New() *GeminiProvider {
	// New methods might need error return
	// to handle error returns from client libs like genai
	c, _ := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	p := &GeminiProvider{
		client:     c,
		vectorDims: new(int32),
	}
	*(p.vectorDims) = 1536
	return p
}

func (p GeminiProvider) GetDimensions() uint {
	return uint(*p.vectorDims)
}

func (p GeminiProvider) EmbedQuery(ctx context.Context, q string) ([]float32, error) {
	contents := genai.Text(q)

	config := &genai.EmbedContentConfig{
		TaskType:             "RETRIEVAL_QUERY",
		OutputDimensionality: p.vectorDims,
	}

	res, err := p.client.Models.EmbedContent(ctx, defaultEmbeddingModel, contents, config)
	if err != nil {
		return nil, err
	}

	vals := res.Embeddings[0].Values
	return vals, nil
}

func (p GeminiProvider) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	}

	config := &genai.EmbedContentConfig{
		TaskType:             "RETRIEVAL_DOCUMENT",
		OutputDimensionality: p.vectorDims,
	}

	res, err := p.client.Models.EmbedContent(ctx, defaultEmbeddingModel, contents, config)
	if err != nil {
		return nil, err
	}

	values := make([][]float32, 0, len(res.Embeddings))
	for _, rEmbedding := range res.Embeddings {
		values = append(values, rEmbedding.Values)
	}

	return values, nil
}

func (p GeminiProvider) Judge(ctx context.Context, req api.JudgeRequest) (*api.JudgeResponse, error) {
	judgePrompt, err := prompt.Judge(req)
	if err != nil {
		return nil, err
	}

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"relevance": {
				Type:        genai.TypeNumber,
				Description: "Relevance of the section to the job, from 0.0 to 1.0.",
			},
			"reasoning": {
				Type:        genai.TypeString,
				Description: "Short explanation of the rating.",
			},
		},
		Title:    "Section relevance judgement.",
		Required: []string{"relevance", "reasoning"},
	}

	temperature := float32(0)
	reqConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
		Temperature:      &temperature,
	}

	modelName := defaultGenerativeModel
	if req.ModelName != "" {
		modelName = req.ModelName
	}

	resp, err := p.client.Models.GenerateContent(ctx, modelName, genai.Text(judgePrompt), reqConfig)
	if err != nil {
		return nil, err
	}

	var judgement struct {
		Relevance float64 `json:"relevance"`
		Reasoning string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(resp.Text()), &judgement); err != nil {
		return nil, fmt.Errorf("failed to parse judgement response: %w", err)
	}

	return &api.JudgeResponse{
		Score:     min(max(judgement.Relevance, 0), 1),
		Reasoning: judgement.Reasoning,
	}, nil
}

func (p GeminiProvider) Refine(ctx context.Context, req api.RefineRequest) (string, error) {
	refinePrompt, err := prompt.Refine(req)
	if err != nil {
		return "", err
	}

	modelName := defaultGenerativeModel
	if req.ModelName != "" {
		modelName = req.ModelName
	}

	temperature := float32(0.7)
	config := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}

	i := p.client.Models.GenerateContentStream(ctx, modelName, genai.Text(refinePrompt), config)

	next, stop := iter.Pull2(i)
	stream := &GeminiCompletionStream{
		next: next,
		stop: stop,
	}

	return api.StreamReadAll(ctx, stream)
}

type GeminiCompletionStream struct {
	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()
}

func (s GeminiCompletionStream) Recv() (string, error) {
	res, err, valid := s.next()
	if !valid {
		// iterator is finished
		return "", io.EOF
	}

	if err != nil {
		return "", err
	}

	return res.Text(), nil
}

func (s GeminiCompletionStream) Close() error {
	s.stop()
	return nil
}
