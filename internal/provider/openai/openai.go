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

package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/doclens/doclens/internal/api"
	"github.com/doclens/doclens/internal/provider/prompt"
	"github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	client *openai.Client
}

func New() *OpenAIProvider {
	c := openai.NewClient(os.Getenv("OPENAI_API_KEY"))
	return &OpenAIProvider{
		client: c,
	}
}

func (p OpenAIProvider) EmbedQuery(ctx context.Context, q string) ([]float32, error) {
	vecs, err := p.EmbedTexts(ctx, []string{q})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (p OpenAIProvider) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.SmallEmbedding3,
	})
	if err != nil {
		return nil, fmt.Errorf("embed request failed: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embed request failed: expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	values := make([][]float32, 0, len(resp.Data))
	for _, d := range resp.Data {
		values = append(values, d.Embedding)
	}
	return values, nil
}

func (p OpenAIProvider) Judge(ctx context.Context, req api.JudgeRequest) (*api.JudgeResponse, error) {
	judgePrompt, err := prompt.Judge(req)
	if err != nil {
		return nil, err
	}

	model := openai.GPT4Dot1Nano
	if req.ModelName != "" {
		model = req.ModelName
	}

	openaiReq := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: `Respond with a JSON object of the form {"relevance": <number 0.0-1.0>, "reasoning": <string>}.`,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: judgePrompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := p.client.CreateChatCompletion(ctx, openaiReq)
	if err != nil {
		return nil, fmt.Errorf("judge request failed: %w", err)
	}

	var judgement struct {
		Relevance float64 `json:"relevance"`
		Reasoning string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &judgement); err != nil {
		return nil, fmt.Errorf("failed to parse judgement response: %w", err)
	}

	return &api.JudgeResponse{
		Score:     min(max(judgement.Relevance, 0), 1),
		Reasoning: judgement.Reasoning,
	}, nil
}

func (p OpenAIProvider) Refine(ctx context.Context, req api.RefineRequest) (string, error) {
	refinePrompt, err := prompt.Refine(req)
	if err != nil {
		return "", err
	}

	model := openai.GPT4Dot1Nano
	if req.ModelName != "" {
		model = req.ModelName
	}

	openaiReq := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: refinePrompt,
			},
		},
		Stream: true,
	}

	s, err := p.client.CreateChatCompletionStream(ctx, openaiReq)
	if err != nil {
		return "", err
	}

	return api.StreamReadAll(ctx, &OpenAIChatStream{stream: s})
}

type OpenAIChatStream struct {
	stream *openai.ChatCompletionStream
}

func (s OpenAIChatStream) Recv() (string, error) {
	res, err := s.stream.Recv()
	if err != nil {
		return "", err
	}

	return res.Choices[0].Delta.Content, nil
}

func (s OpenAIChatStream) Close() error {
	return s.stream.Close()
}
