// Package local provides a deterministic, dependency-free embedder.
// Tokens are hashed into a fixed-dimension frequency vector, so texts
// sharing vocabulary land on shared dimensions and compare with a
// meaningful cosine similarity. It is the offline default and the
// embedder used in tests; deployments wanting semantic embeddings
// configure one of the hosted providers instead.
package local

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

const defaultDimensions = 512

type LocalEmbedder struct {
	dims uint
}

func New() *LocalEmbedder {
	return &LocalEmbedder{
		dims: defaultDimensions,
	}
}

func (e LocalEmbedder) GetDimensions() uint {
	return e.dims
}

func (e LocalEmbedder) EmbedQuery(ctx context.Context, q string) ([]float32, error) {
	return e.embed(q), nil
}

func (e LocalEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, t := range texts {
		vectors = append(vectors, e.embed(t))
	}
	return vectors, nil
}

func (e LocalEmbedder) embed(text string) []float32 {
	vec := make([]float32, e.dims)

	tokens := tokenize(text)
	for i, tok := range tokens {
		vec[e.bucket(tok)] += 1

		// bigrams catch short phrases the unigram buckets miss
		if i < len(tokens)-1 {
			vec[e.bucket(tok+" "+tokens[i+1])] += 0.5
		}
	}

	return vec
}

func (e LocalEmbedder) bucket(token string) uint {
	h := fnv.New32a()
	h.Write([]byte(token))
	return uint(h.Sum32()) % e.dims
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
