package local_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/doclens/doclens/internal/provider"
	"github.com/doclens/doclens/internal/provider/local"
)

func TestEmbedDeterministic(t *testing.T) {
	e := local.New()

	first, err := e.EmbedQuery(context.Background(), "annual budget review")
	if err != nil {
		t.Fatalf("expected nil error, got '%v'", err)
	}
	second, err := e.EmbedQuery(context.Background(), "annual budget review")
	if err != nil {
		t.Fatalf("expected nil error, got '%v'", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical embeddings for identical text")
	}
	if uint(len(first)) != e.GetDimensions() {
		t.Errorf("expected %d dimensions, got %d", e.GetDimensions(), len(first))
	}
}

func TestEmbedSharedVocabularyScoresHigher(t *testing.T) {
	e := local.New()

	vecs, err := e.EmbedTexts(context.Background(), []string{
		"the annual budget and spending plan",
		"reviewing the annual budget for spending",
		"pruning hedges in the spring garden",
	})
	if err != nil {
		t.Fatalf("expected nil error, got '%v'", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vecs))
	}

	related := provider.CosineSimilarity(vecs[0], vecs[1])
	unrelated := provider.CosineSimilarity(vecs[0], vecs[2])
	if related <= unrelated {
		t.Errorf("expected shared vocabulary to score higher, got %f <= %f", related, unrelated)
	}
}
