package provider

import (
	"fmt"

	cohere "github.com/doclens/doclens/internal/provider/cohere"
	"github.com/doclens/doclens/internal/provider/gemini"
	"github.com/doclens/doclens/internal/provider/jina"
	"github.com/doclens/doclens/internal/provider/local"
	"github.com/doclens/doclens/internal/provider/openai"
)

const (
	EmbedderTypeLocal EmbedderType = iota
	EmbedderTypeGemini
	EmbedderTypeOpenAI
	EmbedderTypeCohere
	EmbedderTypeJina
)

const (
	JudgeTypeGemini JudgeType = iota
	JudgeTypeOpenAI
	JudgeTypeCohere
)

const (
	RefinerTypeGemini RefinerType = iota
	RefinerTypeOpenAI
)

type EmbedderType int
type JudgeType int
type RefinerType int

func NewEmbedder(t EmbedderType) (Embedder, error) {
	switch t {
	case EmbedderTypeLocal:
		return local.New(), nil
	case EmbedderTypeGemini:
		return gemini.New(), nil
	case EmbedderTypeOpenAI:
		return openai.New(), nil
	case EmbedderTypeCohere:
		return cohere.New(), nil
	case EmbedderTypeJina:
		return jina.New(), nil
	default:
		return nil, ErrInvalidEmbedderType
	}
}

func NewJudge(t JudgeType) (Judge, error) {
	switch t {
	case JudgeTypeGemini:
		return gemini.New(), nil
	case JudgeTypeOpenAI:
		return openai.New(), nil
	case JudgeTypeCohere:
		return cohere.New(), nil
	default:
		return nil, ErrInvalidJudgeType
	}
}

func NewRefiner(t RefinerType) (Refiner, error) {
	switch t {
	case RefinerTypeGemini:
		return gemini.New(), nil
	case RefinerTypeOpenAI:
		return openai.New(), nil
	default:
		return nil, ErrInvalidRefinerType
	}
}

// ParseEmbedderType resolves a config value to an embedder type.
func ParseEmbedderType(name string) (EmbedderType, error) {
	types := map[string]EmbedderType{
		"local":  EmbedderTypeLocal,
		"gemini": EmbedderTypeGemini,
		"openai": EmbedderTypeOpenAI,
		"cohere": EmbedderTypeCohere,
		"jina":   EmbedderTypeJina,
	}
	t, ok := types[name]
	if !ok {
		return 0, fmt.Errorf("%w: '%s'", ErrInvalidEmbedderType, name)
	}
	return t, nil
}

// ParseJudgeType resolves a config value to a judge type.
func ParseJudgeType(name string) (JudgeType, error) {
	types := map[string]JudgeType{
		"gemini": JudgeTypeGemini,
		"openai": JudgeTypeOpenAI,
		"cohere": JudgeTypeCohere,
	}
	t, ok := types[name]
	if !ok {
		return 0, fmt.Errorf("%w: '%s'", ErrInvalidJudgeType, name)
	}
	return t, nil
}

// ParseRefinerType resolves a config value to a refiner type.
func ParseRefinerType(name string) (RefinerType, error) {
	types := map[string]RefinerType{
		"gemini": RefinerTypeGemini,
		"openai": RefinerTypeOpenAI,
	}
	t, ok := types[name]
	if !ok {
		return 0, fmt.Errorf("%w: '%s'", ErrInvalidRefinerType, name)
	}
	return t, nil
}
