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

// Package score assigns each section a relevance score in [0,1]
// against the persona/job intent.
package score

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/doclens/doclens/internal/api"
	"github.com/doclens/doclens/internal/provider"
	"golang.org/x/sync/errgroup"
)

const (
	// embedding input budget for section bodies, in runes
	maxEmbedLength = 512

	// at most this many word-pair phrases per section feed the
	// clustering signal
	maxKeyPhrases = 20

	topPhraseMatches = 5

	defaultJudgeTimeout = 45 * time.Second
	defaultConcurrency  = 4
)

type Scorer struct {
	embedder provider.Embedder
	judge    provider.Judge

	weights      Weights
	judgeTimeout time.Duration
	concurrency  int
}

type ScorerOption func(*Scorer)

func New(embedder provider.Embedder, options ...ScorerOption) *Scorer {
	s := &Scorer{
		embedder:     embedder,
		weights:      DefaultWeights(),
		judgeTimeout: defaultJudgeTimeout,
		concurrency:  defaultConcurrency,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// WithJudge enables the external judging service. Judge failures are
// never surfaced; scoring falls back to the local formula.
func WithJudge(j provider.Judge) ScorerOption {
	return func(s *Scorer) {
		s.judge = j
	}
}

func WithWeights(w Weights) ScorerOption {
	return func(s *Scorer) {
		s.weights = w
	}
}

func WithJudgeTimeout(d time.Duration) ScorerOption {
	return func(s *Scorer) {
		s.judgeTimeout = d
	}
}

func WithConcurrency(n int) ScorerOption {
	return func(s *Scorer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// intentEmbeddings holds the per-run embeddings derived from the
// intent alone. They are computed once and shared across sections.
type intentEmbeddings struct {
	job            []float32
	contexts       [][]float32
	concepts       [][]float32
	contradictions [][]float32
}

// Score rates a single section against the intent.
func (s *Scorer) Score(ctx context.Context, section api.Section, intent api.IntentContext) (float64, error) {
	ie, err := s.embedIntent(ctx, intent)
	if err != nil {
		return 0, err
	}
	return s.score(ctx, section, intent, ie)
}

// ScoreAll rates every section, batching embedding work across a
// bounded worker group. Scores are independent per section; input
// order is preserved and no ranks are assigned here.
func (s *Scorer) ScoreAll(ctx context.Context, sections []api.Section, intent api.IntentContext) ([]api.ScoredSection, error) {
	ie, err := s.embedIntent(ctx, intent)
	if err != nil {
		return nil, fmt.Errorf("failed to embed intent: %w", err)
	}

	scored := make([]api.ScoredSection, len(sections))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, section := range sections {
		g.Go(func() error {
			val, err := s.score(gctx, section, intent, ie)
			if err != nil {
				return err
			}
			scored[i] = api.ScoredSection{
				Section:        section,
				RelevanceScore: val,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scored, nil
}

func (s *Scorer) score(ctx context.Context, section api.Section, intent api.IntentContext, ie *intentEmbeddings) (float64, error) {
	body := truncateRunes(section.Content, maxEmbedLength)

	phrases := keyPhrases(section.Content, maxKeyPhrases)
	inputs := append([]string{body, section.Title}, phrases...)

	vecs, err := s.embedder.EmbedTexts(ctx, inputs)
	if err != nil {
		return 0, fmt.Errorf("failed to embed section '%s': %w", section.Title, err)
	}
	if len(vecs) != len(inputs) {
		return 0, fmt.Errorf("failed to embed section '%s': got %d vectors for %d inputs", section.Title, len(vecs), len(inputs))
	}

	bodyVec, titleVec, phraseVecs := vecs[0], vecs[1], vecs[2:]

	semantic := s.weights.BodyShare*s.multiContext(bodyVec, ie.contexts) +
		s.weights.TitleShare*s.multiContext(titleVec, ie.contexts)

	if s.judge != nil {
		if judged, ok := s.judgeScore(ctx, section, intent); ok {
			blended := s.weights.JudgeShare*judged + (1-s.weights.JudgeShare)*semantic
			return clamp01(blended), nil
		}
	}

	patterns := s.patternBonus(section.Content)
	clustering := s.clusteringBonus(phraseVecs, ie.concepts)
	reasoning := s.reasoningBonus(bodyVec, ie)
	length := min(s.weights.LengthBonusCap, float64(len(section.Content))/s.weights.LengthDivisor)
	generic, descriptive := s.titleAdjustments(section.Title)

	final := semantic*s.weights.Semantic +
		patterns*s.weights.Patterns +
		clustering*s.weights.Clustering +
		reasoning*s.weights.Reasoning +
		length - generic + descriptive

	return clamp01(final), nil
}

// judgeScore calls the external judging service with a bounded
// deadline. Any transport error or timeout reads as "unavailable".
func (s *Scorer) judgeScore(ctx context.Context, section api.Section, intent api.IntentContext) (float64, bool) {
	judgeCtx, cancel := context.WithTimeout(ctx, s.judgeTimeout)
	defer cancel()

	resp, err := s.judge.Judge(judgeCtx, api.JudgeRequest{
		Title:   section.Title,
		Content: section.Content,
		Intent:  intent,
	})
	if err != nil {
		slog.Debug("judge unavailable, falling back to local scoring", "section", section.Title, "err", err)
		return 0, false
	}

	slog.Debug("judged section", "section", section.Title, "score", resp.Score, "reasoning", resp.Reasoning)
	return resp.Score, true
}

func (s *Scorer) embedIntent(ctx context.Context, intent api.IntentContext) (*intentEmbeddings, error) {
	contexts := expandJobContexts(intent.Job)
	concepts := append(keyPhrases(intent.Job, maxKeyPhrases), strings.ToLower(intent.Job))
	contradictions := contradictionPatterns(intent.Job)

	inputs := make([]string, 0, 1+len(contexts)+len(concepts)+len(contradictions))
	inputs = append(inputs, intent.Job)
	inputs = append(inputs, contexts...)
	inputs = append(inputs, concepts...)
	inputs = append(inputs, contradictions...)

	vecs, err := s.embedder.EmbedTexts(ctx, inputs)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(inputs) {
		return nil, fmt.Errorf("got %d vectors for %d inputs", len(vecs), len(inputs))
	}

	ie := &intentEmbeddings{job: vecs[0]}
	rest := vecs[1:]
	ie.contexts, rest = rest[:len(contexts)], rest[len(contexts):]
	ie.concepts, rest = rest[:len(concepts)], rest[len(concepts):]
	ie.contradictions = rest

	return ie, nil
}

// multiContext compares a section vector against every expanded job
// representation, combining the best and the average match.
func (s *Scorer) multiContext(sectionVec []float32, contextVecs [][]float32) float64 {
	if len(contextVecs) == 0 {
		return 0
	}

	best, sum := -1.0, 0.0
	for _, cv := range contextVecs {
		sim := provider.CosineSimilarity(sectionVec, cv)
		sum += sim
		if sim > best {
			best = sim
		}
	}
	mean := sum / float64(len(contextVecs))

	return max(0, s.weights.BestMatchShare*best+s.weights.MeanMatchShare*mean)
}

// patternBonus rewards structural richness: list markers, measurement
// symbols, digit density and multi-line structure.
func (s *Scorer) patternBonus(content string) float64 {
	bonus := 0.0

	structured := strings.ContainsAny(content, "•-*")
	if !structured {
		for i := 1; i <= 9; i++ {
			if strings.Contains(content, fmt.Sprintf("%d.", i)) {
				structured = true
				break
			}
		}
	}
	if structured {
		bonus += 0.15
	}

	if strings.ContainsAny(content, "%$°") {
		bonus += 0.1
	}

	digits := 0
	for _, r := range content {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits > 5 {
		bonus += 0.1
	}

	if strings.Count(content, "\n") > 5 {
		bonus += 0.1
	}

	return min(bonus, s.weights.PatternCap)
}

// clusteringBonus averages the best phrase-to-concept similarities for
// the top matching phrases.
func (s *Scorer) clusteringBonus(phraseVecs, conceptVecs [][]float32) float64 {
	if len(phraseVecs) == 0 || len(conceptVecs) == 0 {
		return 0
	}

	bestMatches := make([]float64, 0, len(phraseVecs))
	for _, pv := range phraseVecs {
		best := 0.0
		for _, cv := range conceptVecs {
			if sim := provider.CosineSimilarity(pv, cv); sim > best {
				best = sim
			}
		}
		bestMatches = append(bestMatches, best)
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(bestMatches)))
	n := min(topPhraseMatches, len(bestMatches))

	sum := 0.0
	for _, m := range bestMatches[:n] {
		sum += m
	}

	return (sum / float64(n)) * s.weights.ClusteringScale
}

// reasoningBonus is the direct section-vs-job similarity, penalized
// when the section reads like a contradiction of the job.
func (s *Scorer) reasoningBonus(bodyVec []float32, ie *intentEmbeddings) float64 {
	direct := provider.CosineSimilarity(bodyVec, ie.job)

	maxContradiction := 0.0
	for _, cv := range ie.contradictions {
		if sim := provider.CosineSimilarity(bodyVec, cv); sim > maxContradiction {
			maxContradiction = sim
		}
	}

	penalty := 0.0
	if maxContradiction > s.weights.ContradictionThreshold {
		penalty = s.weights.ContradictionPenalty
	}

	return max(0, (direct-penalty)*s.weights.ReasoningScale)
}

// titleAdjustments returns the generic-title penalty and the
// descriptive-title bonus for a section title.
func (s *Scorer) titleAdjustments(title string) (generic, descriptive float64) {
	words := strings.Fields(title)

	if len(words) == 1 && len(title) < 15 {
		generic = s.weights.GenericTitlePenalty
	} else if len(words) <= 2 && len(words) > 0 {
		allShort := true
		for _, w := range words {
			if len(w) > 2 {
				allShort = false
				break
			}
		}
		if allShort {
			generic = s.weights.GenericTitlePenalty
		}
	}

	if title != "" && len(words) >= 2 && len(words) <= 5 && unicode.IsUpper([]rune(title)[0]) {
		longWords := 0
		for _, w := range words {
			if len(w) > 2 {
				longWords++
			}
		}
		if longWords >= 2 {
			descriptive = s.weights.DescriptiveTitleBonus
		}
	}

	return generic, descriptive
}

// expandJobContexts derives several representations of the job string:
// the job itself, a key-noun focus paraphrase, a key-verb task
// paraphrase, and a filtered-keyword version.
func expandJobContexts(job string) []string {
	contexts := []string{job}
	words := strings.Fields(job)

	for _, w := range words {
		if len(w) > 3 && unicode.IsUpper([]rune(w)[0]) {
			contexts = append(contexts, "focus on "+strings.ToLower(w))
			break
		}
	}

	for _, w := range words {
		if strings.HasSuffix(w, "ing") || strings.HasSuffix(w, "ed") {
			contexts = append(contexts, "task involving "+w)
			break
		}
	}

	keywords := make([]string, 0, len(words))
	for _, w := range strings.Fields(strings.ToLower(job)) {
		if len(w) > 2 {
			keywords = append(keywords, w)
		}
	}
	if len(keywords) > 0 {
		contexts = append(contexts, strings.Join(keywords, " "))
	}

	return contexts
}

// keyPhrases extracts short word-pair phrases from text, capped at limit.
func keyPhrases(text string, limit int) []string {
	words := strings.Fields(strings.ToLower(text))
	phrases := make([]string, 0, limit)

	for i, w := range words {
		if len(phrases) >= limit {
			break
		}
		if len(w) <= 3 || !isAlpha(w) {
			continue
		}

		if i < len(words)-1 && isAlpha(words[i+1]) {
			phrases = append(phrases, w+" "+words[i+1])
		} else {
			phrases = append(phrases, w)
		}
	}

	return phrases
}

// contradictionPatterns synthesizes phrasings that negate the job;
// high similarity to any of them reads as a contradiction.
func contradictionPatterns(job string) []string {
	job = strings.ToLower(job)
	return []string{
		"not suitable for " + job,
		"incompatible with " + job,
		"does not meet " + job + " requirements",
		"avoid " + job,
		"not recommended for " + job,
	}
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return len(s) > 0
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
