package score_test

import (
	"context"
	"errors"
	"testing"

	"github.com/doclens/doclens/internal/api"
	"github.com/doclens/doclens/internal/provider/local"
	"github.com/doclens/doclens/internal/score"
)

var testIntent = api.IntentContext{
	Persona: "Financial Analyst",
	Job:     "review the annual budget and spending plan",
}

func budgetSection() api.Section {
	return api.Section{
		Document: "report.pdf",
		Page:     2,
		Title:    "Budget Overview",
		Content: "The annual budget allocates spending across departments.\n" +
			"The spending plan tracks the budget review cycle quarter by quarter.\n" +
			"Each department submits its annual spending plan for budget review.",
	}
}

func unrelatedSection() api.Section {
	return api.Section{
		Document: "report.pdf",
		Page:     7,
		Title:    "Garden Maintenance",
		Content: "Prune the hedges in early spring before new growth appears.\n" +
			"Water the flower beds twice weekly during dry summer months.",
	}
}

func TestScoreWithinRange(t *testing.T) {
	s := score.New(local.New())

	for _, sec := range []api.Section{budgetSection(), unrelatedSection()} {
		val, err := s.Score(context.Background(), sec, testIntent)
		if err != nil {
			t.Fatalf("expected nil error, got '%v'", err)
		}
		if val < 0 || val > 1 {
			t.Errorf("score for '%s' out of range: %f", sec.Title, val)
		}
	}
}

func TestScoreRanksTopicalSectionHigher(t *testing.T) {
	s := score.New(local.New())

	budget, err := s.Score(context.Background(), budgetSection(), testIntent)
	if err != nil {
		t.Fatalf("expected nil error, got '%v'", err)
	}
	unrelated, err := s.Score(context.Background(), unrelatedSection(), testIntent)
	if err != nil {
		t.Fatalf("expected nil error, got '%v'", err)
	}

	if budget <= unrelated {
		t.Errorf("expected topical section to outscore unrelated one, got %f <= %f", budget, unrelated)
	}
}

func TestScoreAllPreservesOrder(t *testing.T) {
	s := score.New(local.New(), score.WithConcurrency(2))

	sections := []api.Section{unrelatedSection(), budgetSection()}
	scored, err := s.ScoreAll(context.Background(), sections, testIntent)
	if err != nil {
		t.Fatalf("expected nil error, got '%v'", err)
	}

	if len(scored) != len(sections) {
		t.Fatalf("expected %d scored sections, got %d", len(sections), len(scored))
	}
	for i := range sections {
		if scored[i].Title != sections[i].Title {
			t.Errorf("scored section %d out of order, expected '%s', got '%s'", i, sections[i].Title, scored[i].Title)
		}
		if scored[i].ImportanceRank != 0 {
			t.Errorf("expected no rank assigned during scoring, got %d", scored[i].ImportanceRank)
		}
	}
}

func TestJudgeBlendedIntoScore(t *testing.T) {
	s := score.New(local.New(), score.WithJudge(stubJudge{score: 1.0}))

	val, err := s.Score(context.Background(), unrelatedSection(), testIntent)
	if err != nil {
		t.Fatalf("expected nil error, got '%v'", err)
	}

	// default blend gives the judge 0.8 of the final score
	if val < 0.8 || val > 1 {
		t.Errorf("expected blended score in [0.8, 1], got %f", val)
	}
}

func TestJudgeFailureFallsBackToLocalScoring(t *testing.T) {
	plain := score.New(local.New())
	withBrokenJudge := score.New(local.New(), score.WithJudge(stubJudge{err: errors.New("unavailable")}))

	sec := budgetSection()
	expected, err := plain.Score(context.Background(), sec, testIntent)
	if err != nil {
		t.Fatalf("expected nil error, got '%v'", err)
	}
	got, err := withBrokenJudge.Score(context.Background(), sec, testIntent)
	if err != nil {
		t.Fatalf("expected nil error, got '%v'", err)
	}

	if got != expected {
		t.Errorf("expected fallback score %f to match local scoring, got %f", expected, got)
	}
}

type stubJudge struct {
	score float64
	err   error
}

func (j stubJudge) Judge(ctx context.Context, req api.JudgeRequest) (*api.JudgeResponse, error) {
	if j.err != nil {
		return nil, j.err
	}
	return &api.JudgeResponse{Score: j.score, Reasoning: "stubbed"}, nil
}
