package refine_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/doclens/doclens/internal/api"
	"github.com/doclens/doclens/internal/refine"
)

var testIntent = api.IntentContext{
	Persona: "Financial Analyst",
	Job:     "review the annual budget",
}

func testSection(content string) api.Section {
	return api.Section{
		Document: "report.pdf",
		Page:     4,
		Title:    "Budget Overview",
		Content:  content,
	}
}

func TestRefineWithoutGeneratorKeepsOriginals(t *testing.T) {
	content := "The first paragraph covers projected revenue.\n\n" +
		"The second paragraph covers departmental spending."

	subs := refine.New().Refine(context.Background(), testSection(content), testIntent, 1)
	if len(subs) != 2 {
		t.Fatalf("expected 2 subsections, got %d", len(subs))
	}

	if subs[0].RefinedText != "The first paragraph covers projected revenue." {
		t.Errorf("expected verbatim paragraph, got '%s'", subs[0].RefinedText)
	}
	for i, sub := range subs {
		if sub.Document != "report.pdf" || sub.Page != 4 {
			t.Errorf("subsection %d lost its source location: %+v", i, sub)
		}
		if sub.ParentRank != 1 {
			t.Errorf("invalid parent rank, expected 1, got %d", sub.ParentRank)
		}
		if sub.ParagraphIndex != i {
			t.Errorf("invalid paragraph index, expected %d, got %d", i, sub.ParagraphIndex)
		}
	}
}

func TestRefineFallsBackOnGeneratorError(t *testing.T) {
	paragraph := "This paragraph is long enough to be retained by the refiner."
	r := refine.New(refine.WithGenerator(stubGenerator{err: errors.New("unavailable")}))

	subs := r.Refine(context.Background(), testSection(paragraph), testIntent, 1)
	if len(subs) != 1 {
		t.Fatalf("expected 1 subsection, got %d", len(subs))
	}
	if subs[0].RefinedText != paragraph {
		t.Errorf("expected original paragraph on generator error, got '%s'", subs[0].RefinedText)
	}
}

func TestRefineRejectsNonExpandingOutput(t *testing.T) {
	paragraph := "This paragraph is long enough to be retained by the refiner."
	r := refine.New(refine.WithGenerator(stubGenerator{out: "short"}))

	subs := r.Refine(context.Background(), testSection(paragraph), testIntent, 1)
	if len(subs) != 1 {
		t.Fatalf("expected 1 subsection, got %d", len(subs))
	}
	if subs[0].RefinedText != paragraph {
		t.Errorf("expected original paragraph when refinement does not expand, got '%s'", subs[0].RefinedText)
	}
}

func TestRefineUsesExpandedOutput(t *testing.T) {
	paragraph := "This paragraph is long enough to be retained by the refiner."
	expanded := paragraph + " It matters to the analyst because it tracks the budget."
	r := refine.New(refine.WithGenerator(stubGenerator{out: expanded}))

	subs := r.Refine(context.Background(), testSection(paragraph), testIntent, 1)
	if len(subs) != 1 {
		t.Fatalf("expected 1 subsection, got %d", len(subs))
	}
	if subs[0].RefinedText != expanded {
		t.Errorf("expected refined paragraph, got '%s'", subs[0].RefinedText)
	}
}

func TestRefineSkipsShortParagraphs(t *testing.T) {
	content := "tiny\n\nThis paragraph is long enough to be retained by the refiner."

	subs := refine.New().Refine(context.Background(), testSection(content), testIntent, 1)
	if len(subs) != 1 {
		t.Fatalf("expected only the long paragraph, got %d subsections", len(subs))
	}
	if subs[0].ParagraphIndex != 1 {
		t.Errorf("expected original paragraph index preserved, got %d", subs[0].ParagraphIndex)
	}
}

func TestRefineCapsParagraphsPerSection(t *testing.T) {
	paragraphs := make([]string, 0, refine.MaxParagraphsPerSection+5)
	for range refine.MaxParagraphsPerSection + 5 {
		paragraphs = append(paragraphs, "A paragraph that is comfortably past the minimum length.")
	}
	content := strings.Join(paragraphs, "\n\n")

	subs := refine.New().Refine(context.Background(), testSection(content), testIntent, 1)
	if len(subs) != refine.MaxParagraphsPerSection {
		t.Errorf("expected at most %d subsections, got %d", refine.MaxParagraphsPerSection, len(subs))
	}
}

func TestSplitParagraphs(t *testing.T) {
	blankDelimited := refine.SplitParagraphs("first paragraph\n\nsecond paragraph\nstill second")
	expected := []string{"first paragraph", "second paragraph\nstill second"}
	if !reflect.DeepEqual(blankDelimited, expected) {
		t.Errorf("expected %v, got %v", expected, blankDelimited)
	}

	lineDelimited := refine.SplitParagraphs("first line\nsecond line")
	expected = []string{"first line", "second line"}
	if !reflect.DeepEqual(lineDelimited, expected) {
		t.Errorf("expected %v, got %v", expected, lineDelimited)
	}
}

func TestTopNOrdersAcrossSections(t *testing.T) {
	subs := []api.Subsection{
		{RefinedText: "rank2 para0", ParentRank: 2, ParagraphIndex: 0},
		{RefinedText: "rank1 para1", ParentRank: 1, ParagraphIndex: 1},
		{RefinedText: "rank1 para0", ParentRank: 1, ParagraphIndex: 0},
		{RefinedText: "rank3 para0", ParentRank: 3, ParagraphIndex: 0},
	}

	top := refine.TopN(subs, 3)
	if len(top) != 3 {
		t.Fatalf("expected 3 subsections, got %d", len(top))
	}

	expected := []string{"rank1 para0", "rank1 para1", "rank2 para0"}
	for i, text := range expected {
		if top[i].RefinedText != text {
			t.Errorf("invalid order at %d, expected '%s', got '%s'", i, text, top[i].RefinedText)
		}
	}
}

type stubGenerator struct {
	out string
	err error
}

func (g stubGenerator) Refine(ctx context.Context, req api.RefineRequest) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.out, nil
}
