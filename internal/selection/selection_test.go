package selection_test

import (
	"testing"

	"github.com/doclens/doclens/internal/api"
	"github.com/doclens/doclens/internal/selection"
)

func scoredSection(title string, score float64) api.ScoredSection {
	return api.ScoredSection{
		Section:        api.Section{Document: "doc.pdf", Page: 1, Title: title},
		RelevanceScore: score,
	}
}

func TestSelectTopOrdersByScore(t *testing.T) {
	scored := []api.ScoredSection{
		scoredSection("Middle Section", 0.5),
		scoredSection("Best Section", 0.9),
		scoredSection("Worst Section", 0.1),
	}

	selected := selection.SelectTop(scored, 5)
	if len(selected) != 3 {
		t.Fatalf("expected 3 selected sections, got %d", len(selected))
	}

	expected := []string{"Best Section", "Middle Section", "Worst Section"}
	for i, title := range expected {
		if selected[i].Title != title {
			t.Errorf("invalid order at %d, expected '%s', got '%s'", i, title, selected[i].Title)
		}
		if selected[i].ImportanceRank != i+1 {
			t.Errorf("invalid rank for '%s', expected %d, got %d", title, i+1, selected[i].ImportanceRank)
		}
	}
}

func TestSelectTopHonorsLimit(t *testing.T) {
	scored := make([]api.ScoredSection, 0, 10)
	titles := []string{
		"Opening Remarks", "Budget Overview", "Travel Planning", "Quarterly Results", "Closing Notes",
		"Risk Assessment", "Market Analysis", "Vendor Contracts", "Staffing Changes", "Capital Projects",
	}
	for i, title := range titles {
		scored = append(scored, scoredSection(title, float64(10-i)/10))
	}

	selected := selection.SelectTop(scored, 5)
	if len(selected) != 5 {
		t.Errorf("expected selection capped at 5, got %d", len(selected))
	}
}

func TestSelectTopDropsDuplicateTitles(t *testing.T) {
	scored := []api.ScoredSection{
		scoredSection("Introduction", 0.9),
		scoredSection("Intro", 0.8), // contained in "introduction"
		scoredSection("Budget Overview Summary Chart", 0.7),
		scoredSection("Overview Budget Summary Chart", 0.6), // same words, reordered
		scoredSection("Closing Remarks", 0.5),
	}

	selected := selection.SelectTop(scored, 5)
	if len(selected) != 3 {
		t.Fatalf("expected 3 distinct sections, got %d", len(selected))
	}

	if selected[0].Title != "Introduction" {
		t.Errorf("expected highest scoring duplicate to survive, got '%s'", selected[0].Title)
	}
	for i, sec := range selected {
		if sec.ImportanceRank != i+1 {
			t.Errorf("expected dense ranks after deduplication, got %d at position %d", sec.ImportanceRank, i)
		}
	}
}

func TestTitleSimilarity(t *testing.T) {
	if sim := selection.TitleSimilarity("budget overview", "budget overview"); sim != 1 {
		t.Errorf("expected identical titles to score 1, got %f", sim)
	}
	if sim := selection.TitleSimilarity("budget overview", "garden care"); sim != 0 {
		t.Errorf("expected disjoint titles to score 0, got %f", sim)
	}
	if sim := selection.TitleSimilarity("", "budget"); sim != 0 {
		t.Errorf("expected empty title to score 0, got %f", sim)
	}

	partial := selection.TitleSimilarity("annual budget overview", "annual budget report")
	if partial <= 0 || partial >= 1 {
		t.Errorf("expected partial overlap strictly between 0 and 1, got %f", partial)
	}
}
