// Package selection picks the top-K most relevant, distinct sections
// from a scored set.
package selection

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/doclens/doclens/internal/api"
)

// DefaultLimit is the number of sections a normal run selects.
const DefaultLimit = 5

// TitleSimilarityThreshold is the Jaccard word-overlap above which two
// titles count as duplicates.
const TitleSimilarityThreshold = 0.8

// SelectTop sorts by relevance score descending, drops near-duplicate
// titles, and returns at most limit sections with dense importance
// ranks 1..N assigned. Fewer than limit is allowed when the input runs
// out. There is no per-document quota; ranking is purely by score.
func SelectTop(scored []api.ScoredSection, limit int) []api.ScoredSection {
	if limit <= 0 {
		limit = DefaultLimit
	}

	ranked := make([]api.ScoredSection, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RelevanceScore > ranked[j].RelevanceScore
	})

	selected := make([]api.ScoredSection, 0, limit)
	seenTitles := make([]string, 0, limit)

	for _, candidate := range ranked {
		if len(selected) >= limit {
			break
		}

		title := normalizeTitle(candidate.Title)
		if isDuplicate(title, seenTitles) {
			slog.Debug("skipping duplicate section", "title", candidate.Title)
			continue
		}

		candidate.ImportanceRank = len(selected) + 1
		selected = append(selected, candidate)
		seenTitles = append(seenTitles, title)
	}

	return selected
}

func isDuplicate(title string, seen []string) bool {
	for _, s := range seen {
		if title == s || strings.Contains(s, title) || strings.Contains(title, s) {
			return true
		}
		if TitleSimilarity(title, s) > TitleSimilarityThreshold {
			return true
		}
	}
	return false
}

// TitleSimilarity is the Jaccard word-overlap between two titles.
func TitleSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	intersection := 0
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection

	return float64(intersection) / float64(union)
}

func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = true
	}
	return set
}
