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

// Package refine produces task-oriented descriptions of the paragraphs
// inside a selected section.
package refine

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/doclens/doclens/internal/api"
	"github.com/doclens/doclens/internal/provider"
)

const (
	// paragraphs shorter than this carry no refinable content
	MinParagraphLength = 20

	// cost control: at most this many paragraphs per section reach
	// the generative collaborator
	MaxParagraphsPerSection = 15
)

type Refiner struct {
	gen provider.Refiner
}

type RefinerOption func(*Refiner)

func New(options ...RefinerOption) *Refiner {
	r := &Refiner{}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// WithGenerator sets the generative collaborator. Without one, every
// paragraph falls back to its original text.
func WithGenerator(gen provider.Refiner) RefinerOption {
	return func(r *Refiner) {
		r.gen = gen
	}
}

// Refine splits a selected section into paragraphs and describes each
// one for the intent. A paragraph whose refinement fails, or whose
// refinement is no longer than the original, is returned unchanged;
// paragraphs are never dropped once retained.
func (r *Refiner) Refine(ctx context.Context, section api.Section, intent api.IntentContext, importanceRank int) []api.Subsection {
	paragraphs := SplitParagraphs(section.Content)

	if len(paragraphs) > MaxParagraphsPerSection {
		paragraphs = paragraphs[:MaxParagraphsPerSection]
	}

	subsections := make([]api.Subsection, 0, len(paragraphs))
	for i, paragraph := range paragraphs {
		if len(paragraph) < MinParagraphLength {
			continue
		}

		subsections = append(subsections, api.Subsection{
			Document:       section.Document,
			Page:           section.Page,
			RefinedText:    r.refineParagraph(ctx, paragraph, intent),
			ParentRank:     importanceRank,
			ParagraphIndex: i,
		})
	}

	return subsections
}

func (r *Refiner) refineParagraph(ctx context.Context, paragraph string, intent api.IntentContext) string {
	if r.gen == nil {
		return paragraph
	}

	refined, err := r.gen.Refine(ctx, api.RefineRequest{
		Paragraph: paragraph,
		Intent:    intent,
	})
	if err != nil {
		slog.Debug("refinement unavailable, keeping original paragraph", "err", err)
		return paragraph
	}

	refined = strings.TrimSpace(refined)
	if len(refined) <= len(paragraph) {
		return paragraph
	}
	return refined
}

// SplitParagraphs splits blank-line-delimited paragraphs, falling back
// to single newlines when the content has no blank lines.
func SplitParagraphs(content string) []string {
	if strings.Contains(content, "\n\n") {
		return splitTrimmed(content, "\n\n")
	}
	return splitTrimmed(content, "\n")
}

// TopN orders subsections by parent importance rank, then original
// paragraph order, and keeps the first limit entries.
func TopN(subsections []api.Subsection, limit int) []api.Subsection {
	ordered := make([]api.Subsection, len(subsections))
	copy(ordered, subsections)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].ParentRank != ordered[j].ParentRank {
			return ordered[i].ParentRank < ordered[j].ParentRank
		}
		return ordered[i].ParagraphIndex < ordered[j].ParagraphIndex
	})

	if len(ordered) > limit {
		ordered = ordered[:limit]
	}
	return ordered
}

func splitTrimmed(content, sep string) []string {
	parts := strings.Split(content, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
