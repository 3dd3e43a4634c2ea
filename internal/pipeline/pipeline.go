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

// Package pipeline sequences extraction, scoring, selection and
// refinement into one document relevance run.
package pipeline

import (
	"context"
	"log/slog"
	"math"
	"path/filepath"
	"time"

	"github.com/doclens/doclens/internal/api"
	"github.com/doclens/doclens/internal/extract"
	"github.com/doclens/doclens/internal/refine"
	"github.com/doclens/doclens/internal/score"
	"github.com/doclens/doclens/internal/selection"
	"github.com/google/uuid"
)

type Stage int

const (
	StageLoaded Stage = iota
	StageExtracted
	StageScored
	StageDegraded
	StageSelected
	StageRefined
	StageDone
)

var stageName = map[Stage]string{
	StageLoaded:    "LOADED",
	StageExtracted: "EXTRACTED",
	StageScored:    "SCORED",
	StageDegraded:  "DEGRADED",
	StageSelected:  "SELECTED",
	StageRefined:   "REFINED",
	StageDone:      "DONE",
}

func (s Stage) String() string {
	return stageName[s]
}

const (
	// WarningNoSections marks an empty result; the run itself succeeded.
	WarningNoSections = "no sections found - check if the job description matches the document content"

	// WarningDegraded marks a run that fell back to extraction-order
	// ranking because relevance analysis was unavailable.
	WarningDegraded = "relevance analysis unavailable - sections ranked in extraction order"

	// sections ranked without a working scorer receive this score
	neutralScore = 0.5
)

// Request is the full input of one run.
type Request struct {
	Documents []api.Document
	Persona   string
	Job       string
}

// Pipeline runs the document relevance flow. Construct one per process
// with the heavy collaborators injected; it is safe for concurrent use
// as long as the injected providers are.
type Pipeline struct {
	extractor *extract.Extractor
	scorer    *score.Scorer
	refiner   *refine.Refiner

	limit int
}

type PipelineOption func(*Pipeline)

func New(options ...PipelineOption) *Pipeline {
	p := &Pipeline{
		extractor: extract.New(),
		limit:     selection.DefaultLimit,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func WithExtractor(e *extract.Extractor) PipelineOption {
	return func(p *Pipeline) {
		p.extractor = e
	}
}

// WithScorer enables relevance scoring. A pipeline without one always
// takes the degraded path.
func WithScorer(s *score.Scorer) PipelineOption {
	return func(p *Pipeline) {
		p.scorer = s
	}
}

// WithRefiner enables subsection refinement. A pipeline without one
// always takes the degraded path.
func WithRefiner(r *refine.Refiner) PipelineOption {
	return func(p *Pipeline) {
		p.refiner = r
	}
}

func WithLimit(limit int) PipelineOption {
	return func(p *Pipeline) {
		if limit > 0 {
			p.limit = limit
		}
	}
}

// Process runs the whole pipeline for one request. It always returns a
// well-formed result; empty and degraded runs are signalled through
// the metadata warning. The only error returned is the caller's own
// cancellation.
func (p *Pipeline) Process(ctx context.Context, req Request) (*api.PipelineResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	intent := api.IntentContext{Persona: req.Persona, Job: req.Job}

	stage := StageLoaded
	advance := func(next Stage) {
		stage = next
		slog.Debug("pipeline stage", "id", runID, "stage", stage.String())
	}
	slog.Info("processing documents", "id", runID, "documents", len(req.Documents), "persona", req.Persona, "job", req.Job)

	sections := make([]api.Section, 0)
	for _, doc := range req.Documents {
		sections = append(sections, p.extractor.Extract(doc, intent)...)
	}
	advance(StageExtracted)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(sections) == 0 {
		advance(StageDone)
		slog.Warn("no sections extracted", "id", runID)
		return p.assemble(req, start, WarningNoSections, nil, nil), nil
	}

	if p.scorer == nil || p.refiner == nil {
		advance(StageDegraded)
		slog.Warn("analysis collaborators unavailable, degrading", "id", runID)
		return p.assemble(req, start, WarningDegraded, p.rankByExtractionOrder(sections), nil), nil
	}

	scored, err := p.scorer.ScoreAll(ctx, sections, intent)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		advance(StageDegraded)
		slog.Warn("scoring failed, degrading", "id", runID, "err", err)
		return p.assemble(req, start, WarningDegraded, p.rankByExtractionOrder(sections), nil), nil
	}
	advance(StageScored)

	selected := selection.SelectTop(scored, p.limit)
	advance(StageSelected)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	subsections := make([]api.Subsection, 0)
	for _, sec := range selected {
		subsections = append(subsections, p.refiner.Refine(ctx, sec.Section, intent, sec.ImportanceRank)...)
	}
	subsections = refine.TopN(subsections, p.limit)
	advance(StageRefined)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	advance(StageDone)
	slog.Info("processing complete", "id", runID, "selected", len(selected), "subsections", len(subsections), "elapsed", time.Since(start))
	return p.assemble(req, start, "", selected, subsections), nil
}

// rankByExtractionOrder is the degraded ranking: the first few
// sections in extraction order with a neutral score.
func (p *Pipeline) rankByExtractionOrder(sections []api.Section) []api.ScoredSection {
	n := min(p.limit, len(sections))
	ranked := make([]api.ScoredSection, 0, n)
	for i, sec := range sections[:n] {
		ranked = append(ranked, api.ScoredSection{
			Section:        sec,
			RelevanceScore: neutralScore,
			ImportanceRank: i + 1,
		})
	}
	return ranked
}

func (p *Pipeline) assemble(req Request, start time.Time, warning string, selected []api.ScoredSection, subsections []api.Subsection) *api.PipelineResult {
	docNames := make([]string, 0, len(req.Documents))
	for _, doc := range req.Documents {
		docNames = append(docNames, filepath.Base(doc.Name))
	}

	sectionViews := make([]api.RankedSectionView, 0, len(selected))
	for _, sec := range selected {
		view := api.ViewOf(sec)
		view.Document = filepath.Base(view.Document)
		sectionViews = append(sectionViews, view)
	}

	subsectionViews := make([]api.SubsectionView, 0, len(subsections))
	for _, sub := range subsections {
		view := api.ViewOfSubsection(sub)
		view.Document = filepath.Base(view.Document)
		subsectionViews = append(subsectionViews, view)
	}

	elapsed := time.Since(start).Seconds()

	return &api.PipelineResult{
		Metadata: api.ResultMetadata{
			InputDocuments:      docNames,
			Persona:             req.Persona,
			JobToBeDone:         req.Job,
			ProcessingTimestamp: time.Now().UTC().Format(time.RFC3339),
			ProcessingSeconds:   math.Round(elapsed*100) / 100,
			Warning:             warning,
		},
		ExtractedSections: sectionViews,
		Subsections:       subsectionViews,
	}
}
