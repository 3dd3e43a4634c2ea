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

// Package extract turns raw page text into candidate sections.
package extract

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/doclens/doclens/internal/api"
)

// MinBodyLength is the minimum section body length; shorter
// accumulated bodies are discarded rather than emitted.
const MinBodyLength = 30

const maxTitleLength = 100

var (
	blankLines    = regexp.MustCompile(`\n\s*\n`)
	inlineSpacing = regexp.MustCompile(`[ \t]+`)
	leadingNumber = regexp.MustCompile(`^\d+\.?\s*`)
)

type Extractor struct {
	classifier HeaderClassifier
}

type ExtractorOption func(*Extractor)

func New(options ...ExtractorOption) *Extractor {
	e := &Extractor{
		classifier: NewHeuristicClassifier(),
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// WithClassifier swaps the header detection strategy.
func WithClassifier(c HeaderClassifier) ExtractorOption {
	return func(e *Extractor) {
		e.classifier = c
	}
}

// Extract walks every page of the document and returns its candidate
// sections. A document without header-like lines yields zero sections;
// that is not an error.
func (e *Extractor) Extract(doc api.Document, intent api.IntentContext) []api.Section {
	sections := make([]api.Section, 0)
	for _, page := range doc.Pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		cleaned := CleanText(page.Text)
		sections = append(sections, e.extractPage(cleaned, page.Number, doc.Name, intent)...)
	}

	slog.Debug("extracted sections", "document", doc.Name, "count", len(sections))
	return sections
}

func (e *Extractor) extractPage(text string, page int, docName string, intent api.IntentContext) []api.Section {
	sections := make([]api.Section, 0)

	var currentHeader string
	var body []string

	closeSection := func() {
		if currentHeader == "" || len(body) == 0 {
			return
		}

		content := strings.TrimSpace(strings.Join(body, "\n"))
		if len(content) <= MinBodyLength {
			return
		}

		title := currentHeader
		if RelevantHeader(currentHeader, intent.Job) {
			title = CleanHeader(currentHeader)
		}

		sections = append(sections, api.Section{
			Document: docName,
			Page:     page,
			Title:    title,
			Content:  content,
			RawText:  currentHeader + "\n" + content,
		})
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if e.classifier.Classify(line) == LineHeader {
			closeSection()
			currentHeader = line
			body = body[:0]
			continue
		}

		if currentHeader != "" {
			body = append(body, line)
		}
	}
	closeSection()

	return sections
}

// CleanText normalizes extracted page text: collapsed blank lines,
// single inline spacing, trimmed ends.
func CleanText(text string) string {
	text = blankLines.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)
	text = inlineSpacing.ReplaceAllString(text, " ")
	return text
}

// CleanHeader formats a raw header line into a section title.
func CleanHeader(header string) string {
	header = strings.TrimSpace(header)
	header = strings.TrimRight(header, ":.-,;")
	header = leadingNumber.ReplaceAllString(header, "")
	header = titleCase(header)
	if len(header) > maxTitleLength {
		header = header[:maxTitleLength] + "..."
	}
	return header
}

// RelevantHeader is a soft lexical pre-filter of a header against the
// job text. Any meaningful word overlap accepts; absent a decisive
// signal the header is accepted as well, so this never drops sections,
// it only decides whether the raw header gets cleaned into a title.
func RelevantHeader(header, job string) bool {
	if strings.TrimSpace(job) == "" {
		return true
	}

	headerWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(header)) {
		headerWords[w] = true
	}

	for _, w := range strings.Fields(strings.ToLower(job)) {
		if len(w) > 2 && headerWords[w] {
			return true
		}
	}

	// no overlap signal is decisive, default-accept
	return true
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		if len(r) > 0 {
			r[0] = unicode.ToUpper(r[0])
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
