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

// Package prompt holds the templates shared by the generative
// collaborator implementations.
package prompt

import (
	"strings"
	"text/template"

	"github.com/doclens/doclens/internal/api"
)

const promptJudgeSection = `You are rating how useful a document section is to a specific reader.

**PERSONA:** {{.Persona}}
**JOB TO BE DONE:** {{.Job}}

**SECTION TITLE:** {{.Title}}
**SECTION CONTENT:**
{{.Content}}

Rate how well this section helps the persona accomplish the job on a
scale from 0.0 (useless) to 1.0 (directly actionable), and explain the
rating in one or two sentences. Respond with the score and the reasoning only.
`

const promptRefineParagraph = `Persona: {{.Persona}}
Task: {{.Job}}
Content: {{.Paragraph}}

Write a detailed, descriptive summary of the above content, highlighting
key points, context, and practical details relevant to the task. Make the
summary informative and actionable for the persona. Respond with the
summary only.
`

// paragraphs longer than this are truncated before templating,
// matching the judge/refiner input budget
const maxParagraphLength = 400

var (
	templateJudge  = template.Must(template.New("judgeSection").Parse(promptJudgeSection))
	templateRefine = template.Must(template.New("refineParagraph").Parse(promptRefineParagraph))
)

func Judge(req api.JudgeRequest) (string, error) {
	var sb strings.Builder
	err := templateJudge.Execute(&sb, map[string]string{
		"Persona": req.Intent.Persona,
		"Job":     req.Intent.Job,
		"Title":   req.Title,
		"Content": truncate(req.Content, 2000),
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

func Refine(req api.RefineRequest) (string, error) {
	var sb strings.Builder
	err := templateRefine.Execute(&sb, map[string]string{
		"Persona":   req.Intent.Persona,
		"Job":       req.Intent.Job,
		"Paragraph": truncate(req.Paragraph, maxParagraphLength),
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
