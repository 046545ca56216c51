// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"text/template"
)

// maxFollowupQuestions caps how many questions one call returns.
const maxFollowupQuestions = 5

// followupPromptTmpl asks for numbered follow-up research questions
// derived from a finished report.
var followupPromptTmpl = template.Must(template.New("followup").Parse(`Based on the following research summary about "{{.Query}}", please generate 5 specific follow-up questions
that would help deepen understanding or explore important aspects not fully covered in the current research.

Research Summary:
{{.Summary}}

For each question:
1. Focus on gaps, unexplored angles, or areas needing clarification
2. Make questions specific and answerable through further research
3. Avoid questions already thoroughly addressed in the summary

Format your response as a numbered list of 5 questions only, without additional explanation.
`))

var numberedLine = regexp.MustCompile(`^\d+\.\s*`)

// FollowupQuestions generates follow-up research questions from a
// finished report. The model is asked for a numbered list; when it
// answers in another shape, any lines containing a question mark are
// taken instead.
func FollowupQuestions(ctx context.Context, b Backend, summary, query string) ([]string, error) {
	var buf bytes.Buffer
	err := followupPromptTmpl.Execute(&buf, struct {
		Query   string
		Summary string
	}{query, summary})
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	text, err := b.Generate(ctx, buf.String())
	if err != nil {
		return nil, fmt.Errorf("generating follow-up questions: %w", err)
	}

	questions := parseNumberedLines(text)
	if len(questions) == 0 {
		questions = parseQuestionLines(text)
	}
	if len(questions) > maxFollowupQuestions {
		questions = questions[:maxFollowupQuestions]
	}
	return questions, nil
}

// parseNumberedLines extracts "1. ..." style list entries.
func parseNumberedLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !numberedLine.MatchString(line) {
			continue
		}
		if q := numberedLine.ReplaceAllString(line, ""); q != "" {
			out = append(out, q)
		}
	}
	return out
}

// parseQuestionLines keeps any non-empty line containing a question mark.
func parseQuestionLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && strings.Contains(line, "?") {
			out = append(out, line)
		}
	}
	return out
}
