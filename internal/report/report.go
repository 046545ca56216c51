// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders research results into exportable documents:
// markdown, plain text, or a standalone styled HTML page.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/pdiddy/research-agent/pkg/types"
)

// Format selects the export document type.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatHTML     Format = "html"
)

// Valid reports whether the format is one of the supported exports.
func (f Format) Valid() bool {
	switch f {
	case FormatMarkdown, FormatText, FormatHTML:
		return true
	}
	return false
}

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	switch f {
	case FormatText:
		return "txt"
	case FormatHTML:
		return "html"
	default:
		return "md"
	}
}

const (
	// defaultOutputDir receives report files when no directory is given.
	defaultOutputDir = "output/reports"
	// maxNameLen caps the sanitized query part of a report filename.
	maxNameLen = 30
)

// nonWordRuns matches filename characters that get folded to underscores.
var nonWordRuns = regexp.MustCompile(`\W+`)

// Plain-text export strips markdown markers rather than rendering them.
var (
	headingMarks = regexp.MustCompile(`#+ `)
	boldMarks    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicMarks  = regexp.MustCompile(`\*(.*?)\*`)
)

// Render writes the result to w in the given format.
func Render(result types.ResearchResult, format Format, w io.Writer) error {
	switch format {
	case FormatMarkdown:
		_, err := io.WriteString(w, renderMarkdown(result))
		return err
	case FormatText:
		_, err := io.WriteString(w, renderText(result))
		return err
	case FormatHTML:
		return renderHTML(result, w)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// WriteFile renders the result into dir under a generated filename
// (research_<query>_<runID>.<ext>) and returns the file path.
func WriteFile(result types.ResearchResult, format Format, dir string) (string, error) {
	if !format.Valid() {
		return "", fmt.Errorf("unknown report format %q", format)
	}
	if dir == "" {
		dir = defaultOutputDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	runID := uuid.NewString()[:8]
	name := fmt.Sprintf("research_%s_%s.%s", sanitizeQuery(result.Query), runID, format.Ext())
	path := filepath.Join(dir, name)

	var buf bytes.Buffer
	if err := Render(result, format, &buf); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

func renderMarkdown(result types.ResearchResult) string {
	return "# Research: " + result.Query + "\n\n" + renderBody(result)
}

// renderBody produces the document below the title heading.
func renderBody(result types.ResearchResult) string {
	var b strings.Builder

	if result.Error != "" {
		fmt.Fprintf(&b, "**Error:** %s\n", result.Error)
		return b.String()
	}

	if result.ComprehensiveSummary != "" {
		b.WriteString("## Research Synthesis\n\n")
		b.WriteString(strings.TrimSpace(result.ComprehensiveSummary))
		b.WriteString("\n")
	}

	if len(result.FollowupQuestions) > 0 {
		b.WriteString("\n## Suggested Further Research Questions\n\n")
		for _, q := range result.FollowupQuestions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}

	if len(result.Results) > 0 {
		b.WriteString("\n## Research Sources\n")
		for i, item := range result.Results {
			fmt.Fprintf(&b, "\n### Source %d: %s\n\n", i+1, item.Title)
			fmt.Fprintf(&b, "<%s>\n\n", item.Link)
			if item.Snippet != "" {
				fmt.Fprintf(&b, "> %s\n\n", item.Snippet)
			}
			if item.Success {
				b.WriteString(strings.TrimSpace(item.Summary))
				b.WriteString("\n")
			} else {
				fmt.Fprintf(&b, "*Failed: %s*\n", item.Error)
			}
		}
	}

	return b.String()
}

func renderText(result types.ResearchResult) string {
	text := renderMarkdown(result)
	text = headingMarks.ReplaceAllString(text, "")
	text = boldMarks.ReplaceAllString(text, "$1")
	text = italicMarks.ReplaceAllString(text, "$1")
	return text
}

func renderHTML(result types.ResearchResult, w io.Writer) error {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(renderBody(result)), &body); err != nil {
		return fmt.Errorf("converting markdown: %w", err)
	}
	return htmlShell.Execute(w, htmlPage{
		Query:     result.Query,
		Body:      template.HTML(body.String()),
		Generated: time.Now().Format("2006-01-02"),
	})
}

type htmlPage struct {
	Query     string
	Body      template.HTML
	Generated string
}

var htmlShell = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Research: {{.Query}}</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; max-width: 900px; margin: 0 auto; padding: 20px; }
h1, h2, h3 { color: #2C3E50; }
h1 { border-bottom: 2px solid #3498DB; padding-bottom: 10px; }
h2 { border-bottom: 1px solid #BDC3C7; padding-bottom: 5px; margin-top: 30px; }
p { margin-bottom: 16px; }
ul, ol { padding-left: 25px; }
blockquote { background-color: #F8F9F9; padding: 15px; border-left: 5px solid #3498DB; margin: 15px 0; }
.footer { margin-top: 40px; font-size: 0.8em; color: #7F8C8D; border-top: 1px solid #EAECEE; padding-top: 10px; }
</style>
</head>
<body>
<h1>Research: {{.Query}}</h1>
<div class="content">
{{.Body}}
</div>
<div class="footer">
<p>Generated by research-agent on {{.Generated}}</p>
</div>
</body>
</html>
`))

// sanitizeQuery folds a query into a filename-safe slug.
func sanitizeQuery(q string) string {
	s := nonWordRuns.ReplaceAllString(q, "_")
	if len(s) > maxNameLen {
		s = s[:maxNameLen]
	}
	s = strings.Trim(s, "_")
	if s == "" {
		s = "report"
	}
	return s
}
