// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/research-agent/pkg/types"
)

const (
	briefDirective         = "brief and concise (100-150 words)"
	comprehensiveDirective = "comprehensive (300-500 words)"
)

// summaryPromptTmpl is the per-source summarization prompt. The length
// directive is the only part that varies between the two presets.
var summaryPromptTmpl = template.Must(template.New("summary").Parse(`Please provide a {{.LengthDirective}} summary of the following content in relation to this search query: "{{.Query}}"

Focus on:
1. Key facts and information directly relevant to the query
2. Main insights, findings, or advancements mentioned
3. Any important conclusions or future implications

Content:
{{.Content}}

Format your summary with clear sections and bullet points where appropriate to enhance readability.
Use markdown formatting to improve structure and highlight important information.
`))

func summaryPrompt(content, query string, brief bool) (string, error) {
	directive := comprehensiveDirective
	if brief {
		directive = briefDirective
	}

	var buf bytes.Buffer
	err := summaryPromptTmpl.Execute(&buf, struct {
		LengthDirective string
		Query           string
		Content         string
	}{directive, query, content})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// The synthesis prompts share the numbered SOURCE blocks and differ in
// voice: balanced for general readers, academic for a literature-review
// structure, business for an executive brief.

var balancedSynthesisTmpl = template.Must(template.New("balanced").Parse(`Please synthesize a comprehensive research conclusion from the following summaries related to this search query: "{{.Query}}"

Your task is to:
1. Identify the main findings and key points across all sources
2. Note any consensus or disagreements between sources
3. Highlight the most important and relevant information
4. Organize the information logically with clear section headings
5. Include a brief conclusion with the most important takeaways

Here are the summaries from various sources:
{{.Sources}}

Please create a well-structured, comprehensive research conclusion that synthesizes all this information.
Include a "Key Findings" section at the beginning and a "Conclusion" at the end.
Use markdown formatting to improve structure and readability.
`))

var academicSynthesisTmpl = template.Must(template.New("academic").Parse(`Please synthesize a formal academic research summary from the following sources related to: "{{.Query}}"

Your task is to:
1. Identify the main findings, key points, and methodologies across all sources
2. Note areas of scholarly consensus and significant disagreements
3. Evaluate the strength of evidence and methodological approaches
4. Organize information into a structured academic format with clear section headings
5. Include a literature review section and research implications

Here are the summaries from various sources:
{{.Sources}}

Please create a well-structured, academically-oriented research synthesis with the following sections:
- Abstract (brief overview)
- Introduction & Research Context
- Literature Review & Methodology
- Key Findings (with subsections as needed)
- Discussion & Analysis
- Limitations of Current Research
- Conclusion & Future Directions

Format this as a formal academic summary suitable for an educated audience.
`))

var businessSynthesisTmpl = template.Must(template.New("business").Parse(`Please synthesize an executive-style business research brief from the following sources related to: "{{.Query}}"

Your task is to:
1. Extract actionable insights and business implications
2. Identify market trends, opportunities, and challenges
3. Highlight competitive factors and strategic considerations
4. Provide clear, decision-relevant information
5. Organize with executive-friendly formatting and bullet points

Here are the summaries from various sources:
{{.Sources}}

Please create a business-focused research brief with the following sections:
- Executive Summary
- Key Market Insights
- Strategic Implications
- Competitive Analysis
- Recommendations & Next Steps

Format this as a concise, action-oriented business brief with bullet points for easy scanning. Focus on practical business applications rather than theoretical discussions.
`))

func synthesisTemplate(style types.SynthesisStyle) *template.Template {
	switch style {
	case types.SynthesisAcademic:
		return academicSynthesisTmpl
	case types.SynthesisBusiness:
		return businessSynthesisTmpl
	default:
		return balancedSynthesisTmpl
	}
}

func synthesisPrompt(sources []types.SourceSummary, query string, style types.SynthesisStyle) (string, error) {
	var buf bytes.Buffer
	err := synthesisTemplate(style).Execute(&buf, struct {
		Query   string
		Sources string
	}{query, sourceBlocks(sources)})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// sourceBlocks renders the numbered SOURCE sections in input order.
func sourceBlocks(sources []types.SourceSummary) string {
	var b strings.Builder
	for i, s := range sources {
		fmt.Fprintf(&b, "\n\nSOURCE %d: %s\n%s\nURL: %s\n", i+1, s.Title, s.Summary, s.Link)
	}
	return b.String()
}
