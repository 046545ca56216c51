// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SearchHit is one candidate source returned by the search provider, in
// provider rank order. Providers substitute placeholder values for any
// field the service omits, so no field is ever empty.
type SearchHit struct {
	// Title is the result headline.
	Title string `json:"title" yaml:"title"`
	// Link is the result URL.
	Link string `json:"link" yaml:"link"`
	// Snippet is the short description shown under the headline.
	Snippet string `json:"snippet" yaml:"snippet"`
}

// ResultItem is the per-source working record carried through extraction
// and summarization. Success flips to true only after both stages finish;
// until then Error holds the reason the source was dropped.
type ResultItem struct {
	SearchHit `yaml:",inline"`

	// Success reports whether the source was scraped and summarized.
	Success bool `json:"success" yaml:"success"`
	// Content is a preview of the extracted page text, present only on
	// success.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
	// Summary is the query-focused summary of the page, present only on
	// success.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
	// Error is the failure reason for the stage that rejected the source.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// SourceSummary is the slice of a successful ResultItem handed to the
// synthesis stage.
type SourceSummary struct {
	Title   string `json:"title" yaml:"title"`
	Link    string `json:"link" yaml:"link"`
	Summary string `json:"summary" yaml:"summary"`
}

// ResearchResult is the terminal artifact of one pipeline run.
type ResearchResult struct {
	// Success is true when at least one source made it through both
	// stages, regardless of how synthesis went.
	Success bool `json:"success" yaml:"success"`
	// Query is the research question the run answered.
	Query string `json:"query" yaml:"query"`
	// Results holds one record per search hit, in the provider's
	// original ranking.
	Results []ResultItem `json:"results" yaml:"results"`
	// ComprehensiveSummary is the cross-source report. Empty when no
	// source succeeded or when synthesis itself failed.
	ComprehensiveSummary string `json:"comprehensive_summary,omitempty" yaml:"comprehensive_summary,omitempty"`
	// Error is set only when the run stopped before processing any
	// source, e.g. when the search returned nothing.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	// FollowupQuestions are suggested directions for a next run,
	// generated from the comprehensive summary when one exists.
	FollowupQuestions []string `json:"followup_questions,omitempty" yaml:"followup_questions,omitempty"`
}

// SuccessCount returns the number of sources that completed both stages.
func (r ResearchResult) SuccessCount() int {
	n := 0
	for _, item := range r.Results {
		if item.Success {
			n++
		}
	}
	return n
}

// FailureCount returns the number of sources dropped along the way.
func (r ResearchResult) FailureCount() int {
	return len(r.Results) - r.SuccessCount()
}
