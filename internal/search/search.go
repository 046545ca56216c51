// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search retrieves ranked web results for a query and normalizes
// them into SearchHits for the rest of the pipeline.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/research-agent/pkg/types"
)

// maxProviderResults is the hard cap on hits requested from a provider
// in one call.
const maxProviderResults = 10

// defaultResultCount is used when the caller does not ask for a count.
const defaultResultCount = 5

// Provider queries one web search service. Implementations normalize
// provider payloads into SearchHits and keep the service's ranking.
type Provider interface {
	// Name identifies the provider in warnings and progress output.
	Name() string
	// Search returns up to cfg.MaxResults hits for query.
	Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.SearchHit, error)
}

// Fetch asks p for the top hits and absorbs provider failures: any error
// becomes a warning on w and an empty hit list, which callers treat as
// "no results". The requested count is defaulted and clamped before the
// provider sees it.
func Fetch(ctx context.Context, p Provider, query string, cfg types.SearchConfig, w io.Writer) []types.SearchHit {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultResultCount
	}
	if cfg.MaxResults > maxProviderResults {
		cfg.MaxResults = maxProviderResults
	}

	hits, err := p.Search(ctx, query, cfg)
	if err != nil {
		fmt.Fprintf(w, "warning: %s search failed: %v\n", p.Name(), err)
		return nil
	}
	return hits
}

// fillDefaults substitutes placeholder values for fields the provider
// omitted so every hit is fully populated downstream.
func fillDefaults(h types.SearchHit) types.SearchHit {
	if h.Title == "" {
		h.Title = "No Title"
	}
	if h.Snippet == "" {
		h.Snippet = "No snippet available"
	}
	if h.Link == "" {
		h.Link = "#"
	}
	return h
}

// FormatTable writes hits as a human-readable table to w.
func FormatTable(hits []types.SearchHit, w io.Writer) {
	if len(hits) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %s\n", "Rank", "Title", "Link")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, h := range hits {
		fmt.Fprintf(w, "%-4d  %-60s  %s\n", i+1, truncate(h.Title, 60), h.Link)
	}

	fmt.Fprintf(w, "\n%d results\n", len(hits))
}

// FormatJSON writes hits as indented JSON to w.
func FormatJSON(hits []types.SearchHit, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(hits)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
