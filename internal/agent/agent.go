// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent orchestrates the research pipeline: web search, content
// extraction, per-source summarization, and cross-source synthesis.
// Sources fail individually; the run carries on with whatever survives.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/research-agent/internal/cache"
	"github.com/pdiddy/research-agent/internal/scrape"
	"github.com/pdiddy/research-agent/internal/search"
	"github.com/pdiddy/research-agent/internal/summarize"
	"github.com/pdiddy/research-agent/pkg/types"
)

// noResultsMessage is the terminal error for a search that found nothing.
const noResultsMessage = "No search results found"

// previewLen caps the content stored on each successful result item.
const previewLen = 1000

// Agent wires the pipeline stages together. Collaborators are injected
// so tests can substitute fakes; Cache may be nil to disable caching.
type Agent struct {
	provider search.Provider
	backend  summarize.Backend
	client   *http.Client
	cache    cache.Cache
	cfg      types.PipelineConfig
}

// New builds an Agent from its collaborators.
func New(provider search.Provider, backend summarize.Backend, client *http.Client, c cache.Cache, cfg types.PipelineConfig) *Agent {
	return &Agent{
		provider: provider,
		backend:  backend,
		client:   client,
		cache:    c,
		cfg:      cfg,
	}
}

// Research runs the full pipeline for query, reporting progress on w.
// The returned result is complete even when every source failed; the
// error is non-nil only when the run could not start at all.
func (a *Agent) Research(ctx context.Context, query string, w io.Writer) (types.ResearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return types.ResearchResult{}, fmt.Errorf("query is empty")
	}

	result := types.ResearchResult{
		Query:   query,
		Results: []types.ResultItem{},
	}

	hits := a.fetchHits(ctx, query, w)
	if len(hits) == 0 {
		result.Error = noResultsMessage
		return result, nil
	}
	fmt.Fprintf(w, "found %d search results\n", len(hits))

	extracted := a.extractPhase(ctx, hits, w)

	// Summarize surviving sources in the provider's ranking order.
	brief := a.cfg.Summarize.Style == types.StyleBrief
	var sources []types.SourceSummary
	for _, hit := range hits {
		item := types.ResultItem{SearchHit: hit}

		ext := extracted[hit.Link]
		if ext.Err != nil {
			item.Error = ext.Err.Error()
			result.Results = append(result.Results, item)
			continue
		}

		summary, err := summarize.Summarize(ctx, a.backend, ext.Content, query, brief)
		if err != nil {
			item.Error = err.Error()
			fmt.Fprintf(w, "failed:  %s (%v)\n", hit.Link, err)
			result.Results = append(result.Results, item)
			continue
		}

		item.Success = true
		item.Summary = summary
		item.Content = preview(ext.Content)
		result.Results = append(result.Results, item)
		fmt.Fprintf(w, "summarized: %s\n", hit.Link)

		sources = append(sources, types.SourceSummary{
			Title:   hit.Title,
			Link:    hit.Link,
			Summary: summary,
		})
	}

	result.Success = len(sources) > 0

	if len(sources) > 0 {
		fmt.Fprintf(w, "synthesizing report from %d sources\n", len(sources))
		report, err := summarize.Synthesize(ctx, a.backend, sources, query, a.cfg.Summarize.SynthesisStyle)
		if err != nil {
			// A failed synthesis degrades the run, never fails it: the
			// per-source results stand on their own.
			fmt.Fprintf(w, "warning: synthesis failed: %v\n", err)
		} else {
			result.ComprehensiveSummary = report
		}
	}

	if result.ComprehensiveSummary != "" && a.cfg.Agent.Followups > 0 {
		questions, err := summarize.FollowupQuestions(ctx, a.backend, result.ComprehensiveSummary, query)
		if err != nil {
			fmt.Fprintf(w, "warning: follow-up questions failed: %v\n", err)
		} else if len(questions) > a.cfg.Agent.Followups {
			result.FollowupQuestions = questions[:a.cfg.Agent.Followups]
		} else {
			result.FollowupQuestions = questions
		}
	}

	fmt.Fprintf(w, "\nResearch summary: %d summarized, %d failed (total: %d)\n",
		result.SuccessCount(), result.FailureCount(), len(result.Results))

	return result, nil
}

// fetchHits consults the cache, then the provider. Provider failures are
// absorbed upstream, so an empty return always means "no results".
func (a *Agent) fetchHits(ctx context.Context, query string, w io.Writer) []types.SearchHit {
	key := cache.SearchKey(query, a.cfg.Search.MaxResults, a.cfg.Search.Region)

	if a.cache != nil {
		if data, ok := a.cache.Get(ctx, key); ok {
			var hits []types.SearchHit
			if err := json.Unmarshal(data, &hits); err == nil {
				fmt.Fprintf(w, "search cache hit for %q\n", query)
				return hits
			}
		}
	}

	hits := search.Fetch(ctx, a.provider, query, a.cfg.Search, w)

	if a.cache != nil && len(hits) > 0 {
		if data, err := json.Marshal(hits); err == nil {
			if err := a.cache.Put(ctx, key, data, a.cfg.Cache.TTL); err != nil {
				fmt.Fprintf(w, "warning: search cache write failed: %v\n", err)
			}
		}
	}
	return hits
}

// extractPhase fetches page content for every distinct hit URL and
// returns the outcomes keyed by URL. Cached pages skip the network;
// fresh fetches run through the bounded scrape pool and are cached on
// success.
func (a *Agent) extractPhase(ctx context.Context, hits []types.SearchHit, w io.Writer) map[string]scrape.Result {
	results := make(map[string]scrape.Result, len(hits))

	seen := make(map[string]bool, len(hits))
	var toFetch []string
	for _, hit := range hits {
		if seen[hit.Link] {
			continue
		}
		seen[hit.Link] = true

		if a.cache != nil {
			if data, ok := a.cache.Get(ctx, cache.PageKey(hit.Link)); ok {
				results[hit.Link] = scrape.Result{Content: string(data)}
				fmt.Fprintf(w, "cached:  %s\n", hit.Link)
				continue
			}
		}
		toFetch = append(toFetch, hit.Link)
	}

	if len(toFetch) == 0 {
		return results
	}

	fetched := scrape.ExtractAll(ctx, a.client, toFetch, a.cfg.Scrape, w)
	for url, res := range fetched {
		results[url] = res
		if res.Err == nil && a.cache != nil {
			if err := a.cache.Put(ctx, cache.PageKey(url), []byte(res.Content), a.cfg.Cache.TTL); err != nil {
				fmt.Fprintf(w, "warning: page cache write failed: %v\n", err)
			}
		}
	}
	return results
}

// preview returns the leading slice of content stored on result items.
func preview(content string) string {
	if len(content) <= previewLen {
		return content
	}
	return content[:previewLen] + "..."
}
