// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/research-agent/pkg/types"
)

// SearXNGProvider retrieves results from a self-hosted SearXNG instance,
// for running the pipeline without a commercial search API.
type SearXNGProvider struct {
	Client  *http.Client
	BaseURL string
}

// Name returns the provider identifier.
func (p *SearXNGProvider) Name() string { return "searxng" }

// Search queries the instance's JSON API. SearXNG has no result-count
// parameter, so the response is clamped to cfg.MaxResults locally.
func (p *SearXNGProvider) Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.SearchHit, error) {
	if p.BaseURL == "" {
		return nil, fmt.Errorf("SearXNG base URL is not configured")
	}

	params := url.Values{
		"q":      {query},
		"format": {"json"},
	}
	endpoint := strings.TrimSuffix(p.BaseURL, "/") + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("SearXNG request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SearXNG returned HTTP %d", resp.StatusCode)
	}

	var xr searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&xr); err != nil {
		return nil, fmt.Errorf("parsing SearXNG response: %w", err)
	}

	hits := make([]types.SearchHit, 0, len(xr.Results))
	for _, r := range xr.Results {
		if len(hits) == cfg.MaxResults {
			break
		}
		hits = append(hits, fillDefaults(types.SearchHit{
			Title:   r.Title,
			Link:    r.URL,
			Snippet: r.Content,
		}))
	}
	return hits, nil
}

// SearXNG response structures (the subset this provider reads).

type searxngResponse struct {
	Results []searxngResult `json:"results"`
}

type searxngResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}
