// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/research-agent/internal/httputil"
	"github.com/pdiddy/research-agent/pkg/types"
)

// serpAPIBase is the SerpAPI search endpoint. Package-level var so tests
// can point it at a local server.
var serpAPIBase = "https://serpapi.com/search"

// defaultEngine is the provider-side engine used when none is configured.
const defaultEngine = "google"

// SerpAPIProvider retrieves Google organic results through SerpAPI.
type SerpAPIProvider struct {
	Client *http.Client
	APIKey string
}

// Name returns the provider identifier.
func (p *SerpAPIProvider) Name() string { return "serpapi" }

// Search queries SerpAPI for the top organic results. Rate limiting is
// retried with exponential backoff; a 401 or a spent retry budget is
// reported as an error so the caller can degrade to an empty hit list.
func (p *SerpAPIProvider) Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.SearchHit, error) {
	engine := cfg.Engine
	if engine == "" {
		engine = defaultEngine
	}

	params := url.Values{
		"q":       {query},
		"api_key": {p.APIKey},
		"engine":  {engine},
		"num":     {strconv.Itoa(cfg.MaxResults)},
	}
	if cfg.Region != "" {
		params.Set("gl", cfg.Region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serpAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	resp, err := httputil.DoWithBackoff(ctx, p.Client, req, cfg.MaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("SerpAPI request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("SerpAPI authentication failed (HTTP 401): check the API key")
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("SerpAPI rate limit persisted after retries (HTTP 429)")
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("SerpAPI returned HTTP %d", resp.StatusCode)
	}

	var sr serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing SerpAPI response: %w", err)
	}

	hits := make([]types.SearchHit, 0, len(sr.OrganicResults))
	for _, r := range sr.OrganicResults {
		hits = append(hits, fillDefaults(types.SearchHit{
			Title:   r.Title,
			Link:    r.Link,
			Snippet: r.Snippet,
		}))
	}
	if len(hits) > cfg.MaxResults {
		hits = hits[:cfg.MaxResults]
	}
	return hits, nil
}

// SerpAPI response structures (the subset this provider reads).

type serpResponse struct {
	OrganicResults []serpOrganicResult `json:"organic_results"`
}

type serpOrganicResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
}
