// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

// serpAccountBase is the SerpAPI account endpoint used for key checks.
// Package-level var so tests can point it at a local server.
var serpAccountBase = "https://serpapi.com/account"

// VerifyKey checks apiKey against the SerpAPI account endpoint and
// returns a short human-readable status line. A non-200 answer or an
// unreachable endpoint is an error.
func VerifyKey(ctx context.Context, client *http.Client, apiKey string) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("no SerpAPI key configured")
	}

	params := url.Values{"api_key": {apiKey}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serpAccountBase+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("SerpAPI account request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("SerpAPI key test failed with status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading account response: %w", err)
	}

	plan := gjson.GetBytes(body, "plan_name").String()
	left := gjson.GetBytes(body, "total_searches_left")
	if plan == "" {
		return "SerpAPI key is valid", nil
	}
	return fmt.Sprintf("SerpAPI key is valid (plan: %s, searches left: %d)", plan, left.Int()), nil
}
