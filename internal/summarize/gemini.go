// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// geminiAPIBase is the Gemini API root. Package-level var for test
// substitution.
var geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta"

// defaultGeminiModel is used when no model is configured.
const defaultGeminiModel = "gemini-1.5-pro"

// GeminiBackend calls the Gemini generateContent API.
type GeminiBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

// Name returns the backend identifier.
func (g *GeminiBackend) Name() string { return "gemini" }

// geminiRequest is the request body for the generateContent endpoint.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

// geminiContent is one turn of content in a Gemini conversation.
type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

// geminiPart is a text fragment within a content turn.
type geminiPart struct {
	Text string `json:"text"`
}

// geminiResponse is the response body from the generateContent endpoint.
type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

// geminiCandidate is one generated answer.
type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

// Generate sends prompt to the Gemini API and returns the text of the
// first candidate that has any. A well-formed response without text
// yields ErrNoText.
func (g *GeminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.Model
	if model == "" {
		model = defaultGeminiModel
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", geminiAPIBase, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.APIKey)

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Gemini API returned %d: %s", resp.StatusCode, string(body))
	}

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return "", fmt.Errorf("decoding Gemini response: %w", err)
	}

	for _, cand := range gResp.Candidates {
		var parts []string
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				parts = append(parts, p.Text)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ""), nil
		}
	}

	return "", ErrNoText
}
