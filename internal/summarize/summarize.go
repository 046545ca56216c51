// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize turns scraped page content into query-focused
// summaries and synthesizes cross-source research reports through a
// pluggable text generation backend.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/research-agent/pkg/types"
)

// minSummaryLen is the shortest generation accepted as a usable
// per-source summary. Synthesis output has no floor.
const minSummaryLen = 50

// ErrNoText reports a provider response that contained no retrievable
// text. Backends return it (possibly wrapped) so callers can tell a
// malformed answer from a transport failure.
var ErrNoText = errors.New("no text in provider response")

// Backend generates text for a prompt. Implementations wrap exactly one
// provider API call per Generate; the pipeline never retries generation.
type Backend interface {
	// Name identifies the backend in progress output.
	Name() string
	// Generate returns the model's text for prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Summarize produces a summary of content focused on query. brief
// selects the short length preset. The returned error text is the
// user-facing reason the source was dropped.
func Summarize(ctx context.Context, b Backend, content, query string, brief bool) (string, error) {
	prompt, err := summaryPrompt(content, query, brief)
	if err != nil {
		return "", fmt.Errorf("Failed to summarize: %v", err)
	}

	text, err := b.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, ErrNoText) {
			return "", errors.New("Error: Unexpected response format from API")
		}
		return "", fmt.Errorf("Failed to summarize: %v", err)
	}

	if len(strings.TrimSpace(text)) < minSummaryLen {
		return "", errors.New("Generated summary was too short or empty")
	}
	return text, nil
}

// Synthesize combines the per-source summaries into one cross-source
// report in the requested style. Sources appear in the prompt in input
// order. Short output is accepted: unlike per-source summaries, a
// report has no length floor.
func Synthesize(ctx context.Context, b Backend, sources []types.SourceSummary, query string, style types.SynthesisStyle) (string, error) {
	if len(sources) == 0 {
		return "", errors.New("no source summaries to synthesize")
	}

	prompt, err := synthesisPrompt(sources, query, style)
	if err != nil {
		return "", fmt.Errorf("Failed to create comprehensive summary: %v", err)
	}

	text, err := b.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, ErrNoText) {
			return "", errors.New("Error: Unexpected response format from API")
		}
		return "", fmt.Errorf("Failed to create comprehensive summary: %v", err)
	}

	if strings.TrimSpace(text) == "" {
		return "", errors.New("Error: Unexpected response format from API")
	}
	return text, nil
}

// VerifyBackend sends a minimal probe prompt and reports whether the
// backend answered with any text. Used by the keys command.
func VerifyBackend(ctx context.Context, b Backend) error {
	text, err := b.Generate(ctx, "Test")
	if err != nil {
		return fmt.Errorf("%s test call failed: %w", b.Name(), err)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%s test call returned no text", b.Name())
	}
	return nil
}
