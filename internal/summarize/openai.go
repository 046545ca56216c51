// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// defaultOpenAIModel is used when no model is configured.
const defaultOpenAIModel = openai.GPT4oMini

// OpenAIBackend generates text through an OpenAI-compatible chat API.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend builds a backend for the given key and model. A
// non-empty baseURL redirects calls to a compatible gateway.
func NewOpenAIBackend(apiKey, model, baseURL string) *OpenAIBackend {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIBackend{client: openai.NewClientWithConfig(cfg), model: model}
}

// Name returns the backend identifier.
func (o *OpenAIBackend) Name() string { return "openai" }

// Generate sends prompt as a single user message and returns the first
// choice's content. An answer without content yields ErrNoText.
func (o *OpenAIBackend) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("calling chat completion API: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrNoText
	}
	return resp.Choices[0].Message.Content, nil
}
