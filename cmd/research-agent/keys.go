package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-agent/internal/search"
	"github.com/pdiddy/research-agent/internal/summarize"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Verify the configured API keys",
	Long: `Keys checks the SerpAPI key against the account endpoint and sends a
minimal test prompt through the generation backend. Keys are resolved
from flags, .secrets/ files, or the environment, in that order.`,
	RunE: runKeys,
}

func runKeys(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	failed := 0

	if key := apiKey(flagString(cmd, "serpapi-key", ""), "serpapi-api-key", "SERPAPI_KEY"); key == "" {
		fmt.Println("SerpAPI key not configured")
		failed++
	} else {
		msg, err := search.VerifyKey(ctx, httpClient(defaultSearchTimeout), key)
		if err != nil {
			fmt.Printf("SerpAPI key check failed: %v\n", err)
			failed++
		} else {
			fmt.Println(msg)
		}
	}

	cfg := summarizeConfig(cmd)
	backend, err := buildBackend(cmd, cfg)
	if err != nil {
		fmt.Printf("generation backend: %v\n", err)
		failed++
	} else if err := summarize.VerifyBackend(ctx, backend); err != nil {
		fmt.Printf("%s API key check failed: %v\n", displayName(cfg.Backend), err)
		failed++
	} else {
		fmt.Printf("%s API key is valid\n", displayName(cfg.Backend))
	}

	if failed > 0 {
		return fmt.Errorf("%d key check(s) failed", failed)
	}
	return nil
}

func displayName(backend string) string {
	switch backend {
	case "gemini":
		return "Gemini"
	case "openai":
		return "OpenAI"
	}
	return backend
}

func init() {
	keysCmd.Flags().String("backend", "", "generation backend to verify: gemini or openai (default gemini)")
	keysCmd.Flags().String("model", "", "model identifier override for the backend")
	keysCmd.Flags().String("serpapi-key", "", "SerpAPI key (overrides .secrets/ and environment)")
	keysCmd.Flags().String("api-key", "", "generation backend key (overrides .secrets/ and environment)")

	rootCmd.AddCommand(keysCmd)
}
