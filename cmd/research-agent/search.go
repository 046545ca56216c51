package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-agent/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search the web and print the ranked results",
	Long: `Search queries the configured provider (SerpAPI by default) and prints
the ranked results without scraping or summarizing them. Useful for
previewing what the research command would work from.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	cfg := searchConfig(cmd)

	provider, err := buildProvider(cmd, cfg)
	if err != nil {
		return err
	}

	hits := search.Fetch(context.Background(), provider, query, cfg, os.Stderr)
	if len(hits) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		return search.FormatJSON(hits, os.Stdout)
	}
	search.FormatTable(hits, os.Stdout)
	return nil
}

func init() {
	searchCmd.Flags().Int("results", defaultResults, "number of results to return")
	searchCmd.Flags().String("region", "us", "search region code (SerpAPI gl parameter)")
	searchCmd.Flags().String("provider", "serpapi", "search provider: serpapi or searxng")
	searchCmd.Flags().String("searx-url", "", "SearXNG instance base URL")
	searchCmd.Flags().String("serpapi-key", "", "SerpAPI key (overrides .secrets/ and environment)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
