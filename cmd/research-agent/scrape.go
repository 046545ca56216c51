package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-agent/internal/scrape"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [urls...]",
	Short: "Scrape main content from web pages",
	Long: `Scrape fetches the given URLs in parallel, strips page chrome, and
extracts the readable main content. Per-URL status is printed to stderr
as pages finish; the extracted text goes to stdout, or as JSON keyed by
URL with --json.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScrape,
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg := scrapeConfig(cmd)

	results := scrape.ExtractAll(context.Background(), httpClient(cfg.Timeout), args, cfg, os.Stderr)

	scraped, failed := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		} else {
			scraped++
		}
	}
	fmt.Fprintf(os.Stderr, "\nBatch summary: %d scraped, %d failed (total: %d)\n",
		scraped, failed, scraped+failed)

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		out := make(map[string]scrapeOutput, len(results))
		for u, r := range results {
			o := scrapeOutput{Content: r.Content}
			if r.Err != nil {
				o.Error = r.Err.Error()
			}
			out[u] = o
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		for _, u := range args {
			if r, ok := results[u]; ok && r.Err == nil {
				fmt.Printf("\n--- %s ---\n%s\n", u, r.Content)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d page(s) failed scraping", failed)
	}
	return nil
}

// scrapeOutput is the JSON shape for one scraped URL.
type scrapeOutput struct {
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

func init() {
	scrapeCmd.Flags().Int("concurrency", defaultConcurrency, "parallel scraping workers")
	scrapeCmd.Flags().Bool("json", false, "output extracted content as JSON keyed by URL")

	rootCmd.AddCommand(scrapeCmd)
}
