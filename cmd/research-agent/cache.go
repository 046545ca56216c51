package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-agent/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the search and page cache",
	Long: `Cache manages cached search results and scraped pages. The backend
(memory, sqlite, or redis) is selected in research-agent.yaml; sqlite
is the default.`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached entries",
	RunE:  runCacheClear,
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg := cacheConfig()
	store, err := cache.New(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		fmt.Println("Caching is disabled; nothing to clear.")
		return nil
	}
	defer store.Close()

	if err := store.Clear(context.Background()); err != nil {
		return err
	}
	fmt.Printf("Cleared the %s cache.\n", cfg.Backend)
	return nil
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
