// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-agent CLI.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-agent/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// apiKey resolves a credential: an explicit flag value wins, then the
// .secrets/ file, then the environment variable.
func apiKey(flagValue, file, env string) string {
	if flagValue != "" {
		return flagValue
	}
	return secrets.Lookup(loadedSecrets, file, env)
}

// httpClient builds a client with the given total request timeout.
func httpClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// rootCmd is the base command for the research-agent CLI.
var rootCmd = &cobra.Command{
	Use:   "research-agent",
	Short: "Web research pipeline: search, scrape, summarize, synthesize",
	Long: `research-agent answers a research question from the live web. It searches
for relevant pages, scrapes their main content in parallel, summarizes each
source with a generation backend, and synthesizes the per-source summaries
into one comprehensive report with suggested follow-up questions.

Each pipeline stage is also a subcommand: search, scrape, keys, and cache
let you exercise one stage at a time.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-agent.yaml or ~/.config/research-agent/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-agent")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-agent"))
		}
	}

	viper.SetEnvPrefix("RESEARCH_AGENT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
