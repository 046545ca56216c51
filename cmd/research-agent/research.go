// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-agent/internal/agent"
	"github.com/pdiddy/research-agent/internal/cache"
	"github.com/pdiddy/research-agent/internal/report"
	"github.com/pdiddy/research-agent/internal/search"
	"github.com/pdiddy/research-agent/internal/summarize"
	"github.com/pdiddy/research-agent/pkg/types"
)

// Per-stage defaults, overridable through flags and research-agent.yaml.
const (
	defaultSearchTimeout   = 15 * time.Second
	defaultScrapeTimeout   = 10 * time.Second
	defaultGenerateTimeout = 60 * time.Second
	defaultUserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	defaultResults     = 5
	defaultConcurrency = 3
	defaultFollowups   = 3
)

var researchCmd = &cobra.Command{
	Use:   "research [query...]",
	Short: "Run the full research pipeline for a query",
	Long: `Research runs the whole pipeline: web search, parallel scraping of the
result pages, per-source summarization, and a comprehensive synthesis with
suggested follow-up questions. Progress is printed to stderr; the rendered
report goes to stdout, or also to a file with --output.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func runResearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	cfg := pipelineConfig(cmd)

	if !cfg.Summarize.Style.Valid() {
		return fmt.Errorf("unknown summary style %q: use brief or comprehensive", cfg.Summarize.Style)
	}
	if !cfg.Summarize.SynthesisStyle.Valid() {
		return fmt.Errorf("unknown synthesis style %q: use balanced, academic, or business", cfg.Summarize.SynthesisStyle)
	}
	format := report.Format(flagString(cmd, "format", string(report.FormatMarkdown)))
	if !format.Valid() {
		return fmt.Errorf("unknown report format %q: use markdown, text, or html", format)
	}

	provider, err := buildProvider(cmd, cfg.Search)
	if err != nil {
		return err
	}
	backend, err := buildBackend(cmd, cfg.Summarize)
	if err != nil {
		return err
	}

	var store cache.Cache
	if noCache, _ := cmd.Flags().GetBool("no-cache"); !noCache {
		store, err = cache.New(cfg.Cache)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cache disabled: %v\n", err)
			store = nil
		}
	}
	if store != nil {
		defer store.Close()
	}

	a := agent.New(provider, backend, httpClient(cfg.Scrape.Timeout), store, cfg)
	result, err := a.Research(context.Background(), query, os.Stderr)
	if err != nil {
		return err
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else if err := report.Render(result, format, os.Stdout); err != nil {
		return err
	}

	if outputDir, _ := cmd.Flags().GetString("output"); outputDir != "" {
		path, err := report.WriteFile(result, format, outputDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "report written: %s\n", path)
	}

	if result.Error != "" {
		return fmt.Errorf("%s", result.Error)
	}
	if !result.Success {
		return fmt.Errorf("no sources could be summarized")
	}
	return nil
}

// --- shared config builders ---

// pipelineConfig assembles the stage configs from flags, the config file,
// and built-in defaults.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	return types.PipelineConfig{
		Search:    searchConfig(cmd),
		Scrape:    scrapeConfig(cmd),
		Summarize: summarizeConfig(cmd),
		Cache:     cacheConfig(),
		Agent:     types.AgentConfig{Followups: flagInt(cmd, "followups", defaultFollowups)},
	}
}

func searchConfig(cmd *cobra.Command) types.SearchConfig {
	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viperDuration("search.timeout", defaultSearchTimeout),
			UserAgent: viperString("http.user_agent", defaultUserAgent),
		},
		Engine:     viperString("search.engine", ""),
		MaxResults: flagInt(cmd, "results", defaultResults),
		Region:     flagString(cmd, "region", "us"),
	}
}

func scrapeConfig(cmd *cobra.Command) types.ScrapeConfig {
	return types.ScrapeConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viperDuration("scrape.timeout", defaultScrapeTimeout),
			UserAgent: viperString("http.user_agent", defaultUserAgent),
		},
		Concurrency: flagInt(cmd, "concurrency", defaultConcurrency),
	}
}

func summarizeConfig(cmd *cobra.Command) types.SummarizeConfig {
	backend := flagString(cmd, "backend", "")
	if backend == "" {
		backend = viperString("ai.backend", "gemini")
	}
	style := flagString(cmd, "style", "")
	if style == "" {
		style = viperString("summarize.style", string(types.StyleBrief))
	}
	if brief, _ := cmd.Flags().GetBool("brief"); brief {
		style = string(types.StyleBrief)
	}
	synthStyle := flagString(cmd, "synthesis-style", "")
	if synthStyle == "" {
		synthStyle = viperString("summarize.synthesis_style", string(types.SynthesisBalanced))
	}

	cfg := types.SummarizeConfig{
		Backend:        backend,
		Style:          types.SummaryStyle(style),
		SynthesisStyle: types.SynthesisStyle(synthStyle),
	}
	cfg.Model = flagString(cmd, "model", "")
	if cfg.Model == "" {
		cfg.Model = viper.GetString("ai.model")
	}
	cfg.BaseURL = viper.GetString("ai.base_url")
	return cfg
}

// cacheConfig reads the cache backend selection from the config file.
func cacheConfig() types.CacheConfig {
	return types.CacheConfig{
		Backend:       types.CacheBackend(viperString("cache.backend", string(types.CacheSQLite))),
		Dir:           viperString("cache.dir", "cache"),
		RedisAddr:     viper.GetString("cache.redis_addr"),
		RedisPassword: apiKey("", "redis-password", "REDIS_PASSWORD"),
		RedisDB:       viper.GetInt("cache.redis_db"),
		TTL:           viperDuration("cache.ttl", cache.DefaultTTL),
	}
}

// buildProvider constructs the search provider named by --provider.
func buildProvider(cmd *cobra.Command, cfg types.SearchConfig) (search.Provider, error) {
	name := flagString(cmd, "provider", "serpapi")
	client := httpClient(cfg.Timeout)

	switch name {
	case "serpapi":
		key := apiKey(flagString(cmd, "serpapi-key", ""), "serpapi-api-key", "SERPAPI_KEY")
		if key == "" {
			return nil, fmt.Errorf("SerpAPI key required: put it in .secrets/serpapi-api-key or set SERPAPI_KEY")
		}
		return &search.SerpAPIProvider{Client: client, APIKey: key}, nil
	case "searxng":
		base := flagString(cmd, "searx-url", "")
		if base == "" {
			base = viper.GetString("search.searx_url")
		}
		if base == "" {
			return nil, fmt.Errorf("SearXNG base URL required: pass --searx-url or set search.searx_url")
		}
		return &search.SearXNGProvider{Client: client, BaseURL: base}, nil
	default:
		return nil, fmt.Errorf("unknown search provider %q: use serpapi or searxng", name)
	}
}

// buildBackend constructs the generation backend selected in the
// summarize config.
func buildBackend(cmd *cobra.Command, cfg types.SummarizeConfig) (summarize.Backend, error) {
	keyFlag := flagString(cmd, "api-key", "")

	switch cfg.Backend {
	case "gemini":
		key := apiKey(keyFlag, "gemini-api-key", "GEMINI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("Gemini API key required: put it in .secrets/gemini-api-key or set GEMINI_API_KEY")
		}
		return &summarize.GeminiBackend{
			APIKey: key,
			Model:  cfg.Model,
			Client: httpClient(defaultGenerateTimeout),
		}, nil
	case "openai":
		key := apiKey(keyFlag, "openai-api-key", "OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("OpenAI API key required: put it in .secrets/openai-api-key or set OPENAI_API_KEY")
		}
		return summarize.NewOpenAIBackend(key, cfg.Model, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown generation backend %q: use gemini or openai", cfg.Backend)
	}
}

// --- flag and config helpers ---

// flagString reads a string flag, or returns fallback when the flag is
// not registered on the command.
func flagString(cmd *cobra.Command, name, fallback string) string {
	if v, err := cmd.Flags().GetString(name); err == nil {
		return v
	}
	return fallback
}

// flagInt reads an int flag, or returns fallback when the flag is not
// registered on the command.
func flagInt(cmd *cobra.Command, name string, fallback int) int {
	if v, err := cmd.Flags().GetInt(name); err == nil {
		return v
	}
	return fallback
}

// viperString returns the config value for key, or fallback when unset.
func viperString(key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

// viperDuration returns the config duration for key, or fallback when unset.
func viperDuration(key string, fallback time.Duration) time.Duration {
	if v := viper.GetDuration(key); v > 0 {
		return v
	}
	return fallback
}

func init() {
	researchCmd.Flags().Int("results", defaultResults, "number of search results to research")
	researchCmd.Flags().String("region", "us", "search region code (SerpAPI gl parameter)")
	researchCmd.Flags().String("style", "", "per-source summary style: brief or comprehensive (default brief)")
	researchCmd.Flags().Bool("brief", false, "shorthand for --style brief")
	researchCmd.Flags().String("synthesis-style", "", "synthesis style: balanced, academic, or business (default balanced)")
	researchCmd.Flags().Int("concurrency", defaultConcurrency, "parallel scraping workers")
	researchCmd.Flags().Int("followups", defaultFollowups, "follow-up questions to suggest (0 disables)")
	researchCmd.Flags().String("provider", "serpapi", "search provider: serpapi or searxng")
	researchCmd.Flags().String("searx-url", "", "SearXNG instance base URL")
	researchCmd.Flags().String("backend", "", "generation backend: gemini or openai (default gemini)")
	researchCmd.Flags().String("model", "", "model identifier override for the backend")
	researchCmd.Flags().String("serpapi-key", "", "SerpAPI key (overrides .secrets/ and environment)")
	researchCmd.Flags().String("api-key", "", "generation backend key (overrides .secrets/ and environment)")
	researchCmd.Flags().String("format", string(report.FormatMarkdown), "report format: markdown, text, or html")
	researchCmd.Flags().String("output", "", "directory to write the report file (default: stdout only)")
	researchCmd.Flags().Bool("json", false, "print the raw result as JSON instead of a report")
	researchCmd.Flags().Bool("no-cache", false, "bypass the search and page cache")

	rootCmd.AddCommand(researchCmd)
}
