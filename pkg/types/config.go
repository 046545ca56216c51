package types

import "time"

// HTTPConfig holds settings shared by every stage that talks to the
// network.
type HTTPConfig struct {
	// Timeout bounds a single HTTP request.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
	// UserAgent is sent with every outgoing request.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the web search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the search provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	// Engine selects the provider-side search engine, e.g. "google".
	Engine string `json:"engine,omitempty" yaml:"engine,omitempty"`
	// MaxResults caps how many hits are requested. Values above the
	// provider limit are clamped.
	MaxResults int `json:"max_results" yaml:"max_results"`
	// Region localizes results, e.g. "us" or "de".
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
	// MaxAttempts bounds total tries for a rate-limited request.
	MaxAttempts int `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
}

// ScrapeConfig holds settings for the content extraction stage.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxAttempts bounds fetch tries per URL; only timeouts trigger a
	// second try.
	MaxAttempts int `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	// MinContentLen rejects pages whose extracted text is shorter.
	MinContentLen int `json:"min_content_len,omitempty" yaml:"min_content_len,omitempty"`
	// MaxContentLen truncates extracted text beyond this length.
	MaxContentLen int `json:"max_content_len,omitempty" yaml:"max_content_len,omitempty"`
	// Concurrency is the number of URLs fetched in parallel.
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
}

// SummaryStyle selects the length preset for per-source summaries.
type SummaryStyle string

const (
	// StyleBrief asks for roughly 100-150 words per summary.
	StyleBrief SummaryStyle = "brief"
	// StyleComprehensive asks for roughly 300-500 words per summary.
	StyleComprehensive SummaryStyle = "comprehensive"
)

// Valid reports whether s names a known summary style.
func (s SummaryStyle) Valid() bool {
	return s == StyleBrief || s == StyleComprehensive
}

// SynthesisStyle selects the voice of the cross-source report.
type SynthesisStyle string

const (
	// SynthesisBalanced produces a general-audience research report.
	SynthesisBalanced SynthesisStyle = "balanced"
	// SynthesisAcademic produces a literature-review style report.
	SynthesisAcademic SynthesisStyle = "academic"
	// SynthesisBusiness produces an executive-brief style report.
	SynthesisBusiness SynthesisStyle = "business"
)

// Valid reports whether s names a known synthesis style.
func (s SynthesisStyle) Valid() bool {
	return s == SynthesisBalanced || s == SynthesisAcademic || s == SynthesisBusiness
}

// AIConfig holds settings shared by text generation backends.
type AIConfig struct {
	// Model names the provider model to use.
	Model string `json:"model" yaml:"model"`
	// APIKey authenticates against the provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	// BaseURL overrides the provider endpoint, for gateways and tests.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// SummarizeConfig holds settings for summarization and synthesis.
type SummarizeConfig struct {
	AIConfig `yaml:",inline"`

	// Backend selects the generation provider: "gemini" or "openai".
	Backend string `json:"backend" yaml:"backend"`
	// Style is the per-source summary length preset.
	Style SummaryStyle `json:"style" yaml:"style"`
	// SynthesisStyle is the voice of the final report.
	SynthesisStyle SynthesisStyle `json:"synthesis_style" yaml:"synthesis_style"`
}

// CacheBackend identifies a cache implementation.
type CacheBackend string

const (
	// CacheNone disables caching.
	CacheNone CacheBackend = "none"
	// CacheMemory keeps entries in process memory.
	CacheMemory CacheBackend = "memory"
	// CacheSQLite persists entries to a local SQLite database.
	CacheSQLite CacheBackend = "sqlite"
	// CacheRedis stores entries on a Redis server.
	CacheRedis CacheBackend = "redis"
)

// CacheConfig holds settings for the result cache.
type CacheConfig struct {
	// Backend selects the cache implementation.
	Backend CacheBackend `json:"backend" yaml:"backend"`
	// Dir is the database directory for the sqlite backend.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
	// RedisAddr is the host:port of the redis backend.
	RedisAddr string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	// RedisPassword authenticates against the redis backend.
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	// RedisDB selects the redis database number.
	RedisDB int `json:"redis_db,omitempty" yaml:"redis_db,omitempty"`
	// TTL is how long entries stay valid.
	TTL time.Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

// AgentConfig holds settings for the pipeline orchestrator.
type AgentConfig struct {
	// Followups is how many follow-up questions to generate after a
	// successful synthesis. Zero disables the step.
	Followups int `json:"followups,omitempty" yaml:"followups,omitempty"`
}

// PipelineConfig groups the configuration for every pipeline stage.
type PipelineConfig struct {
	Search    SearchConfig    `json:"search" yaml:"search"`
	Scrape    ScrapeConfig    `json:"scrape" yaml:"scrape"`
	Summarize SummarizeConfig `json:"summarize" yaml:"summarize"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	Agent     AgentConfig     `json:"agent" yaml:"agent"`
}
