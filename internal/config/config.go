// Package config loads service configuration from defaults, an optional
// YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BRAND_SERVER_PORT.
const EnvPrefix = "BRAND"

// Reader modes.
const (
	ReaderModeService = "service"
	ReaderModeDirect  = "direct"
)

// Config captures all configuration knobs.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Reader    ReaderConfig    `mapstructure:"reader"`
	Crawl     CrawlConfig     `mapstructure:"crawl"`
	Search    SearchConfig    `mapstructure:"search"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// APIKeys is a comma-separated list; empty leaves the API open.
	APIKeys string `mapstructure:"api_keys"`
}

// RateLimitConfig controls per-client request limits. Lists are comma-separated IPs.
type RateLimitConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	DefaultLimit  int           `mapstructure:"default_limit"`
	DefaultWindow time.Duration `mapstructure:"default_window"`
	Whitelist     string        `mapstructure:"whitelist"`
	Blacklist     string        `mapstructure:"blacklist"`
}

// ReaderConfig selects how pages are fetched.
type ReaderConfig struct {
	Mode      string `mapstructure:"mode"`
	Endpoint  string `mapstructure:"endpoint"`
	APIKey    string `mapstructure:"api_key"`
	UserAgent string `mapstructure:"user_agent"`
}

// CrawlConfig holds the crawl limits. Caps and budget count characters.
type CrawlConfig struct {
	Budget           int           `mapstructure:"budget"`
	HomepageCap      int           `mapstructure:"homepage_cap"`
	HomepageTimeout  time.Duration `mapstructure:"homepage_timeout"`
	CandidateCap     int           `mapstructure:"candidate_cap"`
	CandidateTimeout time.Duration `mapstructure:"candidate_timeout"`
	Concurrency      int           `mapstructure:"concurrency"`
}

// SearchConfig configures the search strategies.
type SearchConfig struct {
	Endpoint           string        `mapstructure:"endpoint"`
	APIKey             string        `mapstructure:"api_key"`
	Timeout            time.Duration `mapstructure:"timeout"`
	DuckDuckGoEndpoint string        `mapstructure:"duckduckgo_endpoint"`
	DuckDuckGoTimeout  time.Duration `mapstructure:"duckduckgo_timeout"`
	GoogleAPIKey       string        `mapstructure:"google_api_key"`
	GoogleCX           string        `mapstructure:"google_cx"`
}

// GoogleEnabled reports whether both Custom Search credentials are set.
func (c SearchConfig) GoogleEnabled() bool {
	return c.GoogleAPIKey != "" && c.GoogleCX != ""
}

// LLMConfig selects the model provider.
type LLMConfig struct {
	Provider     string  `mapstructure:"provider"`
	BaseURL      string  `mapstructure:"base_url"`
	Model        string  `mapstructure:"model"`
	APIKey       string  `mapstructure:"api_key"`
	GeminiAPIKey string  `mapstructure:"gemini_api_key"`
	Temperature  float64 `mapstructure:"temperature"`
	StrictSchema bool    `mapstructure:"strict_schema"`
}

// Key returns the credential for the selected provider.
func (c LLMConfig) Key() string {
	if c.Provider == "gemini" {
		return c.GeminiAPIKey
	}
	return c.APIKey
}

// AnalysisConfig controls the extraction call.
type AnalysisConfig struct {
	Language string        `mapstructure:"language"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Tier     string        `mapstructure:"tier"`
}

// DatabaseConfig selects the report archive. An empty URL keeps reports in memory.
type DatabaseConfig struct {
	URL         string `mapstructure:"url"`
	MemoryLimit int    `mapstructure:"memory_limit"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// envAliases binds keys to the conventional variable names used by the
// upstream services, after the BRAND_ name.
var envAliases = map[string][]string{
	"reader.api_key":        {"JINA_API_KEY"},
	"search.api_key":        {"JINA_API_KEY"},
	"search.google_api_key": {"GOOGLE_SEARCH_API_KEY"},
	"search.google_cx":      {"GOOGLE_SEARCH_CX"},
	"llm.api_key":           {"KIMI_API_KEY", "LLM_API_KEY"},
	"llm.gemini_api_key":    {"GEMINI_API_KEY"},
	"database.url":          {"DATABASE_URL"},
}

// Load builds a Config. An empty path searches ./config.yaml,
// /etc/brand-analyzer/config.yaml and $HOME/.brand-analyzer/config.yaml;
// a missing file is not an error unless path was given.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	for key, aliases := range envAliases {
		names := append([]string{EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, aliases...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/brand-analyzer/")
		v.AddConfigPath("$HOME/.brand-analyzer")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 300*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.api_keys", "")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.default_limit", 600)
	v.SetDefault("rate_limit.default_window", time.Minute)
	v.SetDefault("rate_limit.whitelist", "")
	v.SetDefault("rate_limit.blacklist", "")

	v.SetDefault("reader.mode", ReaderModeService)
	v.SetDefault("reader.endpoint", "https://r.jina.ai/")
	v.SetDefault("reader.api_key", "")
	v.SetDefault("reader.user_agent", "")

	v.SetDefault("crawl.budget", 30000)
	v.SetDefault("crawl.homepage_cap", 8000)
	v.SetDefault("crawl.homepage_timeout", 20*time.Second)
	v.SetDefault("crawl.candidate_cap", 3000)
	v.SetDefault("crawl.candidate_timeout", 8*time.Second)
	v.SetDefault("crawl.concurrency", 0)

	v.SetDefault("search.endpoint", "https://s.jina.ai/")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.timeout", 15*time.Second)
	v.SetDefault("search.duckduckgo_endpoint", "https://html.duckduckgo.com/html/")
	v.SetDefault("search.duckduckgo_timeout", 10*time.Second)
	v.SetDefault("search.google_api_key", "")
	v.SetDefault("search.google_cx", "")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.strict_schema", false)

	v.SetDefault("analysis.language", "Traditional Chinese")
	v.SetDefault("analysis.timeout", 90*time.Second)
	v.SetDefault("analysis.tier", "standard")

	v.SetDefault("database.url", "")
	v.SetDefault("database.memory_limit", 200)

	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits. Missing
// credentials are not errors here; they surface per request.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Reader.Mode != ReaderModeService && c.Reader.Mode != ReaderModeDirect {
		return fmt.Errorf("reader.mode must be %q or %q", ReaderModeService, ReaderModeDirect)
	}
	if c.Crawl.Budget <= 0 || c.Crawl.HomepageCap <= 0 || c.Crawl.CandidateCap <= 0 {
		return fmt.Errorf("crawl.budget and crawl caps must be > 0")
	}
	if c.Crawl.HomepageTimeout <= 0 || c.Crawl.CandidateTimeout <= 0 {
		return fmt.Errorf("crawl timeouts must be > 0")
	}
	if c.Crawl.Concurrency < 0 {
		return fmt.Errorf("crawl.concurrency must be >= 0")
	}
	if c.Search.Timeout <= 0 || c.Search.DuckDuckGoTimeout <= 0 {
		return fmt.Errorf("search timeouts must be > 0")
	}
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("llm.provider must be \"openai\" or \"gemini\", got %q", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}
	switch c.Analysis.Tier {
	case "lite", "standard", "advanced":
	default:
		return fmt.Errorf("analysis.tier must be lite, standard or advanced")
	}
	if c.Analysis.Timeout <= 0 {
		return fmt.Errorf("analysis.timeout must be > 0")
	}
	if c.Database.MemoryLimit < 0 {
		return fmt.Errorf("database.memory_limit must be >= 0")
	}
	if c.RateLimit.Enabled && (c.RateLimit.DefaultLimit <= 0 || c.RateLimit.DefaultWindow <= 0) {
		return fmt.Errorf("rate_limit.default_limit and rate_limit.default_window must be > 0")
	}
	return nil
}
