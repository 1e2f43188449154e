// Package config provides configuration loading and management for confsum.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AggregationPolicy selects how per-chunk summaries are combined.
type AggregationPolicy string

const (
	// AggregationConcat joins chunk summaries with section separators.
	AggregationConcat AggregationPolicy = "concat"
	// AggregationResummarize issues one extra LLM pass over the joined partials.
	AggregationResummarize AggregationPolicy = "resummarize"
)

// DefaultAPIVersion is the Azure OpenAI API version used when none is configured.
const DefaultAPIVersion = "2024-02-15-preview"

// Config represents the complete confsum configuration.
type Config struct {
	Confluence ConfluenceConfig
	Azure      AzureConfig
	Export     ExportConfig
	Chunking   ChunkingConfig
	Cache      CacheConfig
	Retry      RetryConfig

	// Aggregation selects the chunk summary aggregation policy.
	Aggregation AggregationPolicy

	// PersonaFile is an optional YAML file mapping persona name to system prompt.
	PersonaFile string
}

// ConfluenceConfig holds Confluence connection settings.
type ConfluenceConfig struct {
	// URL is the base URL of the Confluence instance.
	URL string
	// Username is the account email used for basic auth.
	Username string
	// APIToken is the Atlassian API token paired with Username.
	APIToken string
	// SpaceKey is the default space when the summarize command gets no argument.
	SpaceKey string
}

// AzureConfig holds Azure OpenAI settings.
type AzureConfig struct {
	// APIKey authenticates against the Azure OpenAI resource.
	APIKey string
	// Endpoint is the resource endpoint (https://<resource>.openai.azure.com).
	Endpoint string
	// DeploymentName is the chat model deployment to call.
	DeploymentName string
	// APIVersion is the api-version query parameter.
	APIVersion string
	// Temperature controls randomness (0.0-1.0).
	Temperature float64
	// Timeout is the maximum time to wait for one completion.
	Timeout time.Duration
}

// ExportConfig holds summary export settings.
type ExportConfig struct {
	// Dir is the directory summaries are written to.
	Dir string
}

// ChunkingConfig bounds chunk sizes for the target context window.
type ChunkingConfig struct {
	// MaxTokens is the token budget per chunk.
	MaxTokens int
	// OverlapTokens is the shared region between adjacent chunks.
	OverlapTokens int
}

// RetryConfig bounds LLM retry behavior.
type RetryConfig struct {
	// MaxAttempts is the total number of tries per request.
	MaxAttempts int
	// BackoffBase is the first retry delay; later delays grow exponentially.
	BackoffBase time.Duration
}

// CacheConfig bounds the on-disk LLM response cache.
type CacheConfig struct {
	// Dir is the cache directory. Empty disables caching.
	Dir string
	// TTL is how long a cached response stays valid.
	TTL time.Duration
}

// Default returns a Config with sensible defaults. Credentials are left empty
// and must come from the environment.
func Default() *Config {
	return &Config{
		Azure: AzureConfig{
			APIVersion:  DefaultAPIVersion,
			Temperature: 0.7,
			Timeout:     3 * time.Minute,
		},
		Export: ExportConfig{
			Dir: "summaries",
		},
		Chunking: ChunkingConfig{
			MaxTokens:     3000,
			OverlapTokens: 200,
		},
		Cache: CacheConfig{
			TTL: 24 * time.Hour,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BackoffBase: 2 * time.Second,
		},
		Aggregation: AggregationConcat,
	}
}

// requiredVars are the environment variables that must be set before any
// network call is made.
var requiredVars = []string{
	"CONFLUENCE_URL",
	"CONFLUENCE_USERNAME",
	"CONFLUENCE_API_TOKEN",
	"AZURE_OPENAI_API_KEY",
	"AZURE_OPENAI_ENDPOINT",
	"AZURE_OPENAI_DEPLOYMENT_NAME",
}

// FromEnv builds configuration from environment variables, applying defaults
// for optional settings. A local "secrets" file is loaded into the environment
// first when present.
func FromEnv() (*Config, error) {
	LoadSecrets("secrets")

	var missing []string
	for _, v := range requiredVars {
		if os.Getenv(v) == "" {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s "+
			"(create a 'secrets' file with these variables or set them in your environment)",
			strings.Join(missing, ", "))
	}

	cfg := Default()
	cfg.Confluence = ConfluenceConfig{
		URL:      os.Getenv("CONFLUENCE_URL"),
		Username: os.Getenv("CONFLUENCE_USERNAME"),
		APIToken: os.Getenv("CONFLUENCE_API_TOKEN"),
		SpaceKey: os.Getenv("CONFLUENCE_SPACE_KEY"),
	}
	cfg.Azure.APIKey = os.Getenv("AZURE_OPENAI_API_KEY")
	cfg.Azure.Endpoint = os.Getenv("AZURE_OPENAI_ENDPOINT")
	cfg.Azure.DeploymentName = os.Getenv("AZURE_OPENAI_DEPLOYMENT_NAME")
	if v := os.Getenv("AZURE_OPENAI_API_VERSION"); v != "" {
		cfg.Azure.APIVersion = v
	}
	if v := os.Getenv("EXPORT_DIR"); v != "" {
		cfg.Export.Dir = v
	}
	cfg.PersonaFile = PersonaFilePath()
	if v := os.Getenv("CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("AGGREGATION_POLICY"); v != "" {
		cfg.Aggregation = AggregationPolicy(v)
	}
	if v := os.Getenv("CHUNK_MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CHUNK_MAX_TOKENS %q: %w", v, err)
		}
		cfg.Chunking.MaxTokens = n
	}
	if v := os.Getenv("CHUNK_OVERLAP_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CHUNK_OVERLAP_TOKENS %q: %w", v, err)
		}
		cfg.Chunking.OverlapTokens = n
	}
	if v := os.Getenv("LLM_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LLM_MAX_ATTEMPTS %q: %w", v, err)
		}
		cfg.Retry.MaxAttempts = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PersonaFilePath resolves the persona definitions file: PERSONA_FILE wins,
// then a personas.yaml in the working directory, then none (built-ins only).
func PersonaFilePath() string {
	if v := os.Getenv("PERSONA_FILE"); v != "" {
		return v
	}
	if _, err := os.Stat("personas.yaml"); err == nil {
		return "personas.yaml"
	}
	return ""
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Confluence.URL, "http://") && !strings.HasPrefix(c.Confluence.URL, "https://") {
		return fmt.Errorf("confluence URL must start with http:// or https://")
	}
	if !strings.HasPrefix(c.Azure.Endpoint, "http://") && !strings.HasPrefix(c.Azure.Endpoint, "https://") {
		return fmt.Errorf("azure OpenAI endpoint must start with http:// or https://")
	}
	if c.Azure.Temperature < 0 || c.Azure.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0 and 1")
	}
	if c.Chunking.MaxTokens <= 0 {
		return fmt.Errorf("chunk max tokens must be positive, got %d", c.Chunking.MaxTokens)
	}
	if c.Chunking.OverlapTokens < 0 {
		return fmt.Errorf("chunk overlap must not be negative, got %d", c.Chunking.OverlapTokens)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	switch c.Aggregation {
	case AggregationConcat, AggregationResummarize:
	default:
		return fmt.Errorf("unknown aggregation policy %q (want %q or %q)",
			c.Aggregation, AggregationConcat, AggregationResummarize)
	}
	if info, err := os.Stat(c.Export.Dir); err == nil && !info.IsDir() {
		return fmt.Errorf("export directory %s exists but is not a directory", c.Export.Dir)
	}
	return nil
}
