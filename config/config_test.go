package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONFLUENCE_URL", "https://example.atlassian.net")
	t.Setenv("CONFLUENCE_USERNAME", "user@example.com")
	t.Setenv("CONFLUENCE_API_TOKEN", "token")
	t.Setenv("AZURE_OPENAI_API_KEY", "key")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://res.openai.azure.com")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT_NAME", "gpt-4")
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://example.atlassian.net", cfg.Confluence.URL)
	assert.Equal(t, DefaultAPIVersion, cfg.Azure.APIVersion)
	assert.Equal(t, "summaries", cfg.Export.Dir)
	assert.Equal(t, AggregationConcat, cfg.Aggregation)
	assert.Equal(t, 3000, cfg.Chunking.MaxTokens)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
}

func TestFromEnv_MissingVariables(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AZURE_OPENAI_API_KEY", "")
	t.Setenv("CONFLUENCE_API_TOKEN", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AZURE_OPENAI_API_KEY")
	assert.Contains(t, err.Error(), "CONFLUENCE_API_TOKEN")
}

func TestFromEnv_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AZURE_OPENAI_API_VERSION", "2024-06-01")
	t.Setenv("EXPORT_DIR", "out")
	t.Setenv("AGGREGATION_POLICY", "resummarize")
	t.Setenv("CHUNK_MAX_TOKENS", "500")
	t.Setenv("CHUNK_OVERLAP_TOKENS", "50")
	t.Setenv("LLM_MAX_ATTEMPTS", "5")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", cfg.Azure.APIVersion)
	assert.Equal(t, "out", cfg.Export.Dir)
	assert.Equal(t, AggregationResummarize, cfg.Aggregation)
	assert.Equal(t, 500, cfg.Chunking.MaxTokens)
	assert.Equal(t, 50, cfg.Chunking.OverlapTokens)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
}

func TestPersonaFilePath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PERSONA_FILE", "")
	t.Chdir(dir)

	assert.Empty(t, PersonaFilePath())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "personas.yaml"), []byte("a: b\n"), 0644))
	assert.Equal(t, "personas.yaml", PersonaFilePath())

	t.Setenv("PERSONA_FILE", "/etc/confsum/personas.yaml")
	assert.Equal(t, "/etc/confsum/personas.yaml", PersonaFilePath())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad confluence url",
			mutate:  func(c *Config) { c.Confluence.URL = "example.atlassian.net" },
			wantErr: "http",
		},
		{
			name:    "bad endpoint",
			mutate:  func(c *Config) { c.Azure.Endpoint = "res.openai.azure.com" },
			wantErr: "endpoint",
		},
		{
			name:    "bad aggregation",
			mutate:  func(c *Config) { c.Aggregation = "merge" },
			wantErr: "aggregation",
		},
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.Chunking.MaxTokens = 0 },
			wantErr: "max tokens",
		},
		{
			name:    "negative overlap",
			mutate:  func(c *Config) { c.Chunking.OverlapTokens = -1 },
			wantErr: "overlap",
		},
		{
			name:    "zero retry attempts",
			mutate:  func(c *Config) { c.Retry.MaxAttempts = 0 },
			wantErr: "retry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Confluence.URL = "https://example.atlassian.net"
			cfg.Azure.Endpoint = "https://res.openai.azure.com"
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ExportDirIsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "summaries")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	cfg := Default()
	cfg.Confluence.URL = "https://example.atlassian.net"
	cfg.Azure.Endpoint = "https://res.openai.azure.com"
	cfg.Export.Dir = file

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestLoadSecrets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "secrets")
	content := "# comment\n\nCONFSUM_TEST_A=alpha\nCONFSUM_TEST_B = beta \nmalformed line\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	t.Setenv("CONFSUM_TEST_A", "")
	t.Setenv("CONFSUM_TEST_B", "")
	os.Unsetenv("CONFSUM_TEST_A")
	os.Unsetenv("CONFSUM_TEST_B")

	LoadSecrets(path)
	assert.Equal(t, "alpha", os.Getenv("CONFSUM_TEST_A"))
	assert.Equal(t, "beta", os.Getenv("CONFSUM_TEST_B"))
}

func TestLoadSecrets_EnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "secrets")
	require.NoError(t, os.WriteFile(path, []byte("CONFSUM_TEST_C=file"), 0600))

	t.Setenv("CONFSUM_TEST_C", "env")
	LoadSecrets(path)
	assert.Equal(t, "env", os.Getenv("CONFSUM_TEST_C"))
}
