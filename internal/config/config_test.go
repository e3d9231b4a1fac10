package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
logging:
  level: debug
llm:
  model: local-model
  timeout: 30s
sources:
  - name: go-reddit
    collector: reddit
    focusHint: generics
    limit: 10
    options:
      subreddit: golang
generation:
  workers: 3
  siteUrl: https://blog.example.com
scheduler:
  interval: 6h
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MergesFileOntoDefaults(t *testing.T) {
	t.Setenv(configPathEnv, writeConfig(t, sampleYAML))
	for _, key := range []string{llmAPIKeyEnv, llmModelEnv, llmEndpointEnv, databaseDSNEnv, logLevelEnv} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "local-model", cfg.LLM.Model)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", cfg.LLM.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "go-reddit", cfg.Sources[0].Name)
	assert.Equal(t, 10, cfg.Sources[0].Limit)
	assert.Equal(t, "golang", cfg.Sources[0].Options["subreddit"])
	assert.Equal(t, 3, cfg.Generation.Workers)
	assert.Equal(t, "Content Machine", cfg.Generation.Author)
	assert.Equal(t, 6*time.Hour, cfg.Scheduler.Interval)
	assert.Empty(t, cfg.Database.DSN)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv(configPathEnv, writeConfig(t, sampleYAML))
	t.Setenv(llmAPIKeyEnv, "sk-env")
	t.Setenv(llmModelEnv, "env-model")
	t.Setenv(databaseDSNEnv, "postgres://localhost/content")
	t.Setenv(logLevelEnv, "warn")
	t.Setenv(githubTokenEnv, "ghp_x")

	cfg := Load()

	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
	assert.Equal(t, "env-model", cfg.LLM.Model)
	assert.Equal(t, "postgres://localhost/content", cfg.Database.DSN)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "ghp_x", cfg.Credentials.GitHubToken)
}

func TestLoad_BrokenFileFallsBackToDefaults(t *testing.T) {
	t.Setenv(configPathEnv, writeConfig(t, "sources: [unterminated"))

	cfg := Load()
	assert.Len(t, cfg.Sources, len(defaultConfig().Sources))
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := defaultConfig()
	valid.LLM.APIKey = "key"
	require.NoError(t, valid.Validate())

	broken := valid
	broken.LLM.APIKey = ""
	broken.Sources = []SourceConfig{
		{Name: "a", Collector: "github"},
		{Name: "a", Collector: "reddit"},
		{Name: "", Collector: ""},
		{Name: "neg", Collector: "github", Limit: -1},
	}
	broken.Generation.Workers = -2

	err := broken.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `duplicate name "a"`)
	assert.Contains(t, msg, "sources[2]: name is required")
	assert.Contains(t, msg, "sources[2]: collector is required")
	assert.Contains(t, msg, "sources[3]: limit must not be negative")
	assert.Contains(t, msg, "apiKey is required")
	assert.Contains(t, msg, "workers must not be negative")
}
