package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "CONTENT_MACHINE_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	llmAPIKeyEnv      = "LLM_API_KEY"
	llmModelEnv       = "LLM_MODEL"
	llmEndpointEnv    = "LLM_ENDPOINT"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "LOG_LEVEL"
	githubTokenEnv    = "GITHUB_TOKEN"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	LLM           LLMConfig          `yaml:"llm"`
	Sources       []SourceConfig     `yaml:"sources"`
	Generation    GenerationConfig   `yaml:"generation"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Credentials   CredentialsConfig  `yaml:"credentials"`
}

// LoggingConfig sets the slog level: error, warn, info or debug.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN keeps
// published content in memory.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// LLMConfig defines how to contact the OpenAI-compatible completions API.
type LLMConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	Model        string        `yaml:"model"`
	APIKey       string        `yaml:"apiKey"`
	SystemPrompt string        `yaml:"systemPrompt"`
	Timeout      time.Duration `yaml:"timeout"`
}

// SourceConfig describes one source and the collector that reads it.
type SourceConfig struct {
	Name      string            `yaml:"name"`
	Collector string            `yaml:"collector"`
	FocusHint string            `yaml:"focusHint"`
	Limit     int               `yaml:"limit"`
	Options   map[string]string `yaml:"options"`
}

// GenerationConfig controls article generation and the published metadata.
type GenerationConfig struct {
	Workers int    `yaml:"workers"`
	Author  string `yaml:"author"`
	SiteURL string `yaml:"siteUrl"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SchedulerConfig defines how often the schedule command starts a run.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// CredentialsConfig holds optional collector API keys.
type CredentialsConfig struct {
	GitHubToken      string `yaml:"githubToken"`
	StackExchangeKey string `yaml:"stackExchangeKey"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		fileCfg, err := ReadFile(path)
		if err != nil {
			log.Printf("config: %v (falling back to defaults)", err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides(os.Getenv)

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

// ReadFile parses a YAML config file without applying defaults.
func ReadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every setting that would make a run fail up front.
func (c Config) Validate() error {
	var errs []error

	seen := map[string]struct{}{}
	for i, src := range c.Sources {
		if src.Name == "" {
			errs = append(errs, fmt.Errorf("sources[%d]: name is required", i))
		}
		if src.Collector == "" {
			errs = append(errs, fmt.Errorf("sources[%d]: collector is required", i))
		}
		if _, dup := seen[src.Name]; dup && src.Name != "" {
			errs = append(errs, fmt.Errorf("sources[%d]: duplicate name %q", i, src.Name))
		}
		seen[src.Name] = struct{}{}
		if src.Limit < 0 {
			errs = append(errs, fmt.Errorf("sources[%d]: limit must not be negative", i))
		}
	}

	if c.LLM.Endpoint == "" || c.LLM.Model == "" {
		errs = append(errs, errors.New("llm: endpoint and model are required"))
	}
	if c.LLM.APIKey == "" {
		errs = append(errs, fmt.Errorf("llm: apiKey is required (or set %s)", llmAPIKeyEnv))
	}
	if c.Generation.Workers < 0 {
		errs = append(errs, errors.New("generation: workers must not be negative"))
	}
	if c.Scheduler.Interval < 0 {
		errs = append(errs, errors.New("scheduler: interval must not be negative"))
	}

	return errors.Join(errs...)
}

func (c *Config) applyEnvOverrides(getenv func(string) string) {
	if v := getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := getenv(llmAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}

	if v := getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}

	if v := getenv(llmEndpointEnv); v != "" {
		c.LLM.Endpoint = v
	}

	if v := getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := getenv(githubTokenEnv); v != "" {
		c.Credentials.GitHubToken = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.SystemPrompt != "" {
		base.LLM.SystemPrompt = override.LLM.SystemPrompt
	}
	if override.LLM.Timeout > 0 {
		base.LLM.Timeout = override.LLM.Timeout
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	if override.Generation.Workers > 0 {
		base.Generation.Workers = override.Generation.Workers
	}
	if override.Generation.Author != "" {
		base.Generation.Author = override.Generation.Author
	}
	if override.Generation.SiteURL != "" {
		base.Generation.SiteURL = override.Generation.SiteURL
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}

	if override.Credentials.GitHubToken != "" {
		base.Credentials.GitHubToken = override.Credentials.GitHubToken
	}
	if override.Credentials.StackExchangeKey != "" {
		base.Credentials.StackExchangeKey = override.Credentials.StackExchangeKey
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		LLM: LLMConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
			Timeout:  2 * time.Minute,
		},
		Sources: []SourceConfig{
			{Name: "github", Collector: "github"},
			{Name: "hackernews", Collector: "hackernews"},
			{Name: "reddit", Collector: "reddit", Options: map[string]string{"subreddit": "golang"}},
			{Name: "stackoverflow", Collector: "stackexchange", Options: map[string]string{"site": "stackoverflow", "tagged": "go"}},
		},
		Generation: GenerationConfig{Workers: 1, Author: "Content Machine"},
		Scheduler:  SchedulerConfig{Interval: 24 * time.Hour},
	}
}
