// Package config loads the inboxreview configuration.
//
// Values come from, lowest to highest precedence: built-in defaults, a YAML
// file, INBOXREVIEW_* environment variables and explicitly set CLI flags.
// Nested keys map to environment variables by replacing "." with "_", so
// openai.model is INBOXREVIEW_OPENAI_MODEL.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Supported task backends.
const (
	BackendTodoist = "todoist"
	BackendGTasks  = "gtasks"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "INBOXREVIEW"

// Config is the root configuration. It is built once at startup and passed by
// pointer to every component.
type Config struct {
	// Backend selects the task service: todoist or gtasks.
	Backend string `mapstructure:"backend"`

	// InboxProjectID is the project (or Google task list) holding inbox tasks.
	InboxProjectID string `mapstructure:"inbox_project_id"`

	// ReviewedSectionID is where processed tasks are moved.
	ReviewedSectionID string `mapstructure:"reviewed_section_id"`

	// StrictMove skips the move when the content update failed.
	StrictMove bool `mapstructure:"strict_move"`

	// DryRun fetches and rewrites but never writes back.
	DryRun bool `mapstructure:"dry_run"`

	Todoist     TodoistConfig     `mapstructure:"todoist"`
	OpenAI      OpenAIConfig      `mapstructure:"openai"`
	Rewrite     RewriteConfig     `mapstructure:"rewrite"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	GTasks      GTasksConfig      `mapstructure:"gtasks"`
	Log         LogConfig         `mapstructure:"log"`
}

// TodoistConfig configures the Todoist REST client.
type TodoistConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// OpenAIConfig configures the chat completion client.
type OpenAIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// RewriteConfig controls the rewrite instruction.
type RewriteConfig struct {
	// Language is the translation target.
	Language string `mapstructure:"language"`
	// MaxLength caps the rewritten text, in characters.
	MaxLength int `mapstructure:"max_length"`
	// Instruction replaces the generated system instruction when set.
	Instruction string `mapstructure:"instruction"`
}

// CredentialsConfig names the credentials to look up. The values themselves
// never live in the configuration.
type CredentialsConfig struct {
	TodoistKey string `mapstructure:"todoist_key"`
	OpenAIKey  string `mapstructure:"openai_key"`
	// Dir holds one file per credential.
	Dir string `mapstructure:"dir"`
	// KeyringService is the OS keychain service consulted last.
	KeyringService string `mapstructure:"keyring_service"`
}

// GTasksConfig configures the Google Tasks backend.
type GTasksConfig struct {
	Account string `mapstructure:"account"`
	// TokenDir holds the OAuth token files (default: user cache dir).
	TokenDir string `mapstructure:"token_dir"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: text or json
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Default returns a Config populated with defaults.
func Default() *Config {
	return &Config{
		Backend:           BackendTodoist,
		InboxProjectID:    "2240869572",
		ReviewedSectionID: "185733968",
		Todoist: TodoistConfig{
			BaseURL:           "https://api.todoist.com/rest/v2",
			RequestsPerMinute: 50,
			Timeout:           30 * time.Second,
		},
		OpenAI: OpenAIConfig{
			BaseURL:   "https://api.openai.com/v1",
			Model:     "gpt-4",
			MaxTokens: 256,
			Timeout:   60 * time.Second,
		},
		Rewrite: RewriteConfig{
			Language:  "French",
			MaxLength: 255,
		},
		Credentials: CredentialsConfig{
			TodoistKey:     "TODOIST_API_KEY",
			OpenAIKey:      "OPENAI_API_KEY",
			KeyringService: "inboxreview",
		},
		GTasks: GTasksConfig{Account: "default"},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"backend":     "backend",
	"dry-run":     "dry_run",
	"strict-move": "strict_move",
	"log-level":   "log.level",
	"log-format":  "log.format",
	"log-file":    "log.file",
}

// Load reads configuration from path (if non-empty), otherwise from the
// default location when it exists. Flags that were explicitly set on the
// command line override every other source. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "inboxreview"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("backend", cfg.Backend)
	v.SetDefault("inbox_project_id", cfg.InboxProjectID)
	v.SetDefault("reviewed_section_id", cfg.ReviewedSectionID)
	v.SetDefault("strict_move", cfg.StrictMove)
	v.SetDefault("dry_run", cfg.DryRun)
	v.SetDefault("todoist.base_url", cfg.Todoist.BaseURL)
	v.SetDefault("todoist.requests_per_minute", cfg.Todoist.RequestsPerMinute)
	v.SetDefault("todoist.timeout", cfg.Todoist.Timeout)
	v.SetDefault("openai.base_url", cfg.OpenAI.BaseURL)
	v.SetDefault("openai.model", cfg.OpenAI.Model)
	v.SetDefault("openai.max_tokens", cfg.OpenAI.MaxTokens)
	v.SetDefault("openai.timeout", cfg.OpenAI.Timeout)
	v.SetDefault("rewrite.language", cfg.Rewrite.Language)
	v.SetDefault("rewrite.max_length", cfg.Rewrite.MaxLength)
	v.SetDefault("rewrite.instruction", cfg.Rewrite.Instruction)
	v.SetDefault("credentials.todoist_key", cfg.Credentials.TodoistKey)
	v.SetDefault("credentials.openai_key", cfg.Credentials.OpenAIKey)
	v.SetDefault("credentials.dir", cfg.Credentials.Dir)
	v.SetDefault("credentials.keyring_service", cfg.Credentials.KeyringService)
	v.SetDefault("gtasks.account", cfg.GTasks.Account)
	v.SetDefault("gtasks.token_dir", cfg.GTasks.TokenDir)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
	v.SetDefault("log.max_age_days", cfg.Log.MaxAgeDays)
	v.SetDefault("log.compress", cfg.Log.Compress)
}

// Validate checks the configuration for values no run could succeed with.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case BackendTodoist, BackendGTasks:
	default:
		return fmt.Errorf("invalid backend %q: must be %s or %s", c.Backend, BackendTodoist, BackendGTasks)
	}

	if strings.TrimSpace(c.InboxProjectID) == "" {
		return errors.New("inbox_project_id is required")
	}
	if strings.TrimSpace(c.ReviewedSectionID) == "" {
		return errors.New("reviewed_section_id is required")
	}
	if c.OpenAI.MaxTokens <= 0 {
		return fmt.Errorf("openai.max_tokens must be positive, got %d", c.OpenAI.MaxTokens)
	}
	if c.Rewrite.MaxLength <= 0 {
		return fmt.Errorf("rewrite.max_length must be positive, got %d", c.Rewrite.MaxLength)
	}
	if c.Backend == BackendTodoist && c.Todoist.RequestsPerMinute <= 0 {
		return fmt.Errorf("todoist.requests_per_minute must be positive, got %d", c.Todoist.RequestsPerMinute)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format: %q", c.Log.Format)
	}
	return nil
}

// Settings returns the configuration as a nested map suitable for display.
// Credentials appear by name only.
func (c *Config) Settings() map[string]interface{} {
	return map[string]interface{}{
		"backend":             c.Backend,
		"inbox_project_id":    c.InboxProjectID,
		"reviewed_section_id": c.ReviewedSectionID,
		"strict_move":         c.StrictMove,
		"dry_run":             c.DryRun,
		"todoist": map[string]interface{}{
			"base_url":            c.Todoist.BaseURL,
			"requests_per_minute": c.Todoist.RequestsPerMinute,
			"timeout":             c.Todoist.Timeout.String(),
		},
		"openai": map[string]interface{}{
			"base_url":   c.OpenAI.BaseURL,
			"model":      c.OpenAI.Model,
			"max_tokens": c.OpenAI.MaxTokens,
			"timeout":    c.OpenAI.Timeout.String(),
		},
		"rewrite": map[string]interface{}{
			"language":    c.Rewrite.Language,
			"max_length":  c.Rewrite.MaxLength,
			"instruction": c.Rewrite.Instruction,
		},
		"credentials": map[string]interface{}{
			"todoist_key":     c.Credentials.TodoistKey,
			"openai_key":      c.Credentials.OpenAIKey,
			"dir":             c.Credentials.Dir,
			"keyring_service": c.Credentials.KeyringService,
		},
		"gtasks": map[string]interface{}{
			"account":   c.GTasks.Account,
			"token_dir": c.GTasks.TokenDir,
		},
		"log": map[string]interface{}{
			"level":        c.Log.Level,
			"format":       c.Log.Format,
			"file":         c.Log.File,
			"max_size_mb":  c.Log.MaxSizeMB,
			"max_backups":  c.Log.MaxBackups,
			"max_age_days": c.Log.MaxAgeDays,
			"compress":     c.Log.Compress,
		},
	}
}
