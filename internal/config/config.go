// Package config handles user configuration for tarschat.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/evolvenxt/tarschat/internal/models"
)

// EnvPrefix is prepended to every environment override, e.g. TARSCHAT_API_BASE_URL.
const EnvPrefix = "TARSCHAT"

// DefaultRequestTimeoutSeconds mirrors the API client's default transport timeout.
const DefaultRequestTimeoutSeconds = 300

// MarkdownConfig configures markdown rendering of model replies
type MarkdownConfig struct {
	Style            string `json:"style" mapstructure:"style"` // glamour style name
	EnableEmoji      bool   `json:"enable_emoji" mapstructure:"enable_emoji"`
	PreserveNewLines bool   `json:"preserve_newlines" mapstructure:"preserve_newlines"`
	TableWrap        bool   `json:"table_wrap" mapstructure:"table_wrap"`
}

// Config represents the user configuration
type Config struct {
	APIBaseURL string `json:"api_base_url" mapstructure:"api_base_url"`
	// Dataset is the selection active when a chat starts. Empty means TARS.
	Dataset string `json:"dataset" mapstructure:"dataset"`
	// RequestTimeoutSeconds bounds a single POST including reading the body.
	RequestTimeoutSeconds int            `json:"request_timeout_seconds" mapstructure:"request_timeout_seconds"`
	CopyToClipboard       bool           `json:"copy_to_clipboard" mapstructure:"copy_to_clipboard"`
	TUITheme              string         `json:"tui_theme,omitempty" mapstructure:"tui_theme"`
	LogLevel              string         `json:"log_level" mapstructure:"log_level"`
	LogFile               string         `json:"log_file,omitempty" mapstructure:"log_file"`
	Markdown              MarkdownConfig `json:"markdown" mapstructure:"markdown"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		APIBaseURL:            "http://localhost:8000",
		Dataset:               "",
		RequestTimeoutSeconds: DefaultRequestTimeoutSeconds,
		CopyToClipboard:       false,
		TUITheme:              "tokyonight",
		LogLevel:              "info",
		Markdown:              DefaultMarkdownConfig(),
	}
}

// DatasetSelection returns the configured dataset, falling back to TARS
// when the stored name is not recognised.
func (c Config) DatasetSelection() models.Dataset {
	ds, ok := models.ParseDataset(c.Dataset)
	if !ok {
		return models.DatasetNone
	}
	return ds
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".tarschat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the log file path, honouring an explicit log_file setting.
func GetLogPath(cfg Config) (string, error) {
	if cfg.LogFile != "" {
		return cfg.LogFile, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "tarschat.log"), nil
}

// newViper builds a viper instance with defaults and, when withEnv is set,
// TARSCHAT_* environment bindings. Every key has a default so AutomaticEnv
// also applies to Unmarshal.
func newViper(withEnv bool) *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")

	def := DefaultConfig()
	v.SetDefault("api_base_url", def.APIBaseURL)
	v.SetDefault("dataset", def.Dataset)
	v.SetDefault("request_timeout_seconds", def.RequestTimeoutSeconds)
	v.SetDefault("copy_to_clipboard", def.CopyToClipboard)
	v.SetDefault("tui_theme", def.TUITheme)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("markdown.style", def.Markdown.Style)
	v.SetDefault("markdown.enable_emoji", def.Markdown.EnableEmoji)
	v.SetDefault("markdown.preserve_newlines", def.Markdown.PreserveNewLines)
	v.SetDefault("markdown.table_wrap", def.Markdown.TableWrap)

	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
		// TARSCHAT_THEME is shorter than TARSCHAT_TUI_THEME and is what users reach for
		_ = v.BindEnv("tui_theme", EnvPrefix+"_TUI_THEME", EnvPrefix+"_THEME")
	}
	return v
}

// LoadConfig loads the configuration from disk and the environment
func LoadConfig() (Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom loads the configuration from path. A missing file is not an
// error; defaults and environment overrides still apply.
func LoadConfigFrom(path string) (Config, error) {
	return load(path, true)
}

// LoadFileConfig loads only what the file at path holds, on top of the
// defaults. Environment overrides are ignored, so the result is safe to
// modify and write back with SaveConfigTo.
func LoadFileConfig(path string) (Config, error) {
	return load(path, false)
}

func load(path string, withEnv bool) (Config, error) {
	v := newViper(withEnv)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		cfg.RequestTimeoutSeconds = DefaultRequestTimeoutSeconds
	}
	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}
	return SaveConfigTo(filepath.Join(configDir, "config.json"), cfg)
}

// SaveConfigTo writes cfg as indented JSON to path, creating its directory.
func SaveConfigTo(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Keys lists the settings accepted by Set, in display order.
func Keys() []string {
	return []string{
		"api_base_url",
		"dataset",
		"request_timeout_seconds",
		"copy_to_clipboard",
		"tui_theme",
		"log_level",
		"log_file",
		"markdown.style",
	}
}

// Set updates a single setting by key, validating the value.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "api_base_url":
		c.APIBaseURL = value
	case "dataset":
		ds, ok := models.ParseDataset(value)
		if !ok {
			return fmt.Errorf("unknown dataset %q (use none, DS-1 or DS-2)", value)
		}
		c.Dataset = string(ds)
	case "request_timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("request_timeout_seconds must be a positive integer, got %q", value)
		}
		c.RequestTimeoutSeconds = n
	case "copy_to_clipboard":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("copy_to_clipboard must be true or false, got %q", value)
		}
		c.CopyToClipboard = b
	case "tui_theme":
		c.TUITheme = value
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(value)
		default:
			return fmt.Errorf("unknown log level %q", value)
		}
	case "log_file":
		c.LogFile = value
	case "markdown.style":
		c.Markdown.Style = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// Get returns the string form of a setting.
func (c Config) Get(key string) (string, error) {
	switch key {
	case "api_base_url":
		return c.APIBaseURL, nil
	case "dataset":
		return c.DatasetSelection().DisplayName(), nil
	case "request_timeout_seconds":
		return strconv.Itoa(c.RequestTimeoutSeconds), nil
	case "copy_to_clipboard":
		return strconv.FormatBool(c.CopyToClipboard), nil
	case "tui_theme":
		return c.TUITheme, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_file":
		return c.LogFile, nil
	case "markdown.style":
		return c.Markdown.Style, nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}
