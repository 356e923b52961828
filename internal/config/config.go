package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/baalimago/webagent/internal/search"
	"github.com/baalimago/webagent/internal/vendors"
	"github.com/joho/godotenv"
)

const (
	FileName = "config.json"
	appDir   = "webagent"
)

// Config of the server and the terminal shell. Credentials are never
// stored here, they are read from the environment.
type Config struct {
	Listen              string `json:"listen"`
	DefaultModel        string `json:"default-model"`
	SearchProvider      string `json:"search-provider"`
	SearchMaxResults    int    `json:"search-max-results"`
	FetchPageRunes      int    `json:"fetch-page-runes"`
	MaxIterations       int    `json:"max-iterations"`
	ToolOutputRuneLimit int    `json:"tool-output-rune-limit"`
	SessionTTL          string `json:"session-ttl"`
	EnableMCP           bool   `json:"enable-mcp"`
}

var Default = Config{
	Listen:              ":8501",
	DefaultModel:        string(vendors.DefaultChoice),
	SearchProvider:      "duckduckgo",
	SearchMaxResults:    10,
	FetchPageRunes:      3000,
	MaxIterations:       10,
	ToolOutputRuneLimit: 21600,
	SessionTTL:          "24h",
}

// ConfigurationWarning is a problem which is reported, but never stops the
// program.
type ConfigurationWarning struct {
	Err error
}

func (w *ConfigurationWarning) Error() string {
	return fmt.Sprintf("configuration warning: %v", w.Err)
}

func (w *ConfigurationWarning) Unwrap() error {
	return w.Err
}

// Dir returns the directory holding the config file, WEBAGENT_CONFIG_DIR if
// set, otherwise <UserConfigDir>/webagent.
func Dir() (string, error) {
	if d := os.Getenv("WEBAGENT_CONFIG_DIR"); d != "" {
		return filepath.Join(d, appDir), nil
	}
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(cfg, appDir), nil
}

// Load the config within dir, creating it with Default if missing.
func Load(dir string) (Config, error) {
	dflt := Default
	conf, err := LoadConfigFromFile(dir, FileName, &dflt)
	if err != nil {
		return Default, err
	}
	if err := conf.Validate(); err != nil {
		return Default, fmt.Errorf("invalid config '%v': %w", filepath.Join(dir, FileName), err)
	}
	return conf, nil
}

func (c Config) Validate() error {
	if _, err := vendors.ParseChoice(c.DefaultModel); err != nil {
		return err
	}
	if _, err := search.New(c.SearchProvider, nil); err != nil && !errors.Is(err, search.ErrMissingKey) {
		return err
	}
	if _, err := c.TTL(); err != nil {
		return err
	}
	if c.SearchMaxResults < 0 || c.FetchPageRunes < 0 || c.MaxIterations < 0 || c.ToolOutputRuneLimit < 0 {
		return errors.New("numeric options must not be negative")
	}
	return nil
}

// Model returns the parsed default model.
func (c Config) Model() vendors.Choice {
	m, err := vendors.ParseChoice(c.DefaultModel)
	if err != nil {
		return vendors.DefaultChoice
	}
	return m
}

func (c Config) TTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil {
		return 0, fmt.Errorf("failed to parse session-ttl: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("session-ttl must be positive, got: %v", d)
	}
	return d, nil
}

// LoadDotEnv loads path into the environment. Variables already set are
// kept. A missing or broken file yields a ConfigurationWarning.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		return &ConfigurationWarning{Err: fmt.Errorf("failed to load '%v', make sure to set your environment variables manually: %w", path, err)}
	}
	return nil
}
