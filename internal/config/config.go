// Package config provides configuration management for wmk.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/open-cli-collective/wikimark/api"
	"github.com/open-cli-collective/wikimark/pkg/md"
)

var sizePattern = regexp.MustCompile(`^\d+x\d+$`)

// Config holds the wmk configuration.
type Config struct {
	URL            string            `yaml:"url"`
	APIToken       string            `yaml:"api_token,omitempty"`
	AssetDomain    string            `yaml:"asset_domain,omitempty"`
	AssetPath      string            `yaml:"asset_path,omitempty"`
	ThumbnailSizes map[string]string `yaml:"thumbnail_sizes,omitempty"`
	PubMed         PubMedConfig      `yaml:"pubmed,omitempty"`
	Log            LogConfig         `yaml:"log,omitempty"`
	OutputFormat   string            `yaml:"output_format,omitempty"`
}

// PubMedConfig configures the NCBI E-utilities client.
type PubMedConfig struct {
	URL    string  `yaml:"url,omitempty"`
	APIKey string  `yaml:"api_key,omitempty"`
	Email  string  `yaml:"email,omitempty"`
	Rate   float64 `yaml:"rate,omitempty"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// ApplyDefaults fills unset optional fields.
func (c *Config) ApplyDefaults() {
	if c.AssetPath == "" {
		c.AssetPath = api.DefaultAssetsPath
	}
	if c.AssetDomain == "" {
		c.AssetDomain = strings.TrimSuffix(c.URL, "/")
	}
	if c.PubMed.URL == "" {
		c.PubMed.URL = api.DefaultPubMedURL
	}
	if c.PubMed.Rate == 0 {
		if c.PubMed.APIKey != "" {
			c.PubMed.Rate = api.PubMedRateLimitWithKey
		} else {
			c.PubMed.Rate = api.PubMedRateLimit
		}
	}
}

// Sizes returns the thumbnail size table, user entries layered over the defaults.
func (c *Config) Sizes() map[string]string {
	sizes := make(map[string]string, len(md.DefaultThumbnailSizes)+len(c.ThumbnailSizes))
	for name, dim := range md.DefaultThumbnailSizes {
		sizes[name] = dim
	}
	for name, dim := range c.ThumbnailSizes {
		sizes[strings.ToLower(name)] = dim
	}
	return sizes
}

// Validate checks that all required fields are present and valid.
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("url is required")
	}

	if !strings.HasPrefix(c.URL, "https://") && !strings.HasPrefix(c.URL, "http://") {
		return errors.New("url must use http or https")
	}

	for name, dim := range c.ThumbnailSizes {
		if dim != "" && !sizePattern.MatchString(dim) {
			return fmt.Errorf("thumbnail size %q must be WIDTHxHEIGHT, got %q", name, dim)
		}
	}

	if c.PubMed.Rate < 0 {
		return errors.New("pubmed.rate must not be negative")
	}

	return nil
}

// NormalizeURL strips the trailing slash from the wiki URL.
func (c *Config) NormalizeURL() {
	c.URL = strings.TrimSuffix(c.URL, "/")
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
// Precedence: WMK_* → NCBI_* (PubMed only) → existing config value
func (c *Config) LoadFromEnv() {
	if url := os.Getenv("WMK_URL"); url != "" {
		c.URL = url
	}
	if token := os.Getenv("WMK_API_TOKEN"); token != "" {
		c.APIToken = token
	}
	if domain := os.Getenv("WMK_ASSET_DOMAIN"); domain != "" {
		c.AssetDomain = domain
	}
	if key := getEnvWithFallback("WMK_PUBMED_API_KEY", "NCBI_API_KEY"); key != "" {
		c.PubMed.APIKey = key
	}
	if email := getEnvWithFallback("WMK_PUBMED_EMAIL", "NCBI_EMAIL"); email != "" {
		c.PubMed.Email = email
	}
	if rate := os.Getenv("WMK_PUBMED_RATE"); rate != "" {
		if v, err := strconv.ParseFloat(rate, 64); err == nil {
			c.PubMed.Rate = v
		}
	}
	if level := os.Getenv("WMK_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if format := os.Getenv("WMK_LOG_FORMAT"); format != "" {
		c.Log.Format = format
	}
}

// getEnvWithFallback returns the value of the primary env var, or the fallback if primary is empty.
func getEnvWithFallback(primary, fallback string) string {
	if v := os.Getenv(primary); v != "" {
		return v
	}
	return os.Getenv(fallback)
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	// Try XDG config directory first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "wmk", "config.yml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".wmk", "config.yml")
	}

	return filepath.Join(home, ".config", "wmk", "config.yml")
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with restricted permissions (user read/write only)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnv loads configuration from file, overrides with environment
// variables and fills defaults.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = &Config{}
	}

	cfg.LoadFromEnv()
	cfg.NormalizeURL()
	cfg.ApplyDefaults()
	return cfg, nil
}
