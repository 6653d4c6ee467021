package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/wikimark/api"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			config:  Config{URL: "https://wiki.example.org", APIToken: "token123"},
			wantErr: false,
		},
		{
			name:    "plain http allowed for local wikis",
			config:  Config{URL: "http://localhost:8000"},
			wantErr: false,
		},
		{
			name:    "missing URL",
			config:  Config{APIToken: "token123"},
			wantErr: true,
			errMsg:  "url is required",
		},
		{
			name:    "invalid URL scheme",
			config:  Config{URL: "ftp://wiki.example.org"},
			wantErr: true,
			errMsg:  "url must use http or https",
		},
		{
			name: "bad thumbnail size",
			config: Config{
				URL:            "https://wiki.example.org",
				ThumbnailSizes: map[string]string{"huge": "big"},
			},
			wantErr: true,
			errMsg:  `thumbnail size "huge"`,
		},
		{
			name: "empty thumbnail size means original",
			config: Config{
				URL:            "https://wiki.example.org",
				ThumbnailSizes: map[string]string{"orig": ""},
			},
			wantErr: false,
		},
		{
			name: "negative rate",
			config: Config{
				URL:    "https://wiki.example.org",
				PubMed: PubMedConfig{Rate: -1},
			},
			wantErr: true,
			errMsg:  "pubmed.rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	t.Run("empty config", func(t *testing.T) {
		cfg := &Config{URL: "https://wiki.example.org/"}
		cfg.ApplyDefaults()

		assert.Equal(t, api.DefaultAssetsPath, cfg.AssetPath)
		assert.Equal(t, "https://wiki.example.org", cfg.AssetDomain)
		assert.Equal(t, api.DefaultPubMedURL, cfg.PubMed.URL)
		assert.Equal(t, api.PubMedRateLimit, cfg.PubMed.Rate)
	})

	t.Run("api key raises rate", func(t *testing.T) {
		cfg := &Config{PubMed: PubMedConfig{APIKey: "k"}}
		cfg.ApplyDefaults()
		assert.Equal(t, api.PubMedRateLimitWithKey, cfg.PubMed.Rate)
	})

	t.Run("explicit values kept", func(t *testing.T) {
		cfg := &Config{
			AssetDomain: "https://cdn.example.org",
			AssetPath:   "/assets/",
			PubMed:      PubMedConfig{URL: "http://localhost", Rate: 1},
		}
		cfg.ApplyDefaults()
		assert.Equal(t, "https://cdn.example.org", cfg.AssetDomain)
		assert.Equal(t, "/assets/", cfg.AssetPath)
		assert.Equal(t, "http://localhost", cfg.PubMed.URL)
		assert.Equal(t, 1.0, cfg.PubMed.Rate)
	})
}

func TestConfig_Sizes(t *testing.T) {
	cfg := &Config{ThumbnailSizes: map[string]string{"Small": "100x100", "banner": "900x200"}}
	sizes := cfg.Sizes()

	assert.Equal(t, "100x100", sizes["small"])
	assert.Equal(t, "900x200", sizes["banner"])
	assert.Equal(t, "250x250", sizes["default"])
	assert.Equal(t, "", sizes["orig"])
}

func TestConfig_NormalizeURL(t *testing.T) {
	cfg := Config{URL: "https://wiki.example.org/"}
	cfg.NormalizeURL()
	assert.Equal(t, "https://wiki.example.org", cfg.URL)
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Run("loads all env vars", func(t *testing.T) {
		t.Setenv("WMK_URL", "https://env.example.org")
		t.Setenv("WMK_API_TOKEN", "env-token")
		t.Setenv("WMK_ASSET_DOMAIN", "https://cdn.example.org")
		t.Setenv("WMK_PUBMED_API_KEY", "ncbi-key")
		t.Setenv("WMK_PUBMED_EMAIL", "me@example.org")
		t.Setenv("WMK_PUBMED_RATE", "5")
		t.Setenv("WMK_LOG_LEVEL", "debug")
		t.Setenv("WMK_LOG_FORMAT", "json")

		cfg := &Config{}
		cfg.LoadFromEnv()

		assert.Equal(t, "https://env.example.org", cfg.URL)
		assert.Equal(t, "env-token", cfg.APIToken)
		assert.Equal(t, "https://cdn.example.org", cfg.AssetDomain)
		assert.Equal(t, "ncbi-key", cfg.PubMed.APIKey)
		assert.Equal(t, "me@example.org", cfg.PubMed.Email)
		assert.Equal(t, 5.0, cfg.PubMed.Rate)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
	})

	t.Run("empty env vars do not override", func(t *testing.T) {
		t.Setenv("WMK_URL", "https://override.example.org")
		t.Setenv("WMK_API_TOKEN", "")
		t.Setenv("WMK_PUBMED_RATE", "fast")

		cfg := &Config{
			URL:      "https://original.example.org",
			APIToken: "original",
			PubMed:   PubMedConfig{Rate: 2},
		}
		cfg.LoadFromEnv()

		assert.Equal(t, "https://override.example.org", cfg.URL)
		assert.Equal(t, "original", cfg.APIToken)
		assert.Equal(t, 2.0, cfg.PubMed.Rate)
	})

	t.Run("NCBI fallback", func(t *testing.T) {
		t.Setenv("WMK_PUBMED_API_KEY", "")
		t.Setenv("NCBI_API_KEY", "shared-key")

		cfg := &Config{}
		cfg.LoadFromEnv()
		assert.Equal(t, "shared-key", cfg.PubMed.APIKey)
	})
}

func TestDefaultConfigPath(t *testing.T) {
	t.Run("XDG config home", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
		assert.Equal(t, filepath.Join("/tmp/xdg", "wmk", "config.yml"), DefaultConfigPath())
	})

	t.Run("home directory", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, err := os.UserHomeDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".config", "wmk", "config.yml"), DefaultConfigPath())
	})
}

func TestConfig_Save_and_Load(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yml")

	original := Config{
		URL:            "https://wiki.example.org",
		APIToken:       "test-token",
		AssetDomain:    "https://cdn.example.org",
		ThumbnailSizes: map[string]string{"banner": "900x200"},
		PubMed:         PubMedConfig{APIKey: "key", Email: "me@example.org", Rate: 10},
		Log:            LogConfig{Level: "info", Format: "json"},
		OutputFormat:   "json",
	}

	require.NoError(t, original.Save(configPath))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, original, *loaded)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yml")
	require.Error(t, err)
}

func TestLoadWithEnv(t *testing.T) {
	t.Run("missing file starts empty", func(t *testing.T) {
		t.Setenv("WMK_URL", "https://env.example.org/")

		cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yml"))
		require.NoError(t, err)
		assert.Equal(t, "https://env.example.org", cfg.URL)
		assert.Equal(t, "https://env.example.org", cfg.AssetDomain)
		assert.Equal(t, api.DefaultPubMedURL, cfg.PubMed.URL)
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("url: [unterminated"), 0600))

		_, err := LoadWithEnv(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}

func TestGetEnvWithFallback(t *testing.T) {
	t.Run("returns primary when set", func(t *testing.T) {
		t.Setenv("TEST_PRIMARY", "primary-value")
		t.Setenv("TEST_FALLBACK", "fallback-value")
		assert.Equal(t, "primary-value", getEnvWithFallback("TEST_PRIMARY", "TEST_FALLBACK"))
	})

	t.Run("returns fallback when primary empty", func(t *testing.T) {
		t.Setenv("TEST_PRIMARY", "")
		t.Setenv("TEST_FALLBACK", "fallback-value")
		assert.Equal(t, "fallback-value", getEnvWithFallback("TEST_PRIMARY", "TEST_FALLBACK"))
	})

	t.Run("returns empty when both empty", func(t *testing.T) {
		t.Setenv("TEST_PRIMARY", "")
		t.Setenv("TEST_FALLBACK", "")
		assert.Equal(t, "", getEnvWithFallback("TEST_PRIMARY", "TEST_FALLBACK"))
	})
}
