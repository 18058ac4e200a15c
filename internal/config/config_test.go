package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := NewConfig()
	cfg.Entities = []EntityConfig{
		{Name: "Acme Robotics", URL: "https://acme.example.com/about"},
		{Name: "Globex", URL: "http://globex.example.com"},
	}
	return cfg
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		if err := validConfig().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "no entities",
			mutate:  func(c *Config) { c.Entities = nil },
			wantErr: ErrNoEntities,
		},
		{
			name:    "empty entity name",
			mutate:  func(c *Config) { c.Entities[0].Name = "" },
			wantErr: ErrEmptyEntityName,
		},
		{
			name:    "duplicate entity name",
			mutate:  func(c *Config) { c.Entities[1].Name = c.Entities[0].Name },
			wantErr: ErrDuplicateEntityName,
		},
		{
			name:    "relative url",
			mutate:  func(c *Config) { c.Entities[0].URL = "/about" },
			wantErr: ErrInvalidEntityAddress,
		},
		{
			name:    "non-http scheme",
			mutate:  func(c *Config) { c.Entities[0].URL = "ftp://acme.example.com" },
			wantErr: ErrInvalidEntityAddress,
		},
		{
			name:    "empty url",
			mutate:  func(c *Config) { c.Entities[0].URL = "" },
			wantErr: ErrInvalidEntityAddress,
		},
		{
			name:    "threshold zero",
			mutate:  func(c *Config) { c.Threshold = 0 },
			wantErr: ErrInvalidThreshold,
		},
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.Threshold = 1.1 },
			wantErr: ErrInvalidThreshold,
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Concurrency = 0 },
			wantErr: ErrInvalidConcurrency,
		},
		{
			name:    "negative extract timeout",
			mutate:  func(c *Config) { c.ExtractTimeout = -time.Second },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative max body size",
			mutate:  func(c *Config) { c.MaxBodySize = -1 },
			wantErr: ErrInvalidMaxBodySize,
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Embedding.Provider = "openai" },
			wantErr: ErrUnknownEmbeddingProvider,
		},
		{
			name:    "http provider without endpoint",
			mutate:  func(c *Config) { c.Embedding.Provider = "http"; c.Embedding.Endpoint = "" },
			wantErr: ErrMissingEmbeddingEndpoint,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("threshold of exactly one is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Threshold = 1.0
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestApplyFile(t *testing.T) {
	t.Parallel()

	t.Run("file values override defaults", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		err := cfg.ApplyFile(&File{
			Settings: FileSettings{
				Threshold:      0.9,
				ReportsDir:     "./intel",
				Concurrency:    2,
				ExtractTimeout: "10s",
				EmbedTimeout:   "90s",
				UserAgent:      "custom-agent",
			},
			Embedding: EmbeddingConfig{
				Provider: "http",
				Endpoint: "http://localhost:8080",
			},
			Competitors: []EntityConfig{{Name: "Acme", URL: "https://acme.example.com"}},
		})
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Threshold != 0.9 {
			t.Errorf("threshold = %v, want 0.9", cfg.Threshold)
		}
		if cfg.ReportsDir != "./intel" {
			t.Errorf("reportsDir = %q, want ./intel", cfg.ReportsDir)
		}
		if cfg.ExtractTimeout != 10*time.Second {
			t.Errorf("extractTimeout = %v, want 10s", cfg.ExtractTimeout)
		}
		if cfg.EmbedTimeout != 90*time.Second {
			t.Errorf("embedTimeout = %v, want 90s", cfg.EmbedTimeout)
		}
		if cfg.UserAgent != "custom-agent" {
			t.Errorf("userAgent = %q, want custom-agent", cfg.UserAgent)
		}
		if cfg.Embedding.Provider != "http" || cfg.Embedding.Endpoint != "http://localhost:8080" {
			t.Errorf("embedding = %+v, want http provider", cfg.Embedding)
		}
	})

	t.Run("empty file keeps defaults", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		if err := cfg.ApplyFile(&File{}); err != nil {
			t.Fatal(err)
		}
		if cfg.Threshold != DefaultThreshold {
			t.Errorf("threshold = %v, want default %v", cfg.Threshold, DefaultThreshold)
		}
		if cfg.Concurrency != DefaultConcurrency {
			t.Errorf("concurrency = %d, want default %d", cfg.Concurrency, DefaultConcurrency)
		}
		if cfg.Embedding.Provider != DefaultEmbeddingProvider {
			t.Errorf("provider = %q, want default %q", cfg.Embedding.Provider, DefaultEmbeddingProvider)
		}
	})

	t.Run("bad duration is an error", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		err := cfg.ApplyFile(&File{Settings: FileSettings{ExtractTimeout: "soon"}})
		if err == nil {
			t.Error("expected error for bad duration")
		}
	})
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Run("compscan key wins", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "compscan-key")
		t.Setenv(EnvGeminiAPIKey, "gemini-key")

		cfg := NewConfig()
		cfg.Embedding.APIKey = "file-key"
		cfg.ApplyEnvOverrides()
		if cfg.Embedding.APIKey != "compscan-key" {
			t.Errorf("api key = %q, want compscan-key", cfg.Embedding.APIKey)
		}
	})

	t.Run("gemini key applies for gemini provider", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		t.Setenv(EnvGeminiAPIKey, "gemini-key")

		cfg := NewConfig()
		cfg.ApplyEnvOverrides()
		if cfg.Embedding.APIKey != "gemini-key" {
			t.Errorf("api key = %q, want gemini-key", cfg.Embedding.APIKey)
		}
	})

	t.Run("gemini key ignored for http provider", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		t.Setenv(EnvGeminiAPIKey, "gemini-key")

		cfg := NewConfig()
		cfg.Embedding.Provider = "http"
		cfg.Embedding.APIKey = "file-key"
		cfg.ApplyEnvOverrides()
		if cfg.Embedding.APIKey != "file-key" {
			t.Errorf("api key = %q, want file-key", cfg.Embedding.APIKey)
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads yaml", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".compscan")
		content := `settings:
  threshold: 0.75
competitors:
  - name: Acme
    url: https://acme.example.com
    selector: main
    sources:
      - https://news.example.com/acme
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		file, err := LoadConfigFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if file.Settings.Threshold != 0.75 {
			t.Errorf("threshold = %v, want 0.75", file.Settings.Threshold)
		}
		if len(file.Competitors) != 1 || file.Competitors[0].Selector != "main" {
			t.Errorf("competitors = %+v", file.Competitors)
		}
		if len(file.Competitors[0].Sources) != 1 {
			t.Errorf("sources = %+v, want one entry", file.Competitors[0].Sources)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".compscan")
		if err := os.WriteFile(path, []byte("competitors: [unclosed"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for malformed yaml")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "my.yaml")
		if err := os.WriteFile(path, []byte("competitors: []\n"), 0600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("got %q, want %q", got, path)
		}
	})

	t.Run("explicit missing path", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile(filepath.Join(t.TempDir(), "absent")); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})
}
