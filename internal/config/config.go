package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen for polite monitoring of public marketing pages.
const (
	// DefaultThreshold is the similarity score below which a change is
	// classified as a strategic shift. 0.80 keeps routine copy edits out
	// of the shift bucket while catching repositioned messaging.
	DefaultThreshold = 0.80

	// DefaultConcurrency of 4 parallel entities balances throughput with
	// politeness toward both the monitored sites and the embedding
	// provider's rate limits.
	DefaultConcurrency = 4

	// DefaultExtractTimeout bounds a single page fetch. Marketing pages
	// are small; 30 seconds tolerates slow servers without stalling the run.
	DefaultExtractTimeout = 30 * time.Second

	// DefaultEmbedTimeout bounds a single embedding call. Embedding a full
	// page of text can take a while on self-hosted inference services.
	DefaultEmbedTimeout = 60 * time.Second

	// DefaultReportsDirName is the reports directory created relative to
	// the working directory when no explicit path is configured.
	DefaultReportsDirName = "reports"

	// DefaultUserAgent identifies CompScan in HTTP requests.
	// A descriptive User-Agent lets site operators identify monitor traffic.
	DefaultUserAgent = "CompScan/1.0 (+https://github.com/compscan/compscan)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for any HTML page while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultEmbeddingProvider is the embedding backend used when the
	// configuration file does not select one.
	DefaultEmbeddingProvider = "gemini"

	// DefaultEmbeddingModel is the Gemini embedding model.
	DefaultEmbeddingModel = "gemini-embedding-001"

	// AppName is the application name used for XDG directory paths.
	AppName = "compscan"
)

// Environment variables recognized as overrides.
const (
	// EnvAPIKey overrides the embedding API key regardless of provider.
	EnvAPIKey = "COMPSCAN_API_KEY"

	// EnvGeminiAPIKey is the conventional Gemini key variable, consulted
	// when EnvAPIKey is unset and the provider is gemini.
	EnvGeminiAPIKey = "GEMINI_API_KEY"
)

// Config holds all configuration options for CompScan.
// This struct is populated from the configuration file and CLI flags and
// passed through the application via dependency injection rather than
// global state.
type Config struct {
	// Entities is the ordered list of monitored competitors. Order is
	// significant: report sections follow it.
	Entities []EntityConfig

	// Threshold is the similarity classification threshold in (0, 1].
	// Scores strictly below it classify as StrategicShift.
	Threshold float64

	// ReportsDir is the directory holding archived intelligence reports.
	ReportsDir string

	// Concurrency is the number of entities processed in parallel.
	Concurrency int

	// ExtractTimeout bounds each page fetch.
	ExtractTimeout time.Duration

	// EmbedTimeout bounds each embedding call.
	EmbedTimeout time.Duration

	// UserAgent is the User-Agent header sent with page fetches.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// Embedding configures the embedding provider.
	Embedding EmbeddingConfig

	// DBDir is the directory for the run-history SQLite database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether run results are recorded in the
	// run-history database in addition to the file archive.
	SaveToDB bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file. If empty, the
	// tool searches for .compscan in the current directory and then in
	// the user's home directory.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults; the entity list starts
// empty and must come from the configuration file.
func NewConfig() *Config {
	return &Config{
		Threshold:      DefaultThreshold,
		ReportsDir:     DefaultReportsDirName,
		Concurrency:    DefaultConcurrency,
		ExtractTimeout: DefaultExtractTimeout,
		EmbedTimeout:   DefaultEmbedTimeout,
		UserAgent:      DefaultUserAgent,
		MaxBodySize:    DefaultMaxBodySize,
		Embedding: EmbeddingConfig{
			Provider: DefaultEmbeddingProvider,
			Model:    DefaultEmbeddingModel,
		},
		DBDir:    XDGDataDir(),
		SaveToDB: true,
	}
}

// XDGDataDir returns the XDG data directory for CompScan.
// On Linux: ~/.local/share/compscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for CompScan.
// On Linux: ~/.config/compscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyFile merges settings from a loaded configuration file into the
// config. File values override defaults; empty file values keep them.
func (c *Config) ApplyFile(f *File) error {
	c.Entities = f.Competitors

	if f.Settings.Threshold != 0 {
		c.Threshold = f.Settings.Threshold
	}
	if f.Settings.ReportsDir != "" {
		c.ReportsDir = f.Settings.ReportsDir
	}
	if f.Settings.Concurrency != 0 {
		c.Concurrency = f.Settings.Concurrency
	}
	if f.Settings.UserAgent != "" {
		c.UserAgent = f.Settings.UserAgent
	}
	if f.Settings.ExtractTimeout != "" {
		d, err := time.ParseDuration(f.Settings.ExtractTimeout)
		if err != nil {
			return fmt.Errorf("invalid extractTimeout: %w", err)
		}
		c.ExtractTimeout = d
	}
	if f.Settings.EmbedTimeout != "" {
		d, err := time.ParseDuration(f.Settings.EmbedTimeout)
		if err != nil {
			return fmt.Errorf("invalid embedTimeout: %w", err)
		}
		c.EmbedTimeout = d
	}

	if f.Embedding.Provider != "" {
		c.Embedding.Provider = f.Embedding.Provider
	}
	if f.Embedding.Endpoint != "" {
		c.Embedding.Endpoint = f.Embedding.Endpoint
	}
	if f.Embedding.Model != "" {
		c.Embedding.Model = f.Embedding.Model
	}
	if f.Embedding.APIKey != "" {
		c.Embedding.APIKey = f.Embedding.APIKey
	}

	return nil
}

// ApplyEnvOverrides applies environment variable overrides.
// Environment values take precedence over the configuration file so keys
// can stay out of files checked into version control.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Embedding.APIKey = v
		return
	}
	if c.Embedding.Provider == "gemini" {
		if v := os.Getenv(EnvGeminiAPIKey); v != "" {
			c.Embedding.APIKey = v
		}
	}
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any entity work begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Entities) == 0 {
		return ErrNoEntities
	}

	seen := make(map[string]bool, len(c.Entities))
	for i, e := range c.Entities {
		if err := e.validate(i); err != nil {
			return err
		}
		if seen[e.Name] {
			return fmt.Errorf("competitor %q: %w", e.Name, ErrDuplicateEntityName)
		}
		seen[e.Name] = true
	}

	if c.Threshold <= 0 || c.Threshold > 1 {
		return ErrInvalidThreshold
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.ExtractTimeout <= 0 || c.EmbedTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	switch c.Embedding.Provider {
	case "gemini":
	case "http":
		if c.Embedding.Endpoint == "" {
			return ErrMissingEmbeddingEndpoint
		}
	default:
		return ErrUnknownEmbeddingProvider
	}

	return nil
}
