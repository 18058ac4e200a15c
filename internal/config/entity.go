package config

import (
	"fmt"
	"net/url"
)

// EntityConfig describes a single monitored competitor.
// Name and URL are required; everything else is optional metadata that is
// passed through to the report untouched and never consulted by the
// diffing logic.
type EntityConfig struct {
	// Name is the unique name of the competitor within a run. It keys
	// baseline lookup and report sections.
	Name string `yaml:"name"`

	// URL is the canonical public page monitored for this competitor.
	URL string `yaml:"url"`

	// Selector is an optional CSS selector scoping extraction to the
	// main content region of the page. When empty, the whole document's
	// visible text is extracted.
	Selector string `yaml:"selector,omitempty"`

	// Description is optional free-text context about the competitor.
	Description string `yaml:"description,omitempty"`

	// Sources are optional secondary-source links (Crunchbase, social
	// accounts) surfaced in the report overview.
	Sources []string `yaml:"sources,omitempty"`
}

// validate checks the required fields of a single entity.
// The position is included in wrapped errors so the offending entry in the
// configuration file is identifiable.
func (e EntityConfig) validate(position int) error {
	if e.Name == "" {
		return fmt.Errorf("competitor %d: %w", position+1, ErrEmptyEntityName)
	}

	u, err := url.Parse(e.URL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("competitor %q: %w", e.Name, ErrInvalidEntityAddress)
	}

	return nil
}

// File represents the structure of the .compscan configuration file.
type File struct {
	// Settings carries optional overrides for run behavior.
	Settings FileSettings `yaml:"settings,omitempty"`

	// Embedding configures the embedding provider.
	Embedding EmbeddingConfig `yaml:"embedding,omitempty"`

	// Competitors is the ordered list of monitored entities. Report
	// sections follow this order regardless of processing order.
	Competitors []EntityConfig `yaml:"competitors"`
}

// FileSettings are the tunables a configuration file may override.
// Zero values mean "keep the default".
type FileSettings struct {
	// Threshold is the similarity classification threshold in (0, 1].
	Threshold float64 `yaml:"threshold,omitempty"`

	// ReportsDir is the directory holding archived intelligence reports.
	ReportsDir string `yaml:"reportsDir,omitempty"`

	// Concurrency is the number of entities processed in parallel.
	Concurrency int `yaml:"concurrency,omitempty"`

	// ExtractTimeout bounds each page fetch.
	ExtractTimeout string `yaml:"extractTimeout,omitempty"`

	// EmbedTimeout bounds each embedding call.
	EmbedTimeout string `yaml:"embedTimeout,omitempty"`

	// UserAgent overrides the User-Agent header for page fetches.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider selects the embedding backend: "gemini" (default) or
	// "http" for a self-hosted inference service.
	Provider string `yaml:"provider,omitempty"`

	// Endpoint is the inference service URL. Required for "http".
	Endpoint string `yaml:"endpoint,omitempty"`

	// Model is the embedding model name. For gemini the default is
	// gemini-embedding-001.
	Model string `yaml:"model,omitempty"`

	// APIKey authenticates against the provider. Usually supplied via
	// the COMPSCAN_API_KEY or GEMINI_API_KEY environment variable rather
	// than the file.
	APIKey string `yaml:"apiKey,omitempty"`
}
