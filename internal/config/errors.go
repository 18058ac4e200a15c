package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Per-entity validation wraps these sentinels
// with the entity's position so the offending record is identifiable.
var (
	// ErrNoEntities is returned when the configuration contains no
	// competitors. A run without entities has nothing to do, so this is
	// fatal before any processing begins.
	ErrNoEntities = errors.New("no competitors configured: add at least one entry to the configuration file")

	// ErrEmptyEntityName is returned when a competitor entry has no name.
	ErrEmptyEntityName = errors.New("competitor name must not be empty")

	// ErrDuplicateEntityName is returned when two competitor entries share
	// a name. Names key baseline lookup and report sections, so they must
	// be unique within a run.
	ErrDuplicateEntityName = errors.New("duplicate competitor name")

	// ErrInvalidEntityAddress is returned when a competitor URL is missing
	// or not an absolute http(s) URL.
	ErrInvalidEntityAddress = errors.New("competitor url must be an absolute http or https URL")

	// ErrInvalidThreshold is returned when the similarity threshold is
	// outside (0, 1]. A threshold of 0 would classify everything as a
	// minor update; above 1 nothing could ever reach it.
	ErrInvalidThreshold = errors.New("invalid threshold: must be in (0, 1]")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	// A timeout of zero or negative would cause immediate failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrUnknownEmbeddingProvider is returned when the embedding provider
	// is not one of the supported values.
	ErrUnknownEmbeddingProvider = errors.New("unknown embedding provider: must be \"gemini\" or \"http\"")

	// ErrMissingEmbeddingEndpoint is returned when the http embedding
	// provider is selected without an endpoint URL.
	ErrMissingEmbeddingEndpoint = errors.New("embedding endpoint is required for the http provider")
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")
