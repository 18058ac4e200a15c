// Package log provides secure logging functionality with automatic
// sanitization of sensitive information, built on top of the standard slog
// package.
//
// CompScan handles embedding provider API keys and authenticated page
// fetches; those values must never leak into logs that may be shared when
// debugging a run. The SecureHandler automatically sanitizes:
//   - HTTP headers (Authorization, Cookie, X-Api-Key)
//   - Secret values detected by pattern matching (bearer tokens, API keys)
//   - Session identifiers and authentication tokens
//
// Even in verbose mode, sensitive values are masked.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//	logger.Info("embedding request sent",
//	    "api_key", cfg.Embedding.APIKey, // sanitized to ***REDACTED***
//	    "model", cfg.Embedding.Model,
//	)
//	slog.SetDefault(logger)
package log
