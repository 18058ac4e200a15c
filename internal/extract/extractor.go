package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Extraction errors.
var (
	// ErrHTTPStatus is returned when the page responds with a non-2xx status.
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrEmptyPage is returned when the page yields no visible text at all.
	// An entity whose page renders to nothing cannot be compared.
	ErrEmptyPage = errors.New("page contains no visible text")

	// ErrSelectorNoMatch is returned when a configured CSS selector
	// matches nothing on the page. This is reported rather than silently
	// falling back to the whole document, because a stale selector would
	// otherwise change the comparison basis without anyone noticing.
	ErrSelectorNoMatch = errors.New("content selector matched no elements")
)

// Extractor produces the raw text for a monitored address.
// Implementations are safe for concurrent use.
type Extractor interface {
	// Extract fetches the address and returns its visible text.
	// The selector, when non-empty, scopes extraction to matching elements.
	Extract(ctx context.Context, address, selector string) (string, error)
}

// HTTPExtractor fetches pages over plain HTTP(S) and extracts their
// visible text.
type HTTPExtractor struct {
	// client is the HTTP client used for fetches. Its Timeout bounds the
	// whole request including body read.
	client *http.Client

	// userAgent is the User-Agent header to send.
	userAgent string

	// maxBodySize limits the number of response bytes read.
	maxBodySize int64
}

// Option configures an HTTPExtractor.
type Option func(*HTTPExtractor)

// WithTimeout sets the per-fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *HTTPExtractor) {
		e.client.Timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(e *HTTPExtractor) {
		e.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) Option {
	return func(e *HTTPExtractor) {
		if size > 0 {
			e.maxBodySize = size
		}
	}
}

// NewHTTPExtractor creates an HTTPExtractor with the given options.
func NewHTTPExtractor(opts ...Option) *HTTPExtractor {
	e := &HTTPExtractor{
		client:      &http.Client{Timeout: 30 * time.Second},
		userAgent:   "CompScan/1.0",
		maxBodySize: 5 * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract fetches the address and returns its visible text.
// Network failures, non-2xx responses, unparseable bodies, and selector
// misses all fail the extraction; the caller records them against the
// entity and continues the run.
func (e *HTTPExtractor) Extract(ctx context.Context, address, selector string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", address, err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", address, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read errors surface below

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: %w: %s", address, ErrHTTPStatus, resp.Status)
	}

	// Limit body read to avoid memory exhaustion on oversized responses.
	body := io.LimitReader(resp.Body, e.maxBodySize)

	text, err := VisibleText(body, selector)
	if err != nil {
		return "", fmt.Errorf("extract text from %s: %w", address, err)
	}

	return text, nil
}
