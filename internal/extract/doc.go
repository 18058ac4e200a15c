// Package extract fetches a monitored page and reduces it to a visible-text
// blob suitable for semantic comparison.
//
// Extraction is deliberately single-page: CompScan monitors one canonical
// address per entity and does not crawl. The extractor fetches the page,
// parses the HTML, and collects visible text (script, style, and other
// non-content elements are skipped). An optional CSS selector scopes
// extraction to the page's main content region so navigation chrome does
// not dilute the similarity signal.
package extract
