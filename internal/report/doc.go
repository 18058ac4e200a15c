// Package report provides intelligence report rendering and parsing.
//
// The Builder turns an assembled model.IntelligenceReport into GitHub
// Flavored Markdown with a fixed five-part structure: executive summary,
// per-entity sections in configuration order, strategic-shift callouts,
// error summary, and recommendations. Rendering is deterministic: the same
// report produces byte-identical output.
//
// Because archived reports are also the source of future baselines, this
// package owns both directions of the format: Builder writes it and
// EntityCapturedText reads an entity's recorded text back out of it.
// Keeping render and parse together prevents the two from drifting apart.
package report
