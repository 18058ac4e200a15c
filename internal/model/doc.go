// Package model defines the core data structures used throughout CompScan.
//
// This package contains the following main types:
//   - Classification: The closed set of change classifications
//   - SimilarityOutcome: Result of comparing an entity against its baseline
//   - ErrorOutcome: A per-entity failure with the stage it occurred at
//   - IntelligenceReport: The assembled result of one monitoring run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (pipeline, report, archive, database) need
// to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for database storage.
package model
