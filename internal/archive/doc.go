// Package archive manages the on-disk report archive. Reports are stored
// as date-named markdown files (2026-03-14_Intelligence.md) in a single
// directory; the archive filename is the run's canonical identifier.
//
// Store recovers an entity's baseline text from the most recent archived
// report; Writer persists a newly rendered report. Both trust
// internal/report for the file format so the written and parsed shapes
// cannot drift apart.
package archive
