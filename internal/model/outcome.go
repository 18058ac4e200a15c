package model

import "time"

// ExtractedContent is the raw text captured for an entity during a run.
// It is produced once per entity per run and never mutated.
type ExtractedContent struct {
	// Entity is the configured entity name.
	Entity string `json:"entity"`

	// Text is the extracted visible text of the entity's page.
	Text string `json:"text"`

	// CapturedAt is when the extraction completed.
	CapturedAt time.Time `json:"captured_at"`
}

// BaselineRecord is an entity's recorded text from a past report.
// It is a read-only view; absence (no prior record) is a valid state and is
// represented by a nil *BaselineRecord.
type BaselineRecord struct {
	// Entity is the configured entity name.
	Entity string `json:"entity"`

	// Text is the text recorded for the entity in the source report.
	Text string `json:"text"`

	// ReportDate is the run date of the report the text came from.
	ReportDate time.Time `json:"report_date"`
}

// SimilarityOutcome is the successful result for one entity in one run.
//
// Invariant: Classification is NewlyMonitored iff the baseline was absent,
// in which case Score is meaningless and BaselineDate is the zero time.
// Otherwise Score holds the clamped cosine similarity in [0,1] and
// BaselineDate the date of the report the baseline came from.
type SimilarityOutcome struct {
	// Entity is the configured entity name.
	Entity string `json:"entity"`

	// Score is the cosine similarity in [0,1]. Only meaningful when
	// Classification is not NewlyMonitored; use HasScore to check.
	Score float64 `json:"score"`

	// Classification is the change classification for this run.
	Classification Classification `json:"classification"`

	// BaselineDate is the run date of the baseline report, or the zero
	// time when no baseline existed.
	BaselineDate time.Time `json:"baseline_date,omitzero"`
}

// HasScore reports whether Score carries a meaningful value.
func (o SimilarityOutcome) HasScore() bool {
	return o.Classification != NewlyMonitored
}

// ErrorOutcome records a per-entity failure. An entity produces exactly one
// of SimilarityOutcome or ErrorOutcome per run, never both.
type ErrorOutcome struct {
	// Entity is the configured entity name.
	Entity string `json:"entity"`

	// Stage is the pipeline step at which the failure occurred.
	Stage Stage `json:"stage"`

	// Message is the human-readable failure description.
	Message string `json:"message"`
}
