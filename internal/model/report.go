package model

import "time"

// EntitySection is one entity's contribution to an IntelligenceReport.
// Sections keep the original configuration order. Entities that failed have
// no section; they appear only in the report's error list.
type EntitySection struct {
	// Outcome holds the similarity result for the entity.
	Outcome SimilarityOutcome `json:"outcome"`

	// Address is the monitored URL, passed through from configuration.
	Address string `json:"address"`

	// Description is optional free-text metadata from configuration.
	Description string `json:"description,omitempty"`

	// Sources are optional secondary-source links from configuration
	// (e.g., Crunchbase profile, social accounts). Rendered in the report
	// overview but never consulted by the diffing logic.
	Sources []string `json:"sources,omitempty"`

	// CapturedText is the extracted text recorded for this run. It is
	// embedded in the archived report so the next run can recover it as
	// the entity's baseline.
	CapturedText string `json:"captured_text"`
}

// Summary holds the derived counts for a report.
type Summary struct {
	// Entities is the total number of configured entities in the run,
	// including those that failed.
	Entities int `json:"entities"`

	// StrategicShifts counts entities classified as StrategicShift.
	StrategicShifts int `json:"strategic_shifts"`

	// MinorUpdates counts entities classified as MinorUpdate.
	MinorUpdates int `json:"minor_updates"`

	// NewlyMonitored counts entities with no prior baseline.
	NewlyMonitored int `json:"newly_monitored"`

	// Errors counts entities that failed at any stage.
	Errors int `json:"errors"`
}

// IntelligenceReport is the assembled result of one monitoring run.
// It is built fresh each run and never mutated after assembly.
type IntelligenceReport struct {
	// RunDate is the date of the run. Only the date component is
	// significant; it derives the canonical archive identifier.
	RunDate time.Time `json:"run_date"`

	// Sections lists per-entity results in configuration order.
	Sections []EntitySection `json:"sections"`

	// Errors lists every per-entity failure of the run.
	Errors []ErrorOutcome `json:"errors"`

	// Summary holds the derived counts, computed at assembly time.
	Summary Summary `json:"summary"`
}

// NewIntelligenceReport assembles a report from per-entity sections and
// errors, computing the summary counts. Sections must already be in
// configuration order; assembly preserves it.
func NewIntelligenceReport(runDate time.Time, sections []EntitySection, errs []ErrorOutcome) *IntelligenceReport {
	r := &IntelligenceReport{
		RunDate:  runDate,
		Sections: sections,
		Errors:   errs,
	}
	r.Summary.Entities = len(sections) + len(errs)
	r.Summary.Errors = len(errs)
	for _, s := range sections {
		switch s.Outcome.Classification {
		case StrategicShift:
			r.Summary.StrategicShifts++
		case MinorUpdate:
			r.Summary.MinorUpdates++
		case NewlyMonitored:
			r.Summary.NewlyMonitored++
		case ClassificationUnknown:
			// Unreachable for assembled outcomes; counted nowhere.
		}
	}
	return r
}

// StrategicShiftEntities returns the names of entities classified as
// StrategicShift, in section (configuration) order.
func (r *IntelligenceReport) StrategicShiftEntities() []string {
	var names []string
	for _, s := range r.Sections {
		if s.Outcome.Classification == StrategicShift {
			names = append(names, s.Outcome.Entity)
		}
	}
	return names
}
