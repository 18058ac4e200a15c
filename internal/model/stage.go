package model

// Stage identifies the pipeline step at which an entity failed.
// It is recorded in ErrorOutcome so reports can say not just that an entity
// failed, but where.
type Stage string

const (
	// StageExtract covers fetching and text extraction of the entity's page.
	StageExtract Stage = "extract"

	// StageBaseline covers historical baseline lookup in the archive.
	// Absence of a baseline is not a failure; only a corrupt archive is.
	StageBaseline Stage = "baseline"

	// StageCompare covers embedding and similarity classification.
	StageCompare Stage = "compare"
)

// String returns the stage name.
func (s Stage) String() string {
	return string(s)
}
