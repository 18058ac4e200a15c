package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/compscan/compscan/internal/model"
)

// Markdown structure markers. EntityCapturedText depends on these; change
// them only together with the parser.
const (
	// titlePrefix starts the first line of every report, followed by the
	// run date in ISO format.
	titlePrefix = "# Intelligence Report: "

	// entityHeadingPrefix starts each per-entity section heading,
	// followed by the entity name.
	entityHeadingPrefix = "## Competitor: "

	// capturedHeading introduces the fenced block holding the entity's
	// extracted text.
	capturedHeading = "### Captured Content"

	// errorsHeading introduces the error summary section.
	errorsHeading = "## Error Summary"

	// recommendationsHeading introduces the recommendations section.
	recommendationsHeading = "## Recommendations"
)

// dateLayout is the ISO date format used throughout report rendering.
const dateLayout = "2006-01-02"

// noErrorsStatement is rendered when every entity processed cleanly.
const noErrorsStatement = "All competitors were processed successfully with no errors."

// noShiftsStatement is rendered when no entity classified as a shift.
const noShiftsStatement = "No strategic shifts detected. Continue regular monitoring."

// Builder renders an IntelligenceReport to markdown.
type Builder struct{}

// NewBuilder creates a Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build renders the report. It is pure: the same report yields
// byte-identical markdown.
func (b *Builder) Build(r *model.IntelligenceReport) string {
	md := markdown.NewMarkdown(io.Discard)

	b.writeHeader(md, r)
	for _, section := range r.Sections {
		b.writeEntitySection(md, section)
	}
	b.writeErrorSummary(md, r)
	b.writeRecommendations(md, r)
	b.writeFooter(md)

	return md.String()
}

// writeHeader writes the title and executive summary.
func (b *Builder) writeHeader(md *markdown.Markdown, r *model.IntelligenceReport) {
	md.H1("Intelligence Report: " + r.RunDate.Format(dateLayout))
	md.PlainText("")
	md.PlainTextf(
		"This report covers %d monitored competitors for the run of %s. "+
			"Each competitor's public page was captured and compared against "+
			"its most recent archived baseline.",
		r.Summary.Entities, r.RunDate.Format(dateLayout),
	)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Competitors", strconv.Itoa(r.Summary.Entities)},
			{"Strategic Shifts", strconv.Itoa(r.Summary.StrategicShifts)},
			{"Minor Updates", strconv.Itoa(r.Summary.MinorUpdates)},
			{"Newly Monitored", strconv.Itoa(r.Summary.NewlyMonitored)},
			{"Errors", strconv.Itoa(r.Summary.Errors)},
		},
	})
	md.PlainText("")
	md.HorizontalRule()
	md.PlainText("")
}

// writeEntitySection writes one competitor's section.
func (b *Builder) writeEntitySection(md *markdown.Markdown, s model.EntitySection) {
	md.H2("Competitor: " + s.Outcome.Entity)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", s.Address},
			{"Classification", s.Outcome.Classification.String()},
			{"Similarity", similarityCell(s.Outcome)},
			{"Baseline Date", baselineCell(s.Outcome)},
		},
	})
	md.PlainText("")

	if s.Description != "" {
		md.PlainText(s.Description)
		md.PlainText("")
	}

	if len(s.Sources) > 0 {
		md.PlainText("Secondary sources:")
		md.PlainText("")
		md.BulletList(s.Sources...)
		md.PlainText("")
	}

	// Inline highlighted callout for strategic shifts only.
	if s.Outcome.Classification == model.StrategicShift {
		md.Warningf(
			"STRATEGIC SHIFT DETECTED: %s changed its messaging significantly "+
				"(similarity %s against the %s baseline). Review recommended.",
			s.Outcome.Entity,
			formatScore(s.Outcome.Score),
			s.Outcome.BaselineDate.Format(dateLayout),
		)
		md.PlainText("")
	}

	md.H3("Captured Content")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightText, s.CapturedText)
	md.PlainText("")
}

// writeErrorSummary writes the error section. Every error appears; an
// empty error list produces an explicit no-errors statement rather than
// an absent section.
func (b *Builder) writeErrorSummary(md *markdown.Markdown, r *model.IntelligenceReport) {
	md.H2("Error Summary")
	md.PlainText("")

	if len(r.Errors) == 0 {
		md.PlainText(noErrorsStatement)
		md.PlainText("")
		return
	}

	md.PlainText("The following errors occurred during processing:")
	md.PlainText("")
	items := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		items = append(items, fmt.Sprintf("**%s** (%s): %s", e.Entity, e.Stage, e.Message))
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeRecommendations writes the recommendations section, naming every
// strategic-shift entity or stating that monitoring should continue.
func (b *Builder) writeRecommendations(md *markdown.Markdown, r *model.IntelligenceReport) {
	md.H2("Recommendations")
	md.PlainText("")

	shifts := r.StrategicShiftEntities()
	if len(shifts) == 0 {
		md.PlainText(noShiftsStatement)
		md.PlainText("")
		return
	}

	md.PlainText("Review the following competitors for strategic shifts:")
	md.PlainText("")
	md.BulletList(shifts...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (b *Builder) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [CompScan](https://github.com/compscan/compscan)*")
}

// similarityCell formats the similarity column for the overview table.
// Newly monitored entities have no score; the percentage is display-only,
// the raw cosine stays the classification input.
func similarityCell(o model.SimilarityOutcome) string {
	if !o.HasScore() {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%% (%s)", o.Score*100, formatScore(o.Score))
}

// baselineCell formats the baseline date column.
func baselineCell(o model.SimilarityOutcome) string {
	if o.BaselineDate.IsZero() {
		return "n/a"
	}
	return o.BaselineDate.Format(dateLayout)
}

// formatScore renders a raw score with fixed precision so report output
// is deterministic across platforms.
func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 4, 64)
}
