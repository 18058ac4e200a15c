package report

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrCorruptReport means a file that should be an archived intelligence
// report does not follow the format Builder writes.
var ErrCorruptReport = errors.New("report: corrupt archived report")

// codeFence delimits the captured-content block written by Builder.
const codeFence = "```"

// ParseRunDate returns the run date recorded in an archived report's
// title line. The title must be the first non-empty line.
func ParseRunDate(content string) (time.Time, error) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, titlePrefix) {
			return time.Time{}, fmt.Errorf("%w: missing title line", ErrCorruptReport)
		}
		date, err := time.Parse(dateLayout, strings.TrimPrefix(line, titlePrefix))
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: bad run date: %v", ErrCorruptReport, err)
		}
		return date, nil
	}
	if err := scanner.Err(); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrCorruptReport, err)
	}
	return time.Time{}, fmt.Errorf("%w: empty file", ErrCorruptReport)
}

// EntityCapturedText returns the captured content recorded for the named
// entity in an archived report. The second return value reports whether
// the entity has a section in the report; an archived report without a
// section for the entity is not an error, it just means the entity was
// not monitored (or failed) on that run.
//
// The parser only trusts the structural markers Builder writes: the
// title line, the per-entity headings, and the fenced block under the
// captured-content heading. Everything else in the section is ignored,
// so cosmetic format changes do not break baseline recovery.
func EntityCapturedText(content, entity string) (string, bool, error) {
	if _, err := ParseRunDate(content); err != nil {
		return "", false, err
	}

	lines := strings.Split(content, "\n")
	start := -1
	for i, line := range lines {
		if strings.TrimRight(line, "\r") == entityHeadingPrefix+entity {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return "", false, nil
	}

	// Scan the section for the captured-content heading, stopping at
	// the next heading of equal or higher level.
	for i := start; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r")
		if strings.HasPrefix(line, "## ") {
			return "", false, fmt.Errorf("%w: section for %q has no captured content", ErrCorruptReport, entity)
		}
		if line != capturedHeading {
			continue
		}
		text, err := fencedBlock(lines, i+1)
		if err != nil {
			return "", false, err
		}
		return text, true, nil
	}
	return "", false, fmt.Errorf("%w: section for %q has no captured content", ErrCorruptReport, entity)
}

// fencedBlock returns the body of the first fenced code block at or
// after lines[from].
func fencedBlock(lines []string, from int) (string, error) {
	open := -1
	for i := from; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r")
		if strings.HasPrefix(line, codeFence) {
			open = i
			break
		}
		if strings.HasPrefix(line, "#") {
			return "", fmt.Errorf("%w: captured content heading without fenced block", ErrCorruptReport)
		}
	}
	if open < 0 {
		return "", fmt.Errorf("%w: captured content heading without fenced block", ErrCorruptReport)
	}
	for i := open + 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == codeFence {
			return strings.Join(lines[open+1:i], "\n"), nil
		}
	}
	return "", fmt.Errorf("%w: unterminated fenced block", ErrCorruptReport)
}
