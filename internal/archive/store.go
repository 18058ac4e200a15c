package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/compscan/compscan/internal/model"
	"github.com/compscan/compscan/internal/report"
)

// ErrCorruptReport wraps report parse failures so callers can treat a
// damaged archive file as a per-entity condition rather than a run-fatal
// one.
var ErrCorruptReport = report.ErrCorruptReport

// reportFileRe matches archived report filenames and captures the run
// date.
var reportFileRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})_Intelligence\.md$`)

// dateLayout is the ISO date format used in archive filenames.
const dateLayout = "2006-01-02"

// FileName returns the canonical archive filename for a run date.
func FileName(runDate time.Time) string {
	return runDate.Format(dateLayout) + "_Intelligence.md"
}

// Store reads baselines out of an archive directory.
type Store struct {
	dir string
}

// NewStore creates a Store over the given archive directory. The
// directory does not have to exist; an absent directory simply holds no
// baselines.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the archive directory the store reads from.
func (s *Store) Dir() string {
	return s.dir
}

// FindBaseline returns the entity's recorded text from the single most
// recent archived report dated strictly before the given run date. It
// returns nil with no error when the entity has no baseline: the archive
// directory does not exist, no prior report exists, or the latest prior
// report carries no section for the entity.
//
// Only the latest prior report is consulted. An entity absent from it is
// newly monitored even if still older reports mention it; falling back
// to those would resurrect stale text for a competitor that was dropped
// and later re-added.
func (s *Store) FindBaseline(entity string, before time.Time) (*model.BaselineRecord, error) {
	candidates, err := s.reportsBefore(before)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	latest := candidates[0]
	content, err := os.ReadFile(filepath.Join(s.dir, latest.name))
	if err != nil {
		return nil, fmt.Errorf("archive: read report %s: %w", latest.name, err)
	}
	text, found, err := report.EntityCapturedText(string(content), entity)
	if err != nil {
		return nil, fmt.Errorf("archive: report %s: %w", latest.name, err)
	}
	if !found {
		return nil, nil
	}
	return &model.BaselineRecord{
		Entity:     entity,
		Text:       text,
		ReportDate: latest.date,
	}, nil
}

// ListReports returns the archive's report filenames in chronological
// order. An absent directory yields an empty list.
func (s *Store) ListReports() ([]string, error) {
	entries, err := s.readDir()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && reportFileRe.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

type candidate struct {
	name string
	date time.Time
}

// reportsBefore lists archived reports dated strictly before the given
// date, newest first. When two files share a date the lexicographically
// greater name sorts first, which keeps the choice stable.
func (s *Store) reportsBefore(before time.Time) ([]candidate, error) {
	entries, err := s.readDir()
	if err != nil {
		return nil, err
	}

	cutoff := before.Format(dateLayout)
	var cs []candidate
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := reportFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if m[1] >= cutoff {
			continue
		}
		date, err := time.Parse(dateLayout, m[1])
		if err != nil {
			continue
		}
		cs = append(cs, candidate{name: e.Name(), date: date})
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i].name > cs[j].name })
	return cs, nil
}

func (s *Store) readDir() ([]fs.DirEntry, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("archive: read directory %s: %w", s.dir, err)
	}
	return entries, nil
}
