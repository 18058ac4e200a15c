package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/compscan/compscan/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *RunDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func runDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func sampleRun(t *testing.T, day string) *model.IntelligenceReport {
	t.Helper()
	sections := []model.EntitySection{
		{
			Outcome: model.SimilarityOutcome{
				Entity:         "Acme Robotics",
				Score:          0.42,
				Classification: model.StrategicShift,
				BaselineDate:   runDate(t, "2026-03-01"),
			},
			Address:      "https://acme.example.com",
			CapturedText: "acme text",
		},
		{
			Outcome: model.SimilarityOutcome{
				Entity:         "Initech",
				Classification: model.NewlyMonitored,
			},
			Address:      "https://initech.example.com",
			CapturedText: "initech text",
		},
	}
	errs := []model.ErrorOutcome{
		{Entity: "Hooli", Stage: model.StageExtract, Message: "unexpected HTTP status 503"},
	}
	return model.NewIntelligenceReport(runDate(t, day), sections, errs)
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, "compscan.db")); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		opts := Options{CreateIfNotExists: false, EnableWAL: true}
		if _, err := Open(filepath.Join(t.TempDir(), "absent"), opts); err == nil {
			t.Error("expected error for missing database")
		}
	})
}

func TestSaveRunAndGetRun(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := context.Background()

		want := sampleRun(t, "2026-03-14")
		if err := db.SaveRun(ctx, want); err != nil {
			t.Fatal(err)
		}

		got, err := db.GetRun(ctx, runDate(t, "2026-03-14"))
		if err != nil {
			t.Fatal(err)
		}
		if got == nil {
			t.Fatal("stored run not found")
		}
		if len(got.Sections) != 2 || len(got.Errors) != 1 {
			t.Errorf("sections=%d errors=%d, want 2 and 1", len(got.Sections), len(got.Errors))
		}
		if got.Summary != want.Summary {
			t.Errorf("summary = %+v, want %+v", got.Summary, want.Summary)
		}
		if got.Sections[0].Outcome.Classification != model.StrategicShift {
			t.Errorf("classification = %v, want StrategicShift", got.Sections[0].Outcome.Classification)
		}
	})

	t.Run("missing run returns nil", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)

		got, err := db.GetRun(context.Background(), runDate(t, "2026-01-01"))
		if err != nil {
			t.Fatal(err)
		}
		if got != nil {
			t.Errorf("got %+v, want nil", got)
		}
	})

	t.Run("same date replaces previous run", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := context.Background()

		if err := db.SaveRun(ctx, sampleRun(t, "2026-03-14")); err != nil {
			t.Fatal(err)
		}

		// Second save with a smaller run replaces the first entirely.
		second := model.NewIntelligenceReport(runDate(t, "2026-03-14"), []model.EntitySection{{
			Outcome: model.SimilarityOutcome{
				Entity:         "Globex",
				Classification: model.NewlyMonitored,
			},
			Address:      "https://globex.example.com",
			CapturedText: "globex text",
		}}, nil)
		if err := db.SaveRun(ctx, second); err != nil {
			t.Fatal(err)
		}

		got, err := db.GetRun(ctx, runDate(t, "2026-03-14"))
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Sections) != 1 || got.Sections[0].Outcome.Entity != "Globex" {
			t.Errorf("sections = %+v, want single Globex section", got.Sections)
		}

		outcomes, err := db.HistoryForRun(ctx, runDate(t, "2026-03-14"))
		if err != nil {
			t.Fatal(err)
		}
		if len(outcomes) != 1 || outcomes[0].Entity != "Globex" {
			t.Errorf("outcomes = %+v, want single Globex row", outcomes)
		}
	})
}

func TestHistory(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	if err := db.SaveRun(ctx, sampleRun(t, "2026-03-01")); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveRun(ctx, sampleRun(t, "2026-03-14")); err != nil {
		t.Fatal(err)
	}

	t.Run("newest first", func(t *testing.T) {
		t.Parallel()
		hist, err := db.History(ctx, "Acme Robotics")
		if err != nil {
			t.Fatal(err)
		}
		if len(hist) != 2 {
			t.Fatalf("history length = %d, want 2", len(hist))
		}
		if got := hist[0].RunDate.Format("2006-01-02"); got != "2026-03-14" {
			t.Errorf("first run date = %s, want 2026-03-14", got)
		}
		if hist[0].Classification != "strategic_shift" {
			t.Errorf("classification = %q, want strategic_shift", hist[0].Classification)
		}
		if !hist[0].Score.Valid || hist[0].Score.Float64 != 0.42 {
			t.Errorf("score = %+v, want valid 0.42", hist[0].Score)
		}
	})

	t.Run("newly monitored has no score", func(t *testing.T) {
		t.Parallel()
		hist, err := db.History(ctx, "Initech")
		if err != nil {
			t.Fatal(err)
		}
		if len(hist) == 0 {
			t.Fatal("history empty")
		}
		if hist[0].Score.Valid {
			t.Errorf("score = %+v, want NULL", hist[0].Score)
		}
		if hist[0].BaselineDate != "" {
			t.Errorf("baseline date = %q, want empty", hist[0].BaselineDate)
		}
	})

	t.Run("failures are recorded", func(t *testing.T) {
		t.Parallel()
		hist, err := db.History(ctx, "Hooli")
		if err != nil {
			t.Fatal(err)
		}
		if len(hist) != 2 {
			t.Fatalf("history length = %d, want 2", len(hist))
		}
		if !hist[0].Failed() {
			t.Error("expected a failure row")
		}
		if hist[0].ErrorStage != "extract" {
			t.Errorf("stage = %q, want extract", hist[0].ErrorStage)
		}
	})

	t.Run("unknown entity yields empty history", func(t *testing.T) {
		t.Parallel()
		hist, err := db.History(ctx, "Umbrella")
		if err != nil {
			t.Fatal(err)
		}
		if len(hist) != 0 {
			t.Errorf("history = %+v, want empty", hist)
		}
	})
}

func TestListRunsAndEntities(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	if err := db.SaveRun(ctx, sampleRun(t, "2026-03-01")); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveRun(ctx, sampleRun(t, "2026-03-14")); err != nil {
		t.Fatal(err)
	}

	runs, err := db.ListRuns(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	if got := runs[0].RunDate.Format("2006-01-02"); got != "2026-03-14" {
		t.Errorf("first run = %s, want 2026-03-14", got)
	}
	if runs[0].Summary.Entities != 3 || runs[0].Summary.Errors != 1 {
		t.Errorf("summary = %+v, want 3 entities and 1 error", runs[0].Summary)
	}

	entities, err := db.ListEntities(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Acme Robotics", "Hooli", "Initech"}
	if len(entities) != len(want) {
		t.Fatalf("entities = %v, want %v", entities, want)
	}
	for i := range want {
		if entities[i] != want[i] {
			t.Errorf("entities[%d] = %s, want %s", i, entities[i], want[i])
		}
	}
}
