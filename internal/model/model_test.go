package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestClassificationString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		c    Classification
		want string
	}{
		{StrategicShift, "Strategic Shift"},
		{MinorUpdate, "Minor Update"},
		{NewlyMonitored, "Newly Monitored"},
		{ClassificationUnknown, "Unknown"},
		{Classification(42), "Classification(42)"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestClassificationWireRoundTrip(t *testing.T) {
	t.Parallel()

	for _, c := range []Classification{StrategicShift, MinorUpdate, NewlyMonitored} {
		parsed, err := ParseClassification(c.WireName())
		if err != nil {
			t.Errorf("%v: %v", c, err)
			continue
		}
		if parsed != c {
			t.Errorf("round trip %v -> %q -> %v", c, c.WireName(), parsed)
		}
	}

	if _, err := ParseClassification("bogus"); err == nil {
		t.Error("expected error for unknown wire name")
	}
}

func TestClassificationJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(StrategicShift)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"strategic_shift"` {
		t.Errorf("marshal = %s, want \"strategic_shift\"", data)
	}

	var c Classification
	if err := json.Unmarshal([]byte(`"minor_update"`), &c); err != nil {
		t.Fatal(err)
	}
	if c != MinorUpdate {
		t.Errorf("unmarshal = %v, want MinorUpdate", c)
	}

	if err := json.Unmarshal([]byte(`"bogus"`), &c); err == nil {
		t.Error("expected error for unknown classification")
	}
}

func TestSimilarityOutcomeHasScore(t *testing.T) {
	t.Parallel()

	if (SimilarityOutcome{Classification: NewlyMonitored}).HasScore() {
		t.Error("newly monitored outcome must not carry a score")
	}
	if !(SimilarityOutcome{Classification: MinorUpdate, Score: 0.95}).HasScore() {
		t.Error("minor update outcome must carry a score")
	}
	if !(SimilarityOutcome{Classification: StrategicShift, Score: 0.1}).HasScore() {
		t.Error("strategic shift outcome must carry a score")
	}
}

func TestNewIntelligenceReport(t *testing.T) {
	t.Parallel()

	runDate := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	sections := []EntitySection{
		{Outcome: SimilarityOutcome{Entity: "A", Classification: StrategicShift, Score: 0.3}},
		{Outcome: SimilarityOutcome{Entity: "B", Classification: MinorUpdate, Score: 0.95}},
		{Outcome: SimilarityOutcome{Entity: "C", Classification: NewlyMonitored}},
		{Outcome: SimilarityOutcome{Entity: "D", Classification: StrategicShift, Score: 0.5}},
	}
	errs := []ErrorOutcome{
		{Entity: "E", Stage: StageExtract, Message: "timeout"},
	}

	r := NewIntelligenceReport(runDate, sections, errs)

	if r.Summary.Entities != 5 {
		t.Errorf("entities = %d, want 5", r.Summary.Entities)
	}
	if r.Summary.StrategicShifts != 2 {
		t.Errorf("strategic shifts = %d, want 2", r.Summary.StrategicShifts)
	}
	if r.Summary.MinorUpdates != 1 {
		t.Errorf("minor updates = %d, want 1", r.Summary.MinorUpdates)
	}
	if r.Summary.NewlyMonitored != 1 {
		t.Errorf("newly monitored = %d, want 1", r.Summary.NewlyMonitored)
	}
	if r.Summary.Errors != 1 {
		t.Errorf("errors = %d, want 1", r.Summary.Errors)
	}

	shifts := r.StrategicShiftEntities()
	if len(shifts) != 2 || shifts[0] != "A" || shifts[1] != "D" {
		t.Errorf("shift entities = %v, want [A D]", shifts)
	}
}
