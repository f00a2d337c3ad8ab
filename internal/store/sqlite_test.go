package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInteractionRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	in := &Interaction{
		Room:         "probability-bay",
		Action:       "analyze_distribution",
		Success:      true,
		Concept:      "probability-distribution",
		Feedback:     "Correct — face 3 dominates.",
		MistakeCount: 2,
	}
	if err := db.SaveInteraction(ctx, in); err != nil {
		t.Fatalf("SaveInteraction: %v", err)
	}
	if in.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatal("SaveInteraction did not assign an id")
	}

	got, err := db.ListInteractions(ctx, InteractionsQuery{Room: "probability-bay"})
	if err != nil {
		t.Fatalf("ListInteractions: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d interactions, want 1", len(got))
	}
	if got[0].ID != in.ID || got[0].Action != in.Action || !got[0].Success || got[0].MistakeCount != 2 {
		t.Errorf("round trip mismatch: %+v", got[0])
	}
}

func TestListInteractionsFiltersByRoom(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, room := range []string{"probability-bay", "state-chamber", "state-chamber"} {
		if err := db.SaveInteraction(ctx, &Interaction{Room: room, Action: "x", Concept: "c"}); err != nil {
			t.Fatalf("SaveInteraction: %v", err)
		}
	}

	got, err := db.ListInteractions(ctx, InteractionsQuery{Room: "state-chamber"})
	if err != nil {
		t.Fatalf("ListInteractions: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d interactions for state-chamber, want 2", len(got))
	}

	all, err := db.ListInteractions(ctx, InteractionsQuery{})
	if err != nil {
		t.Fatalf("ListInteractions: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d interactions total, want 3", len(all))
	}
}

func TestCompletionKeepsFirstTimestamp(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := db.SaveCompletion(ctx, &Completion{Room: "tunneling-vault", CompletedAt: first, MistakeCount: 3}); err != nil {
		t.Fatalf("SaveCompletion: %v", err)
	}
	// A replayed completion must not overwrite the original record.
	if err := db.SaveCompletion(ctx, &Completion{Room: "tunneling-vault", CompletedAt: first.Add(time.Hour)}); err != nil {
		t.Fatalf("SaveCompletion (repeat): %v", err)
	}

	got, err := db.ListCompletions(ctx)
	if err != nil {
		t.Fatalf("ListCompletions: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d completions, want 1", len(got))
	}
	if !got[0].CompletedAt.Equal(first) {
		t.Errorf("completed_at = %v, want %v", got[0].CompletedAt, first)
	}
	if got[0].MistakeCount != 3 {
		t.Errorf("mistake_count = %d, want 3", got[0].MistakeCount)
	}
}

func TestMeasurementCount(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		m := &Measurement{Room: "probability-bay", Event: "die_roll", PayloadJSON: `{"face":3}`}
		if err := db.SaveMeasurement(ctx, m); err != nil {
			t.Fatalf("SaveMeasurement: %v", err)
		}
	}
	if err := db.SaveMeasurement(ctx, &Measurement{Room: "state-chamber", Event: "axis_reading"}); err != nil {
		t.Fatalf("SaveMeasurement: %v", err)
	}

	n, err := db.CountMeasurements(ctx, "probability-bay")
	if err != nil {
		t.Fatalf("CountMeasurements: %v", err)
	}
	if n != 3 {
		t.Errorf("count for probability-bay = %d, want 3", n)
	}

	total, err := db.CountMeasurements(ctx, "")
	if err != nil {
		t.Fatalf("CountMeasurements: %v", err)
	}
	if total != 4 {
		t.Errorf("total count = %d, want 4", total)
	}
}
