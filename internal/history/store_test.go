package history

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/openriskhq/decisionguide/internal/engine"
)

func openTestStore(t *testing.T, maxEntries int) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"), maxEntries)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleEntry(i int) Entry {
	return Entry{
		Timestamp:   time.Date(2026, 1, 1, 12, 0, i, 0, time.UTC),
		TreeID:      "vendor-risk",
		TreeTitle:   "Vendor Risk Tiering",
		Decision:    fmt.Sprintf("DECISION_%d", i),
		Explanation: "Standard due diligence applies.",
		Path:        []string{"Q1 -> Yes", "Q2 -> No"},
		Answers: []engine.Answer{
			{NodeID: "q1", Choice: "Yes"},
			{NodeID: "q2", Choice: "No"},
		},
	}
}

func TestStore_AppendAndRecent(t *testing.T) {
	store := openTestStore(t, 100)

	for i := 0; i < 3; i++ {
		if err := store.Append(sampleEntry(i)); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := store.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Decision != "DECISION_2" {
		t.Errorf("expected most recent first, got %q", entries[0].Decision)
	}
	if len(entries[0].Path) != 2 || len(entries[0].Answers) != 2 {
		t.Errorf("expected path and answers round trip, got %+v", entries[0])
	}
}

func TestStore_AppendWithScore(t *testing.T) {
	store := openTestStore(t, 100)

	e := sampleEntry(0)
	score := 80
	e.Score = &score
	e.Level = "high"
	if err := store.Append(e); err != nil {
		t.Fatal(err)
	}

	entries, err := store.Recent(1)
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Score == nil || *entries[0].Score != 80 {
		t.Errorf("expected score 80, got %v", entries[0].Score)
	}
	if entries[0].Level != "high" {
		t.Errorf("expected level high, got %q", entries[0].Level)
	}
}

func TestStore_CapEvictsOldest(t *testing.T) {
	store := openTestStore(t, 5)

	for i := 0; i < 8; i++ {
		if err := store.Append(sampleEntry(i)); err != nil {
			t.Fatal(err)
		}
	}

	n, err := store.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Fatalf("expected cap of 5, got %d", n)
	}
	entries, err := store.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if entries[len(entries)-1].Decision != "DECISION_3" {
		t.Errorf("expected oldest surviving entry to be DECISION_3, got %q", entries[len(entries)-1].Decision)
	}
}

func TestStore_SearchByQuery(t *testing.T) {
	store := openTestStore(t, 100)

	e1 := sampleEntry(0)
	e1.Decision = "ACCEPT"
	e2 := sampleEntry(1)
	e2.Decision = "REJECT"
	e2.TreeTitle = "DPIA Requirement"
	for _, e := range []Entry{e1, e2} {
		if err := store.Append(e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.Search(Filter{Query: "reject"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Decision != "REJECT" {
		t.Errorf("expected case-insensitive decision match, got %+v", got)
	}

	got, err = store.Search(Filter{Query: "dpia"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].TreeTitle != "DPIA Requirement" {
		t.Errorf("expected title match, got %+v", got)
	}
}

func TestStore_FilterByTreeAndDecision(t *testing.T) {
	store := openTestStore(t, 100)

	e1 := sampleEntry(0)
	e1.TreeID = "dpia"
	e1.Decision = "DPIA_REQUIRED"
	e2 := sampleEntry(1)
	for _, e := range []Entry{e1, e2} {
		if err := store.Append(e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.Search(Filter{TreeID: "dpia"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].TreeID != "dpia" {
		t.Errorf("expected only dpia entries, got %+v", got)
	}

	got, err = store.Search(Filter{TreeID: "dpia", Decision: "SOMETHING_ELSE"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no matches, got %+v", got)
	}
}

func TestStore_FilterByTimeRange(t *testing.T) {
	store := openTestStore(t, 100)

	for i := 0; i < 5; i++ {
		if err := store.Append(sampleEntry(i)); err != nil {
			t.Fatal(err)
		}
	}

	since := time.Date(2026, 1, 1, 12, 0, 2, 0, time.UTC)
	until := time.Date(2026, 1, 1, 12, 0, 3, 0, time.UTC)
	got, err := store.Search(Filter{Since: since, Until: until})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 entries in range, got %d", len(got))
	}
}

func TestStore_FilterByTimeRangeSubSecond(t *testing.T) {
	store := openTestStore(t, 100)

	e := sampleEntry(0)
	e.Timestamp = time.Date(2026, 8, 31, 10, 0, 0, 500_000_000, time.UTC)
	if err := store.Append(e); err != nil {
		t.Fatal(err)
	}

	since := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	got, err := store.Search(Filter{Since: since})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected sub-second entry to match whole-second since bound, got %d entries", len(got))
	}

	until := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	got, err = store.Search(Filter{Until: until})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("expected sub-second entry to match whole-second until bound, got %d entries", len(got))
	}
}

func TestStore_SearchLimit(t *testing.T) {
	store := openTestStore(t, 100)

	for i := 0; i < 5; i++ {
		if err := store.Append(sampleEntry(i)); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.Search(Filter{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected limit of 2, got %d", len(got))
	}
}

func TestStore_Clear(t *testing.T) {
	store := openTestStore(t, 100)

	if err := store.Append(sampleEntry(0)); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	n, err := store.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected empty store after clear, got %d", n)
	}
}
