package analytics

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/openriskhq/decisionguide/internal/history"
)

func seededStore(t *testing.T, now time.Time) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"), 100)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	entries := []history.Entry{
		{Timestamp: now.Add(-48 * time.Hour), TreeID: "vendor", TreeTitle: "Vendor", Decision: "ACCEPT"},
		{Timestamp: now.Add(-24 * time.Hour), TreeID: "vendor", TreeTitle: "Vendor", Decision: "REJECT"},
		{Timestamp: now.Add(-2 * time.Hour), TreeID: "dpia", TreeTitle: "DPIA", Decision: "ACCEPT"},
		{Timestamp: now.Add(-30 * 24 * time.Hour), TreeID: "vendor", TreeTitle: "Vendor", Decision: "ACCEPT"},
	}
	for _, e := range entries {
		e.Path = []string{"Q1 -> Yes"}
		if err := store.Append(e); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func TestCompute_EmptyStore(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"), 100)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	stats, err := Compute(store.DB(), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalAssessments != 0 {
		t.Errorf("expected 0 assessments, got %d", stats.TotalAssessments)
	}
	if stats.MostUsedTree != "" {
		t.Errorf("expected no most-used tree, got %q", stats.MostUsedTree)
	}
}

func TestCompute_Totals(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	store := seededStore(t, now)

	stats, err := Compute(store.DB(), now)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalAssessments != 4 {
		t.Errorf("expected 4 assessments, got %d", stats.TotalAssessments)
	}
	if stats.TreeUsage["vendor"] != 3 || stats.TreeUsage["dpia"] != 1 {
		t.Errorf("unexpected tree usage: %v", stats.TreeUsage)
	}
	if stats.DecisionCounts["ACCEPT"] != 3 || stats.DecisionCounts["REJECT"] != 1 {
		t.Errorf("unexpected decision counts: %v", stats.DecisionCounts)
	}
}

func TestCompute_RecentActivityWindow(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	store := seededStore(t, now)

	stats, err := Compute(store.DB(), now)
	if err != nil {
		t.Fatal(err)
	}
	if stats.RecentActivityCount != 3 {
		t.Errorf("expected 3 entries within 7 days, got %d", stats.RecentActivityCount)
	}
}

func TestCompute_RecentWindowWithSubSecondNow(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 500_000_000, time.UTC)
	store := seededStore(t, now)

	stats, err := Compute(store.DB(), now)
	if err != nil {
		t.Fatal(err)
	}
	if stats.RecentActivityCount != 3 {
		t.Errorf("expected 3 entries within 7 days of a fractional now, got %d", stats.RecentActivityCount)
	}
}

func TestCompute_MostCommon(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	store := seededStore(t, now)

	stats, err := Compute(store.DB(), now)
	if err != nil {
		t.Fatal(err)
	}
	if stats.MostUsedTree != "vendor" {
		t.Errorf("expected vendor as most used, got %q", stats.MostUsedTree)
	}
	if stats.MostCommonDecision != "ACCEPT" {
		t.Errorf("expected ACCEPT as most common, got %q", stats.MostCommonDecision)
	}
}

func TestCompute_DailyActivity(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	store := seededStore(t, now)

	stats, err := Compute(store.DB(), now)
	if err != nil {
		t.Fatal(err)
	}
	if stats.DailyActivity["2026-01-31"] != 1 {
		t.Errorf("expected 1 assessment on 2026-01-31, got %v", stats.DailyActivity)
	}
	total := 0
	for _, n := range stats.DailyActivity {
		total += n
	}
	if total != 4 {
		t.Errorf("expected daily counts to sum to 4, got %d", total)
	}
}

func TestCompute_UsageRange(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	store := seededStore(t, now)

	stats, err := Compute(store.DB(), now)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FirstUse == "" || stats.LastUse == "" {
		t.Errorf("expected first/last use to be set, got %q / %q", stats.FirstUse, stats.LastUse)
	}
	if stats.FirstUse > stats.LastUse {
		t.Errorf("expected first use before last use, got %q > %q", stats.FirstUse, stats.LastUse)
	}
}
