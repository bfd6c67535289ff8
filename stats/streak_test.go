package stats

import (
	"testing"
	"time"

	"github.com/leonardokr/ghstats/domain/ghstats"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse(dateFormat, s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return tm
}

func TestComputeStreaksCurrentContinuesThroughToday(t *testing.T) {
	now := mustParse(t, "2026-07-30")
	days := []ghstats.ContributionDay{
		{Date: "2026-07-27", Count: 1},
		{Date: "2026-07-28", Count: 2},
		{Date: "2026-07-29", Count: 1},
		{Date: "2026-07-30", Count: 3},
	}
	res := ComputeStreaks(days, now)
	if res.Current.Length != 4 {
		t.Fatalf("expected current streak of 4, got %d", res.Current.Length)
	}
	if res.Longest.Length != 4 {
		t.Fatalf("expected longest streak of 4, got %d", res.Longest.Length)
	}
}

func TestComputeStreaksResetsWhenStaleLastDay(t *testing.T) {
	now := mustParse(t, "2026-07-30")
	days := []ghstats.ContributionDay{
		{Date: "2026-07-20", Count: 1},
		{Date: "2026-07-21", Count: 1},
		{Date: "2026-07-22", Count: 0},
	}
	res := ComputeStreaks(days, now)
	if res.Current.Length != 0 {
		t.Fatalf("expected current streak reset to 0 when last day is stale, got %d", res.Current.Length)
	}
	if res.Longest.Length != 2 {
		t.Fatalf("expected longest streak of 2, got %d", res.Longest.Length)
	}
}

func TestComputeStreaksLongestSurvivesGapBeforeToday(t *testing.T) {
	now := mustParse(t, "2026-07-30")
	days := []ghstats.ContributionDay{
		{Date: "2026-07-10", Count: 1},
		{Date: "2026-07-11", Count: 1},
		{Date: "2026-07-12", Count: 1},
		{Date: "2026-07-13", Count: 1},
		{Date: "2026-07-14", Count: 0},
		{Date: "2026-07-30", Count: 1},
	}
	res := ComputeStreaks(days, now)
	if res.Longest.Length != 4 {
		t.Fatalf("expected longest streak of 4, got %d", res.Longest.Length)
	}
	if res.Current.Length != 1 {
		t.Fatalf("expected current streak of 1, got %d", res.Current.Length)
	}
}

func TestFormatDateRange(t *testing.T) {
	if got := FormatDateRange("", ""); got != "No streak" {
		t.Fatalf("expected No streak, got %s", got)
	}
	if got := FormatDateRange("2026-07-01", "2026-07-10"); got != "Jul 01 - Jul 10, 2026" {
		t.Fatalf("unexpected same-year range: %s", got)
	}
	if got := FormatDateRange("2025-12-30", "2026-01-02"); got != "Dec 30, 2025 - Jan 02, 2026" {
		t.Fatalf("unexpected cross-year range: %s", got)
	}
}

func TestRecentContributionsCapsAtTenAndExcludesFuture(t *testing.T) {
	now := mustParse(t, "2026-07-30")
	var days []ghstats.ContributionDay
	for i := 1; i <= 15; i++ {
		days = append(days, ghstats.ContributionDay{Date: time.Date(2026, 7, i, 0, 0, 0, 0, time.UTC).Format(dateFormat), Count: i})
	}
	days = append(days, ghstats.ContributionDay{Date: "2026-08-05", Count: 99})
	recent := RecentContributions(days, now)
	if len(recent) != 10 {
		t.Fatalf("expected 10 recent days, got %d", len(recent))
	}
	if recent[len(recent)-1] != 15 {
		t.Fatalf("expected last recent count to be from Jul 15, got %d", recent[len(recent)-1])
	}
}
