// Package stats composes the collectors behind a lazily-memoized facade
// and implements the derived calculations (streaks, recent-contribution
// windows, language proportions) the spec requires.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/leonardokr/ghstats/domain/ghstats"
)

const dateFormat = "2006-01-02"

// StreakResult bundles the current and longest streak together with the
// raw, date-sorted calendar they were computed from.
type StreakResult struct {
	Current ghstats.Streak
	Longest ghstats.Streak
	Days    []ghstats.ContributionDay
}

// ComputeStreaks ports the exact single left-to-right-pass algorithm from
// the original contribution tracker: a streak continues across any day
// with Count > 0, the current streak is captured when the streak reaches
// today or the last recorded day, and finally reset to zero if the last
// recorded day in the calendar is older than yesterday.
func ComputeStreaks(days []ghstats.ContributionDay, now time.Time) StreakResult {
	sorted := make([]ghstats.ContributionDay, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	today := now.UTC().Format(dateFormat)

	var (
		currentLen, longestLen     int
		currentStart, currentEnd   string
		longestStart, longestEnd   string
		tempLen                    int
		tempStart                  string
	)

	for i, day := range sorted {
		if day.Count > 0 {
			if tempLen == 0 {
				tempStart = day.Date
			}
			tempLen++
			if tempLen > longestLen {
				longestLen = tempLen
				longestStart = tempStart
				longestEnd = day.Date
			}
			if day.Date == today || i == len(sorted)-1 {
				currentLen = tempLen
				currentStart = tempStart
				currentEnd = day.Date
			}
		} else if i < len(sorted)-1 || day.Date == today {
			tempLen = 0
			tempStart = ""
		}
	}

	yesterday := now.UTC().AddDate(0, 0, -1).Format(dateFormat)
	if len(sorted) > 0 && sorted[len(sorted)-1].Date < yesterday {
		currentLen, currentStart, currentEnd = 0, "", ""
	}

	return StreakResult{
		Current: ghstats.Streak{Length: currentLen, StartDate: currentStart, EndDate: currentEnd},
		Longest: ghstats.Streak{Length: longestLen, StartDate: longestStart, EndDate: longestEnd},
		Days:    sorted,
	}
}

// FormatDateRange renders a streak's start/end as the display string the
// original tool produces, e.g. "Jan 02 - Jan 10, 2026" or, when the streak
// spans a year boundary, "Jan 02, 2025 - Jan 10, 2026". Returns "No streak"
// when either bound is empty.
func FormatDateRange(start, end string) string {
	if start == "" || end == "" {
		return "No streak"
	}
	s, err1 := time.Parse(dateFormat, start)
	e, err2 := time.Parse(dateFormat, end)
	if err1 != nil || err2 != nil {
		return "No streak"
	}
	startFmt := s.Format("Jan 02")
	endFmt := e.Format("Jan 02, 2006")
	if s.Year() != e.Year() {
		startFmt = s.Format("Jan 02, 2006")
	}
	return fmt.Sprintf("%s - %s", startFmt, endFmt)
}

// RecentContributions returns the contribution counts for up to the last 10
// days at or before now, oldest first, matching get_recent_contributions.
func RecentContributions(days []ghstats.ContributionDay, now time.Time) []int {
	sorted := make([]ghstats.ContributionDay, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	today := now.UTC().Format(dateFormat)
	var past []ghstats.ContributionDay
	for _, d := range sorted {
		if d.Date <= today {
			past = append(past, d)
		}
	}
	if len(past) > 10 {
		past = past[len(past)-10:]
	}
	counts := make([]int, len(past))
	for i, d := range past {
		counts[i] = d.Count
	}
	return counts
}
