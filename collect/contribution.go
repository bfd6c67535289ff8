package collect

import (
	"context"
	"sync"
	"time"

	"github.com/leonardokr/ghstats/client"
	"github.com/leonardokr/ghstats/domain/ghstats"
	"github.com/leonardokr/ghstats/stats"
)

// ContributionCollector fetches the contribution calendar once per request
// and derives total contributions, streaks and the recent-contributions
// window from it, grounded on
// original_source/src/core/contribution_tracker.py.
type ContributionCollector struct {
	gh    *client.Client
	login string
	years int

	once  sync.Once
	days  []ghstats.ContributionDay
	err   error
}

// NewContributionCollector builds a collector that looks back yearsBack
// full years plus the current year-to-date.
func NewContributionCollector(gh *client.Client, login string, yearsBack int) *ContributionCollector {
	return &ContributionCollector{gh: gh, login: login, years: yearsBack}
}

// Calendar returns the full flattened contribution calendar, fetching and
// memoizing it on first call.
func (c *ContributionCollector) Calendar(ctx context.Context) ([]ghstats.ContributionDay, error) {
	c.once.Do(func() {
		now := time.Now().UTC()
		from := time.Date(now.Year()-c.years, 1, 1, 0, 0, 0, 0, time.UTC)
		c.days, c.err = c.gh.ContributionCalendar(ctx, c.login, from, now)
	})
	return c.days, c.err
}

// TotalContributions sums every day's count in the calendar.
func (c *ContributionCollector) TotalContributions(ctx context.Context) (int, error) {
	days, err := c.Calendar(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, d := range days {
		total += d.Count
	}
	return total, nil
}

// Streaks computes current/longest streaks as of now.
func (c *ContributionCollector) Streaks(ctx context.Context, now time.Time) (stats.StreakResult, error) {
	days, err := c.Calendar(ctx)
	if err != nil {
		return stats.StreakResult{}, err
	}
	return stats.ComputeStreaks(days, now), nil
}

// RecentContributions returns up to the last 10 days at or before now.
func (c *ContributionCollector) RecentContributions(ctx context.Context, now time.Time) ([]int, error) {
	days, err := c.Calendar(ctx)
	if err != nil {
		return nil, err
	}
	return stats.RecentContributions(days, now), nil
}
