package collect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/leonardokr/ghstats/client"
	"github.com/leonardokr/ghstats/domain/ghstats"
	"github.com/leonardokr/ghstats/store"
)

// TrafficCollector accumulates views/clones across repositories into the
// persistent TrafficStore, grounded on
// original_source/src/core/traffic_collector.py's accumulate-past-last_date
// behavior.
type TrafficCollector struct {
	gh       *client.Client
	traffic  *store.TrafficStore
	username string

	onceViews  sync.Once
	onceClones sync.Once
	views      ghstats.TrafficCounter
	clones     ghstats.TrafficCounter
	viewsErr   error
	clonesErr  error
}

// NewTrafficCollector builds a collector persisting counters under
// username in traffic.
func NewTrafficCollector(gh *client.Client, traffic *store.TrafficStore, username string) *TrafficCollector {
	return &TrafficCollector{gh: gh, traffic: traffic, username: username}
}

// Views returns the cumulative view count across repos, fetching today's
// and accumulating any days newer than the stored last-seen date.
func (c *TrafficCollector) Views(ctx context.Context, repos []string, now time.Time) (ghstats.TrafficCounter, error) {
	c.onceViews.Do(func() {
		c.views, c.viewsErr = c.accumulate(ctx, repos, now, "views", c.gh.RepositoryViews)
	})
	return c.views, c.viewsErr
}

// Clones returns the cumulative clone count across repos.
func (c *TrafficCollector) Clones(ctx context.Context, repos []string, now time.Time) (ghstats.TrafficCounter, error) {
	c.onceClones.Do(func() {
		c.clones, c.clonesErr = c.accumulate(ctx, repos, now, "clones", c.gh.RepositoryClones)
	})
	return c.clones, c.clonesErr
}

type trafficFetcher func(ctx context.Context, owner, repo string) ([]client.TrafficPoint, error)

func (c *TrafficCollector) accumulate(ctx context.Context, repos []string, now time.Time, metric string, fetch trafficFetcher) (ghstats.TrafficCounter, error) {
	today := now.UTC().Format("2006-01-02")
	yesterday := store.Yesterday(now)

	var todayCount int
	seenDates := map[string]struct{}{yesterday: {}}

	for _, fullName := range repos {
		owner, name, ok := splitFullName(fullName)
		if !ok {
			continue
		}
		points, err := fetch(ctx, owner, name)
		if err != nil {
			return ghstats.TrafficCounter{}, fmt.Errorf("%s for %s: %w", metric, fullName, err)
		}
		existing, err := c.traffic.Get(c.username, fullName, metric)
		if err != nil {
			return ghstats.TrafficCounter{}, err
		}
		lastDate := existing.LastSeen
		for _, p := range points {
			ts := p.Timestamp
			if len(ts) > 10 {
				ts = ts[:10]
			}
			switch {
			case ts == today:
				todayCount += p.Count
			case ts > lastDate:
				if err := c.traffic.Accumulate(c.username, fullName, metric, p.Count, ts); err != nil {
					return ghstats.TrafficCounter{}, err
				}
				seenDates[ts] = struct{}{}
			}
		}
	}

	total, err := c.mergedCounter(repos, metric)
	if err != nil {
		return ghstats.TrafficCounter{}, err
	}
	total.Cumulative += todayCount
	return total, nil
}

// mergedCounter sums the stored per-repo counters for metric across repos
// and resolves the earliest first-seen date among them.
func (c *TrafficCollector) mergedCounter(repos []string, metric string) (ghstats.TrafficCounter, error) {
	result := ghstats.TrafficCounter{Metric: metric, FirstSeen: "9999-99-99"}
	for _, fullName := range repos {
		counter, err := c.traffic.Get(c.username, fullName, metric)
		if err != nil {
			return ghstats.TrafficCounter{}, err
		}
		result.Cumulative += counter.Cumulative
		if counter.FirstSeen != "" && counter.FirstSeen < result.FirstSeen {
			result.FirstSeen = counter.FirstSeen
		}
		if counter.LastSeen > result.LastSeen {
			result.LastSeen = counter.LastSeen
		}
	}
	if result.FirstSeen == "9999-99-99" {
		result.FirstSeen = "0000-00-00"
	}
	return result, nil
}

func splitFullName(fullName string) (owner, repo string, ok bool) {
	for i := 0; i < len(fullName); i++ {
		if fullName[i] == '/' {
			return fullName[:i], fullName[i+1:], true
		}
	}
	return "", "", false
}
