// Package collect implements the six specialized collectors the stats
// facade composes: Repo, Contribution, CodeChange, Traffic, Engagement and
// CommitSchedule. Each memoizes its own result so repeated facade
// accessors within one request never re-hit the network, mirroring the
// Optional[...]-guarded properties in
// original_source/src/core/*_collector.py.
package collect

import (
	"context"
	"sync"

	"github.com/samber/lo"

	"github.com/leonardokr/ghstats/client"
	"github.com/leonardokr/ghstats/domain/ghstats"
	"github.com/leonardokr/ghstats/privacy"
)

// RepoCollector fetches and caches the viewer's repository list, applying
// scope filtering once and exposing the filtered set plus values derived
// from it (full names, total stars, total forks).
type RepoCollector struct {
	gh     *client.Client
	filter *privacy.Filter
	login  string

	once  sync.Once
	repos []ghstats.Repository
	err   error
}

// NewRepoCollector builds a RepoCollector for login, filtered by filter.
func NewRepoCollector(gh *client.Client, login string, filter *privacy.Filter) *RepoCollector {
	return &RepoCollector{gh: gh, filter: filter, login: login}
}

// Repositories returns the filtered repository list, fetching and
// memoizing it on first call.
func (c *RepoCollector) Repositories(ctx context.Context) ([]ghstats.Repository, error) {
	c.once.Do(func() {
		all, err := c.gh.ListRepositories(ctx, c.login)
		if err != nil {
			c.err = err
			return
		}
		isContributorRepo := func(r ghstats.Repository) bool { return r.Owner != c.login }
		c.repos = c.filter.Apply(all, isContributorRepo)
	})
	return c.repos, c.err
}

// FullNames returns the full_name of every filtered repository.
func (c *RepoCollector) FullNames(ctx context.Context) ([]string, error) {
	repos, err := c.Repositories(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(repos, func(r ghstats.Repository, _ int) string { return r.FullName }), nil
}

// TotalStars sums stargazer counts across the filtered repository set.
func (c *RepoCollector) TotalStars(ctx context.Context) (int, error) {
	repos, err := c.Repositories(ctx)
	if err != nil {
		return 0, err
	}
	return lo.SumBy(repos, func(r ghstats.Repository) int { return r.Stargazers }), nil
}

// TotalForks sums fork counts across the filtered repository set.
func (c *RepoCollector) TotalForks(ctx context.Context) (int, error) {
	repos, err := c.Repositories(ctx)
	if err != nil {
		return 0, err
	}
	return lo.SumBy(repos, func(r ghstats.Repository) int { return r.Forks }), nil
}
