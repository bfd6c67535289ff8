package collect

import (
	"context"
	"fmt"
	"sync"

	"github.com/leonardokr/ghstats/client"
	"github.com/leonardokr/ghstats/domain/ghstats"
)

// CodeChangeResult bundles the user's own lines changed against the
// repository-wide total, plus the derived percentages, matching
// original_source/src/core/code_change_analyzer.py.
type CodeChangeResult struct {
	UserAdditions, UserDeletions   int
	TotalAdditions, TotalDeletions int
	ContributionsPercentage        string
	AveragePercent                 string
	Contributors                   []string
}

// CodeChangeCollector derives lines-changed metrics from GitHub's weekly
// contributor stats endpoint.
type CodeChangeCollector struct {
	gh       *client.Client
	username string

	once   sync.Once
	result CodeChangeResult
	err    error
}

// NewCodeChangeCollector builds a collector scoped to username's own
// contributions.
func NewCodeChangeCollector(gh *client.Client, username string) *CodeChangeCollector {
	return &CodeChangeCollector{gh: gh, username: username}
}

// Analyze walks every non-empty repository's contributor stats once,
// accumulating the user's own additions/deletions against repo-wide
// totals, and memoizes the result.
func (c *CodeChangeCollector) Analyze(ctx context.Context, repos []ghstats.Repository) (CodeChangeResult, error) {
	c.once.Do(func() {
		c.result, c.err = c.analyze(ctx, repos)
	})
	return c.result, c.err
}

func (c *CodeChangeCollector) analyze(ctx context.Context, repos []ghstats.Repository) (CodeChangeResult, error) {
	contributors := map[string]struct{}{}
	var userAdditions, userDeletions, totalAdditions, totalDeletions int
	var totalPercentage float64
	nonEmptyCount := 0

	for _, repo := range repos {
		if repo.Empty {
			continue
		}
		nonEmptyCount++

		owner, name := repo.Owner, repo.Name
		weeks, err := c.gh.RepositoryContributorStats(ctx, owner, name)
		if err != nil {
			return CodeChangeResult{}, fmt.Errorf("contributor stats for %s: %w", repo.FullName, err)
		}

		var authorTotalChanges, repoTotalChanges int
		for _, authorStats := range weeks {
			login := authorStats.Author.Login
			if login == "" {
				continue
			}
			contributors[login] = struct{}{}

			if login != c.username {
				for _, wk := range authorStats.Weeks {
					totalAdditions += wk.Additions
					totalDeletions += wk.Deletions
					repoTotalChanges += wk.Additions + wk.Deletions
				}
				continue
			}
			for _, wk := range authorStats.Weeks {
				userAdditions += wk.Additions
				userDeletions += wk.Deletions
				authorTotalChanges += wk.Additions + wk.Deletions
			}
		}
		repoTotalChanges += authorTotalChanges
		if authorTotalChanges > 0 && repoTotalChanges > 0 {
			totalPercentage += float64(authorTotalChanges) / float64(repoTotalChanges)
		}
	}

	if totalPercentage > 0 && nonEmptyCount > 0 {
		totalPercentage /= float64(nonEmptyCount)
	} else {
		totalPercentage = 0
	}

	totalAdditions += userAdditions
	totalDeletions += userDeletions

	userChanges := userAdditions + userDeletions
	totalChanges := totalAdditions + totalDeletions
	var contribPercent float64
	if userChanges > 0 && totalChanges > 0 {
		contribPercent = float64(userChanges) / float64(totalChanges) * 100
	}

	names := make([]string, 0, len(contributors))
	for login := range contributors {
		names = append(names, login)
	}

	return CodeChangeResult{
		UserAdditions:            userAdditions,
		UserDeletions:            userDeletions,
		TotalAdditions:           totalAdditions,
		TotalDeletions:           totalDeletions,
		ContributionsPercentage:  fmt.Sprintf("%.2f%%", contribPercent),
		AveragePercent:           fmt.Sprintf("%.2f%%", totalPercentage*100),
		Contributors:             names,
	}, nil
}
