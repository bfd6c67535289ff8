package collect

import (
	"context"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/leonardokr/ghstats/client"
)

// EngagementCollector fetches pull request, issue and collaborator counts
// across a repository set, grounded on
// original_source/src/core/engagement_collector.py.
type EngagementCollector struct {
	gh          *client.Client
	moreCollabs int

	oncePRs     sync.Once
	onceIssues  sync.Once
	onceCollabs sync.Once

	prs           int
	issues        int
	collaborators int
	prsErr        error
	issuesErr     error
	collabsErr    error
}

// NewEngagementCollector builds a collector; moreCollabs is an operator
// override added on top of the union of observed collaborators and
// contributors, matching the original's more_collabs environment setting.
func NewEngagementCollector(gh *client.Client, moreCollabs int) *EngagementCollector {
	return &EngagementCollector{gh: gh, moreCollabs: moreCollabs}
}

// PullRequests counts pull requests (state=all) across repos.
func (c *EngagementCollector) PullRequests(ctx context.Context, repos []string) (int, error) {
	c.oncePRs.Do(func() {
		total := 0
		for _, fullName := range repos {
			owner, repo, ok := splitFullName(fullName)
			if !ok {
				continue
			}
			prs, err := c.gh.RepositoryPullRequests(ctx, owner, repo)
			if err != nil {
				c.prsErr = err
				return
			}
			total += len(prs)
		}
		c.prs = total
	})
	return c.prs, c.prsErr
}

// Issues counts issues (excluding pull requests) across repos, using the
// original's "/issues/" URL-segment discrimination since GitHub's REST
// issues listing includes pull requests.
func (c *EngagementCollector) Issues(ctx context.Context, repos []string) (int, error) {
	c.onceIssues.Do(func() {
		total := 0
		for _, fullName := range repos {
			owner, repo, ok := splitFullName(fullName)
			if !ok {
				continue
			}
			items, err := c.gh.RepositoryIssues(ctx, owner, repo)
			if err != nil {
				c.issuesErr = err
				return
			}
			for _, item := range items {
				if isIssueURL(item.HTMLURL) {
					total++
				}
			}
		}
		c.issues = total
	})
	return c.issues, c.issuesErr
}

// Collaborators returns the union of observed collaborators and
// contributors, minus the caller themself, plus the configured
// more_collabs offset.
func (c *EngagementCollector) Collaborators(ctx context.Context, repos []string, contributors []string) (int, error) {
	c.onceCollabs.Do(func() {
		collabSet := map[string]struct{}{}
		for _, fullName := range repos {
			owner, repo, ok := splitFullName(fullName)
			if !ok {
				continue
			}
			list, err := c.gh.RepositoryCollaborators(ctx, owner, repo)
			if err != nil {
				c.collabsErr = err
				return
			}
			for _, collab := range list {
				collabSet[collab.Login] = struct{}{}
			}
		}
		union := lo.Union(lo.Keys(collabSet), contributors)
		n := len(union) - 1
		if n < 0 {
			n = 0
		}
		c.collaborators = c.moreCollabs + n
	})
	return c.collaborators, c.collabsErr
}

// isIssueURL reports whether a REST issue/PR html_url belongs to the
// issues tracker rather than a pull request, matching the original's
// "/issues/" URL discrimination trick applied to the REST issues listing
// (which includes PRs).
func isIssueURL(htmlURL string) bool {
	parts := strings.Split(strings.TrimSuffix(htmlURL, "/"), "/")
	if len(parts) < 2 {
		return false
	}
	return parts[len(parts)-2] == "issues"
}
