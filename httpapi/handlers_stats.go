package httpapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/leonardokr/ghstats/cache"
	"github.com/leonardokr/ghstats/collect"
	"github.com/leonardokr/ghstats/domain/ghstats"
	"github.com/leonardokr/ghstats/privacy"
	"github.com/leonardokr/ghstats/stats"
)

func maskCommitScheduleEntry(entry collect.CommitScheduleEntry, ownsRepo bool) collect.CommitScheduleEntry {
	return collect.MaskEntry(entry, ownsRepo)
}

// cached runs build only on a cache miss (or when the no_cache=true query
// bypass is set), marshaling/caching the result and setting X-Cache plus
// the rate-limit headers every response carries per spec §6.
func (s *Server) cached(c echo.Context, endpoint string, build func() (any, error)) error {
	username := c.Param("username")
	ownsRepo, _ := c.Get("owns_repo").(bool)
	key := endpointKey(endpoint, username, ownsRepo, c.QueryString())
	noCache := c.QueryParam("no_cache") == "true"

	s.setRateLimitHeaders(c)

	if !noCache {
		if raw, hit := s.cache.Get(key); hit {
			c.Response().Header().Set("X-Cache", "HIT")
			return c.JSONBlob(http.StatusOK, raw)
		}
	}

	value, err := build()
	if err != nil {
		return writeErr(c, err)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return writeErr(c, err)
	}
	s.cache.Set(key, raw)
	c.Response().Header().Set("X-Cache", "MISS")
	return c.JSONBlob(http.StatusOK, raw)
}

// endpointKey scopes the cache entry to the requesting username, the exact
// query string, and the resolved ownsRepo scope, via cache.Key's
// sha256-of-"cache:user:endpoint" convention. ownsRepo must be folded in:
// the payload's private-repo masking (maskRepos, maskCommitScheduleEntry)
// keys off it, and it comes from the X-GitHub-Token header rather than the
// query string, so omitting it would let an owner's unmasked response get
// served back to a later anonymous caller of the same endpoint.
func endpointKey(endpoint, username string, ownsRepo bool, query string) string {
	scope := "anon"
	if ownsRepo {
		scope = "owner"
	}
	return cache.Key(username, endpoint+"?"+query+"&scope="+scope)
}

func (s *Server) setRateLimitHeaders(c echo.Context) {
	health := s.gh.HealthSnapshot()
	if health.RateLimit == ghstats.RateLimitUnknown {
		return
	}
	h := c.Response().Header()
	h.Set("X-GitHub-RateLimit-State", string(health.RateLimit))
	if snap, observed := s.gh.RateLimitSnapshot(); observed {
		h.Set("X-GitHub-RateLimit-Remaining", strconv.Itoa(snap.Remaining))
		h.Set("X-GitHub-RateLimit-Limit", strconv.Itoa(snap.Limit))
		h.Set("X-GitHub-RateLimit-Reset", strconv.FormatInt(snap.ResetEpoch, 10))
	}
}

func (s *Server) handleOverview(c echo.Context) error {
	username := c.Param("username")
	f := s.facades(username)
	return s.cached(c, "overview", func() (any, error) {
		summary := f.Build(c.Request().Context(), time.Now())
		return map[string]any{
			"total_stars":         summary.TotalStars,
			"total_forks":         summary.TotalForks,
			"total_contributions": summary.TotalContributions,
			"current_streak":      summary.CurrentStreak,
			"longest_streak":      summary.LongestStreak,
			"pull_requests":       summary.PullRequests,
			"issues":              summary.Issues,
			"collaborators":       summary.Collaborators,
			"warnings":            summary.Warnings,
		}, nil
	})
}

func (s *Server) handleLanguages(c echo.Context) error {
	username := c.Param("username")
	f := s.facades(username)
	proportional := c.QueryParam("proportional") == "true" || c.QueryParam("proportional") == "1"
	return s.cached(c, "languages", func() (any, error) {
		repos, err := f.RepositoryList(c.Request().Context())
		if err != nil {
			return nil, err
		}
		languages := stats.AggregateLanguages(repos)
		if !proportional {
			return languages, nil
		}
		out := make([]map[string]any, len(languages))
		for i, l := range languages {
			out[i] = map[string]any{"name": l.Name, "proportion": l.Proportion, "color": l.Color}
		}
		return out, nil
	})
}

func (s *Server) handleStreak(c echo.Context) error {
	username := c.Param("username")
	f := s.facades(username)
	return s.cached(c, "streak", func() (any, error) {
		result, err := f.ContributionStreaks(c.Request().Context(), time.Now())
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"current_streak":      result.Current,
			"longest_streak":      result.Longest,
			"current_streak_range": stats.FormatDateRange(result.Current.StartDate, result.Current.EndDate),
			"longest_streak_range": stats.FormatDateRange(result.Longest.StartDate, result.Longest.EndDate),
		}, nil
	})
}

func (s *Server) handleRecentContributions(c echo.Context) error {
	username := c.Param("username")
	f := s.facades(username)
	return s.cached(c, "contributions/recent", func() (any, error) {
		return f.RecentContributionCounts(c.Request().Context(), time.Now())
	})
}

func (s *Server) handleWeeklyCommits(c echo.Context) error {
	username := c.Param("username")
	f := s.facades(username)
	ownsRepo, _ := c.Get("owns_repo").(bool)
	return s.cached(c, "commits/weekly", func() (any, error) {
		entries, err := f.WeeklyCommits(c.Request().Context(), username, time.Local)
		if err != nil {
			return nil, err
		}
		masked := make([]any, len(entries))
		for i, e := range entries {
			m := maskCommitScheduleEntry(e, ownsRepo)
			masked[i] = m
		}
		return masked, nil
	})
}

func (s *Server) handleRepositories(c echo.Context) error {
	username := c.Param("username")
	f := s.facades(username)
	ownsRepo, _ := c.Get("owns_repo").(bool)
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 30)
	return s.cached(c, "repositories", func() (any, error) {
		repos, err := f.RepositoryList(c.Request().Context())
		if err != nil {
			return nil, err
		}
		repos = maskRepos(repos, username, ownsRepo)
		return paginate(repos, page, perPage), nil
	})
}

func (s *Server) handleRepositoriesDetailed(c echo.Context) error {
	username := c.Param("username")
	f := s.facades(username)
	ownsRepo, _ := c.Get("owns_repo").(bool)
	visibility := c.QueryParam("visibility")
	sortBy := c.QueryParam("sort")
	excludeForks := c.QueryParam("exclude_forks") == "true"
	excludeArchived := c.QueryParam("exclude_archived") == "true"
	limit := queryInt(c, "limit", 0)
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 30)

	return s.cached(c, "repositories/detailed", func() (any, error) {
		repos, err := f.RepositoryList(c.Request().Context())
		if err != nil {
			return nil, err
		}
		repos = filterDetailed(repos, visibility, excludeForks, excludeArchived)
		sortRepos(repos, sortBy)
		if limit > 0 && len(repos) > limit {
			repos = repos[:limit]
		}
		repos = maskRepos(repos, username, ownsRepo)
		return paginate(repos, page, perPage), nil
	})
}

func (s *Server) handleStatsFull(c echo.Context) error {
	username := c.Param("username")
	f := s.facades(username)
	return s.cached(c, "stats/full", func() (any, error) {
		return f.Build(c.Request().Context(), time.Now()), nil
	})
}

func (s *Server) handleCompare(c echo.Context) error {
	username := c.Param("username")
	other := c.Param("other")
	if !validUsername(other) {
		return echo.NewHTTPError(422, "invalid comparison username")
	}
	fa := s.facades(username)
	fb := s.facades(other)
	return s.cached(c, "compare/"+other, func() (any, error) {
		now := time.Now()
		ctx := c.Request().Context()
		a := fa.Build(ctx, now)
		b := fb.Build(ctx, now)
		return map[string]any{username: a, other: b}, nil
	})
}

func queryInt(c echo.Context, name string, fallback int) int {
	v := c.QueryParam(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func paginate(repos []ghstats.Repository, page, perPage int) map[string]any {
	if perPage <= 0 {
		perPage = 30
	}
	start := (page - 1) * perPage
	if start < 0 || start >= len(repos) {
		return map[string]any{"items": []ghstats.Repository{}, "page": page, "per_page": perPage, "total": len(repos)}
	}
	end := start + perPage
	if end > len(repos) {
		end = len(repos)
	}
	return map[string]any{"items": repos[start:end], "page": page, "per_page": perPage, "total": len(repos)}
}

func filterDetailed(repos []ghstats.Repository, visibility string, excludeForks, excludeArchived bool) []ghstats.Repository {
	out := repos[:0:0]
	for _, r := range repos {
		if excludeForks && r.Fork {
			continue
		}
		if excludeArchived && r.Archived {
			continue
		}
		switch strings.ToLower(visibility) {
		case "public":
			if r.Private {
				continue
			}
		case "private":
			if !r.Private {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

func sortRepos(repos []ghstats.Repository, sortBy string) {
	switch sortBy {
	case "stars":
		sort.Slice(repos, func(i, j int) bool { return repos[i].Stargazers > repos[j].Stargazers })
	case "forks":
		sort.Slice(repos, func(i, j int) bool { return repos[i].Forks > repos[j].Forks })
	case "name":
		sort.Slice(repos, func(i, j int) bool { return repos[i].Name < repos[j].Name })
	}
}

func maskRepos(repos []ghstats.Repository, username string, ownsRepo bool) []ghstats.Repository {
	return privacy.Mask(repos, username, func(ghstats.Repository) bool { return ownsRepo })
}
