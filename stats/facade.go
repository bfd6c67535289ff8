package stats

import (
	"context"
	"time"

	"github.com/leonardokr/ghstats/client"
	"github.com/leonardokr/ghstats/collect"
	"github.com/leonardokr/ghstats/domain/ghstats"
	"github.com/leonardokr/ghstats/partial"
	"github.com/leonardokr/ghstats/privacy"
	"github.com/leonardokr/ghstats/store"
)

// Facade composes every collector behind one entry point for a single
// resolved (token, username) pair, lazily fetching and memoizing each
// section independently so a caller that only wants the languages
// endpoint never pays for a traffic or engagement fetch.
type Facade struct {
	repo       *collect.RepoCollector
	contrib    *collect.ContributionCollector
	codeChange *collect.CodeChangeCollector
	traffic    *collect.TrafficCollector
	engagement *collect.EngagementCollector
	schedule   *collect.CommitScheduleCollector

	username string
	location *time.Location
}

// NewFacade wires every collector for username using gh as the GitHub
// client, persisting traffic counters in trafficStore.
func NewFacade(gh *client.Client, trafficStore *store.TrafficStore, username string, filter *privacy.Filter, yearsBack, moreCollabs int, loc *time.Location) *Facade {
	return &Facade{
		repo:       collect.NewRepoCollector(gh, username, filter),
		contrib:    collect.NewContributionCollector(gh, username, yearsBack),
		codeChange: collect.NewCodeChangeCollector(gh, username),
		traffic:    collect.NewTrafficCollector(gh, trafficStore, username),
		engagement: collect.NewEngagementCollector(gh, moreCollabs),
		schedule:   collect.NewCommitScheduleCollector(gh),
		username:   username,
		location:   loc,
	}
}

// Summary is the full, partially-degradable statistics payload the
// /stats/full endpoint returns.
type Summary struct {
	TotalStars           int                           `json:"total_stars"`
	TotalForks           int                           `json:"total_forks"`
	Languages            []ghstats.LanguageAggregate    `json:"languages"`
	TotalContributions   int                            `json:"total_contributions"`
	CurrentStreak        ghstats.Streak                 `json:"current_streak"`
	LongestStreak        ghstats.Streak                 `json:"longest_streak"`
	CurrentStreakRange   string                         `json:"current_streak_range"`
	LongestStreakRange   string                         `json:"longest_streak_range"`
	RecentContributions  []int                          `json:"recent_contributions"`
	LinesAdded           int                            `json:"lines_added"`
	LinesDeleted         int                            `json:"lines_deleted"`
	ContributionsPercent string                         `json:"contributions_percentage"`
	Views                ghstats.TrafficCounter         `json:"views"`
	Clones               ghstats.TrafficCounter         `json:"clones"`
	PullRequests         int                            `json:"pull_requests"`
	Issues               int                            `json:"issues"`
	Collaborators        int                            `json:"collaborators"`
	CommitSchedule       []collect.CommitScheduleEntry  `json:"commit_schedule"`
	Warnings             []string                       `json:"warnings,omitempty"`
}

// Build assembles the full summary, degrading gracefully (via partial.Try)
// when any individual section fails.
func (f *Facade) Build(ctx context.Context, now time.Time) Summary {
	var warnings []string

	repos, repoWarnings := partial.Try("repositories", []ghstats.Repository(nil), func() ([]ghstats.Repository, error) {
		return f.repo.Repositories(ctx)
	})
	warnings = partial.Collect(warnings, repoWarnings)

	fullNames, _ := partial.Try("repository_names", []string(nil), func() ([]string, error) {
		return f.repo.FullNames(ctx)
	})

	totalStars, w := partial.Try("total_stars", 0, func() (int, error) { return f.repo.TotalStars(ctx) })
	warnings = partial.Collect(warnings, w)
	totalForks, w := partial.Try("total_forks", 0, func() (int, error) { return f.repo.TotalForks(ctx) })
	warnings = partial.Collect(warnings, w)

	languages, w := partial.Try("languages", []ghstats.LanguageAggregate(nil), func() ([]ghstats.LanguageAggregate, error) {
		return AggregateLanguages(repos), nil
	})
	warnings = partial.Collect(warnings, w)

	totalContribs, w := partial.Try("total_contributions", 0, func() (int, error) { return f.contrib.TotalContributions(ctx) })
	warnings = partial.Collect(warnings, w)

	streaks, w := partial.Try("streaks", StreakResult{}, func() (StreakResult, error) { return f.contrib.Streaks(ctx, now) })
	warnings = partial.Collect(warnings, w)

	recent, w := partial.Try("recent_contributions", []int(nil), func() ([]int, error) {
		return f.contrib.RecentContributions(ctx, now)
	})
	warnings = partial.Collect(warnings, w)

	codeChange, w := partial.Try("code_change", collect.CodeChangeResult{}, func() (collect.CodeChangeResult, error) {
		return f.codeChange.Analyze(ctx, repos)
	})
	warnings = partial.Collect(warnings, w)

	views, w := partial.Try("views", ghstats.TrafficCounter{Metric: "views"}, func() (ghstats.TrafficCounter, error) {
		return f.traffic.Views(ctx, fullNames, now)
	})
	warnings = partial.Collect(warnings, w)

	clones, w := partial.Try("clones", ghstats.TrafficCounter{Metric: "clones"}, func() (ghstats.TrafficCounter, error) {
		return f.traffic.Clones(ctx, fullNames, now)
	})
	warnings = partial.Collect(warnings, w)

	prs, w := partial.Try("pull_requests", 0, func() (int, error) { return f.engagement.PullRequests(ctx, fullNames) })
	warnings = partial.Collect(warnings, w)

	issues, w := partial.Try("issues", 0, func() (int, error) { return f.engagement.Issues(ctx, fullNames) })
	warnings = partial.Collect(warnings, w)

	collaborators, w := partial.Try("collaborators", 0, func() (int, error) {
		return f.engagement.Collaborators(ctx, fullNames, codeChange.Contributors)
	})
	warnings = partial.Collect(warnings, w)

	schedule, w := partial.Try("commit_schedule", []collect.CommitScheduleEntry(nil), func() ([]collect.CommitScheduleEntry, error) {
		return f.schedule.FetchWeeklySchedule(ctx, fullNames, f.username, f.location)
	})
	warnings = partial.Collect(warnings, w)

	return Summary{
		TotalStars:           totalStars,
		TotalForks:           totalForks,
		Languages:            languages,
		TotalContributions:   totalContribs,
		CurrentStreak:        streaks.Current,
		LongestStreak:        streaks.Longest,
		CurrentStreakRange:   FormatDateRange(streaks.Current.StartDate, streaks.Current.EndDate),
		LongestStreakRange:   FormatDateRange(streaks.Longest.StartDate, streaks.Longest.EndDate),
		RecentContributions:  recent,
		LinesAdded:           codeChange.UserAdditions,
		LinesDeleted:         codeChange.UserDeletions,
		ContributionsPercent: codeChange.ContributionsPercentage,
		Views:                views,
		Clones:               clones,
		PullRequests:         prs,
		Issues:               issues,
		Collaborators:        collaborators,
		CommitSchedule:       schedule,
		Warnings:             warnings,
	}
}

// RepositoryList exposes the filtered repository set on its own, for
// endpoints that don't need the full composite summary.
func (f *Facade) RepositoryList(ctx context.Context) ([]ghstats.Repository, error) {
	return f.repo.Repositories(ctx)
}

// ContributionStreaks exposes the streak computation on its own.
func (f *Facade) ContributionStreaks(ctx context.Context, now time.Time) (StreakResult, error) {
	return f.contrib.Streaks(ctx, now)
}

// RecentContributionCounts exposes the trailing contribution window on its
// own.
func (f *Facade) RecentContributionCounts(ctx context.Context, now time.Time) ([]int, error) {
	return f.contrib.RecentContributions(ctx, now)
}

// WeeklyCommits exposes the current local week's commit schedule on its own.
func (f *Facade) WeeklyCommits(ctx context.Context, username string, loc *time.Location) ([]collect.CommitScheduleEntry, error) {
	fullNames, err := f.repo.FullNames(ctx)
	if err != nil {
		return nil, err
	}
	return f.schedule.FetchWeeklySchedule(ctx, fullNames, username, loc)
}

// AsMap flattens a Summary into the loosely-typed shape the webhook
// evaluator and snapshot store operate on.
func (s Summary) AsMap() map[string]any {
	return map[string]any{
		"total_stars":          s.TotalStars,
		"total_forks":          s.TotalForks,
		"total_contributions":  s.TotalContributions,
		"current_streak":       s.CurrentStreak.Length,
		"longest_streak":       s.LongestStreak.Length,
		"lines_added":          s.LinesAdded,
		"lines_deleted":        s.LinesDeleted,
		"pull_requests":        s.PullRequests,
		"issues":               s.Issues,
		"collaborators":        s.Collaborators,
	}
}
