package collect

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/leonardokr/ghstats/client"
	"github.com/leonardokr/ghstats/privacy"
)

// CommitScheduleEntry is one commit within the current local week, with
// its description masked when the source repository is private, matching
// original_source/src/core/commit_schedule_collector.py.
type CommitScheduleEntry struct {
	Repo        string
	SHA         string
	Description string
	Private     bool
	Timestamp   time.Time
}

// CommitScheduleCollector fetches the current local week's commits across
// a repository set, sorted by timestamp. Results are memoized
// per (username, timezone) pair.
type CommitScheduleCollector struct {
	gh *client.Client

	mu    sync.Mutex
	cache map[string][]CommitScheduleEntry

	visMu  sync.Mutex
	visCache map[string]bool
}

// NewCommitScheduleCollector builds a collector.
func NewCommitScheduleCollector(gh *client.Client) *CommitScheduleCollector {
	return &CommitScheduleCollector{
		gh:       gh,
		cache:    map[string][]CommitScheduleEntry{},
		visCache: map[string]bool{},
	}
}

// FetchWeeklySchedule returns every commit authored by username across
// repos that falls within the current local week in loc, sorted by
// timestamp ascending, masking descriptions from private repos.
func (c *CommitScheduleCollector) FetchWeeklySchedule(ctx context.Context, repos []string, username string, loc *time.Location) ([]CommitScheduleEntry, error) {
	cacheKey := username + "|" + loc.String()

	// Holding mu for the whole fetch makes concurrent callers share one
	// fetch instead of racing to issue their own.
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.cache[cacheKey]; ok {
		return cached, nil
	}

	nowLocal := time.Now().In(loc)
	weekday := int(nowLocal.Weekday())
	// Go's Weekday is Sunday=0; the original's Monday-start week needs
	// Monday=0 for the subtraction below.
	daysSinceMonday := (weekday + 6) % 7
	weekStartLocal := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -daysSinceMonday)
	weekEndLocal := weekStartLocal.AddDate(0, 0, 7)

	sinceUTC := weekStartLocal.UTC().Format(time.RFC3339)
	untilUTC := weekEndLocal.UTC().Format(time.RFC3339)

	var entries []CommitScheduleEntry
	for _, fullName := range repos {
		owner, repo, ok := splitFullName(fullName)
		if !ok {
			continue
		}
		isPrivate, err := c.isPrivateRepo(ctx, owner, repo, fullName)
		if err != nil {
			return nil, err
		}
		commits, err := c.gh.RepositoryCommits(ctx, owner, repo, username, sinceUTC, untilUTC)
		if err != nil {
			return nil, err
		}
		for _, commit := range commits {
			ts := extractTimestamp(commit)
			if ts.IsZero() {
				continue
			}
			local := ts.In(loc)
			if local.Before(weekStartLocal) || !local.Before(weekEndLocal) {
				continue
			}
			sha := commit.SHA
			if len(sha) > 40 {
				sha = sha[:40]
			}
			message := extractMessage(commit.Commit.Message)
			description := message
			if isPrivate {
				description = shaPrefix(sha)
			}
			entries = append(entries, CommitScheduleEntry{
				Repo: fullName, SHA: sha, Description: description, Private: isPrivate, Timestamp: ts,
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Timestamp.Before(entries[j].Timestamp) })

	c.cache[cacheKey] = entries

	return entries, nil
}

func (c *CommitScheduleCollector) isPrivateRepo(ctx context.Context, owner, repo, fullName string) (bool, error) {
	c.visMu.Lock()
	if v, ok := c.visCache[fullName]; ok {
		c.visMu.Unlock()
		return v, nil
	}
	c.visMu.Unlock()

	meta, err := c.gh.Repository(ctx, owner, repo)
	if err != nil {
		return false, err
	}
	c.visMu.Lock()
	c.visCache[fullName] = meta.Private
	c.visMu.Unlock()
	return meta.Private, nil
}

func extractTimestamp(commit client.Commit) time.Time {
	source := commit.Commit.Author.Date
	if source == "" {
		source = commit.Commit.Committer.Date
	}
	if source == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, source)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func extractMessage(full string) string {
	for i, r := range full {
		if r == '\n' {
			full = full[:i]
			break
		}
	}
	if len(full) > 120 {
		full = full[:120]
	}
	if full == "" {
		return "Commit"
	}
	return full
}

func shaPrefix(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// MaskEntry applies commit-message masking using the shared privacy rules
// for a caller that does not own fullName.
func MaskEntry(entry CommitScheduleEntry, ownsRepo bool) CommitScheduleEntry {
	entry.Description = privacy.MaskCommitMessage(entry.Description, entry.Private, ownsRepo)
	return entry
}
