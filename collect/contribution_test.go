package collect

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestContributionCollectorTotalsAndMemoizes(t *testing.T) {
	calls := 0
	gh := testClient(func(r *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(`{"data":{"user":{"contributionsCollection":{"contributionCalendar":{
			"weeks":[{"contributionDays":[
				{"date":"2026-07-28","contributionCount":3},
				{"date":"2026-07-29","contributionCount":0},
				{"date":"2026-07-30","contributionCount":5}
			]}]
		}}}}}`), nil
	})
	c := NewContributionCollector(gh, "octocat", 1)

	total, err := c.TotalContributions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 8 {
		t.Fatalf("expected 8 total contributions, got %d", total)
	}

	if _, err := c.RecentContributions(context.Background(), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected the calendar fetch to be memoized, got %d calls", calls)
	}
}

func TestContributionCollectorStreaks(t *testing.T) {
	gh := testClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(`{"data":{"user":{"contributionsCollection":{"contributionCalendar":{
			"weeks":[{"contributionDays":[
				{"date":"2026-07-28","contributionCount":1},
				{"date":"2026-07-29","contributionCount":1},
				{"date":"2026-07-30","contributionCount":1}
			]}]
		}}}}}`), nil
	})
	c := NewContributionCollector(gh, "octocat", 1)

	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	result, err := c.Streaks(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Current.Length != 3 {
		t.Fatalf("expected current streak of 3, got %d", result.Current.Length)
	}
}
