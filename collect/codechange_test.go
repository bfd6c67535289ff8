package collect

import (
	"context"
	"net/http"
	"testing"

	"github.com/leonardokr/ghstats/domain/ghstats"
)

func TestCodeChangeCollectorSplitsUserVsTotal(t *testing.T) {
	gh := testClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(`[
			{"author":{"login":"octocat"},"weeks":[{"a":40,"d":10}]},
			{"author":{"login":"hubot"},"weeks":[{"a":10,"d":5}]}
		]`), nil
	})
	c := NewCodeChangeCollector(gh, "octocat")
	repos := []ghstats.Repository{{FullName: "octocat/hello-world", Owner: "octocat", Name: "hello-world"}}

	result, err := c.Analyze(context.Background(), repos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.UserAdditions != 40 || result.UserDeletions != 10 {
		t.Fatalf("unexpected user totals: %+v", result)
	}
	if result.TotalAdditions != 50 || result.TotalDeletions != 15 {
		t.Fatalf("unexpected repo-wide totals: %+v", result)
	}
	if len(result.Contributors) != 2 {
		t.Fatalf("expected 2 contributors, got %d", len(result.Contributors))
	}
}

func TestCodeChangeCollectorSkipsEmptyRepos(t *testing.T) {
	calls := 0
	gh := testClient(func(r *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(`[]`), nil
	})
	c := NewCodeChangeCollector(gh, "octocat")
	repos := []ghstats.Repository{{FullName: "octocat/empty", Owner: "octocat", Name: "empty", Empty: true}}

	if _, err := c.Analyze(context.Background(), repos); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected empty repos to be skipped entirely, got %d calls", calls)
	}
}
