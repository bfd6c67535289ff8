package collect

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/leonardokr/ghstats/client"
	"github.com/leonardokr/ghstats/privacy"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(body string) *http.Response {
	return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(body)), Header: http.Header{}}
}

func testClient(rt roundTripperFunc) *client.Client {
	return client.New("test-token", client.WithHTTPClient(&http.Client{Transport: rt}), client.WithConcurrency(4))
}

func noopFilter() *privacy.Filter {
	return privacy.NewFilter("", "", "", "", true, false, false, false, false)
}

func TestRepoCollectorFiltersAndMemoizes(t *testing.T) {
	calls := 0
	gh := testClient(func(r *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(`{"data":{"user":{"repositories":{
			"pageInfo":{"hasNextPage":false,"endCursor":null},
			"nodes":[
				{"nameWithOwner":"octocat/one","name":"one","owner":{"login":"octocat"},"stargazerCount":3,"forkCount":1},
				{"nameWithOwner":"octocat/two","name":"two","owner":{"login":"octocat"},"stargazerCount":5,"forkCount":2}
			]
		}}}}`), nil
	})
	c := NewRepoCollector(gh, "octocat", noopFilter())

	repos, err := c.Repositories(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repos) != 2 {
		t.Fatalf("expected 2 repos, got %d", len(repos))
	}

	if _, err := c.Repositories(context.Background()); err != nil {
		t.Fatalf("unexpected error on second call: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected memoized fetch to only call once, got %d", calls)
	}

	total, err := c.TotalStars(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 8 {
		t.Fatalf("expected total stars 8, got %d", total)
	}
}
