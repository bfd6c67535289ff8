package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

// pagedGraphQLResponses returns a roundTripperFunc that serves one page per
// call, driven by the after cursor in the request body.
func pagedGraphQLResponses(t *testing.T, pages map[string]string) roundTripperFunc {
	t.Helper()
	return func(r *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		var req struct {
			Variables map[string]any `json:"variables"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, err
		}
		after, _ := req.Variables["after"].(string)
		page, ok := pages[after]
		if !ok {
			t.Fatalf("no fixture page for cursor %q", after)
		}
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(page)), Header: http.Header{}}, nil
	}
}

func TestListRepositoriesPagesThroughCursor(t *testing.T) {
	pages := map[string]string{
		"": `{"data":{"user":{"repositories":{
			"pageInfo":{"hasNextPage":true,"endCursor":"cursor1"},
			"nodes":[{"nameWithOwner":"octocat/one","name":"one","owner":{"login":"octocat"},"stargazerCount":3}]
		}}}}`,
		"cursor1": `{"data":{"user":{"repositories":{
			"pageInfo":{"hasNextPage":false,"endCursor":null},
			"nodes":[{"nameWithOwner":"octocat/two","name":"two","owner":{"login":"octocat"},"stargazerCount":7}]
		}}}}`,
	}
	c := newTestClient(pagedGraphQLResponses(t, pages))

	repos, err := c.ListRepositories(context.Background(), "octocat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repos) != 2 {
		t.Fatalf("expected 2 repositories across both pages, got %d", len(repos))
	}
	if repos[0].FullName != "octocat/one" || repos[1].FullName != "octocat/two" {
		t.Fatalf("unexpected repo order: %+v", repos)
	}
	if repos[1].Stargazers != 7 {
		t.Fatalf("expected stargazer count to survive decoding, got %d", repos[1].Stargazers)
	}
}

func TestRepositoryViewsDecodesTrafficSeries(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"views":[{"timestamp":"2026-01-01T00:00:00Z","count":5,"uniques":2}]}`, nil), nil
	})
	views, err := c.RepositoryViews(context.Background(), "octocat", "hello-world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 || views[0].Count != 5 {
		t.Fatalf("unexpected views: %+v", views)
	}
}

func TestRepositoryPullRequestsPagesUntilShortPage(t *testing.T) {
	calls := 0
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			full := make([]string, perPage)
			for i := range full {
				full[i] = `{"html_url":"https://github.com/octocat/hello-world/pull/` + string(rune('0'+i%10)) + `"}`
			}
			return jsonResponse(200, "["+strings.Join(full, ",")+"]", nil), nil
		}
		return jsonResponse(200, `[{"html_url":"https://github.com/octocat/hello-world/pull/last"}]`, nil), nil
	})
	prs, err := c.RepositoryPullRequests(context.Background(), "octocat", "hello-world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prs) != perPage+1 {
		t.Fatalf("expected %d pull requests, got %d", perPage+1, len(prs))
	}
	if calls != 2 {
		t.Fatalf("expected exactly 2 pages fetched, got %d", calls)
	}
}
