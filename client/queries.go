package client

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/leonardokr/ghstats/domain/ghstats"
)

const perPage = 100

// repositoriesQuery fetches one page of the user's repositories with
// language edges, following the teacher's nested pageInfo/nodes GraphQL shape.
const repositoriesQuery = `query($login:String!, $pageSize:Int!, $after:String){
  user(login:$login){
    repositories(first:$pageSize, after:$after, ownerAffiliations:[OWNER, COLLABORATOR], orderBy:{field:UPDATED_AT, direction:DESC}){
      pageInfo{hasNextPage endCursor}
      nodes{
        nameWithOwner
        name
        owner{login}
        url
        stargazerCount
        forkCount
        isArchived
        isFork
        isPrivate
        isEmpty
        languages(first:20, orderBy:{field:SIZE, direction:DESC}){
          edges{
            size
            node{ name color }
          }
        }
      }
    }
  }
}`

// ListRepositories pages through every repository visible to the resolved
// token, following the teacher's ListAllRepos cursor loop.
func (c *Client) ListRepositories(ctx context.Context, login string) ([]ghstats.Repository, error) {
	var all []ghstats.Repository
	vars := map[string]any{"login": login, "pageSize": perPage}
	for {
		var out struct {
			User struct {
				Repositories struct {
					PageInfo struct {
						HasNextPage bool    `json:"hasNextPage"`
						EndCursor   *string `json:"endCursor"`
					} `json:"pageInfo"`
					Nodes []struct {
						NameWithOwner  string `json:"nameWithOwner"`
						Name           string `json:"name"`
						Owner          struct{ Login string } `json:"owner"`
						URL            string `json:"url"`
						StargazerCount int    `json:"stargazerCount"`
						ForkCount      int    `json:"forkCount"`
						IsArchived     bool   `json:"isArchived"`
						IsFork         bool   `json:"isFork"`
						IsPrivate      bool   `json:"isPrivate"`
						IsEmpty        bool   `json:"isEmpty"`
						Languages      struct {
							Edges []struct {
								Size int `json:"size"`
								Node struct {
									Name  string `json:"name"`
									Color string `json:"color"`
								} `json:"node"`
							} `json:"edges"`
						} `json:"languages"`
					} `json:"nodes"`
				} `json:"repositories"`
			} `json:"user"`
		}
		if err := c.GraphQL(ctx, repositoriesQuery, vars, &out); err != nil {
			return nil, err
		}
		for _, n := range out.User.Repositories.Nodes {
			repo := ghstats.Repository{
				FullName:   n.NameWithOwner,
				Name:       n.Name,
				Owner:      n.Owner.Login,
				URL:        n.URL,
				Stargazers: n.StargazerCount,
				Forks:      n.ForkCount,
				Archived:   n.IsArchived,
				Fork:       n.IsFork,
				Private:    n.IsPrivate,
				Empty:      n.IsEmpty,
			}
			for _, e := range n.Languages.Edges {
				repo.Languages = append(repo.Languages, ghstats.LanguageEdge{
					Name:  e.Node.Name,
					Color: e.Node.Color,
					Bytes: int64(e.Size),
				})
			}
			all = append(all, repo)
		}
		pi := out.User.Repositories.PageInfo
		if !pi.HasNextPage || pi.EndCursor == nil {
			break
		}
		vars["after"] = *pi.EndCursor
	}
	return all, nil
}

const contributionCalendarQuery = `query($login:String!, $from:DateTime!, $to:DateTime!){
  user(login:$login){
    contributionsCollection(from:$from, to:$to){
      contributionCalendar{
        weeks{
          contributionDays{ date contributionCount }
        }
      }
    }
  }
}`

// ContributionCalendar fetches the daily contribution calendar between from
// and to (inclusive), flattening GitHub's week/day nesting.
func (c *Client) ContributionCalendar(ctx context.Context, login string, from, to time.Time) ([]ghstats.ContributionDay, error) {
	vars := map[string]any{
		"login": login,
		"from":  from.UTC().Format(time.RFC3339),
		"to":    to.UTC().Format(time.RFC3339),
	}
	var out struct {
		User struct {
			ContributionsCollection struct {
				ContributionCalendar struct {
					Weeks []struct {
						ContributionDays []struct {
							Date              string `json:"date"`
							ContributionCount int    `json:"contributionCount"`
						} `json:"contributionDays"`
					} `json:"weeks"`
				} `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	}
	if err := c.GraphQL(ctx, contributionCalendarQuery, vars, &out); err != nil {
		return nil, err
	}
	var days []ghstats.ContributionDay
	for _, w := range out.User.ContributionsCollection.ContributionCalendar.Weeks {
		for _, d := range w.ContributionDays {
			days = append(days, ghstats.ContributionDay{Date: d.Date, Count: d.ContributionCount})
		}
	}
	return days, nil
}

// RepositoryTraffic holds the raw REST traffic payloads for one repository.
type RepositoryTraffic struct {
	Views  []TrafficPoint `json:"views"`
	Clones []TrafficPoint `json:"clones"`
}

// TrafficPoint is one day's view or clone count from the REST traffic API.
type TrafficPoint struct {
	Timestamp string `json:"timestamp"`
	Count     int    `json:"count"`
	Uniques   int    `json:"uniques"`
}

// RepositoryViews fetches the 14-day views series for owner/repo.
func (c *Client) RepositoryViews(ctx context.Context, owner, repo string) ([]TrafficPoint, error) {
	var out struct {
		Views []TrafficPoint `json:"views"`
	}
	if err := c.REST(ctx, "/repos/"+owner+"/"+repo+"/traffic/views", &out); err != nil {
		return nil, err
	}
	return out.Views, nil
}

// RepositoryClones fetches the 14-day clones series for owner/repo.
func (c *Client) RepositoryClones(ctx context.Context, owner, repo string) ([]TrafficPoint, error) {
	var out struct {
		Clones []TrafficPoint `json:"clones"`
	}
	if err := c.REST(ctx, "/repos/"+owner+"/"+repo+"/traffic/clones", &out); err != nil {
		return nil, err
	}
	return out.Clones, nil
}

// Collaborator is a REST collaborator list entry.
type Collaborator struct {
	Login string `json:"login"`
}

// RepositoryCollaborators lists collaborators for owner/repo.
func (c *Client) RepositoryCollaborators(ctx context.Context, owner, repo string) ([]Collaborator, error) {
	var out []Collaborator
	if err := c.REST(ctx, "/repos/"+owner+"/"+repo+"/collaborators?per_page="+strconv.Itoa(perPage), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ContributorStatsWeek is one ISO week's additions/deletions for one
// contributor, from GitHub's (asynchronously computed) contributor stats
// endpoint.
type ContributorStatsWeek struct {
	Additions int `json:"a"`
	Deletions int `json:"d"`
}

// ContributorStats is one author's weekly change history.
type ContributorStats struct {
	Author struct {
		Login string `json:"login"`
	} `json:"author"`
	Weeks []ContributorStatsWeek `json:"weeks"`
}

// RepositoryContributorStats fetches the per-contributor weekly additions
// and deletions for owner/repo, polling through the 202 "still computing"
// response the REST method already handles.
func (c *Client) RepositoryContributorStats(ctx context.Context, owner, repo string) ([]ContributorStats, error) {
	var out []ContributorStats
	if err := c.REST(ctx, "/repos/"+owner+"/"+repo+"/stats/contributors", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AuthenticatedUserLogin is the subset of GET /user the server needs to
// validate an X-GitHub-Token against the requested path username.
type AuthenticatedUserLogin struct {
	Login string `json:"login"`
}

// AuthenticatedUser resolves the login the client's token belongs to,
// following spec §6's "validated via GET /user" requirement.
func (c *Client) AuthenticatedUser(ctx context.Context) (AuthenticatedUserLogin, error) {
	var out AuthenticatedUserLogin
	if err := c.REST(ctx, "/user", &out); err != nil {
		return AuthenticatedUserLogin{}, err
	}
	return out, nil
}

// RepositoryMeta is the subset of the repository REST resource the commit
// schedule collector needs (just visibility, so it can mask private commit
// messages).
type RepositoryMeta struct {
	Private bool `json:"private"`
}

// Repository fetches a single repository's REST resource.
func (c *Client) Repository(ctx context.Context, owner, repo string) (RepositoryMeta, error) {
	var out RepositoryMeta
	if err := c.REST(ctx, "/repos/"+owner+"/"+repo, &out); err != nil {
		return RepositoryMeta{}, err
	}
	return out, nil
}

// Commit is one REST commit list entry.
type Commit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Date string `json:"date"`
		} `json:"author"`
		Committer struct {
			Date string `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

// IssueOrPullRequest is one REST issues-listing entry; GitHub's /issues
// endpoint includes pull requests, discriminated by HTMLURL.
type IssueOrPullRequest struct {
	HTMLURL string `json:"html_url"`
}

// RepositoryPullRequests pages through all pull requests (state=all) for
// owner/repo.
func (c *Client) RepositoryPullRequests(ctx context.Context, owner, repo string) ([]IssueOrPullRequest, error) {
	return pagedRESTList(ctx, c, "/repos/"+owner+"/"+repo+"/pulls", "state=all")
}

// RepositoryIssues pages through all issues (state=all) for owner/repo;
// the result includes pull requests, which callers discriminate via
// HTMLURL.
func (c *Client) RepositoryIssues(ctx context.Context, owner, repo string) ([]IssueOrPullRequest, error) {
	return pagedRESTList(ctx, c, "/repos/"+owner+"/"+repo+"/issues", "state=all")
}

func pagedRESTList(ctx context.Context, c *Client, basePath, extraQuery string) ([]IssueOrPullRequest, error) {
	var all []IssueOrPullRequest
	page := 1
	for {
		q := url.Values{}
		if extraQuery != "" {
			parsed, err := url.ParseQuery(extraQuery)
			if err == nil {
				q = parsed
			}
		}
		q.Set("per_page", strconv.Itoa(perPage))
		q.Set("page", strconv.Itoa(page))
		var out []IssueOrPullRequest
		if err := c.REST(ctx, basePath+"?"+q.Encode(), &out); err != nil {
			return nil, err
		}
		all = append(all, out...)
		if len(out) < perPage {
			break
		}
		page++
	}
	return all, nil
}

// RepositoryCommits pages through commits authored by author between since
// and until (RFC3339), following the teacher's page/per_page REST loop.
func (c *Client) RepositoryCommits(ctx context.Context, owner, repo, author, since, until string) ([]Commit, error) {
	var all []Commit
	page := 1
	for {
		q := url.Values{}
		q.Set("author", author)
		q.Set("since", since)
		q.Set("until", until)
		q.Set("per_page", strconv.Itoa(perPage))
		q.Set("page", strconv.Itoa(page))
		path := "/repos/" + owner + "/" + repo + "/commits?" + q.Encode()
		var out []Commit
		if err := c.REST(ctx, path, &out); err != nil {
			return nil, err
		}
		all = append(all, out...)
		if len(out) < perPage {
			break
		}
		page++
	}
	return all, nil
}
