package privacy

import (
	"testing"

	"github.com/leonardokr/ghstats/domain/ghstats"
)

func notContributor(ghstats.Repository) bool { return false }

func TestFilterExcludePrivateRepos(t *testing.T) {
	f := NewFilter("", "", "", "", false, false, false, true, false)
	priv := ghstats.Repository{FullName: "me/secret", Private: true}
	pub := ghstats.Repository{FullName: "me/public"}
	if f.Include(priv, false) {
		t.Fatalf("expected private repo excluded")
	}
	if !f.Include(pub, false) {
		t.Fatalf("expected public repo included")
	}
}

func TestFilterExcludePublicRepos(t *testing.T) {
	f := NewFilter("", "", "", "", false, false, false, false, true)
	priv := ghstats.Repository{FullName: "me/secret", Private: true}
	pub := ghstats.Repository{FullName: "me/public"}
	if !f.Include(priv, false) {
		t.Fatalf("expected private repo included when only excluding public")
	}
	if f.Include(pub, false) {
		t.Fatalf("expected public repo excluded")
	}
}

func TestFilterOnlyIncludedOverridesEverything(t *testing.T) {
	f := NewFilter("me/only", "", "", "me/only", false, false, false, true, false)
	only := ghstats.Repository{FullName: "me/only", Private: true}
	other := ghstats.Repository{FullName: "me/other"}
	if !f.Include(only, false) {
		t.Fatalf("expected only_included repo to be included despite exclude flags")
	}
	if f.Include(other, false) {
		t.Fatalf("expected non-listed repo excluded when only_included is set")
	}
}

func TestFilterManuallyAddedOverridesExcludeList(t *testing.T) {
	f := NewFilter("me/repo", "", "me/repo", "", false, false, false, false, false)
	r := ghstats.Repository{FullName: "me/repo"}
	if !f.Include(r, false) {
		t.Fatalf("expected manually added repo to win over exclude_repos")
	}
}

func TestMaskRedactsPrivateReposNotOwned(t *testing.T) {
	repos := []ghstats.Repository{
		{FullName: "me/secret", Private: true, URL: "https://x"},
		{FullName: "me/open"},
	}
	masked := Mask(repos, "me", func(ghstats.Repository) bool { return false })
	if masked[0].FullName != "me/private-repo" || masked[0].URL != "" {
		t.Fatalf("expected private repo masked, got %+v", masked[0])
	}
	if masked[1].FullName != "me/open" {
		t.Fatalf("expected public repo unchanged, got %+v", masked[1])
	}
}
