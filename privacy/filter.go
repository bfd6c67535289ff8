// Package privacy implements repository scope filtering and the masking
// rules that keep private-repository detail out of any response for a
// caller that does not own the token. Grounded on
// original_source/src/core/repository_filter.py: every exclusion flag maps
// one-to-one onto a Go field, with the same env-var-first-then-override
// precedence the Python loader uses.
package privacy

import (
	"strings"

	"github.com/leonardokr/ghstats/domain/ghstats"
)

// Filter mirrors RepositoryFilter's exclusion rules.
type Filter struct {
	ExcludeRepos       map[string]struct{}
	ExcludeLangs       map[string]struct{}
	IncludeForkedRepos bool
	ExcludeContribRepos bool
	ExcludeArchiveRepos bool
	ExcludePrivateRepos bool
	ExcludePublicRepos  bool
	ManuallyAddedRepos  map[string]struct{}
	OnlyIncludedRepos   map[string]struct{}
}

// NewFilter builds a Filter from comma-separated lists, trimming whitespace
// around each entry the way the Python loader's split(",") + strip() does.
func NewFilter(excludeRepos, excludeLangs, manuallyAdded, onlyIncluded string, includeForked, excludeContrib, excludeArchive, excludePrivate, excludePublic bool) *Filter {
	return &Filter{
		ExcludeRepos:        toSet(excludeRepos),
		ExcludeLangs:        toSet(excludeLangs),
		IncludeForkedRepos:  includeForked,
		ExcludeContribRepos: excludeContrib,
		ExcludeArchiveRepos: excludeArchive,
		ExcludePrivateRepos: excludePrivate,
		ExcludePublicRepos:  excludePublic,
		ManuallyAddedRepos:  toSet(manuallyAdded),
		OnlyIncludedRepos:   toSet(onlyIncluded),
	}
}

func toSet(csv string) map[string]struct{} {
	set := map[string]struct{}{}
	if strings.TrimSpace(csv) == "" {
		return set
	}
	for _, part := range strings.Split(csv, ",") {
		p := strings.TrimSpace(part)
		if p != "" {
			set[p] = struct{}{}
		}
	}
	return set
}

// Include reports whether repo should be counted given isContributorRepo
// (true when the repo belongs to someone else and the user only
// contributes to it). manuallyAdded and onlyIncluded always win over the
// exclusion flags below, matching the original's precedence.
func (f *Filter) Include(repo ghstats.Repository, isContributorRepo bool) bool {
	if len(f.OnlyIncludedRepos) > 0 {
		_, ok := f.OnlyIncludedRepos[repo.FullName]
		return ok
	}
	if _, ok := f.ManuallyAddedRepos[repo.FullName]; ok {
		return true
	}
	if _, ok := f.ExcludeRepos[repo.FullName]; ok {
		return false
	}
	if repo.Fork && !f.IncludeForkedRepos {
		return false
	}
	if isContributorRepo && f.ExcludeContribRepos {
		return false
	}
	if repo.Archived && f.ExcludeArchiveRepos {
		return false
	}
	// exclude_private_repos / exclude_public_repos are evaluated as plain
	// "repo matches this visibility AND the flag says exclude it" checks,
	// the one reading consistent with every other include/exclude flag
	// here: a flag fires only against the visibility it names.
	if repo.Private && f.ExcludePrivateRepos {
		return false
	}
	if !repo.Private && f.ExcludePublicRepos {
		return false
	}
	for _, lang := range repo.Languages {
		if _, ok := f.ExcludeLangs[lang.Name]; ok {
			return false
		}
	}
	return true
}

// Apply filters a repository slice down to the ones Include approves,
// given a function that reports whether a repo is contributor-only.
func (f *Filter) Apply(repos []ghstats.Repository, isContributorRepo func(ghstats.Repository) bool) []ghstats.Repository {
	out := make([]ghstats.Repository, 0, len(repos))
	for _, r := range repos {
		if f.Include(r, isContributorRepo(r)) {
			out = append(out, r)
		}
	}
	return out
}
