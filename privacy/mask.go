package privacy

import "github.com/leonardokr/ghstats/domain/ghstats"

const maskedCommitMessage = "Private commit"

// Mask redacts private-repository detail from a repository list when the
// resolved token does not belong to the repository's owner: the full name
// collapses to "<username>/private-repo", and the URL is cleared.
func Mask(repos []ghstats.Repository, username string, tokenOwnsRepo func(ghstats.Repository) bool) []ghstats.Repository {
	masked := make([]ghstats.Repository, len(repos))
	for i, r := range repos {
		if r.Private && !tokenOwnsRepo(r) {
			r.FullName = username + "/private-repo"
			r.Name = "private-repo"
			r.URL = ""
			r.Languages = nil
		}
		masked[i] = r
	}
	return masked
}

// MaskCommitMessage replaces a commit message with a fixed placeholder
// when it originates from a private repository not owned by the caller.
func MaskCommitMessage(message string, private, ownsRepo bool) string {
	if private && !ownsRepo {
		return maskedCommitMessage
	}
	return message
}
