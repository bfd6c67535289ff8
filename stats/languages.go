package stats

import (
	"sort"

	"github.com/leonardokr/ghstats/domain/ghstats"
)

// AggregateLanguages rolls up language byte counts across repositories,
// skipping empty repos (their language edges are meaningless noise), and
// assigns a Proportion in [0, 100] that sums to 100 across the result
// (or is all-zero when there are no bytes at all).
func AggregateLanguages(repos []ghstats.Repository) []ghstats.LanguageAggregate {
	type acc struct {
		bytes       int64
		occurrences int
		color       string
	}
	byName := map[string]*acc{}
	var order []string
	var total int64

	for _, repo := range repos {
		if repo.Empty {
			continue
		}
		for _, lang := range repo.Languages {
			a, ok := byName[lang.Name]
			if !ok {
				a = &acc{color: lang.Color}
				byName[lang.Name] = a
				order = append(order, lang.Name)
			}
			a.bytes += lang.Bytes
			a.occurrences++
			total += lang.Bytes
		}
	}

	result := make([]ghstats.LanguageAggregate, 0, len(order))
	for _, name := range order {
		a := byName[name]
		var proportion float64
		if total > 0 {
			proportion = float64(a.bytes) / float64(total) * 100
		}
		result = append(result, ghstats.LanguageAggregate{
			Name:        name,
			Bytes:       a.bytes,
			Occurrences: a.occurrences,
			Color:       a.color,
			Proportion:  proportion,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Bytes > result[j].Bytes })
	return result
}
