package stats

import (
	"testing"

	"github.com/leonardokr/ghstats/domain/ghstats"
)

func TestAggregateLanguagesProportionsSumToHundred(t *testing.T) {
	repos := []ghstats.Repository{
		{
			Languages: []ghstats.LanguageEdge{{Name: "Go", Bytes: 300}, {Name: "Python", Bytes: 100}},
		},
		{
			Languages: []ghstats.LanguageEdge{{Name: "Go", Bytes: 600}},
		},
		{
			Empty:     true,
			Languages: []ghstats.LanguageEdge{{Name: "COBOL", Bytes: 99999}},
		},
	}
	agg := AggregateLanguages(repos)
	var sum float64
	for _, a := range agg {
		sum += a.Proportion
	}
	if sum < 99.999 || sum > 100.001 {
		t.Fatalf("expected proportions to sum to ~100, got %f", sum)
	}
	for _, a := range agg {
		if a.Name == "COBOL" {
			t.Fatalf("empty repo languages must be excluded")
		}
	}
	if agg[0].Name != "Go" {
		t.Fatalf("expected Go to be the largest language, got %s", agg[0].Name)
	}
}

func TestAggregateLanguagesNoBytes(t *testing.T) {
	agg := AggregateLanguages(nil)
	if len(agg) != 0 {
		t.Fatalf("expected empty aggregate, got %d entries", len(agg))
	}
}
