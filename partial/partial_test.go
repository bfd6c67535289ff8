package partial

import (
	"errors"
	"testing"
)

func TestTryReturnsValueOnSuccess(t *testing.T) {
	v, warnings := Try("languages", []string(nil), func() ([]string, error) {
		return []string{"Go"}, nil
	})
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if len(v) != 1 || v[0] != "Go" {
		t.Fatalf("unexpected value: %v", v)
	}
}

func TestTryReturnsFallbackOnFailure(t *testing.T) {
	v, warnings := Try("traffic", 0, func() (int, error) {
		return 0, errors.New("boom")
	})
	if v != 0 {
		t.Fatalf("expected fallback value, got %d", v)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
}

func TestCollectMergesWarnings(t *testing.T) {
	got := Collect([]string{"a"}, nil, []string{"b", "c"})
	if len(got) != 3 {
		t.Fatalf("expected 3 merged warnings, got %v", got)
	}
}
