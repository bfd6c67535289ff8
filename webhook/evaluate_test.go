package webhook

import "testing"

func TestEvaluateStarsThresholdCrossing(t *testing.T) {
	conditions := map[string]any{"stars_threshold": 100}
	previous := map[string]any{"total_stars": 90}
	current := map[string]any{"total_stars": 110}
	events := Evaluate(conditions, current, previous)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %v", events)
	}
}

func TestEvaluateStarsThresholdCrossingBoundaries(t *testing.T) {
	conditions := map[string]any{"stars_threshold": 100}
	for _, tc := range []struct {
		prev, cur int
		want      bool
	}{
		{50, 60, false},
		{90, 100, true},
		{100, 150, false},
		{150, 100, false},
	} {
		events := Evaluate(conditions, map[string]any{"total_stars": tc.cur}, map[string]any{"total_stars": tc.prev})
		got := len(events) > 0
		if got != tc.want {
			t.Fatalf("prev=%d cur=%d: expected fired=%v, got %v", tc.prev, tc.cur, tc.want, got)
		}
	}
}

func TestEvaluateStreakBroken(t *testing.T) {
	conditions := map[string]any{"streak_broken": true}
	events := Evaluate(conditions, map[string]any{"current_streak": 0}, map[string]any{"current_streak": 5})
	if len(events) != 1 {
		t.Fatalf("expected streak broken event, got %v", events)
	}
	events = Evaluate(conditions, map[string]any{"current_streak": 0}, map[string]any{"current_streak": 0})
	if len(events) != 0 {
		t.Fatalf("expected no event when streak was already 0, got %v", events)
	}
}

func TestEvaluateContributionsRecord(t *testing.T) {
	conditions := map[string]any{"contributions_record": true}
	events := Evaluate(conditions, map[string]any{"total_contributions": 500}, map[string]any{"total_contributions": 400})
	if len(events) != 1 {
		t.Fatalf("expected record event, got %v", events)
	}
	events = Evaluate(conditions, map[string]any{"total_contributions": 10}, map[string]any{"total_contributions": 0})
	if len(events) != 0 {
		t.Fatalf("expected no event when previous total was 0 (no baseline), got %v", events)
	}
}
