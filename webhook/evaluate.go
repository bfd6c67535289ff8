// Package webhook evaluates per-user trigger conditions against successive
// statistics snapshots and dispatches notifications to registered callback
// URLs. Grounded on
// original_source/api/services/notification_dispatcher.py.
package webhook

import "fmt"

// Evaluate checks conditions against the current and previous stats
// snapshots and returns a description for every condition that fired.
// Supported keys: stars_threshold (int), streak_broken (bool),
// contributions_record (bool). Unknown keys are ignored.
func Evaluate(conditions, current, previous map[string]any) []string {
	var triggered []string

	if raw, ok := conditions["stars_threshold"]; ok {
		threshold, ok := asInt(raw)
		if ok && crossedThreshold("total_stars", threshold, current, previous) {
			triggered = append(triggered, fmt.Sprintf("Stars crossed %d", threshold))
		}
	}

	if truthy(conditions["streak_broken"]) {
		prevStreak := asIntOr(previous["current_streak"], 0)
		curStreak := asIntOr(current["current_streak"], 0)
		if prevStreak > 0 && curStreak == 0 {
			triggered = append(triggered, "Streak broken")
		}
	}

	if truthy(conditions["contributions_record"]) {
		prevContribs := asIntOr(previous["total_contributions"], 0)
		curContribs := asIntOr(current["total_contributions"], 0)
		if curContribs > prevContribs && prevContribs > 0 {
			triggered = append(triggered, fmt.Sprintf("New contributions record: %d", curContribs))
		}
	}

	return triggered
}

// crossedThreshold reports whether field crossed threshold upward between
// previous and current: previous < threshold <= current.
func crossedThreshold(field string, threshold int, current, previous map[string]any) bool {
	cur := asIntOr(current[field], 0)
	prev := asIntOr(previous[field], 0)
	return prev < threshold && threshold <= cur
}

func truthy(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func asIntOr(v any, fallback int) int {
	n, ok := asInt(v)
	if !ok {
		return fallback
	}
	return n
}
