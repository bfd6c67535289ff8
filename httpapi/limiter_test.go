package httpapi

import "testing"

func TestCallerLimiterAllowsUpToLimitThenRejects(t *testing.T) {
	l := newCallerLimiter()
	for i := 0; i < 3; i++ {
		if _, ok := l.allow("caller-a", 3); !ok {
			t.Fatalf("expected request %d to be allowed", i)
		}
	}
	if _, ok := l.allow("caller-a", 3); ok {
		t.Fatalf("expected the 4th request to be rejected")
	}
}

func TestCallerLimiterTracksKeysIndependently(t *testing.T) {
	l := newCallerLimiter()
	if _, ok := l.allow("caller-a", 1); !ok {
		t.Fatalf("expected caller-a's first request to be allowed")
	}
	if _, ok := l.allow("caller-b", 1); !ok {
		t.Fatalf("expected caller-b to have its own independent budget")
	}
}

func TestCallerLimiterZeroLimitDisablesLimiting(t *testing.T) {
	l := newCallerLimiter()
	for i := 0; i < 100; i++ {
		if _, ok := l.allow("caller-a", 0); !ok {
			t.Fatalf("expected a zero limit to mean unlimited")
		}
	}
}
