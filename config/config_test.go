package config

import "testing"

func TestLoadRequiresGitHubToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("ACCESS_TOKEN", "")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error when no token is configured")
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("CACHE_MAXSIZE", "500")
	t.Setenv("RATE_LIMIT_AUTH", "250")
	t.Setenv("API_KEYS", "a, b ,c")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CacheMaxSize != 500 {
		t.Errorf("CacheMaxSize = %d, want 500", cfg.CacheMaxSize)
	}
	if cfg.RateLimitAuth != 250 {
		t.Errorf("RateLimitAuth = %d, want 250", cfg.RateLimitAuth)
	}
	if len(cfg.APIKeys) != 3 || cfg.APIKeys[1] != "b" {
		t.Errorf("APIKeys = %v, want [a b c]", cfg.APIKeys)
	}
}

func TestLoadDefaultsWhenFileAbsent(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	cfg, err := Load("/nonexistent/ghstats.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RateLimitDefault != 30 {
		t.Errorf("RateLimitDefault = %d, want 30", cfg.RateLimitDefault)
	}
}
