// Package config loads server configuration from an optional YAML file,
// then layers environment variables on top, following the precedence and
// key names in spec §6 ("Environment / configuration keys recognised").
// Grounded on the teacher's connectors/config/config.go (yaml.v3 file load +
// slog.Info on success).
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	ghstatserrors "github.com/leonardokr/ghstats/errors"
)

// Config is the fully-resolved server configuration: YAML file values
// overridden by any set environment variable.
type Config struct {
	GitHubToken string `yaml:"github_token"`

	APIAuthEnabled bool     `yaml:"api_auth_enabled"`
	APIKeys        []string `yaml:"api_keys"`
	CORSOrigins    []string `yaml:"cors_origins"`

	CacheTTL     time.Duration `yaml:"cache_ttl"`
	CacheMaxSize int           `yaml:"cache_maxsize"`
	RedisURL     string        `yaml:"redis_url"`

	RateLimitDefault int `yaml:"rate_limit_default"`
	RateLimitAuth    int `yaml:"rate_limit_auth"`
	RateLimitHeavy   int `yaml:"rate_limit_heavy"`

	DatabasePath    string `yaml:"database_path"`
	SnapshotsDBPath string `yaml:"snapshots_db_path"`
	WebhooksDBPath  string `yaml:"webhooks_db_path"`

	MaskPrivateRepos  bool `yaml:"mask_private_repos"`
	AllowPrivateRepos bool `yaml:"allow_private_repos"`

	// RepoFilter mirrors privacy.Filter's constructor inputs, loaded once
	// from YAML; per-request overrides still take precedence via the token
	// scope resolved from X-GitHub-Token.
	RepoFilter RepoFilterConfig `yaml:"repo_filter"`
}

// RepoFilterConfig is the YAML-shaped counterpart of privacy.NewFilter's
// arguments.
type RepoFilterConfig struct {
	ExcludeRepos        string `yaml:"exclude_repos"`
	ExcludeLangs        string `yaml:"exclude_languages"`
	IncludeForkedRepos  bool   `yaml:"include_forked_repos"`
	ExcludeContribRepos bool   `yaml:"exclude_contrib_repos"`
	ExcludeArchiveRepos bool   `yaml:"exclude_archive_repos"`
	ExcludePrivateRepos bool   `yaml:"exclude_private_repos"`
	ExcludePublicRepos  bool   `yaml:"exclude_public_repos"`
	ManuallyAddedRepos  string `yaml:"manually_added_repos"`
	OnlyIncludedRepos   string `yaml:"only_included_repos"`
}

// defaults mirrors the original's hardcoded fallbacks for every env key.
func defaults() Config {
	return Config{
		APIAuthEnabled:   false,
		CacheTTL:         5 * time.Minute,
		CacheMaxSize:     10_000,
		RateLimitDefault: 30,
		RateLimitAuth:    100,
		RateLimitHeavy:   10,
		DatabasePath:     "ghstats.db",
		SnapshotsDBPath:  "snapshots.db",
		WebhooksDBPath:   "webhooks.db",
		MaskPrivateRepos: true,
	}
}

// Load reads path (if it exists) as YAML, then overlays every recognised
// environment variable, returning the merged configuration. path may be
// empty, in which case only defaults + environment apply.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, &ghstatserrors.ConfigError{Field: "yaml", Err: err}
			}
			slog.Info("config.loaded", "path", path)
		case os.IsNotExist(err):
			slog.Info("config.file_absent", "path", path)
		default:
			return nil, &ghstatserrors.ConfigError{Field: "file", Err: err}
		}
	}

	applyEnv(&cfg)

	if cfg.GitHubToken == "" {
		return nil, &ghstatserrors.ConfigError{Field: "github_token", Err: errors.New("set GITHUB_TOKEN or ACCESS_TOKEN")}
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := firstNonEmpty("GITHUB_TOKEN", "ACCESS_TOKEN"); v != "" {
		cfg.GitHubToken = v
	}
	if v, ok := boolEnv("API_AUTH_ENABLED"); ok {
		cfg.APIAuthEnabled = v
	}
	if v := os.Getenv("API_KEYS"); v != "" {
		cfg.APIKeys = splitCSV(v)
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}
	if v, ok := durationEnv("CACHE_TTL"); ok {
		cfg.CacheTTL = v
	}
	if v, ok := intEnv("CACHE_MAXSIZE"); ok {
		cfg.CacheMaxSize = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v, ok := intEnv("RATE_LIMIT_DEFAULT"); ok {
		cfg.RateLimitDefault = v
	}
	if v, ok := intEnv("RATE_LIMIT_AUTH"); ok {
		cfg.RateLimitAuth = v
	}
	if v, ok := intEnv("RATE_LIMIT_HEAVY"); ok {
		cfg.RateLimitHeavy = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("SNAPSHOTS_DB_PATH"); v != "" {
		cfg.SnapshotsDBPath = v
	}
	if v := os.Getenv("WEBHOOKS_DB_PATH"); v != "" {
		cfg.WebhooksDBPath = v
	}
	if v, ok := boolEnv("MASK_PRIVATE_REPOS"); ok {
		cfg.MaskPrivateRepos = v
	}
	if v, ok := boolEnv("ALLOW_PRIVATE_REPOS"); ok {
		cfg.AllowPrivateRepos = v
	}
}

func firstNonEmpty(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func boolEnv(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

func intEnv(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func durationEnv(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, true
}
