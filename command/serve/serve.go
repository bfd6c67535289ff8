// Package serve starts the ghstats HTTP API, grounded on the teacher's
// command/web/web.go (flag-configured Echo server) generalized to wire the
// full engine: client, caches, stores, dispatcher, httpapi routes.
package serve

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leonardokr/ghstats/cache"
	"github.com/leonardokr/ghstats/client"
	"github.com/leonardokr/ghstats/config"
	"github.com/leonardokr/ghstats/httpapi"
	"github.com/leonardokr/ghstats/metrics"
	"github.com/leonardokr/ghstats/privacy"
	"github.com/leonardokr/ghstats/stats"
	"github.com/leonardokr/ghstats/store"
	"github.com/leonardokr/ghstats/webhook"
)

// httpListenAndServe serves handler on addr; split out so the metrics
// listener in Run is a one-liner and easy to reason about independent of
// the main Echo server's lifecycle.
func httpListenAndServe(addr string, handler http.Handler) error {
	return http.ListenAndServe(addr, handler)
}

// Run parses flags, wires the engine, and blocks serving HTTP until the
// process is killed.
//
// Usage:
//
//	ghstats-server serve [-addr :8080] [-config ghstats.yaml]
func Run(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", ":8080", "http listen address (host:port)")
	configPath := fs.String("config", "", "optional YAML config file")
	metricsAddr := fs.String("metrics-addr", ":9090", "prometheus /metrics listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	reg := prometheus.NewRegistry()
	observer := metrics.New(reg)

	gh := client.New(cfg.GitHubToken, client.WithMetrics(observer))

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	trafficStore := store.NewTrafficStore(db)
	snapshotStore := store.NewSnapshotStore(db)
	webhookStore := store.NewWebhookStore(db)
	dispatcher := webhook.NewDispatcher(snapshotStore, webhookStore)

	resultCache := cache.New(cache.NewMemoryBackend(cfg.CacheMaxSize), cfg.CacheTTL)

	filter := privacyFilter(cfg)
	facades := func(username string) *stats.Facade {
		return stats.NewFacade(gh, trafficStore, username, filter, 1, 0, time.Local)
	}

	srv := httpapi.New(cfg, gh, facades, resultCache, snapshotStore, webhookStore, dispatcher)

	go func() {
		slog.Info("serve.metrics.start", "addr", *metricsAddr)
		mux := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
		if err := httpListenAndServe(*metricsAddr, mux); err != nil {
			slog.Error("serve.metrics.failed", "err", err)
		}
	}()

	statusLine := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("%s listening on %s\n", statusLine("ghstats-server"), *addr)
	slog.Info("serve.start", "addr", *addr)
	return srv.Echo.Start(*addr)
}

func privacyFilter(cfg *config.Config) *privacy.Filter {
	rf := cfg.RepoFilter
	return privacy.NewFilter(
		rf.ExcludeRepos, rf.ExcludeLangs, rf.ManuallyAddedRepos, rf.OnlyIncludedRepos,
		rf.IncludeForkedRepos, rf.ExcludeContribRepos, rf.ExcludeArchiveRepos,
		rf.ExcludePrivateRepos, rf.ExcludePublicRepos,
	)
}
