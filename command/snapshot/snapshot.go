// Package snapshot runs a one-shot snapshot-and-dispatch cycle for a single
// username, the CLI equivalent of POST /v1/users/{username}/history, in the
// flag-parsed command style of the teacher's command/web.Run.
package snapshot

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/leonardokr/ghstats/client"
	"github.com/leonardokr/ghstats/config"
	"github.com/leonardokr/ghstats/privacy"
	"github.com/leonardokr/ghstats/stats"
	"github.com/leonardokr/ghstats/store"
	"github.com/leonardokr/ghstats/webhook"
)

// Run parses flags, fetches one user's full stats summary, saves it as a
// snapshot, and dispatches any webhooks whose conditions fire.
//
// Usage:
//
//	ghstats-server snapshot -username octocat [-config ghstats.yaml]
func Run(args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	username := fs.String("username", "", "GitHub username to snapshot (required)")
	configPath := fs.String("config", "", "optional YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return fmt.Errorf("snapshot: -username is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gh := client.New(cfg.GitHubToken)

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	trafficStore := store.NewTrafficStore(db)
	snapshotStore := store.NewSnapshotStore(db)
	webhookStore := store.NewWebhookStore(db)
	dispatcher := webhook.NewDispatcher(snapshotStore, webhookStore)

	rf := cfg.RepoFilter
	filter := privacy.NewFilter(
		rf.ExcludeRepos, rf.ExcludeLangs, rf.ManuallyAddedRepos, rf.OnlyIncludedRepos,
		rf.IncludeForkedRepos, rf.ExcludeContribRepos, rf.ExcludeArchiveRepos,
		rf.ExcludePrivateRepos, rf.ExcludePublicRepos,
	)

	facade := stats.NewFacade(gh, trafficStore, *username, filter, 1, 0, time.Local)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	summary := facade.Build(ctx, time.Now())
	current := summary.AsMap()

	fired := dispatcher.Dispatch(ctx, *username, current)
	if err := snapshotStore.Save(*username, current, time.Now()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	fmt.Printf("snapshot saved for %s, %d webhook(s) fired\n", *username, fired)
	if len(summary.Warnings) > 0 {
		fmt.Printf("warnings: %v\n", summary.Warnings)
	}
	return nil
}
