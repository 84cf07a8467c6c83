// Package watch orchestrates a single monitoring run: policy check, polite
// delay, fetch, harvest, seen-set diff, match filter, notification, persist.
// The pipeline is fully sequential; one run owns all of its data structures.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/aluiziolira/go-watch-listings/config"
	"github.com/aluiziolira/go-watch-listings/fetch"
	"github.com/aluiziolira/go-watch-listings/harvest"
	"github.com/aluiziolira/go-watch-listings/match"
	"github.com/aluiziolira/go-watch-listings/models"
	"github.com/aluiziolira/go-watch-listings/notify"
	"github.com/aluiziolira/go-watch-listings/state"
)

// PolicyChecker decides whether the search URL may be fetched.
type PolicyChecker interface {
	Allowed(ctx context.Context, target string) (bool, string)
}

// StateStore loads and persists the seen-set across runs.
type StateStore interface {
	Load() state.Set
	Save(state.Set) error
}

// Runner wires the collaborators for one watcher run.
type Runner struct {
	cfg      *config.Config
	fetcher  fetch.Fetcher
	policy   PolicyChecker
	notifier notify.Notifier
	store    StateStore
	metrics  *Metrics

	// sleep is a seam for tests; defaults to time.Sleep.
	sleep func(time.Duration)
}

// NewRunner builds a runner. metrics may be nil.
func NewRunner(cfg *config.Config, fetcher fetch.Fetcher, policy PolicyChecker, notifier notify.Notifier, store StateStore, metrics *Metrics) *Runner {
	return &Runner{
		cfg:      cfg,
		fetcher:  fetcher,
		policy:   policy,
		notifier: notifier,
		store:    store,
		metrics:  metrics,
		sleep:    time.Sleep,
	}
}

// Run executes the pipeline once and returns the run's counts. A failed
// notification is a hard failure: a missed alert is worse than a crashed
// run. State is persisted even when the policy check denies the fetch, so a
// skipped run stays an idempotent no-op.
func (r *Runner) Run(ctx context.Context) (*models.RunSummary, error) {
	seen := r.store.Load()

	allowed, robotsSource := r.policy.Allowed(ctx, r.cfg.SearchURL)
	if !allowed {
		return r.skipRun(ctx, seen, robotsSource)
	}

	r.politeDelay()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fetchStart := time.Now()
	pageHTML, err := r.fetcher.Fetch(ctx, r.cfg.SearchURL)
	if err != nil {
		r.metrics.IncRun("failed")
		return nil, fmt.Errorf("fetch search page: %w", err)
	}
	r.metrics.ObserveFetch(time.Since(fetchStart))

	seenAt := time.Now().UTC().Truncate(time.Second)
	listings, parseFailures, err := harvest.Harvest(pageHTML, r.cfg.SearchURL, seenAt)
	if err != nil {
		r.metrics.IncRun("failed")
		return nil, fmt.Errorf("harvest listings: %w", err)
	}

	currentIDs := state.NewSet()
	for _, listing := range listings {
		currentIDs.Add(listing.ID)
	}
	newIDs := state.Diff(currentIDs, seen)

	var newListings, newMatches []models.Listing
	for _, listing := range listings {
		if !newIDs.Has(listing.ID) {
			continue
		}
		newListings = append(newListings, listing)
		if match.Matches(listing, r.cfg.Match) {
			newMatches = append(newMatches, listing)
		}
	}

	if len(newMatches) > 0 {
		message := notify.BuildSummary(newMatches, len(newListings), len(listings))
		if err := r.notifier.Send(ctx, message); err != nil {
			r.metrics.IncNotification("failed")
			r.metrics.IncRun("failed")
			return nil, fmt.Errorf("send summary: %w", err)
		}
		r.metrics.IncNotification("sent")
	}

	if err := r.store.Save(state.Merge(seen, currentIDs)); err != nil {
		r.metrics.IncRun("failed")
		return nil, fmt.Errorf("save state: %w", err)
	}

	summary := &models.RunSummary{
		Found:         len(listings),
		New:           len(newListings),
		NewMatches:    len(newMatches),
		ParseFailures: parseFailures,
	}
	r.metrics.RecordSummary(summary)
	r.metrics.IncRun("completed")

	slog.Info("run complete",
		slog.Int("found", summary.Found),
		slog.Int("new", summary.New),
		slog.Int("new_matches", summary.NewMatches),
		slog.Int("parse_failures", summary.ParseFailures),
	)
	return summary, nil
}

// skipRun handles a policy denial: notify the operator, persist the
// unchanged seen-set, and report a successful no-op run.
func (r *Runner) skipRun(ctx context.Context, seen state.Set, robotsSource string) (*models.RunSummary, error) {
	slog.Warn("robots policy denied fetch, skipping run",
		slog.String("url", r.cfg.SearchURL),
		slog.String("robots_source", robotsSource),
	)

	notice := notify.BuildSkipNotice(r.cfg.SearchURL, robotsSource)
	if err := r.notifier.Send(ctx, notice); err != nil {
		r.metrics.IncNotification("failed")
		r.metrics.IncRun("failed")
		return nil, fmt.Errorf("send policy notice: %w", err)
	}
	r.metrics.IncNotification("sent")

	if err := r.store.Save(seen); err != nil {
		r.metrics.IncRun("failed")
		return nil, fmt.Errorf("save state: %w", err)
	}
	r.metrics.IncRun("skipped")
	return &models.RunSummary{Skipped: true}, nil
}

// politeDelay sleeps a random duration within the configured window before
// touching the site.
func (r *Runner) politeDelay() {
	window := r.cfg.DelayMax - r.cfg.DelayMin
	if r.cfg.DelayMax <= 0 || window < 0 {
		return
	}
	delay := r.cfg.DelayMin
	if window > 0 {
		delay += time.Duration(rand.Int63n(int64(window)))
	}
	slog.Info("sleeping before fetch", slog.Duration("delay", delay.Round(100*time.Millisecond)))
	r.sleep(delay)
}
