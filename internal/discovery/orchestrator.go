package discovery

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jobscout/jobscout/internal/browser"
	"github.com/jobscout/jobscout/internal/filtering"
	"github.com/jobscout/jobscout/internal/jobs"
	"github.com/jobscout/jobscout/internal/scrape"
	"github.com/jobscout/jobscout/internal/store"
	"github.com/jobscout/jobscout/internal/utils"
)

// queryPause spaces consecutive searches to stay under the sites' rate limits.
const queryPause = 2 * time.Second

// Result summarizes one discovery run. Delta holds only the postings whose
// identity key was unknown before the run, in discovery order.
type Result struct {
	Scraped int
	Kept    int
	Known   int
	Delta   *jobs.Postings
}

// Orchestrator runs the full discovery pipeline: scrape every configured
// source for every query, dedupe, filter, then fold the survivors into the
// seen-job store.
type Orchestrator struct {
	adapters []scrape.Adapter
	seen     *store.Store
	filters  *store.FiltersStore
	steps    []filtering.Filter
	deps     filtering.Deps
	logger   *zap.Logger
}

func NewOrchestrator(
	adapters []scrape.Adapter,
	seen *store.Store,
	filters *store.FiltersStore,
	steps []filtering.Filter,
	deps filtering.Deps,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		adapters: adapters,
		seen:     seen,
		filters:  filters,
		steps:    steps,
		deps:     deps,
		logger:   logger,
	}
}

// Run executes one discovery pass on the given page. Adapter failures are
// isolated per source and query: a broken source loses its own results and
// nothing else. The returned delta lists only postings not seen before the
// run; every surviving posting, new or known, is upserted into the store.
func (o *Orchestrator) Run(ctx context.Context, page browser.Page) (*Result, error) {
	cfg := o.filters.Load()
	state := o.seen.Load()

	o.logger.Info("starting discovery",
		zap.Int("sources", len(o.adapters)),
		zap.Int("queries", len(cfg.SearchQueries)),
		zap.String("time_window", cfg.Window()),
		zap.Int("known_jobs", state.Len()),
	)

	scraped := &jobs.Postings{}
	first := true
	for _, adapter := range o.adapters {
		for _, query := range cfg.SearchQueries {
			if !first {
				if err := utils.WaitFor(ctx, queryPause); err != nil {
					return nil, err
				}
			}
			first = false

			found, err := adapter.Search(ctx, page, query, cfg.Window())
			if err != nil {
				o.logger.Warn("search failed",
					zap.String("source", adapter.Name()),
					zap.String("query", query),
					zap.Error(err),
				)
				continue
			}

			o.logger.Info("search finished",
				zap.String("source", adapter.Name()),
				zap.String("query", query),
				zap.Int("found", found.Len()),
			)
			scraped.Append(found.Items...)
		}
	}

	deduped := scraped.Dedupe()
	o.logger.Info("deduplicated postings",
		zap.Int("scraped", scraped.Len()),
		zap.Int("unique", deduped.Len()),
	)

	kept, err := filtering.Run(ctx, cfg, o.deps, o.steps, deduped)
	if err != nil {
		return nil, fmt.Errorf("filtering: %w", err)
	}

	result := &Result{
		Scraped: scraped.Len(),
		Kept:    kept.Len(),
		Delta:   &jobs.Postings{},
	}

	for _, posting := range kept.Items {
		if state.Contains(jobs.Key(posting)) {
			result.Known++
			continue
		}
		result.Delta.Append(posting)
	}

	state.UpsertMany(kept.Items)
	if err := o.seen.Save(state); err != nil {
		return nil, fmt.Errorf("persist seen jobs: %w", err)
	}

	o.logger.Info("discovery finished",
		zap.Int("scraped", result.Scraped),
		zap.Int("kept", result.Kept),
		zap.Int("already_known", result.Known),
		zap.Int("new", result.Delta.Len()),
	)

	return result, nil
}
