package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/tagscrape/internal/cache"
	"github.com/hyperifyio/tagscrape/internal/dedupe"
	"github.com/hyperifyio/tagscrape/internal/extract"
	"github.com/hyperifyio/tagscrape/internal/fetch"
	"github.com/hyperifyio/tagscrape/internal/results"
	"github.com/hyperifyio/tagscrape/internal/scrape"
	"github.com/hyperifyio/tagscrape/internal/seeds"
)

type App struct {
	cfg       Config
	httpCache *cache.HTTPCache
	scraper   *scrape.Scraper
}

// Summary describes a finished run.
type Summary struct {
	scrape.Stats
	Entries  int
	Deduped  bool
	Canceled bool
}

func New(_ context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	a := &App{cfg: cfg}
	if cfg.CacheDir != "" {
		a.httpCache = &cache.HTTPCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
		// Cache maintenance is best-effort; a failure only costs cache hits.
		if cfg.CacheClear {
			if err := a.httpCache.Clear(); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			if n, err := a.httpCache.PurgeOlderThan(cfg.CacheMaxAge); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache purge failed")
			} else if n > 0 {
				log.Debug().Int("removed", n).Msg("purged expired cache entries")
			}
		}
	}

	a.scraper = &scrape.Scraper{
		Fetcher: &fetch.Client{
			HTTPClient:        newHTTPClient(cfg),
			UserAgent:         cfg.UserAgent,
			PerRequestTimeout: cfg.Timeout,
			RedirectMaxHops:   cfg.MaxRedirects,
			MaxBodyBytes:      cfg.MaxBodyBytes,
			Cache:             a.httpCache,
			BypassCache:       cfg.CacheClear,
		},
		Extractor: extract.TagExtractor{},
		MaxFollow: cfg.MaxFollow,
	}
	return a, nil
}

func (a *App) Close() {
	// nothing yet
}

// Run reads the seeds, scrapes every URL into one ResultMap, deduplicates it
// and writes the output file. The output is written even when the context is
// canceled mid-batch; the cancellation is then returned as an error.
func (a *App) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	urls, err := seeds.Load(a.cfg.InputPath)
	if err != nil {
		return sum, fmt.Errorf("read input: %w", err)
	}
	log.Info().Int("seeds", len(urls)).Str("input", a.cfg.InputPath).Msg("loaded seeds")

	res := results.New()
	stats, runErr := a.scraper.ParseAll(ctx, urls, res)
	sum.Stats = stats
	if runErr != nil {
		sum.Canceled = errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded)
		log.Warn().Err(runErr).Int("processed", stats.Seeds).Msg("run interrupted; writing partial results")
	}

	sum.Deduped = dedupe.Run(res)
	if !sum.Deduped {
		log.Warn().Msg("result map looks like a single page; deduplication skipped")
	}
	sum.Entries = res.Len()

	if err := results.WriteFile(a.cfg.OutputPath, res); err != nil {
		return sum, fmt.Errorf("write output: %w", err)
	}
	log.Info().
		Str("out", a.cfg.OutputPath).
		Int("seeds", stats.Seeds).
		Int("fetched", stats.Fetched).
		Int("failed", stats.Failed).
		Int("redirects", stats.Redirects).
		Int("entries", sum.Entries).
		Msg("wrote output")
	if runErr != nil {
		return sum, runErr
	}
	return sum, nil
}
