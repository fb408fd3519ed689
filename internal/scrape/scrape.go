// Package scrape fetches seed pages, extracts their text by tag and records
// the result under the exact URL that was fetched, following redirect chains
// into the same ResultMap.
package scrape

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/tagscrape/internal/extract"
	"github.com/hyperifyio/tagscrape/internal/fetch"
	"github.com/hyperifyio/tagscrape/internal/results"
)

const defaultMaxFollow = 10

// Getter is the fetch boundary used by the Scraper.
type Getter interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
}

// Scraper processes URLs one at a time. It holds no per-run state; the
// ResultMap is owned by the caller.
type Scraper struct {
	Fetcher   Getter
	Extractor extract.Extractor
	// MaxFollow caps how many redirect targets are visited after a seed.
	// Zero means 10.
	MaxFollow int
}

// Stats summarises a batch.
type Stats struct {
	Seeds     int
	Fetched   int
	Failed    int
	Redirects int
}

// ParseAll runs ParsePage for every URL in order. A failing URL never stops
// the batch; only context cancellation does.
func (s *Scraper) ParseAll(ctx context.Context, urls []string, r *results.ResultMap) (Stats, error) {
	var total Stats
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		st := s.ParsePage(ctx, u, r)
		total.Seeds++
		total.Fetched += st.Fetched
		total.Failed += st.Failed
		total.Redirects += st.Redirects
	}
	return total, nil
}

// ParsePage fetches url, stores its TagMap at r[url] (replacing any earlier
// entry) and, when the transport followed redirects, prepends the final URL
// to the entry's "redirect link" list and processes that URL the same way.
// A URL already visited in this chain is recorded but not fetched again.
func (s *Scraper) ParsePage(ctx context.Context, url string, r *results.ResultMap) Stats {
	var st Stats
	maxFollow := s.MaxFollow
	if maxFollow <= 0 {
		maxFollow = defaultMaxFollow
	}
	visited := make(map[string]struct{})
	current := url
	for hop := 0; ; hop++ {
		if _, seen := visited[current]; seen {
			log.Warn().Str("url", url).Str("target", current).Msg("redirect loop; target already processed")
			return st
		}
		if hop > maxFollow {
			log.Warn().Str("url", url).Int("follow", maxFollow).Msg("redirect follow limit reached")
			return st
		}
		visited[current] = struct{}{}

		tags, resp, ok := s.page(ctx, current)
		if !ok {
			st.Failed++
			return st
		}
		st.Fetched++
		r.Set(current, tags)
		if !resp.Redirected() {
			return st
		}
		target := resp.FinalURL
		st.Redirects++
		log.Info().Str("url", current).Int("hops", resp.Redirects).Str("target", target).Msg("redirect chain followed")
		tags.Prepend(results.KeyRedirectLink, target)
		current = target
	}
}

func (s *Scraper) page(ctx context.Context, url string) (*results.TagMap, *fetch.Response, bool) {
	resp, err := s.Fetcher.Get(ctx, url)
	if err != nil {
		ev := log.Error().Err(err).Str("url", url)
		var se *fetch.StatusError
		if errors.As(err, &se) {
			ev = ev.Int("status", se.StatusCode)
		}
		ev.Msg("fetch failed")
		return nil, nil, false
	}
	log.Info().Str("url", url).Int("status", resp.StatusCode).Bool("cached", resp.FromCache).Msg("fetched")

	ex := s.Extractor
	if ex == nil {
		ex = extract.TagExtractor{}
	}
	tags, err := ex.Extract(resp.Body, resp.ContentType)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("extract failed")
		return nil, nil, false
	}
	return tags, resp, true
}
