// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/medlit/internal/logging"
	"github.com/pdiddy/medlit/internal/metrics"
	"github.com/pdiddy/medlit/pkg/types"
)

const (
	// DefaultWorkers bounds ParallelCrawl when the caller passes no worker count.
	DefaultWorkers = 3

	// DefaultPerKeyword is the keyword and category crawl cap when none is given.
	DefaultPerKeyword = 100

	// parallelMaxResults is the per-(source, query) cap used by ParallelCrawl.
	parallelMaxResults = 50

	// probeQuery is the one-result query used by TestSources.
	probeQuery = "machine learning medical"
)

// Results maps a source name to its papers.
type Results map[string][]types.Paper

// Total returns the number of papers across all sources.
func (r Results) Total() int {
	n := 0
	for _, p := range r {
		n += len(p)
	}
	return n
}

// All flattens the results in the given source order.
func (r Results) All(order []string) []types.Paper {
	var out []types.Paper
	for _, name := range order {
		out = append(out, r[name]...)
	}
	return out
}

// SourceNames returns the source names in sorted order.
func (r Results) SourceNames() []string { return sortedKeys(r) }

// CategoryResults maps a source name to a category name to papers.
type CategoryResults map[string]map[string][]types.Paper

// Total returns the number of papers across all sources and categories.
func (r CategoryResults) Total() int {
	n := 0
	for _, cats := range r {
		for _, p := range cats {
			n += len(p)
		}
	}
	return n
}

// SourceNames returns the source names in sorted order.
func (r CategoryResults) SourceNames() []string { return sortedKeys(r) }

// ResultSet is a crawl result that SaveResults can write.
type ResultSet interface {
	Total() int
	SourceNames() []string
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Crawler runs queries across a set of sources. Failures at the query level
// are logged and yield an empty result for that query; they never abort
// the crawl.
type Crawler struct {
	sources map[string]Source
	order   []string
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewCrawler returns a Crawler over srcs. m may be nil.
func NewCrawler(srcs []Source, m *metrics.Metrics, logger zerolog.Logger) *Crawler {
	c := &Crawler{
		sources: make(map[string]Source, len(srcs)),
		metrics: m,
		logger:  logger,
	}
	for _, s := range srcs {
		if _, dup := c.sources[s.Name()]; dup {
			continue
		}
		c.sources[s.Name()] = s
		c.order = append(c.order, s.Name())
	}
	return c
}

// Sources returns the available source names in registration order.
func (c *Crawler) Sources() []string {
	return append([]string(nil), c.order...)
}

// Source returns the named source.
func (c *Crawler) Source(name string) (Source, bool) {
	s, ok := c.sources[name]
	return s, ok
}

// resolve returns the requested sources that exist, in request order. An
// empty request selects every source.
func (c *Crawler) resolve(names []string) []Source {
	if len(names) == 0 {
		names = c.order
	}
	out := make([]Source, 0, len(names))
	for _, n := range names {
		s, ok := c.sources[n]
		if !ok {
			c.logger.Warn().Str("source", n).Msg("unknown source, skipping")
			continue
		}
		out = append(out, s)
	}
	return out
}

// search runs one adapter search and records metrics.
func (c *Crawler) search(ctx context.Context, s Source, query string, maxResults int) ([]types.Paper, error) {
	start := time.Now()
	papers, err := s.Search(ctx, query, maxResults)
	elapsed := time.Since(start)
	c.metrics.ObserveSearch(s.Name(), len(papers), elapsed, err)
	log := logging.WithSource(c.logger, s.Name(), query)
	log.Debug().
		Int("papers", len(papers)).Dur("elapsed", elapsed).Err(err).Msg("search finished")
	return papers, err
}

// CrawlByKeywords searches every keyword on every selected source in
// sequence and deduplicates each source's papers.
func (c *Crawler) CrawlByKeywords(ctx context.Context, keywords, sources []string, maxPerKeyword int) Results {
	if maxPerKeyword <= 0 {
		maxPerKeyword = DefaultPerKeyword
	}
	results := Results{}
	for _, s := range c.resolve(sources) {
		log := c.logger.With().Str("source", s.Name()).Logger()
		log.Info().Int("keywords", len(keywords)).Msg("crawling source")

		var all []types.Paper
		for _, kw := range keywords {
			if ctx.Err() != nil {
				break
			}
			papers, err := c.search(ctx, s, kw, maxPerKeyword)
			if err != nil {
				log.Error().Err(err).Str("query", kw).Msg("keyword search failed")
				continue
			}
			log.Info().Str("query", kw).Int("papers", len(papers)).Msg("keyword search complete")
			all = append(all, papers...)
		}
		results[s.Name()] = Dedup(all)
		log.Info().Int("unique_papers", len(results[s.Name()])).Msg("source crawl complete")
	}
	return results
}

// CrawlByCategories searches each category on each selected source, using
// the source's dedicated category query when it has one.
func (c *Crawler) CrawlByCategories(ctx context.Context, categories, sources []string, maxPerCategory int) CategoryResults {
	if maxPerCategory <= 0 {
		maxPerCategory = DefaultPerKeyword
	}
	results := CategoryResults{}
	for _, s := range c.resolve(sources) {
		byCat := make(map[string][]types.Paper, len(categories))
		results[s.Name()] = byCat
		log := c.logger.With().Str("source", s.Name()).Logger()

		for _, cat := range categories {
			if ctx.Err() != nil {
				break
			}
			var (
				papers []types.Paper
				err    error
			)
			start := time.Now()
			if cs, ok := s.(CategorySearcher); ok {
				papers, err = cs.SearchByCategory(ctx, cat, maxPerCategory)
			} else {
				papers, err = s.Search(ctx, cat, maxPerCategory)
			}
			c.metrics.ObserveSearch(s.Name(), len(papers), time.Since(start), err)
			if err != nil {
				log.Error().Err(err).Str("category", cat).Msg("category search failed")
				byCat[cat] = nil
				continue
			}
			log.Info().Str("category", cat).Int("papers", len(papers)).Msg("category search complete")
			byCat[cat] = papers
		}
	}
	return results
}

type crawlTask struct {
	source Source
	query  string
}

type crawlResult struct {
	task   crawlTask
	papers []types.Paper
	err    error
}

// ParallelCrawl searches every (source, query) pair on a bounded pool of
// workers, 50 results each. Results are collected as they complete, so
// per-source order is not guaranteed. A failed pair is logged and does
// not stop the others.
func (c *Crawler) ParallelCrawl(ctx context.Context, queries, sources []string, workers int) Results {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	srcs := c.resolve(sources)

	results := Results{}
	for _, s := range srcs {
		results[s.Name()] = nil
	}

	tasks := make(chan crawlTask)
	out := make(chan crawlResult)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				out <- c.runTask(ctx, t)
			}
		}()
	}

	go func() {
		defer close(tasks)
		for _, s := range srcs {
			for _, q := range queries {
				select {
				case tasks <- crawlTask{source: s, query: q}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	for r := range out {
		name := r.task.source.Name()
		if r.err != nil {
			c.logger.Error().Err(r.err).Str("source", name).Str("query", r.task.query).Msg("parallel query failed")
			continue
		}
		c.logger.Info().Str("source", name).Str("query", r.task.query).Int("papers", len(r.papers)).Msg("parallel query complete")
		results[name] = append(results[name], r.papers...)
	}

	for name, papers := range results {
		results[name] = Dedup(papers)
	}
	return results
}

// runTask executes one search, converting a panic in the adapter into an
// error so one bad task cannot take down the pool.
func (c *Crawler) runTask(ctx context.Context, t crawlTask) (res crawlResult) {
	res.task = t
	defer func() {
		if r := recover(); r != nil {
			res.papers = nil
			res.err = fmt.Errorf("panic in %s search: %v", t.source.Name(), r)
		}
	}()
	res.papers, res.err = c.search(ctx, t.source, t.query, parallelMaxResults)
	return res
}

// TestSources runs a one-result probe query against every source and
// reports which returned at least one paper.
func (c *Crawler) TestSources(ctx context.Context) map[string]bool {
	status := make(map[string]bool, len(c.order))
	for _, name := range c.order {
		papers, err := c.search(ctx, c.sources[name], probeQuery, 1)
		ok := err == nil && len(papers) > 0
		status[name] = ok
		ev := c.logger.Info()
		if err != nil {
			ev = c.logger.Error().Err(err)
		}
		ev.Str("source", name).Bool("ok", ok).Msg("source probe")
	}
	return status
}

// crawlDump is the on-disk layout written by SaveResults.
type crawlDump struct {
	Metadata crawlMetadata `json:"metadata"`
	Data     any           `json:"data"`
}

type crawlMetadata struct {
	Timestamp   string   `json:"timestamp"`
	TotalPapers int      `json:"total_papers"`
	Sources     []string `json:"sources"`
}

// SaveResults writes results to dir as indented JSON with a metadata header
// and returns the file path. An empty filename selects
// crawl_results_YYYYMMDD_HHMMSS.json.
func SaveResults(results ResultSet, dir, filename string) (string, error) {
	now := time.Now()
	if filename == "" {
		filename = fmt.Sprintf("crawl_results_%s.json", now.Format("20060102_150405"))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	dump := crawlDump{
		Metadata: crawlMetadata{
			Timestamp:   now.Format(time.RFC3339),
			TotalPapers: results.Total(),
			Sources:     results.SourceNames(),
		},
		Data: results,
	}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding crawl results: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
