// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs a crawl end to end: fetch papers from the sources,
// extract keywords, classify, and persist the results under a recorded
// crawl session.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/medlit/internal/classifier"
	"github.com/pdiddy/medlit/internal/keywords"
	"github.com/pdiddy/medlit/internal/metrics"
	"github.com/pdiddy/medlit/internal/sources"
	"github.com/pdiddy/medlit/internal/store"
	"github.com/pdiddy/medlit/pkg/types"
)

// ErrNoKeywords is returned by Run when the request has no usable keyword.
var ErrNoKeywords = errors.New("no keywords given")

// Request selects what to crawl.
type Request struct {
	Keywords []string
	// Sources names the adapters to use; empty means all.
	Sources []string
	// MaxResults caps results per keyword and source; zero selects the crawler default.
	MaxResults int
	// Parallel fans (source, keyword) pairs out over Workers goroutines.
	Parallel bool
	Workers  int
}

// Summary is the outcome of Run.
type Summary struct {
	SessionID   string
	Found       int
	Classified  int
	ResultsPath string
	Duration    time.Duration
	store.SaveSummary
}

// Pipeline wires the crawl stages together. Classifier, Metrics and
// RawDir are optional.
type Pipeline struct {
	Crawler     *sources.Crawler
	Extractor   *keywords.Extractor
	Classifier  *classifier.Classifier
	Store       *store.Store
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
	MaxKeywords int

	// RawDir receives a JSON dump of the raw crawl results when set.
	RawDir string

	// Progress receives one line per stage. Nil discards.
	Progress io.Writer
}

func (p *Pipeline) progress(format string, args ...any) {
	if p.Progress != nil {
		fmt.Fprintf(p.Progress, format+"\n", args...)
	}
}

// Run crawls req.Keywords, enriches and classifies the papers found, saves
// them and records the session. A failed save of one paper is counted, not
// returned. Cancellation marks the session failed.
func (p *Pipeline) Run(ctx context.Context, req Request) (Summary, error) {
	kws := cleanKeywords(req.Keywords)
	if len(kws) == 0 {
		return Summary{}, ErrNoKeywords
	}
	srcs := req.Sources
	if len(srcs) == 0 {
		srcs = p.Crawler.Sources()
	}

	start := time.Now()
	id, err := p.Store.StartSession(ctx, kws, srcs)
	if err != nil {
		return Summary{}, err
	}
	log := p.Logger.With().Str("session", id).Logger()
	log.Info().Strs("keywords", kws).Strs("sources", srcs).Msg("crawl session started")

	sum := Summary{SessionID: id}
	runErr := p.run(ctx, log, kws, srcs, req, &sum)
	sum.Duration = time.Since(start)
	p.Metrics.ObserveCrawl(sum.Duration)

	// The session row is finished even when ctx is cancelled.
	finishCtx := context.WithoutCancel(ctx)
	if err := p.Store.FinishSession(finishCtx, id, store.SessionResult{
		Found:   sum.Found,
		Saved:   sum.Saved,
		Skipped: sum.Skipped,
		Failed:  sum.Failed,
		Err:     runErr,
	}); err != nil {
		log.Error().Err(err).Msg("recording session outcome failed")
	}

	if runErr != nil {
		log.Error().Err(runErr).Msg("crawl session failed")
		return sum, runErr
	}
	log.Info().
		Int("found", sum.Found).
		Int("saved", sum.Saved).
		Int("skipped", sum.Skipped).
		Int("failed", sum.Failed).
		Dur("duration", sum.Duration).
		Msg("crawl session completed")
	return sum, nil
}

func (p *Pipeline) run(ctx context.Context, log zerolog.Logger, kws, srcs []string, req Request, sum *Summary) error {
	var results sources.Results
	if req.Parallel {
		results = p.Crawler.ParallelCrawl(ctx, kws, srcs, req.Workers)
	} else {
		results = p.Crawler.CrawlByKeywords(ctx, kws, srcs, req.MaxResults)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("crawl interrupted: %w", err)
	}

	papers := results.All(p.Crawler.Sources())
	sum.Found = len(papers)
	p.progress("found %d papers from %d sources", sum.Found, len(results))

	if p.RawDir != "" && sum.Found > 0 {
		path, err := sources.SaveResults(results, p.RawDir, "")
		if err != nil {
			log.Warn().Err(err).Msg("saving raw crawl results failed")
		} else {
			sum.ResultsPath = path
		}
	}
	if sum.Found == 0 {
		return nil
	}

	enriched := p.Extractor.EnrichPapers(papers, p.MaxKeywords)
	var nKeywords int
	for _, e := range enriched {
		nKeywords += len(e.ExtractedKeywords)
	}
	p.Metrics.AddKeywords(nKeywords)
	p.progress("extracted %d keywords", nKeywords)

	if p.Classifier != nil {
		p.ensureModel(log)
		enriched = p.Classifier.ClassifyPapers(enriched)
		for _, e := range enriched {
			if c := e.PredictedCategory(); c != "" {
				sum.Classified++
				p.Metrics.ObserveClassification(c)
			}
		}
		p.progress("classified %d papers", sum.Classified)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("crawl interrupted: %w", err)
	}
	sum.SaveSummary = p.Store.BatchSave(ctx, enriched)
	p.Metrics.ObserveSaves(sum.Saved, sum.Skipped, sum.Failed)
	p.progress("saved %d, skipped %d, failed %d", sum.Saved, sum.Skipped, sum.Failed)
	return nil
}

// ensureModel loads a saved model or, failing that, trains on bootstrap
// data. If both fail papers are saved unclassified.
func (p *Pipeline) ensureModel(log zerolog.Logger) {
	if p.Classifier.IsTrained() || p.Classifier.Load() {
		return
	}
	log.Info().Msg("no saved model, training on bootstrap data")
	res := p.Classifier.Train(nil)
	if !res.Success {
		log.Warn().Str("error", res.Error).Msg("bootstrap training failed, papers will be saved unclassified")
		return
	}
	p.progress("%s", res)
}

// cleanKeywords trims keywords and drops blanks and duplicates.
func cleanKeywords(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, k := range in {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// Enrich extracts keywords from papers and classifies them without
// crawling or saving. It is used to analyse papers loaded from a file.
func (p *Pipeline) Enrich(papers []types.Paper) []types.EnrichedPaper {
	enriched := p.Extractor.EnrichPapers(papers, p.MaxKeywords)
	if p.Classifier == nil {
		return enriched
	}
	p.ensureModel(p.Logger)
	return p.Classifier.ClassifyPapers(enriched)
}
