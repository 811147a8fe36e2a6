// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/medlit/internal/pipeline"
	"github.com/pdiddy/medlit/internal/sources"
	"github.com/pdiddy/medlit/pkg/types"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl sources, extract keywords, classify and save papers",
	Long: `Crawl searches PubMed and arXiv for each keyword, extracts ranked keywords
from every paper, classifies it into a medical specialty and saves it to the
database. Papers already stored are skipped. Each run is recorded as a crawl
session.

With --categories the crawl runs the medical-category queries instead and
only writes the raw results to data/papers. With --recent-days it fetches
recent arXiv submissions the same way.`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().StringSlice("keywords", nil, "search keywords (comma-separated)")
	crawlCmd.Flags().StringSlice("sources", nil, "sources to use: pubmed, arxiv (default: all enabled)")
	crawlCmd.Flags().Int("max-results", sources.DefaultPerKeyword, "maximum papers per keyword and source")
	crawlCmd.Flags().Bool("parallel", false, "run keyword searches on a worker pool")
	crawlCmd.Flags().Int("workers", 0, "worker pool size for --parallel (default: crawl.workers)")
	crawlCmd.Flags().StringSlice("categories", nil, "crawl medical categories instead of keywords (raw dump only)")
	crawlCmd.Flags().Int("recent-days", 0, "fetch arXiv papers submitted in the last N days (raw dump only)")

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	kws, _ := cmd.Flags().GetStringSlice("keywords")
	srcs, _ := cmd.Flags().GetStringSlice("sources")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	categories, _ := cmd.Flags().GetStringSlice("categories")
	recentDays, _ := cmd.Flags().GetInt("recent-days")

	crawler := newCrawler()
	if len(crawler.Sources()) == 0 {
		return fmt.Errorf("no sources enabled; check crawl.pubmed.enabled and crawl.arxiv.enabled")
	}
	rawDir := filepath.Join(cfg.DataDir, "papers")

	switch {
	case len(categories) > 0:
		res := crawler.CrawlByCategories(ctx, categories, srcs, maxResults)
		return dumpResults(res, rawDir)
	case recentDays > 0:
		src, _ := crawler.Source(types.SourceArxiv)
		ax, ok := src.(*sources.Arxiv)
		if !ok {
			return fmt.Errorf("arxiv source is not enabled")
		}
		papers, err := ax.SearchRecent(ctx, recentDays, maxResults)
		if err != nil {
			return err
		}
		return dumpResults(sources.Results{types.SourceArxiv: papers}, rawDir)
	}

	if len(kws) == 0 {
		kws = args
	}
	if len(kws) == 0 {
		return fmt.Errorf("keywords required: pass --keywords or positional arguments")
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	workers, _ := cmd.Flags().GetInt("workers")
	if workers <= 0 {
		workers = cfg.Crawl.Workers
	}
	parallel, _ := cmd.Flags().GetBool("parallel")

	p := &pipeline.Pipeline{
		Crawler:     crawler,
		Extractor:   newExtractor(),
		Classifier:  newClassifier(),
		Store:       st,
		Metrics:     mtx,
		Logger:      logger,
		MaxKeywords: cfg.Keywords.MaxKeywords,
		RawDir:      rawDir,
		Progress:    os.Stdout,
	}
	sum, err := p.Run(ctx, pipeline.Request{
		Keywords:   kws,
		Sources:    srcs,
		MaxResults: maxResults,
		Parallel:   parallel,
		Workers:    workers,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\nsession %s\n", sum.SessionID)
	fmt.Printf("  found:      %d\n", sum.Found)
	fmt.Printf("  classified: %d\n", sum.Classified)
	fmt.Printf("  saved:      %d\n", sum.Saved)
	fmt.Printf("  skipped:    %d\n", sum.Skipped)
	fmt.Printf("  failed:     %d\n", sum.Failed)
	fmt.Printf("  duration:   %s\n", sum.Duration.Round(100*time.Millisecond))
	if sum.ResultsPath != "" {
		fmt.Printf("  raw results: %s\n", sum.ResultsPath)
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d paper(s) failed to save", sum.Failed)
	}
	return nil
}

func dumpResults(res sources.ResultSet, dir string) error {
	path, err := sources.SaveResults(res, dir, "")
	if err != nil {
		return err
	}
	fmt.Printf("%d papers written to %s\n", res.Total(), path)
	return nil
}
