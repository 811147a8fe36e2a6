// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics holds the Prometheus counters and histograms recorded by
// the crawler, the enrichment pipeline and the store. Metrics live on a
// private registry so tests and repeated CLI runs never collide with the
// default one. A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "medlit"

// Metrics groups the application's instruments.
type Metrics struct {
	registry *prometheus.Registry

	// SearchesStarted counts adapter searches, labeled by source.
	SearchesStarted *prometheus.CounterVec

	// SearchesFailed counts adapter searches that returned an error, labeled by source.
	SearchesFailed *prometheus.CounterVec

	// SearchDuration observes adapter search duration in seconds, labeled by source.
	SearchDuration *prometheus.HistogramVec

	// PapersFetched counts papers returned by adapters, labeled by source.
	PapersFetched *prometheus.CounterVec

	// KeywordsExtracted counts ranked keywords produced by the extractor.
	KeywordsExtracted prometheus.Counter

	// Classifications counts classified papers, labeled by predicted category.
	Classifications *prometheus.CounterVec

	// PapersSaved counts store writes, labeled by outcome (saved, skipped, failed).
	PapersSaved *prometheus.CounterVec

	// CrawlDuration observes end-to-end pipeline runs in seconds.
	CrawlDuration prometheus.Histogram
}

// New creates a Metrics instance registered on its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SearchesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "searches_started_total",
			Help:      "Total number of adapter searches started",
		}, []string{"source"}),
		SearchesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "searches_failed_total",
			Help:      "Total number of adapter searches that failed",
		}, []string{"source"}),
		SearchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of adapter searches in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"source"}),
		PapersFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "papers_fetched_total",
			Help:      "Total number of papers returned by source adapters",
		}, []string{"source"}),
		KeywordsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "keywords_extracted_total",
			Help:      "Total number of ranked keywords extracted",
		}),
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "classifications_total",
			Help:      "Total number of classified papers by predicted category",
		}, []string{"category"}),
		PapersSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "papers_saved_total",
			Help:      "Total number of store writes by outcome",
		}, []string{"outcome"}),
		CrawlDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "crawl_duration_seconds",
			Help:      "Duration of crawl and enrichment runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	m.registry.MustRegister(
		m.SearchesStarted,
		m.SearchesFailed,
		m.SearchDuration,
		m.PapersFetched,
		m.KeywordsExtracted,
		m.Classifications,
		m.PapersSaved,
		m.CrawlDuration,
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveSearch records one adapter search.
func (m *Metrics) ObserveSearch(source string, papers int, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.SearchesStarted.WithLabelValues(source).Inc()
	m.SearchDuration.WithLabelValues(source).Observe(d.Seconds())
	if err != nil {
		m.SearchesFailed.WithLabelValues(source).Inc()
		return
	}
	m.PapersFetched.WithLabelValues(source).Add(float64(papers))
}

// AddKeywords records n extracted keywords.
func (m *Metrics) AddKeywords(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.KeywordsExtracted.Add(float64(n))
}

// ObserveClassification records one classified paper.
func (m *Metrics) ObserveClassification(category string) {
	if m == nil || category == "" {
		return
	}
	m.Classifications.WithLabelValues(category).Inc()
}

// ObserveSaves records the outcome of a batch save.
func (m *Metrics) ObserveSaves(saved, skipped, failed int) {
	if m == nil {
		return
	}
	m.PapersSaved.WithLabelValues("saved").Add(float64(saved))
	m.PapersSaved.WithLabelValues("skipped").Add(float64(skipped))
	m.PapersSaved.WithLabelValues("failed").Add(float64(failed))
}

// ObserveCrawl records the duration of a pipeline run.
func (m *Metrics) ObserveCrawl(d time.Duration) {
	if m == nil {
		return
	}
	m.CrawlDuration.Observe(d.Seconds())
}

// WriteToTextfile writes every registered metric to path in the text
// exposition format, for collection by a node_exporter textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
