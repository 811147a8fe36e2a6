// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveSearch(t *testing.T) {
	m := New()

	m.ObserveSearch("pubmed", 12, 300*time.Millisecond, nil)
	m.ObserveSearch("pubmed", 0, time.Second, errors.New("boom"))
	m.ObserveSearch("arxiv", 3, time.Second, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SearchesStarted.WithLabelValues("pubmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchesFailed.WithLabelValues("pubmed")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.PapersFetched.WithLabelValues("pubmed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PapersFetched.WithLabelValues("arxiv")))
}

func TestCountersAndSaves(t *testing.T) {
	m := New()

	m.AddKeywords(5)
	m.AddKeywords(0)
	m.ObserveClassification("oncology")
	m.ObserveClassification("oncology")
	m.ObserveClassification("")
	m.ObserveSaves(4, 2, 1)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.KeywordsExtracted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Classifications.WithLabelValues("oncology")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.PapersSaved.WithLabelValues("saved")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PapersSaved.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PapersSaved.WithLabelValues("failed")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveSearch("pubmed", 1, time.Second, nil)
		m.AddKeywords(3)
		m.ObserveClassification("surgery")
		m.ObserveSaves(1, 1, 1)
		m.ObserveCrawl(time.Second)
	})
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteToTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestWriteToTextfile(t *testing.T) {
	m := New()
	m.ObserveSearch("arxiv", 2, time.Second, nil)
	m.ObserveCrawl(3 * time.Second)

	path := filepath.Join(t.TempDir(), "medlit.prom")
	require.NoError(t, m.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `medlit_papers_fetched_total{source="arxiv"} 2`)
	assert.Contains(t, string(data), "medlit_crawl_duration_seconds_count 1")
}
