// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/medlit/internal/classifier"
	"github.com/pdiddy/medlit/internal/keywords"
	"github.com/pdiddy/medlit/internal/metrics"
	"github.com/pdiddy/medlit/internal/sources"
	"github.com/pdiddy/medlit/internal/store"
	"github.com/pdiddy/medlit/pkg/types"
)

// stubSource serves canned papers per query and can run a hook per call.
type stubSource struct {
	name    string
	results map[string][]types.Paper
	onCall  func()
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Search(_ context.Context, query string, _ int) ([]types.Paper, error) {
	if s.onCall != nil {
		s.onCall()
	}
	papers, ok := s.results[query]
	if !ok {
		return nil, errors.New("unknown query")
	}
	return papers, nil
}

func (s *stubSource) GetDetails(context.Context, string) (types.Paper, error) {
	return types.Paper{}, sources.ErrNotFound
}

var testCategories = []types.Category{
	{Name: "cardiology", DisplayName: "心脏病学"},
	{Name: "oncology", DisplayName: "肿瘤学"},
}

func testPipeline(t *testing.T, srcs ...sources.Source) (*Pipeline, *metrics.Metrics) {
	t.Helper()
	dir := t.TempDir()

	st, err := store.Open(filepath.Join(dir, "medlit.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	_, err = st.InitCategories(context.Background(), testCategories)
	require.NoError(t, err)

	m := metrics.New()
	cls := classifier.New(types.ClassifierConfig{
		ModelDir:   filepath.Join(dir, "models"),
		Categories: testCategories,
		CategoryKeywords: map[string][]string{
			"cardiology": {"heart", "cardiac", "cardiovascular", "coronary", "myocardial"},
			"oncology":   {"cancer", "tumor", "malignant", "chemotherapy", "oncology"},
		},
	}, zerolog.Nop())

	return &Pipeline{
		Crawler:     sources.NewCrawler(srcs, m, zerolog.Nop()),
		Extractor:   keywords.New(keywords.DefaultDictionary(), nil, zerolog.Nop()),
		Classifier:  cls,
		Store:       st,
		Metrics:     m,
		Logger:      zerolog.Nop(),
		MaxKeywords: 10,
	}, m
}

func pubmedStub() *stubSource {
	return &stubSource{
		name: "pubmed",
		results: map[string][]types.Paper{
			"heart": {
				{ID: "1", Title: "Coronary heart disease", Abstract: "Cardiac outcomes after myocardial infarction.", Source: "pubmed"},
				{ID: "2", Title: "Malignant tumor growth", Abstract: "Chemotherapy response in cancer patients.", Source: "pubmed"},
			},
			"cancer": {
				{ID: "2", Title: "Malignant tumor growth", Abstract: "Chemotherapy response in cancer patients.", Source: "pubmed"},
			},
		},
	}
}

func TestRun(t *testing.T) {
	ax := &stubSource{
		name: "arxiv",
		results: map[string][]types.Paper{
			"heart":  {{ID: "2401.00001v1", Title: "Cardiovascular imaging of the heart", Abstract: "Coronary and cardiac function.", Source: "arxiv"}},
			"cancer": nil,
		},
	}
	p, m := testPipeline(t, pubmedStub(), ax)
	var progress bytes.Buffer
	p.Progress = &progress
	p.RawDir = filepath.Join(t.TempDir(), "papers")
	ctx := context.Background()

	sum, err := p.Run(ctx, Request{Keywords: []string{" heart ", "cancer", "heart", ""}})
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Found)
	assert.Equal(t, 3, sum.Classified)
	assert.Equal(t, store.SaveSummary{Saved: 3}, sum.SaveSummary)
	assert.NotEmpty(t, sum.SessionID)
	assert.FileExists(t, sum.ResultsPath)
	assert.FileExists(t, filepath.Join(p.Classifier.Info().ModelPath, "metadata.json"))
	assert.Contains(t, progress.String(), "found 3 papers from 2 sources")

	sess, err := p.Store.Session(ctx, sum.SessionID)
	require.NoError(t, err)
	assert.Equal(t, store.SessionCompleted, sess.Status)
	assert.Equal(t, []string{"heart", "cancer"}, sess.Keywords)
	assert.Equal(t, []string{"pubmed", "arxiv"}, sess.Sources)
	assert.Equal(t, 3, sess.SavedPapers)

	d, err := p.Store.GetPaperByExternalID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "cardiology", d.PredictedCategory)
	assert.NotEmpty(t, d.Keywords)

	d, err = p.Store.GetPaperByExternalID(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "oncology", d.PredictedCategory)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.PapersSaved.WithLabelValues("saved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Classifications.WithLabelValues("oncology")))
	assert.Positive(t, testutil.ToFloat64(m.KeywordsExtracted))

	again, err := p.Run(ctx, Request{Keywords: []string{"heart"}, Sources: []string{"pubmed"}})
	require.NoError(t, err)
	assert.Equal(t, store.SaveSummary{Skipped: 2}, again.SaveSummary)
}

func TestRun_LoadsSavedModel(t *testing.T) {
	p, _ := testPipeline(t, pubmedStub())
	require.True(t, p.Classifier.Train(nil).Success)

	fresh := classifier.New(types.ClassifierConfig{
		ModelDir:   p.Classifier.Info().ModelPath,
		Categories: testCategories,
	}, zerolog.Nop())
	p.Classifier = fresh

	sum, err := p.Run(context.Background(), Request{Keywords: []string{"heart"}})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Classified)
	assert.True(t, fresh.IsTrained())
}

func TestRun_Parallel(t *testing.T) {
	p, _ := testPipeline(t, pubmedStub())

	sum, err := p.Run(context.Background(), Request{Keywords: []string{"heart", "cancer"}, Parallel: true, Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Found)
	assert.Equal(t, 2, sum.Saved)
}

func TestRun_WithoutClassifier(t *testing.T) {
	p, _ := testPipeline(t, pubmedStub())
	p.Classifier = nil

	sum, err := p.Run(context.Background(), Request{Keywords: []string{"cancer"}})
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Classified)
	assert.Equal(t, 1, sum.Saved)
}

func TestRun_NoResults(t *testing.T) {
	p, _ := testPipeline(t, pubmedStub())
	p.RawDir = filepath.Join(t.TempDir(), "raw")

	sum, err := p.Run(context.Background(), Request{Keywords: []string{"unknown"}})
	require.NoError(t, err)
	assert.Zero(t, sum.Found)
	assert.Empty(t, sum.ResultsPath)
	assert.NoDirExists(t, p.RawDir)
	assert.False(t, p.Classifier.IsTrained(), "no papers, no training")

	sess, err := p.Store.Session(context.Background(), sum.SessionID)
	require.NoError(t, err)
	assert.Equal(t, store.SessionCompleted, sess.Status)
}

func TestRun_NoKeywords(t *testing.T) {
	p, _ := testPipeline(t, pubmedStub())
	_, err := p.Run(context.Background(), Request{Keywords: []string{" ", ""}})
	assert.ErrorIs(t, err, ErrNoKeywords)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := pubmedStub()
	src.onCall = cancel
	p, _ := testPipeline(t, src)

	sum, err := p.Run(ctx, Request{Keywords: []string{"heart"}})
	require.ErrorIs(t, err, context.Canceled)

	sess, err := p.Store.Session(context.Background(), sum.SessionID)
	require.NoError(t, err)
	assert.Equal(t, store.SessionFailed, sess.Status)
	assert.Contains(t, sess.ErrorMessage, "interrupted")
}

func TestEnrich(t *testing.T) {
	p, _ := testPipeline(t)
	out := p.Enrich([]types.Paper{{ID: "x", Title: "Malignant tumor", Abstract: "Chemotherapy for cancer."}})
	require.Len(t, out, 1)
	assert.Equal(t, "oncology", out[0].PredictedCategory())
	assert.NotEmpty(t, out[0].ExtractedKeywords)

	_, err := os.Stat(filepath.Join(p.Classifier.Info().ModelPath, "classifier.json"))
	assert.NoError(t, err)
}
