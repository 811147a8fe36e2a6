// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/medlit/pkg/types"
)

var testCategories = []types.Category{
	{Name: "cardiology", DisplayName: "心脏病学", Description: "Heart and vessels"},
	{Name: "oncology", DisplayName: "肿瘤学"},
	{Name: "neurology", DisplayName: ""},
}

// clock is a settable time source for deterministic timestamps.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func testStore(t *testing.T) (*Store, *clock) {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "medlit.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	c := &clock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	s.now = c.now

	_, err = s.InitCategories(context.Background(), testCategories)
	require.NoError(t, err)
	return s, c
}

func enriched(id, title, abstract, source string) types.EnrichedPaper {
	return types.EnrichedPaper{
		Paper: types.Paper{
			ID:              id,
			Title:           title,
			Abstract:        abstract,
			Authors:         []string{"Jane Doe", "John Roe"},
			Journal:         "Test Journal",
			PublicationDate: "2023-03-05",
			DOI:             "10.1000/" + id,
			URL:             "https://example.org/" + id,
			Source:          source,
			Keywords:        []string{"heart failure", " "},
		},
		ExtractedKeywords: []types.RankedKeyword{
			{Keyword: "heart", Category: "cardiology", Score: 3.5, Methods: []string{"dictionary", "pattern"}},
			{Keyword: "ejection", Category: "tfidf", Score: 0.4, Methods: []string{"tfidf"}},
		},
		ClassifiedKeywords: map[string][]types.RankedKeyword{
			"cardiology": {{Keyword: "heart", Category: "cardiology", Score: 3.5, Methods: []string{"dictionary", "pattern"}}},
		},
		KeywordCategories: []string{"cardiology", "other"},
		Classification: &types.ClassificationResult{
			PredictedCategory: "cardiology",
			Confidence:        0.7,
			Probabilities:     map[string]float64{"cardiology": 0.7, "oncology": 0.25, "neurology": 0.05},
		},
	}
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medlit.db")
	s, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	_, err = s.InitCategories(context.Background(), testCategories)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()
	cats, err := s.Categories(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, 3)
}

func TestInitCategories_Upserts(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	n, err := s.InitCategories(ctx, []types.Category{{Name: "oncology", DisplayName: "Oncology", Description: "Cancer"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, "cardiology", cats[0].Name)
	assert.Equal(t, "Oncology", cats[1].DisplayName)
	assert.Equal(t, "Cancer", cats[1].Description)
}

func TestSavePaper(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	id, created, err := s.SavePaper(ctx, enriched("111", "Heart failure outcomes", "Ejection fraction study.", "pubmed"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, id)

	again, created, err := s.SavePaper(ctx, enriched("111", "Changed title", "", "pubmed"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, again)

	d, err := s.GetPaper(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "111", d.ExternalID)
	assert.Equal(t, "Heart failure outcomes", d.Title)
	assert.Equal(t, []string{"Jane Doe", "John Roe"}, d.Authors)
	assert.Equal(t, "cardiology", d.PredictedCategory)
	assert.InDelta(t, 0.7, d.Confidence, 1e-9)
	assert.InDelta(t, 0.25, d.Probabilities["oncology"], 1e-9)
	assert.Equal(t, []string{"heart failure", " "}, d.OriginalKeywords)
	require.Len(t, d.ExtractedKeywords, 2)
	assert.Equal(t, []string{"dictionary", "pattern"}, d.ExtractedKeywords[0].Methods)
	assert.Contains(t, d.ClassifiedKeywords, "cardiology")
	assert.Equal(t, []string{"cardiology", "other"}, d.KeywordCategories)

	require.Len(t, d.Keywords, 3)
	assert.Equal(t, KeywordRecord{Keyword: "heart", Category: "cardiology", Score: 3.5, Methods: "dictionary,pattern"}, d.Keywords[0])
	assert.Equal(t, KeywordRecord{Keyword: "heart failure", Category: "original", Score: 1, Methods: "original"}, d.Keywords[2])

	require.Len(t, d.Categories, 2)
	assert.Equal(t, PaperCategory{Name: "cardiology", DisplayName: "心脏病学", Confidence: 0.7, IsPrimary: true}, d.Categories[0])
	assert.Equal(t, "oncology", d.Categories[1].Name)
	assert.False(t, d.Categories[1].IsPrimary)
}

func TestSavePaper_Unclassified(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	p := enriched("a1", "Preprint", "", "arxiv")
	p.Classification = nil
	p.ClassifiedKeywords = nil
	id, created, err := s.SavePaper(ctx, p)
	require.NoError(t, err)
	require.True(t, created)

	d, err := s.GetPaper(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, d.PredictedCategory)
	assert.Nil(t, d.Probabilities)
	assert.Empty(t, d.Categories)
}

func TestSavePaper_MissingID(t *testing.T) {
	s, _ := testStore(t)
	_, _, err := s.SavePaper(context.Background(), enriched("", "No id", "", "pubmed"))
	assert.Error(t, err)
}

func TestBatchSave(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	sum := s.BatchSave(ctx, []types.EnrichedPaper{
		enriched("1", "One", "", "pubmed"),
		enriched("2", "Two", "", "arxiv"),
		enriched("1", "One again", "", "pubmed"),
		enriched("", "Broken", "", "pubmed"),
	})
	assert.Equal(t, SaveSummary{Saved: 2, Skipped: 1, Failed: 1}, sum)
	assert.Equal(t, 4, sum.Total())
}

func TestSearch(t *testing.T) {
	s, c := testStore(t)
	ctx := context.Background()

	onc := enriched("2", "Tumor growth_rate in 50% of mice", "Oncology abstract", "arxiv")
	onc.Classification = &types.ClassificationResult{
		PredictedCategory: "oncology",
		Confidence:        0.9,
		Probabilities:     map[string]float64{"oncology": 0.9, "cardiology": 0.1},
	}
	_, _, err := s.SavePaper(ctx, enriched("1", "Heart failure", "Cardiac tumor case", "pubmed"))
	require.NoError(t, err)
	c.advance(time.Minute)
	_, _, err = s.SavePaper(ctx, onc)
	require.NoError(t, err)

	tests := []struct {
		name string
		opts SearchOptions
		want []string
	}{
		{"all newest first", SearchOptions{}, []string{"2", "1"}},
		{"title or abstract", SearchOptions{Query: "TUMOR"}, []string{"2", "1"}},
		{"abstract only", SearchOptions{Query: "cardiac"}, []string{"1"}},
		{"literal percent", SearchOptions{Query: "50%"}, []string{"2"}},
		{"literal underscore", SearchOptions{Query: "h_art"}, nil},
		{"category includes secondary links", SearchOptions{Category: "oncology"}, []string{"2", "1"}},
		{"threshold is exclusive", SearchOptions{Category: "cardiology"}, []string{"1"}},
		{"secondary category excluded below threshold", SearchOptions{Category: "neurology"}, nil},
		{"source", SearchOptions{Source: "pubmed"}, []string{"1"}},
		{"limit", SearchOptions{Limit: 1}, []string{"2"}},
		{"offset", SearchOptions{Limit: 1, Offset: 1}, []string{"1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(ctx, tt.opts)
			require.NoError(t, err)
			var ids []string
			for _, r := range got {
				ids = append(ids, r.ExternalID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSearch_RecordsHistory(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()
	_, _, err := s.SavePaper(ctx, enriched("1", "Heart failure", "", "pubmed"))
	require.NoError(t, err)

	_, err = s.Search(ctx, SearchOptions{Query: " heart ", Source: "pubmed"})
	require.NoError(t, err)
	_, err = s.Search(ctx, SearchOptions{Source: "pubmed"})
	require.NoError(t, err)

	hist, err := s.SearchHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "heart", hist[0].Query)
	assert.Equal(t, map[string]string{"source": "pubmed"}, hist[0].Filters)
	assert.Equal(t, 1, hist[0].ResultsCount)
}

func TestGetPaper_NotFound(t *testing.T) {
	s, _ := testStore(t)
	_, err := s.GetPaper(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetPaperByExternalID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatistics(t *testing.T) {
	s, c := testStore(t)
	ctx := context.Background()

	_, _, err := s.SavePaper(ctx, enriched("old", "Old", "", "pubmed"))
	require.NoError(t, err)
	c.advance(10 * 24 * time.Hour)
	_, _, err = s.SavePaper(ctx, enriched("new1", "New", "", "pubmed"))
	require.NoError(t, err)
	unclassified := enriched("new2", "Newer", "", "arxiv")
	unclassified.Classification = nil
	_, _, err = s.SavePaper(ctx, unclassified)
	require.NoError(t, err)

	st, err := s.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalPapers)
	assert.Equal(t, 9, st.TotalKeywords)
	assert.Equal(t, 2, st.RecentPapers)
	assert.Equal(t, map[string]int{"pubmed": 2, "arxiv": 1}, st.SourceDistribution)
	assert.Equal(t, map[string]int{"心脏病学": 2, "肿瘤学": 2}, st.CategoryDistribution)
}

func TestSessions(t *testing.T) {
	s, c := testStore(t)
	ctx := context.Background()

	id, err := s.StartSession(ctx, []string{"cancer"}, []string{"pubmed", "arxiv"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	sess, err := s.Session(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, SessionRunning, sess.Status)
	assert.True(t, sess.CompletedAt.IsZero())

	c.advance(90 * time.Second)
	require.NoError(t, s.FinishSession(ctx, id, SessionResult{Found: 5, Saved: 3, Skipped: 1, Failed: 1}))

	sess, err = s.Session(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, SessionCompleted, sess.Status)
	assert.Equal(t, []string{"cancer"}, sess.Keywords)
	assert.Equal(t, []string{"pubmed", "arxiv"}, sess.Sources)
	assert.Equal(t, 5, sess.TotalPapers)
	assert.Equal(t, 3, sess.SavedPapers)
	assert.Equal(t, 1, sess.SkippedPapers)
	assert.Equal(t, 1, sess.FailedPapers)
	assert.Equal(t, 90*time.Second, sess.Duration)

	failed, err := s.StartSession(ctx, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.FinishSession(ctx, failed, SessionResult{Err: errors.New("network down")}))
	sess, err = s.Session(ctx, failed)
	require.NoError(t, err)
	assert.Equal(t, SessionFailed, sess.Status)
	assert.Equal(t, "network down", sess.ErrorMessage)

	assert.ErrorIs(t, s.FinishSession(ctx, "missing", SessionResult{}), ErrNotFound)
	_, err = s.Session(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordExport(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "papers_export.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,title\n1,x\n"), 0o644))

	id, err := s.RecordExport(ctx, ExportRecord{Format: "csv", Path: path, PaperCount: 1, Filters: map[string]string{"source": "pubmed"}})
	require.NoError(t, err)
	assert.NotZero(t, id)

	recs, err := s.Exports(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "papers_export.csv", recs[0].Filename)
	assert.Equal(t, int64(13), recs[0].FileSize)
	assert.Equal(t, "pubmed", recs[0].Filters["source"])

	_, err = s.RecordExport(ctx, ExportRecord{Format: "csv", Path: filepath.Join(t.TempDir(), "gone.csv")})
	assert.Error(t, err)
}
