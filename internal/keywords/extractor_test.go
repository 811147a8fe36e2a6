// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"errors"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/medlit/pkg/types"
)

func oncologyDict() Dictionary {
	return Dictionary{{Category: "oncology", Terms: []string{"cancer", "tumor"}}}
}

func TestDictionaryPass_SingleOccurrence(t *testing.T) {
	e := New(oncologyDict(), nil, zerolog.Nop())

	got := e.dictionaryPass("This tumor was malignant")
	require.Len(t, got, 1)
	assert.Equal(t, "tumor", got[0].keyword)
	assert.Equal(t, "oncology", got[0].category)
	assert.Equal(t, 2.0, got[0].score)
	assert.Equal(t, types.MethodDictionary, got[0].method)
}

func TestDictionaryPass_CountsOccurrences(t *testing.T) {
	e := New(oncologyDict(), nil, zerolog.Nop())

	got := e.dictionaryPass("Cancer cells. CANCER staging. Breast cancer.")
	require.Len(t, got, 1)
	assert.Equal(t, 6.0, got[0].score)
}

func TestExtract_MergesDictionaryAndPattern(t *testing.T) {
	e := New(oncologyDict(), nil, zerolog.Nop())

	got := e.Extract("This tumor was malignant", 10)
	require.NotEmpty(t, got)
	assert.Equal(t, "tumor", got[0].Keyword)
	assert.Equal(t, "oncology", got[0].Category)
	assert.InDelta(t, 3.5, got[0].Score, 1e-9)
	assert.Equal(t, []string{types.MethodDictionary, types.MethodPattern}, got[0].Methods)
}

func TestExtract_BoundedAndSorted(t *testing.T) {
	text := "Trastuzumab and Imatinib were compared with Lisinopril for heart failure. " +
		"Patients received 50 mg daily. BRCA1 and TP53 mutations were measured in tumor tissue. " +
		"The therapy improved heart, liver and kidney function. Patients tolerated therapy well."
	e := New(DefaultDictionary(), nil, zerolog.Nop())

	for _, max := range []int{1, 3, 5, 100} {
		got := e.Extract(text, max)
		assert.LessOrEqual(t, len(got), max)
		assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool { return got[i].Score > got[j].Score }),
			"max=%d not sorted by score", max)
		for _, kw := range got {
			assert.GreaterOrEqual(t, kw.Score, 0.0)
		}
	}
}

func TestExtract_DefaultLimit(t *testing.T) {
	var text string
	for _, w := range []string{"heart", "brain", "liver", "kidney", "lung", "bone", "muscle", "nerve", "blood",
		"syndrome", "disease", "disorder", "cancer", "tumor", "carcinoma", "therapy", "treatment", "surgery",
		"procedure", "intervention", "diagnosis", "condition"} {
		text += w + " "
	}
	e := New(Dictionary{}, nil, zerolog.Nop())

	assert.Len(t, e.Extract(text, 0), DefaultMaxKeywords)
	assert.Len(t, e.Extract(text, -4), DefaultMaxKeywords)
}

func TestExtract_EmptyText(t *testing.T) {
	e := New(DefaultDictionary(), nil, zerolog.Nop())
	assert.Empty(t, e.Extract("", 10))
	assert.Empty(t, e.Extract("   \n", 10))
}

func TestPatternMatches(t *testing.T) {
	text := "Rituximab and Gefitinib at 20 mg with BRCA1 loss caused liver disease requiring surgery."
	got := PatternMatches(text)
	assert.Equal(t, []string{"Rituximab", "Gefitinib", "disease", "surgery", "liver", "20 mg", "BRCA1"}, got)
}

func TestTFIDFPass(t *testing.T) {
	text := "Patients with asthma. Asthma patients improved. Asthma control matters."
	got := tfidfPass(text)

	// terms: patient, asthma, asthma, patient, improved, asthma, control, matter -> total 8
	require.Len(t, got, 2)
	assert.Equal(t, "asthma", got[0].keyword)
	assert.Equal(t, "patient", got[1].keyword)
	for _, c := range got {
		assert.Equal(t, CategoryTFIDF, c.category)
		assert.InDelta(t, 0.08, c.score, 1e-9)
	}
}

func TestTFIDFPass_KeepsPossessiveStem(t *testing.T) {
	got := tfidfPass("Alzheimer's disease progresses. Alzheimer's patients decline.")

	// terms: alzheimer, disease, progress, alzheimer, patient, decline -> total 6
	require.Len(t, got, 1)
	assert.Equal(t, "alzheimer", got[0].keyword)
	assert.InDelta(t, 0.06, got[0].score, 1e-9)
}

func TestMerge_SumsAndTies(t *testing.T) {
	got := merge([]candidate{
		{keyword: "Heart", category: "cardiology", score: 2, method: types.MethodDictionary},
		{keyword: "lung", category: CategoryPattern, score: 1.5, method: types.MethodPattern},
		{keyword: "heart ", category: CategoryPattern, score: 1.5, method: types.MethodPattern},
		{keyword: "brain", category: CategoryPattern, score: 1.5, method: types.MethodPattern},
		{keyword: "HEART", category: CategoryPattern, score: 1.5, method: types.MethodPattern},
	})

	require.Len(t, got, 3)
	assert.Equal(t, "Heart", got[0].Keyword)
	assert.Equal(t, "cardiology", got[0].Category)
	assert.InDelta(t, 5.0, got[0].Score, 1e-9)
	assert.Equal(t, []string{types.MethodDictionary, types.MethodPattern}, got[0].Methods)
	// equal scores keep first-seen order
	assert.Equal(t, "lung", got[1].Keyword)
	assert.Equal(t, "brain", got[2].Keyword)
}

type fakeRecognizer struct {
	entities []Entity
	phrases  []string
	err      error
	calls    int
}

func (f *fakeRecognizer) Recognize(string) ([]Entity, []string, error) {
	f.calls++
	return f.entities, f.phrases, f.err
}

func TestExtract_EntityPass(t *testing.T) {
	rec := &fakeRecognizer{
		entities: []Entity{
			{Text: "Mayo Clinic", Label: "ORG"},
			{Text: "2021", Label: "DATE"},
			{Text: "Boston", Label: "GPE"},
		},
		phrases: []string{"randomized cohort", "the cell", "tiny"},
	}
	e := New(Dictionary{}, rec, zerolog.Nop())
	require.True(t, e.HasRecognizer())

	got := e.Extract("Researchers at Mayo Clinic in Boston studied a randomized cohort.", 20)
	byKeyword := map[string]types.RankedKeyword{}
	for _, kw := range got {
		byKeyword[kw.Keyword] = kw
	}

	assert.Equal(t, "ner_org", byKeyword["Mayo Clinic"].Category)
	assert.Equal(t, 1.0, byKeyword["Mayo Clinic"].Score)
	assert.Equal(t, "ner_gpe", byKeyword["Boston"].Category)
	assert.NotContains(t, byKeyword, "2021")
	assert.Equal(t, CategoryNounPhrase, byKeyword["randomized cohort"].Category)
	assert.Equal(t, 0.8, byKeyword["randomized cohort"].Score)
	assert.Equal(t, CategoryNounPhrase, byKeyword["the cell"].Category)
	assert.NotContains(t, byKeyword, "tiny")
}

func TestExtract_EntityPassErrorSkipped(t *testing.T) {
	rec := &fakeRecognizer{err: errors.New("model unavailable")}
	e := New(oncologyDict(), rec, zerolog.Nop())

	got := e.Extract("This tumor was malignant", 10)
	assert.Equal(t, 1, rec.calls)
	require.NotEmpty(t, got)
	assert.Equal(t, "tumor", got[0].Keyword)
}

func TestExtract_NoRecognizer(t *testing.T) {
	e := New(oncologyDict(), nil, zerolog.Nop())
	assert.False(t, e.HasRecognizer())
	for _, kw := range e.Extract("Mayo Clinic studied tumor growth", 20) {
		assert.NotContains(t, kw.Methods, types.MethodNER)
	}
}

func TestClassify(t *testing.T) {
	dict := Dictionary{
		{Category: "oncology", Terms: []string{"cancer", "tumor"}},
		{Category: "cardiology", Terms: []string{"heart failure", "heart"}},
	}
	e := New(dict, nil, zerolog.Nop())

	kws := []types.RankedKeyword{
		{Keyword: "Breast Cancer", Score: 4},
		{Keyword: "heart", Score: 3},
		{Keyword: "tumor", Score: 2},
		{Keyword: "BRCA1", Score: 1.5},
	}
	got := e.Classify(kws)

	assert.Len(t, got, 3)
	assert.Equal(t, []string{"Breast Cancer", "tumor"}, keywordsOf(got["oncology"]))
	// "heart" is contained in the term "heart failure"
	assert.Equal(t, []string{"heart"}, keywordsOf(got["cardiology"]))
	assert.Equal(t, []string{"BRCA1"}, keywordsOf(got[OtherCategory]))
	assert.Equal(t, []string{"oncology", "cardiology", OtherCategory}, e.CategoryOrder(got))
}

func TestClassify_OmitsEmptyBuckets(t *testing.T) {
	e := New(oncologyDict(), nil, zerolog.Nop())
	got := e.Classify([]types.RankedKeyword{{Keyword: "tumor"}})
	assert.Equal(t, []string{"oncology"}, e.CategoryOrder(got))
	assert.NotContains(t, got, OtherCategory)
}

func TestExtractAndClassify(t *testing.T) {
	e := New(oncologyDict(), nil, zerolog.Nop())

	a := e.ExtractAndClassify("This tumor was malignant", 20)
	assert.Equal(t, len(a.Keywords), a.Total)
	assert.Equal(t, []string{"oncology"}, a.CategoriesFound)
	assert.Equal(t, "tumor", a.Classified["oncology"][0].Keyword)
}

func TestEnrichPapers_DoesNotMutate(t *testing.T) {
	e := New(oncologyDict(), nil, zerolog.Nop())
	papers := []types.Paper{
		{ID: "1", Title: "Tumor growth", Abstract: "Cancer cells divide.", Keywords: []string{"growth"}},
		{ID: "2", Title: "", Abstract: ""},
	}

	got := e.EnrichPapers(papers, 20)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.NotEmpty(t, got[0].ExtractedKeywords)
	assert.Equal(t, []string{"oncology"}, got[0].KeywordCategories)
	assert.Empty(t, got[1].ExtractedKeywords)

	got[0].Keywords[0] = "changed"
	assert.Equal(t, "growth", papers[0].Keywords[0])
}

func keywordsOf(kws []types.RankedKeyword) []string {
	out := make([]string, len(kws))
	for i, k := range kws {
		out[i] = k.Keyword
	}
	return out
}
