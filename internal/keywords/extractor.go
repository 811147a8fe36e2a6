// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package keywords extracts ranked keywords from biomedical text by
// combining dictionary, pattern, term-frequency and optional named-entity
// passes, and groups them into dictionary categories.
package keywords

import (
	"slices"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/medlit/pkg/types"
)

// DefaultMaxKeywords is used when a caller passes a non-positive limit.
const DefaultMaxKeywords = 20

// OtherCategory collects keywords that match no dictionary category.
const OtherCategory = "other"

// Category tags for non-dictionary passes.
const (
	CategoryPattern    = "pattern_match"
	CategoryTFIDF      = "tfidf"
	CategoryNounPhrase = "noun_phrase"
)

// Per-method scores.
const (
	dictionaryWeight = 2.0
	patternScore     = 1.5
	entityScore      = 1.0
	nounPhraseScore  = 0.8
	tfidfTopN        = 15
)

// nerLabels are the entity types kept from the recognizer.
var nerLabels = map[string]bool{
	"PERSON": true, "ORG": true, "GPE": true,
	"PRODUCT": true, "EVENT": true, "WORK_OF_ART": true,
}

// Entity is a named entity found by an EntityRecognizer.
type Entity struct {
	Text  string
	Label string
}

// EntityRecognizer finds named entities and noun phrases in text. It is an
// optional capability; without one the entity pass is skipped.
type EntityRecognizer interface {
	Recognize(text string) (entities []Entity, nounPhrases []string, err error)
}

// Analysis is the result of ExtractAndClassify.
type Analysis struct {
	Total           int                              `json:"total_keywords"`
	Keywords        []types.RankedKeyword            `json:"all_keywords"`
	Classified      map[string][]types.RankedKeyword `json:"classified_keywords"`
	CategoriesFound []string                         `json:"categories_found"`
}

// Extractor runs the keyword passes over text. It holds no mutable state
// and is safe for concurrent use if its recognizer is.
type Extractor struct {
	dict       Dictionary
	recognizer EntityRecognizer
	useNER     bool
	logger     zerolog.Logger
}

// New returns an Extractor over dict. recognizer may be nil.
func New(dict Dictionary, recognizer EntityRecognizer, logger zerolog.Logger) *Extractor {
	e := &Extractor{dict: dict, recognizer: recognizer, logger: logger}
	e.useNER = recognizer != nil
	if !e.useNER {
		logger.Debug().Msg("no entity recognizer configured, named-entity pass disabled")
	}
	return e
}

// Dictionary returns the extractor's dictionary.
func (e *Extractor) Dictionary() Dictionary { return e.dict }

// HasRecognizer reports whether the named-entity pass is enabled.
func (e *Extractor) HasRecognizer() bool { return e.useNER }

// candidate is one raw keyword produced by a pass.
type candidate struct {
	keyword  string
	category string
	score    float64
	method   string
}

// Extract returns at most maxKeywords ranked keywords for text, highest
// score first. A non-positive maxKeywords selects DefaultMaxKeywords.
func (e *Extractor) Extract(text string, maxKeywords int) []types.RankedKeyword {
	if maxKeywords <= 0 {
		maxKeywords = DefaultMaxKeywords
	}
	if strings.TrimSpace(text) == "" {
		return []types.RankedKeyword{}
	}
	text = Normalize(text)

	var cands []candidate
	cands = append(cands, e.dictionaryPass(text)...)
	cands = append(cands, patternPass(text)...)
	cands = append(cands, tfidfPass(text)...)
	if e.useNER {
		cands = append(cands, e.entityPass(text)...)
	}

	ranked := merge(cands)
	if len(ranked) > maxKeywords {
		ranked = ranked[:maxKeywords]
	}
	return ranked
}

func (e *Extractor) dictionaryPass(text string) []candidate {
	lower := strings.ToLower(text)
	var out []candidate
	for _, ct := range e.dict {
		for _, term := range ct.Terms {
			t := strings.ToLower(term)
			if t == "" || !strings.Contains(lower, t) {
				continue
			}
			out = append(out, candidate{
				keyword:  term,
				category: ct.Category,
				score:    float64(strings.Count(lower, t)) * dictionaryWeight,
				method:   types.MethodDictionary,
			})
		}
	}
	return out
}

func patternPass(text string) []candidate {
	matches := PatternMatches(text)
	out := make([]candidate, 0, len(matches))
	for _, m := range matches {
		out = append(out, candidate{keyword: m, category: CategoryPattern, score: patternScore, method: types.MethodPattern})
	}
	return out
}

// tfidfPass scores the most frequent content terms. The score
// freq*(total/freq)/100 reduces to total/100 for every kept term.
func tfidfPass(text string) []candidate {
	terms := Terms(text)
	total := len(terms)
	if total == 0 {
		return nil
	}

	freq := make(map[string]int)
	var order []string
	for _, t := range terms {
		if freq[t] == 0 {
			order = append(order, t)
		}
		freq[t]++
	}
	sort.SliceStable(order, func(i, j int) bool { return freq[order[i]] > freq[order[j]] })
	if len(order) > tfidfTopN {
		order = order[:tfidfTopN]
	}

	var out []candidate
	for _, t := range order {
		f := freq[t]
		if f <= 1 {
			continue
		}
		out = append(out, candidate{
			keyword:  t,
			category: CategoryTFIDF,
			score:    float64(f) * (float64(total) / float64(f)) / 100,
			method:   types.MethodTFIDF,
		})
	}
	return out
}

func (e *Extractor) entityPass(text string) []candidate {
	entities, phrases, err := e.recognizer.Recognize(text)
	if err != nil {
		e.logger.Warn().Err(err).Msg("entity recognition failed, skipping pass")
		return nil
	}
	var out []candidate
	for _, ent := range entities {
		if !nerLabels[ent.Label] {
			continue
		}
		out = append(out, candidate{
			keyword:  ent.Text,
			category: "ner_" + strings.ToLower(ent.Label),
			score:    entityScore,
			method:   types.MethodNER,
		})
	}
	for _, p := range phrases {
		if len(strings.Fields(p)) >= 2 && len(p) > 5 {
			out = append(out, candidate{keyword: p, category: CategoryNounPhrase, score: nounPhraseScore, method: types.MethodNER})
		}
	}
	return out
}

// merge folds candidates by lowercase trimmed keyword, summing scores and
// collecting method tags. The first occurrence supplies text and category.
// Equal scores keep first-seen order.
func merge(cands []candidate) []types.RankedKeyword {
	index := make(map[string]int)
	var ranked []types.RankedKeyword
	for _, c := range cands {
		key := strings.ToLower(strings.TrimSpace(c.keyword))
		if i, ok := index[key]; ok {
			ranked[i].Score += c.score
			if !slices.Contains(ranked[i].Methods, c.method) {
				ranked[i].Methods = append(ranked[i].Methods, c.method)
			}
			continue
		}
		index[key] = len(ranked)
		ranked = append(ranked, types.RankedKeyword{
			Keyword:  c.keyword,
			Category: c.category,
			Score:    c.score,
			Methods:  []string{c.method},
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if ranked == nil {
		ranked = []types.RankedKeyword{}
	}
	return ranked
}

// Classify groups keywords by the first dictionary category with a term
// that contains, or is contained in, the keyword (case-insensitive).
// Unmatched keywords go to OtherCategory. Empty groups are omitted.
func (e *Extractor) Classify(keywords []types.RankedKeyword) map[string][]types.RankedKeyword {
	out := make(map[string][]types.RankedKeyword)
	for _, kw := range keywords {
		cat := e.match(strings.ToLower(kw.Keyword))
		out[cat] = append(out[cat], kw)
	}
	return out
}

func (e *Extractor) match(kw string) string {
	for _, ct := range e.dict {
		for _, term := range ct.Terms {
			t := strings.ToLower(term)
			if strings.Contains(kw, t) || strings.Contains(t, kw) {
				return ct.Category
			}
		}
	}
	return OtherCategory
}

// CategoryOrder returns the non-empty groups of classified in dictionary
// order, with OtherCategory last.
func (e *Extractor) CategoryOrder(classified map[string][]types.RankedKeyword) []string {
	var order []string
	for _, c := range e.dict.Categories() {
		if len(classified[c]) > 0 {
			order = append(order, c)
		}
	}
	if len(classified[OtherCategory]) > 0 {
		order = append(order, OtherCategory)
	}
	return order
}

// ExtractAndClassify extracts keywords from text and groups them.
func (e *Extractor) ExtractAndClassify(text string, maxKeywords int) Analysis {
	kws := e.Extract(text, maxKeywords)
	classified := e.Classify(kws)
	return Analysis{
		Total:           len(kws),
		Keywords:        kws,
		Classified:      classified,
		CategoriesFound: e.CategoryOrder(classified),
	}
}

// EnrichPapers returns a copy of each paper with keywords extracted from
// its title and abstract. The input papers are not modified.
func (e *Extractor) EnrichPapers(papers []types.Paper, maxKeywords int) []types.EnrichedPaper {
	out := make([]types.EnrichedPaper, 0, len(papers))
	for _, p := range papers {
		a := e.ExtractAndClassify(p.Text(), maxKeywords)
		out = append(out, types.EnrichedPaper{
			Paper:              p.Clone(),
			ExtractedKeywords:  a.Keywords,
			ClassifiedKeywords: a.Classified,
			KeywordCategories:  a.CategoriesFound,
		})
	}
	return out
}
