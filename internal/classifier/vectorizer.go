// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classifier

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	nonAlnum   = regexp.MustCompile(`[^a-z0-9\s]`)
	tokenRegex = regexp.MustCompile(`\b\w\w+\b`)
)

// ErrNoTerms is returned by Fit when document-frequency bounds prune every term.
var ErrNoTerms = errors.New("after pruning, no terms remain; try a lower min_df or a higher max_df")

// Preprocess lowercases text, replaces everything but letters, digits and
// whitespace with a space, and collapses runs of whitespace.
func Preprocess(text string) string {
	text = strings.ToLower(text)
	text = nonAlnum.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

// SparseVector holds the non-zero entries of a feature row, indices ascending.
type SparseVector struct {
	Idx []int
	Val []float64
}

// Dot returns the dot product of v with the dense vector w.
func (v SparseVector) Dot(w []float64) float64 {
	var s float64
	for k, i := range v.Idx {
		s += v.Val[k] * w[i]
	}
	return s
}

// Vectorizer maps preprocessed text to L2-normalised TF-IDF rows over
// unigrams and bigrams.
type Vectorizer struct {
	MinDF       int            `json:"min_df"`
	MaxDF       float64        `json:"max_df"`
	MaxFeatures int            `json:"max_features"`
	NgramMax    int            `json:"ngram_max"`
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
}

// NewVectorizer returns a Vectorizer with the production settings.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{MinDF: 2, MaxDF: 0.8, MaxFeatures: 5000, NgramMax: 2}
}

// NumFeatures returns the vocabulary size.
func (v *Vectorizer) NumFeatures() int { return len(v.IDF) }

// analyze tokenizes doc, drops stopwords and returns 1..NgramMax grams.
func (v *Vectorizer) analyze(doc string) []string {
	var toks []string
	for _, t := range tokenRegex.FindAllString(doc, -1) {
		if !isStopword(t) {
			toks = append(toks, t)
		}
	}
	grams := append([]string(nil), toks...)
	for n := 2; n <= v.NgramMax; n++ {
		for i := 0; i+n <= len(toks); i++ {
			grams = append(grams, strings.Join(toks[i:i+n], " "))
		}
	}
	return grams
}

// Fit learns the vocabulary and IDF weights from docs.
func (v *Vectorizer) Fit(docs []string) error {
	n := len(docs)
	if n == 0 {
		return errors.New("fitting vectorizer: no documents")
	}
	maxDocs := v.MaxDF * float64(n)
	if maxDocs < float64(v.MinDF) {
		return fmt.Errorf("fitting vectorizer: max_df corresponds to < documents than min_df")
	}

	df := make(map[string]int)
	tf := make(map[string]int)
	for _, d := range docs {
		seen := make(map[string]bool)
		for _, g := range v.analyze(d) {
			tf[g]++
			if !seen[g] {
				seen[g] = true
				df[g]++
			}
		}
	}

	var terms []string
	for t, c := range df {
		if c >= v.MinDF && float64(c) <= maxDocs {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return ErrNoTerms
	}

	sort.Strings(terms)
	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		sort.SliceStable(terms, func(i, j int) bool { return tf[terms[i]] > tf[terms[j]] })
		terms = terms[:v.MaxFeatures]
		sort.Strings(terms)
	}

	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	for i, t := range terms {
		v.Vocabulary[t] = i
		v.IDF[i] = math.Log(float64(1+n)/float64(1+df[t])) + 1
	}
	return nil
}

// Transform returns the TF-IDF row for doc. Unknown terms are ignored; a
// document with no known terms yields an empty vector.
func (v *Vectorizer) Transform(doc string) SparseVector {
	counts := make(map[int]float64)
	for _, g := range v.analyze(doc) {
		if i, ok := v.Vocabulary[g]; ok {
			counts[i]++
		}
	}

	vec := SparseVector{Idx: make([]int, 0, len(counts)), Val: make([]float64, 0, len(counts))}
	for i := range counts {
		vec.Idx = append(vec.Idx, i)
	}
	sort.Ints(vec.Idx)

	var norm float64
	for _, i := range vec.Idx {
		w := counts[i] * v.IDF[i]
		vec.Val = append(vec.Val, w)
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for k := range vec.Val {
			vec.Val[k] /= norm
		}
	}
	return vec
}

// FitTransform fits on docs and returns their rows.
func (v *Vectorizer) FitTransform(docs []string) ([]SparseVector, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	rows := make([]SparseVector, len(docs))
	for i, d := range docs {
		rows[i] = v.Transform(d)
	}
	return rows, nil
}
