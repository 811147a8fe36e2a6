// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data shared across medlit packages: papers and
// their enriched forms, categories, classification results and configuration.
package types

// Source tags identify which adapter produced a Paper.
const (
	SourcePubMed = "pubmed"
	SourceArxiv  = "arxiv"
)

// Paper is a literature record reduced to a common field set regardless of
// source. Adapters create Papers from raw API output; downstream stages
// return augmented copies and never modify a Paper in place.
type Paper struct {
	// ID is the source-specific identifier (PMID, arXiv ID).
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Abstract is the paper abstract. Structured PubMed abstracts are joined
	// as "Label: text" segments.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Journal is the journal title ("arXiv" for preprints).
	Journal string `json:"journal" yaml:"journal"`

	// PublicationDate is an ISO date string. Partial dates are allowed.
	PublicationDate string `json:"publication_date" yaml:"publication_date"`

	// DOI is the digital object identifier, if known.
	DOI string `json:"doi" yaml:"doi"`

	// URL links to the paper landing page.
	URL string `json:"url" yaml:"url"`

	// Source identifies the adapter that produced the record ("pubmed", "arxiv").
	Source string `json:"source" yaml:"source"`

	// Keywords holds the raw keyword list supplied by the source
	// (author keywords and MeSH descriptors for PubMed, vocabulary hits for arXiv).
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Categories holds arXiv subject terms (primary first). Empty for PubMed.
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// Text returns the title and abstract joined by a space, the input used by
// keyword extraction and classification.
func (p Paper) Text() string {
	return p.Title + " " + p.Abstract
}

// Clone returns a deep copy of p.
func (p Paper) Clone() Paper {
	c := p
	c.Authors = append([]string(nil), p.Authors...)
	c.Keywords = append([]string(nil), p.Keywords...)
	c.Categories = append([]string(nil), p.Categories...)
	return c
}

// Keyword extraction method tags.
const (
	MethodDictionary = "dictionary"
	MethodPattern    = "pattern"
	MethodTFIDF      = "tfidf"
	MethodNER        = "ner"
)

// RankedKeyword is a keyword annotated with a category, an aggregate score
// and the extraction methods that produced it.
type RankedKeyword struct {
	// Keyword is the keyword text as first seen.
	Keyword string `json:"keyword" yaml:"keyword"`

	// Category is the category tag of the first method that produced it
	// (a dictionary category, "pattern_match", "tfidf", "noun_phrase" or "ner_<type>").
	Category string `json:"category" yaml:"category"`

	// Score is the sum of per-method contributions. Never negative.
	Score float64 `json:"score" yaml:"score"`

	// Methods lists contributing method tags in first-seen order, without duplicates.
	Methods []string `json:"methods" yaml:"methods"`
}

// LabelProbability pairs a category label with its predicted probability.
type LabelProbability struct {
	Label       string  `json:"label" yaml:"label"`
	Probability float64 `json:"probability" yaml:"probability"`
}

// ClassificationResult is the classifier output for one text.
type ClassificationResult struct {
	// PredictedCategory is the label with the highest probability.
	PredictedCategory string `json:"predicted_category" yaml:"predicted_category"`

	// Confidence is the maximum class probability, in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Probabilities maps every trained label to its probability. Values sum to 1.
	Probabilities map[string]float64 `json:"probabilities" yaml:"probabilities"`

	// Top holds the three most probable labels, highest first.
	Top []LabelProbability `json:"top_3_predictions" yaml:"top_3_predictions"`
}

// EnrichedPaper is a Paper augmented with extracted keywords and an
// optional classification.
type EnrichedPaper struct {
	Paper `yaml:",inline"`

	// ExtractedKeywords holds ranked keywords, highest score first.
	ExtractedKeywords []RankedKeyword `json:"extracted_keywords" yaml:"extracted_keywords"`

	// ClassifiedKeywords groups ExtractedKeywords by dictionary category ("other" for no match).
	ClassifiedKeywords map[string][]RankedKeyword `json:"classified_keywords" yaml:"classified_keywords"`

	// KeywordCategories lists the non-empty buckets of ClassifiedKeywords.
	KeywordCategories []string `json:"keyword_categories" yaml:"keyword_categories"`

	// Classification is nil when the paper has not been classified.
	Classification *ClassificationResult `json:"classification,omitempty" yaml:"classification,omitempty"`
}

// PredictedCategory returns the classification label or "" when unclassified.
func (e EnrichedPaper) PredictedCategory() string {
	if e.Classification == nil {
		return ""
	}
	return e.Classification.PredictedCategory
}

// Confidence returns the classification confidence or 0 when unclassified.
func (e EnrichedPaper) Confidence() float64 {
	if e.Classification == nil {
		return 0
	}
	return e.Classification.Confidence
}
