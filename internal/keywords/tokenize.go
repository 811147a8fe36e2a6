// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	sentenceBoundary = regexp.MustCompile(`[.!?]+\s+`)
	wordToken        = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’-][\p{L}\p{N}]+)*`)
)

// Normalize applies NFKC so that ligatures, full-width forms and
// compatibility characters compare equal to their plain equivalents.
func Normalize(text string) string {
	return norm.NFKC.String(text)
}

// Sentences splits text at sentence-final punctuation followed by space.
func Sentences(text string) []string {
	var out []string
	for _, s := range sentenceBoundary.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Words returns the word tokens of s in order. Hyphenated and
// apostrophe-joined words stay single tokens.
func Words(s string) []string {
	return wordToken.FindAllString(s, -1)
}

// Terms returns the content terms of text: lowercase alphabetic tokens
// longer than two characters that are not stopwords, lemmatized.
func Terms(text string) []string {
	var terms []string
	for _, sentence := range Sentences(text) {
		for _, w := range Words(strings.ToLower(sentence)) {
			w = stripPossessive(w)
			if len(w) <= 2 || !isAlpha(w) || IsStopword(w) {
				continue
			}
			terms = append(terms, Lemmatize(w))
		}
	}
	return terms
}

// stripPossessive drops a trailing 's clitic so eponyms such as
// "alzheimer's" keep their stem.
func stripPossessive(w string) string {
	for _, suffix := range []string{"'s", "’s"} {
		if strings.HasSuffix(w, suffix) {
			return w[:len(w)-len(suffix)]
		}
	}
	return w
}

func isAlpha(w string) bool {
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return w != ""
}
