// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import "strings"

// irregularNouns maps irregular plurals to their singular, and pins
// singular words that end in a plural-looking suffix to themselves.
var irregularNouns = map[string]string{
	"children":   "child",
	"women":      "woman",
	"men":        "man",
	"mice":       "mouse",
	"feet":       "foot",
	"teeth":      "tooth",
	"geese":      "goose",
	"lice":       "louse",
	"oxen":       "ox",
	"people":     "people",
	"data":       "data",
	"criteria":   "criterion",
	"phenomena":  "phenomenon",
	"bacteria":   "bacterium",
	"stimuli":    "stimulus",
	"nuclei":     "nucleus",
	"fungi":      "fungus",
	"bacilli":    "bacillus",
	"foci":       "focus",
	"vertebrae":  "vertebra",
	"series":     "series",
	"species":    "species",
	"diabetes":   "diabetes",
	"herpes":     "herpes",
	"measles":    "measles",
	"mumps":      "mumps",
	"rabies":     "rabies",
	"scabies":    "scabies",
	"rickets":    "rickets",
	"news":       "news",
	"lens":       "lens",
	"bias":       "bias",
	"atlas":      "atlas",
	"gas":        "gas",
	"pancreas":   "pancreas",
	"always":     "always",
	"various":    "various",
	"analyses":   "analysis",
	"diagnoses":  "diagnosis",
	"prognoses":  "prognosis",
	"hypotheses": "hypothesis",
	"syntheses":  "synthesis",
	"theses":     "thesis",
	"metastases": "metastasis",
	"indices":    "index",
	"matrices":   "matrix",
	"appendices": "appendix",
	"viruses":    "virus",
	"focuses":    "focus",
	"aliases":    "alias",
	"canvas":     "canvas",
	"canvases":   "canvas",
	"sinuses":    "sinus",
	"fetuses":    "fetus",
	"bonuses":    "bonus",
	"census":     "census",
	"censuses":   "census",
}

// Lemmatize reduces a lowercase English noun to its singular form with a
// small exception table and suffix rules. Words that are not recognisably
// plural are returned unchanged.
func Lemmatize(w string) string {
	if l, ok := irregularNouns[w]; ok {
		return l
	}
	if len(w) <= 3 {
		return w
	}
	switch {
	case strings.HasSuffix(w, "ss"),
		strings.HasSuffix(w, "us"),
		strings.HasSuffix(w, "is"),
		strings.HasSuffix(w, "ics"):
		return w
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "sses"),
		strings.HasSuffix(w, "ches"),
		strings.HasSuffix(w, "shes"),
		strings.HasSuffix(w, "xes"),
		strings.HasSuffix(w, "zes"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "s"):
		return w[:len(w)-1]
	}
	return w
}
