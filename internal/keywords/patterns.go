// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import "regexp"

// medicalPatterns are applied in order; every match becomes a keyword.
var medicalPatterns = []*regexp.Regexp{
	// Drug names by suffix.
	regexp.MustCompile(`\b[A-Z][a-z]+(?:mab|nib|pril|sartan|statin|mycin|cillin)\b`),
	// Disease vocabulary.
	regexp.MustCompile(`(?i)\b(?:syndrome|disease|disorder|condition|cancer|tumor|carcinoma)\b`),
	// Procedures.
	regexp.MustCompile(`(?i)\b(?:therapy|treatment|surgery|procedure|intervention|diagnosis)\b`),
	// Anatomy.
	regexp.MustCompile(`(?i)\b(?:heart|brain|liver|kidney|lung|bone|muscle|nerve|blood)\b`),
	// Dosages and measurements.
	regexp.MustCompile(`\b\d+\s*(?:mg|ml|cm|mm|kg|g|%|units?)\b`),
	// Gene and protein symbols.
	regexp.MustCompile(`\b[A-Z]{2,}[0-9]+\b`),
}

// PatternMatches returns every match of the medical patterns in text,
// pattern by pattern, in match order.
func PatternMatches(text string) []string {
	var out []string
	for _, re := range medicalPatterns {
		out = append(out, re.FindAllString(text, -1)...)
	}
	return out
}
