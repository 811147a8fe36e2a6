// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import "github.com/pdiddy/medlit/pkg/types"

// dedupKey returns the paper's ID, else its DOI, else its title.
func dedupKey(p types.Paper) string {
	switch {
	case p.ID != "":
		return p.ID
	case p.DOI != "":
		return p.DOI
	default:
		return p.Title
	}
}

// Dedup removes papers whose composite key was already seen, keeping the
// first occurrence and the input order. Papers with no ID, DOI or title
// have no key and are dropped.
func Dedup(papers []types.Paper) []types.Paper {
	seen := make(map[string]bool, len(papers))
	out := make([]types.Paper, 0, len(papers))
	for _, p := range papers {
		k := dedupKey(p)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}
