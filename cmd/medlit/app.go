// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/medlit/internal/classifier"
	"github.com/pdiddy/medlit/internal/keywords"
	"github.com/pdiddy/medlit/internal/sources"
	"github.com/pdiddy/medlit/internal/store"
)

// openStore opens the configured database and seeds the category table.
func openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		return nil, err
	}
	if _, err := st.InitCategories(ctx, cfg.Classifier.Categories); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func newCrawler() *sources.Crawler {
	return sources.NewCrawler(sources.FromConfig(cfg.Crawl, nil, logger), mtx, logger)
}

func newExtractor() *keywords.Extractor {
	return keywords.New(keywords.DictionaryFromConfig(cfg.Keywords, logger), nil, logger)
}

func newClassifier() *classifier.Classifier {
	return classifier.New(cfg.Classifier, logger)
}

// printJSON writes v to w as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// textArg joins positional arguments, or reads stdin when there are none.
func textArg(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
