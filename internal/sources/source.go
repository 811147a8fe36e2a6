// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources queries biomedical literature APIs (PubMed, arXiv) and
// returns normalized paper records. The Crawler fans queries out over the
// configured sources.
package sources

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/pdiddy/medlit/internal/httputil"
	"github.com/pdiddy/medlit/pkg/types"
)

// ErrNotFound is returned by GetDetails when the source has no record for an ID.
var ErrNotFound = errors.New("paper not found")

// Source searches a single literature API. Each adapter (PubMed, arXiv)
// implements this interface.
type Source interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]types.Paper, error)
	GetDetails(ctx context.Context, id string) (types.Paper, error)
}

// CategorySearcher is implemented by sources with a dedicated query for a
// medical or subject category.
type CategorySearcher interface {
	SearchByCategory(ctx context.Context, category string, maxResults int) ([]types.Paper, error)
}

// FromConfig builds the enabled adapters. Each adapter gets its own paced
// client so one source's delay does not throttle another. hc may be nil.
func FromConfig(cfg types.CrawlConfig, hc *http.Client, logger zerolog.Logger) []Source {
	var out []Source
	if cfg.PubMed.Enabled {
		out = append(out, NewPubMed(cfg, httputil.NewClient(cfg.HTTPConfig, hc), logger))
	}
	if cfg.Arxiv.Enabled {
		out = append(out, NewArxiv(cfg, httputil.NewClient(cfg.HTTPConfig, hc), logger))
	}
	return out
}
