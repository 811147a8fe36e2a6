// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/atom"
	"github.com/rs/zerolog"

	"github.com/pdiddy/medlit/internal/httputil"
	"github.com/pdiddy/medlit/pkg/types"
)

// arxivVocabulary lists the terms recorded as raw keywords when they occur
// in an entry's title or abstract. At most maxArxivKeywords are kept.
var arxivVocabulary = []string{
	"algorithm", "machine learning", "deep learning", "neural network",
	"medical", "clinical", "diagnosis", "treatment", "therapy",
	"patient", "disease", "cancer", "tumor", "imaging", "MRI", "CT",
	"ultrasound", "X-ray", "segmentation", "classification", "detection",
	"prediction", "analysis", "biomedical", "healthcare", "medicine",
}

const maxArxivKeywords = 10

// acronymPatterns holds whole-word matchers for all-uppercase vocabulary
// entries, which are matched case-sensitively.
var acronymPatterns = map[string]*regexp.Regexp{}

func init() {
	for _, term := range arxivVocabulary {
		if term == strings.ToUpper(term) && term != strings.ToLower(term) {
			acronymPatterns[term] = regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
		}
	}
}

// Arxiv queries the arXiv Atom API restricted to medical subject categories.
type Arxiv struct {
	Client     *httputil.Client
	BaseURL    string
	Categories []string
	DefaultMax int
	Logger     zerolog.Logger

	// Now is used by SearchRecent. Nil means time.Now.
	Now func() time.Time
}

// NewArxiv returns an arXiv adapter configured from cfg.
func NewArxiv(cfg types.CrawlConfig, client *httputil.Client, logger zerolog.Logger) *Arxiv {
	return &Arxiv{
		Client:     client,
		BaseURL:    cfg.Arxiv.BaseURL,
		Categories: cfg.Arxiv.Categories,
		DefaultMax: cfg.MaxPapersPerQuery,
		Logger:     logger.With().Str("source", types.SourceArxiv).Logger(),
	}
}

// Name returns the source identifier.
func (a *Arxiv) Name() string { return types.SourceArxiv }

// Search queries arXiv for query within the configured categories, sorted
// by relevance.
func (a *Arxiv) Search(ctx context.Context, query string, maxResults int) ([]types.Paper, error) {
	return a.query(ctx, a.medicalQuery(query), maxResults, "relevance")
}

// GetDetails fetches a single entry by arXiv ID or abstract URL.
func (a *Arxiv) GetDetails(ctx context.Context, id string) (types.Paper, error) {
	id = strings.TrimSpace(id)
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	params := url.Values{}
	params.Set("id_list", id)
	params.Set("max_results", "1")
	papers, err := a.fetch(ctx, params)
	if err != nil {
		return types.Paper{}, err
	}
	if len(papers) == 0 {
		return types.Paper{}, fmt.Errorf("arxiv %s: %w", id, ErrNotFound)
	}
	return papers[0], nil
}

// SearchByCategory returns the newest entries of one arXiv subject category.
func (a *Arxiv) SearchByCategory(ctx context.Context, category string, maxResults int) ([]types.Paper, error) {
	return a.query(ctx, "cat:"+category, maxResults, "submittedDate")
}

// SearchRecent returns entries in the configured categories submitted in
// the last days days, newest first.
func (a *Arxiv) SearchRecent(ctx context.Context, days, maxResults int) ([]types.Paper, error) {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	end := now()
	start := end.AddDate(0, 0, -days)
	q := fmt.Sprintf("(submittedDate:[%s TO %s]) AND (%s)",
		start.Format("20060102"), end.Format("20060102"), a.categoryFilter())
	return a.query(ctx, q, maxResults, "submittedDate")
}

// medicalQuery combines query with the category filter. An empty query
// yields the filter alone.
func (a *Arxiv) medicalQuery(query string) string {
	filter := a.categoryFilter()
	query = strings.TrimSpace(query)
	switch {
	case filter == "":
		return query
	case query == "":
		return filter
	default:
		return "(" + query + ") AND (" + filter + ")"
	}
}

func (a *Arxiv) categoryFilter() string {
	parts := make([]string, 0, len(a.Categories))
	for _, c := range a.Categories {
		parts = append(parts, "cat:"+c)
	}
	return strings.Join(parts, " OR ")
}

func (a *Arxiv) query(ctx context.Context, searchQuery string, maxResults int, sortBy string) ([]types.Paper, error) {
	if maxResults <= 0 {
		maxResults = a.DefaultMax
	}
	params := url.Values{}
	params.Set("search_query", searchQuery)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("sortBy", sortBy)
	params.Set("sortOrder", "descending")
	return a.fetch(ctx, params)
}

func (a *Arxiv) fetch(ctx context.Context, params url.Values) ([]types.Paper, error) {
	body, err := a.Client.Get(ctx, a.BaseURL, params)
	if err != nil {
		return nil, fmt.Errorf("arxiv query: %w", err)
	}
	return parseArxivFeed(body)
}

// parseArxivFeed decodes an arXiv Atom response.
func parseArxivFeed(body []byte) ([]types.Paper, error) {
	feed, err := (&atom.Parser{}).Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing arxiv feed: %w", err)
	}
	papers := make([]types.Paper, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		if e == nil {
			continue
		}
		papers = append(papers, arxivPaper(e))
	}
	return papers, nil
}

func arxivPaper(e *atom.Entry) types.Paper {
	p := types.Paper{
		ID:              arxivID(e.ID),
		Title:           strings.Join(strings.Fields(e.Title), " "),
		Abstract:        strings.TrimSpace(e.Summary),
		Journal:         "arXiv",
		PublicationDate: arxivDate(e),
		Source:          types.SourceArxiv,
		Categories:      arxivCategories(e),
	}
	for _, au := range e.Authors {
		if au != nil && strings.TrimSpace(au.Name) != "" {
			p.Authors = append(p.Authors, strings.TrimSpace(au.Name))
		}
	}
	for _, l := range e.Links {
		if l == nil {
			continue
		}
		if p.DOI == "" && l.Title == "doi" {
			p.DOI = strings.TrimPrefix(l.Href, "http://dx.doi.org/")
		}
		if p.URL == "" && l.Rel == "alternate" {
			p.URL = l.Href
		}
	}
	p.Keywords = vocabularyMatches(p.Title + " " + p.Abstract)
	return p
}

// arxivID returns the last path segment of an entry id URL
// (http://arxiv.org/abs/2401.01234v2 gives 2401.01234v2).
func arxivID(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

func arxivDate(e *atom.Entry) string {
	if e.PublishedParsed != nil {
		return e.PublishedParsed.UTC().Format("2006-01-02")
	}
	s := strings.TrimSpace(e.Published)
	if len(s) > 10 {
		s = s[:10]
	}
	return s
}

// arxivCategories returns the primary category followed by the remaining
// category terms, without duplicates.
func arxivCategories(e *atom.Entry) []string {
	var out []string
	add := func(term string) {
		term = strings.TrimSpace(term)
		if term == "" {
			return
		}
		for _, c := range out {
			if c == term {
				return
			}
		}
		out = append(out, term)
	}
	if ns, ok := e.Extensions["arxiv"]; ok {
		for _, pc := range ns["primary_category"] {
			add(pc.Attrs["term"])
		}
	}
	for _, c := range e.Categories {
		if c != nil {
			add(c.Term)
		}
	}
	return out
}

// vocabularyMatches returns up to maxArxivKeywords vocabulary terms found in
// text, in vocabulary order. Lowercase terms match as substrings of the
// lowercased text; acronyms match as whole words in the original text.
func vocabularyMatches(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, term := range arxivVocabulary {
		var hit bool
		if re, ok := acronymPatterns[term]; ok {
			hit = re.MatchString(text)
		} else {
			hit = strings.Contains(lower, strings.ToLower(term))
		}
		if hit {
			found = append(found, term)
			if len(found) == maxArxivKeywords {
				break
			}
		}
	}
	return found
}
