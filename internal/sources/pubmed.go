// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/pdiddy/medlit/internal/httputil"
	"github.com/pdiddy/medlit/pkg/types"
)

// DefaultPubMedBatchSize is the number of PMIDs per efetch call.
const DefaultPubMedBatchSize = 200

// pubmedCategoryQueries maps medical categories to MeSH queries. Categories
// not listed are searched by name.
var pubmedCategoryQueries = map[string]string{
	"cardiology":          "cardiology[MeSH] OR cardiovascular[MeSH] OR heart disease[MeSH]",
	"oncology":            "neoplasms[MeSH] OR cancer[MeSH] OR tumor[MeSH]",
	"neurology":           "neurology[MeSH] OR nervous system diseases[MeSH]",
	"immunology":          "immunology[MeSH] OR immune system[MeSH]",
	"pharmacology":        "pharmacology[MeSH] OR drug therapy[MeSH]",
	"genetics":            "genetics[MeSH] OR genomics[MeSH]",
	"infectious_diseases": "communicable diseases[MeSH] OR infection[MeSH]",
	"surgery":             "surgery[MeSH] OR surgical procedures[MeSH]",
	"pediatrics":          "pediatrics[MeSH] OR child[MeSH]",
	"psychiatry":          "psychiatry[MeSH] OR mental disorders[MeSH]",
}

var monthNumbers = map[string]string{
	"jan": "01", "feb": "02", "mar": "03", "apr": "04", "may": "05", "jun": "06",
	"jul": "07", "aug": "08", "sep": "09", "oct": "10", "nov": "11", "dec": "12",
}

var yearPattern = regexp.MustCompile(`\b\d{4}\b`)

// PubMed queries the NCBI E-utilities API: esearch for PMIDs, then efetch
// in batches for article metadata.
type PubMed struct {
	Client     *httputil.Client
	BaseURL    string
	APIKey     string
	Email      string
	BatchSize  int
	DefaultMax int
	Logger     zerolog.Logger
}

// NewPubMed returns a PubMed adapter configured from cfg.
func NewPubMed(cfg types.CrawlConfig, client *httputil.Client, logger zerolog.Logger) *PubMed {
	return &PubMed{
		Client:     client,
		BaseURL:    cfg.PubMed.BaseURL,
		APIKey:     cfg.PubMed.APIKey,
		Email:      cfg.PubMed.Email,
		BatchSize:  cfg.PubMed.BatchSize,
		DefaultMax: cfg.MaxPapersPerQuery,
		Logger:     logger.With().Str("source", types.SourcePubMed).Logger(),
	}
}

// Name returns the source identifier.
func (p *PubMed) Name() string { return types.SourcePubMed }

// Search runs esearch for query, sorted by relevance, and fetches up to
// maxResults articles. A failed efetch batch is logged and skipped.
func (p *PubMed) Search(ctx context.Context, query string, maxResults int) ([]types.Paper, error) {
	if maxResults <= 0 {
		maxResults = p.DefaultMax
	}
	ids, err := p.esearch(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		p.Logger.Warn().Str("query", query).Msg("no PubMed records match query")
		return nil, nil
	}
	p.Logger.Debug().Str("query", query).Int("pmids", len(ids)).Msg("esearch complete")

	batch := p.BatchSize
	if batch <= 0 {
		batch = DefaultPubMedBatchSize
	}
	var papers []types.Paper
	for start := 0; start < len(ids); start += batch {
		end := min(start+batch, len(ids))
		got, err := p.efetch(ctx, ids[start:end])
		if err != nil {
			if ctx.Err() != nil {
				return papers, ctx.Err()
			}
			p.Logger.Error().Err(err).Int("batch_start", start).Int("batch_size", end-start).Msg("efetch batch failed")
			continue
		}
		papers = append(papers, got...)
	}
	return papers, nil
}

// GetDetails fetches a single article by PMID.
func (p *PubMed) GetDetails(ctx context.Context, id string) (types.Paper, error) {
	papers, err := p.efetch(ctx, []string{strings.TrimSpace(id)})
	if err != nil {
		return types.Paper{}, err
	}
	if len(papers) == 0 {
		return types.Paper{}, fmt.Errorf("pubmed %s: %w", id, ErrNotFound)
	}
	return papers[0], nil
}

// SearchByCategory searches with the MeSH query for category, falling back
// to the category name.
func (p *PubMed) SearchByCategory(ctx context.Context, category string, maxResults int) ([]types.Paper, error) {
	query, ok := pubmedCategoryQueries[category]
	if !ok {
		query = category
	}
	return p.Search(ctx, query, maxResults)
}

func (p *PubMed) endpoint(name string) string {
	return strings.TrimRight(p.BaseURL, "/") + "/" + name
}

func (p *PubMed) params() url.Values {
	v := url.Values{}
	v.Set("db", "pubmed")
	if p.APIKey != "" {
		v.Set("api_key", p.APIKey)
	}
	if p.Email != "" {
		v.Set("email", p.Email)
	}
	return v
}

func (p *PubMed) esearch(ctx context.Context, query string, maxResults int) ([]string, error) {
	params := p.params()
	params.Set("term", query)
	params.Set("retmax", strconv.Itoa(maxResults))
	params.Set("sort", "relevance")

	body, err := p.Client.Get(ctx, p.endpoint("esearch.fcgi"), params)
	if err != nil {
		return nil, fmt.Errorf("pubmed esearch: %w", err)
	}
	var res eSearchResult
	if err := xml.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("parsing pubmed esearch response: %w", err)
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("pubmed esearch: %s", strings.Join(res.Errors, "; "))
	}
	return res.IDs, nil
}

func (p *PubMed) efetch(ctx context.Context, ids []string) ([]types.Paper, error) {
	params := p.params()
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "xml")
	params.Set("rettype", "abstract")

	body, err := p.Client.Get(ctx, p.endpoint("efetch.fcgi"), params)
	if err != nil {
		return nil, fmt.Errorf("pubmed efetch: %w", err)
	}
	return parsePubMedArticles(body)
}

// parsePubMedArticles decodes an efetch PubmedArticleSet document.
func parsePubMedArticles(body []byte) ([]types.Paper, error) {
	var set pubmedArticleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("parsing pubmed efetch response: %w", err)
	}
	papers := make([]types.Paper, 0, len(set.Articles))
	for _, a := range set.Articles {
		papers = append(papers, a.paper())
	}
	return papers, nil
}

func (a pubmedArticle) paper() types.Paper {
	art := a.Citation.Article
	pmid := strings.TrimSpace(a.Citation.PMID)

	p := types.Paper{
		ID:              pmid,
		Title:           flatten(art.ArticleTitle.Inner),
		Abstract:        a.abstract(),
		Journal:         strings.TrimSpace(art.Journal.Title),
		PublicationDate: a.publicationDate(),
		DOI:             a.doi(),
		Source:          types.SourcePubMed,
	}
	if pmid != "" {
		p.URL = "https://pubmed.ncbi.nlm.nih.gov/" + pmid + "/"
	}
	for _, au := range art.Authors {
		fore, last := strings.TrimSpace(au.ForeName), strings.TrimSpace(au.LastName)
		if fore != "" && last != "" {
			p.Authors = append(p.Authors, fore+" "+last)
		}
	}
	for _, kl := range a.Citation.KeywordLists {
		for _, kw := range kl.Keywords {
			if s := flatten(kw.Inner); s != "" {
				p.Keywords = append(p.Keywords, s)
			}
		}
	}
	for _, mh := range a.Citation.MeshHeadings {
		if s := strings.TrimSpace(mh.Descriptor); s != "" {
			p.Keywords = append(p.Keywords, s)
		}
	}
	return p
}

func (a pubmedArticle) abstract() string {
	var parts []string
	for _, seg := range a.Citation.Article.Abstract {
		text := flatten(seg.Inner)
		if text == "" {
			continue
		}
		if seg.Label != "" {
			text = seg.Label + ": " + text
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

// publicationDate tries the journal issue PubDate, then ArticleDate, then
// DateCompleted, and finally the leading year of a MedlineDate range.
func (a pubmedArticle) publicationDate() string {
	pd := a.Citation.Article.Journal.Issue.PubDate
	if d := formatDate(pd.Year, pd.Month, pd.Day); d != "" {
		return d
	}
	for _, ad := range a.Citation.Article.ArticleDates {
		if d := formatDate(ad.Year, ad.Month, ad.Day); d != "" {
			return d
		}
	}
	if dc := a.Citation.DateCompleted; dc != nil {
		if d := formatDate(dc.Year, dc.Month, dc.Day); d != "" {
			return d
		}
	}
	return yearPattern.FindString(pd.MedlineDate)
}

func (a pubmedArticle) doi() string {
	for _, id := range a.Data.ArticleIDs {
		if strings.EqualFold(id.Type, "doi") {
			return strings.TrimSpace(id.Value)
		}
	}
	for _, id := range a.Citation.Article.ELocationIDs {
		if strings.EqualFold(id.Type, "doi") {
			return strings.TrimSpace(id.Value)
		}
	}
	return ""
}

// formatDate renders YYYY-MM-DD. Month names are translated, numeric parts
// are zero-padded and a missing or unrecognized month or day becomes 01.
// An empty year yields "".
func formatDate(year, month, day string) string {
	year = strings.TrimSpace(year)
	if year == "" {
		return ""
	}
	return year + "-" + monthNumber(month) + "-" + padTwo(day)
}

func monthNumber(m string) string {
	m = strings.TrimSpace(m)
	if n, err := strconv.Atoi(m); err == nil && n >= 1 && n <= 12 {
		return fmt.Sprintf("%02d", n)
	}
	if len(m) >= 3 {
		if n, ok := monthNumbers[strings.ToLower(m[:3])]; ok {
			return n
		}
	}
	return "01"
}

func padTwo(d string) string {
	if n, err := strconv.Atoi(strings.TrimSpace(d)); err == nil && n >= 1 && n <= 31 {
		return fmt.Sprintf("%02d", n)
	}
	return "01"
}

// flatten strips inline markup from an XML fragment and collapses whitespace.
func flatten(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
