// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pdiddy/medlit/internal/logging"
	"github.com/pdiddy/medlit/pkg/types"
)

const (
	// DefaultSearchLimit caps Search when no limit is given.
	DefaultSearchLimit = 100

	// secondaryThreshold is the probability above which a non-predicted
	// label is linked to a paper as a secondary category.
	secondaryThreshold = 0.1

	// originalKeywordCategory tags source-supplied keywords in the keywords table.
	originalKeywordCategory = "original"
)

// PaperRecord is a stored paper as returned by Search.
type PaperRecord struct {
	ID                int64     `json:"id" yaml:"id"`
	ExternalID        string    `json:"external_id" yaml:"external_id"`
	Title             string    `json:"title" yaml:"title"`
	Abstract          string    `json:"abstract" yaml:"abstract"`
	Authors           []string  `json:"authors" yaml:"authors"`
	Journal           string    `json:"journal" yaml:"journal"`
	PublicationDate   string    `json:"publication_date" yaml:"publication_date"`
	DOI               string    `json:"doi" yaml:"doi"`
	URL               string    `json:"url" yaml:"url"`
	Source            string    `json:"source" yaml:"source"`
	PredictedCategory string    `json:"predicted_category" yaml:"predicted_category"`
	Confidence        float64   `json:"classification_confidence" yaml:"classification_confidence"`
	CreatedAt         time.Time `json:"created_at" yaml:"created_at"`
}

// KeywordRecord is a row of the keywords table.
type KeywordRecord struct {
	Keyword  string  `json:"keyword" yaml:"keyword"`
	Category string  `json:"category" yaml:"category"`
	Score    float64 `json:"score" yaml:"score"`
	Methods  string  `json:"methods" yaml:"methods"`
}

// PaperCategory links a paper to a category with a confidence.
type PaperCategory struct {
	Name        string  `json:"name" yaml:"name"`
	DisplayName string  `json:"display_name" yaml:"display_name"`
	Confidence  float64 `json:"confidence" yaml:"confidence"`
	IsPrimary   bool    `json:"is_primary" yaml:"is_primary"`
}

// PaperDetail is a stored paper with its keywords and category links.
type PaperDetail struct {
	PaperRecord `yaml:",inline"`

	SubjectCategories  []string                         `json:"subject_categories" yaml:"subject_categories"`
	Probabilities      map[string]float64               `json:"classification_probabilities" yaml:"classification_probabilities"`
	OriginalKeywords   []string                         `json:"original_keywords" yaml:"original_keywords"`
	ExtractedKeywords  []types.RankedKeyword            `json:"extracted_keywords" yaml:"extracted_keywords"`
	ClassifiedKeywords map[string][]types.RankedKeyword `json:"classified_keywords" yaml:"classified_keywords"`
	KeywordCategories  []string                         `json:"keyword_categories" yaml:"keyword_categories"`
	Keywords           []KeywordRecord                  `json:"keywords" yaml:"keywords"`
	Categories         []PaperCategory                  `json:"categories" yaml:"categories"`
	UpdatedAt          time.Time                        `json:"updated_at" yaml:"updated_at"`
}

// SaveSummary counts the outcomes of BatchSave.
type SaveSummary struct {
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Total returns the number of papers processed.
func (s SaveSummary) Total() int {
	return s.Saved + s.Skipped + s.Failed
}

// SavePaper inserts p with its keywords and category links in one
// transaction. A paper whose external ID is already stored is left
// untouched and reported with created=false.
func (s *Store) SavePaper(ctx context.Context, p types.EnrichedPaper) (id int64, created bool, err error) {
	if strings.TrimSpace(p.ID) == "" {
		return 0, false, fmt.Errorf("paper %q has no external id", p.Title)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `SELECT id FROM papers WHERE external_id = ?`, p.ID).Scan(&id)
	switch {
	case err == nil:
		return id, false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return 0, false, fmt.Errorf("checking paper %s: %w", p.ID, err)
	}

	now := s.timestamp()
	var (
		predicted     sql.NullString
		confidence    sql.NullFloat64
		probabilities sql.NullString
	)
	if c := p.Classification; c != nil {
		predicted = sql.NullString{String: c.PredictedCategory, Valid: true}
		confidence = sql.NullFloat64{Float64: c.Confidence, Valid: true}
		probabilities = sql.NullString{String: toJSON(c.Probabilities), Valid: true}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO papers (
			external_id, title, abstract, authors, journal, publication_date, doi, url, source,
			subject_categories, predicted_category, confidence, probabilities,
			original_keywords, extracted_keywords, classified_keywords, keyword_categories,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Abstract, toJSON(nonNil(p.Authors)), p.Journal, p.PublicationDate, p.DOI, p.URL, p.Source,
		toJSON(nonNil(p.Categories)), predicted, confidence, probabilities,
		toJSON(nonNil(p.Keywords)), toJSON(nonNil(p.ExtractedKeywords)), toJSON(p.ClassifiedKeywords), toJSON(nonNil(p.KeywordCategories)),
		now, now,
	)
	if err != nil {
		return 0, false, fmt.Errorf("inserting paper %s: %w", p.ID, err)
	}
	if id, err = res.LastInsertId(); err != nil {
		return 0, false, fmt.Errorf("reading paper id: %w", err)
	}

	if err := insertKeywords(ctx, tx, id, p, now); err != nil {
		return 0, false, err
	}
	if err := linkCategories(ctx, tx, id, p.Classification, now); err != nil {
		return 0, false, err
	}
	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("committing paper %s: %w", p.ID, err)
	}
	return id, true, nil
}

func insertKeywords(ctx context.Context, tx *sql.Tx, paperID int64, p types.EnrichedPaper, now string) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO keywords (paper_id, keyword, category, score, methods, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing keyword insert: %w", err)
	}
	defer stmt.Close()

	for _, kw := range p.ExtractedKeywords {
		if _, err := stmt.ExecContext(ctx, paperID, kw.Keyword, kw.Category, kw.Score, strings.Join(kw.Methods, ","), now); err != nil {
			return fmt.Errorf("inserting keyword %q: %w", kw.Keyword, err)
		}
	}
	for _, kw := range p.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, paperID, kw, originalKeywordCategory, 1.0, originalKeywordCategory, now); err != nil {
			return fmt.Errorf("inserting keyword %q: %w", kw, err)
		}
	}
	return nil
}

// linkCategories links the predicted label as primary and every other label
// with probability above secondaryThreshold as secondary. Labels missing
// from the categories table are skipped.
func linkCategories(ctx context.Context, tx *sql.Tx, paperID int64, c *types.ClassificationResult, now string) error {
	if c == nil || c.PredictedCategory == "" {
		return nil
	}
	link := func(name string, confidence float64, primary bool) error {
		var catID int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = ?`, name).Scan(&catID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("looking up category %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO paper_categories (paper_id, category_id, confidence, is_primary, created_at)
			VALUES (?, ?, ?, ?, ?)`, paperID, catID, confidence, primary, now); err != nil {
			return fmt.Errorf("linking category %s: %w", name, err)
		}
		return nil
	}

	if err := link(c.PredictedCategory, c.Confidence, true); err != nil {
		return err
	}
	for _, name := range sortedLabels(c.Probabilities) {
		prob := c.Probabilities[name]
		if name == c.PredictedCategory || prob <= secondaryThreshold {
			continue
		}
		if err := link(name, prob, false); err != nil {
			return err
		}
	}
	return nil
}

// BatchSave saves each paper independently. A failed paper is logged and
// counted; it does not stop the batch.
func (s *Store) BatchSave(ctx context.Context, papers []types.EnrichedPaper) SaveSummary {
	var sum SaveSummary
	for _, p := range papers {
		_, created, err := s.SavePaper(ctx, p)
		log := logging.WithPaper(s.logger, p.Source, p.ID)
		switch {
		case err != nil:
			log.Error().Err(err).Msg("saving paper failed")
			sum.Failed++
		case created:
			sum.Saved++
		default:
			log.Debug().Msg("paper already stored")
			sum.Skipped++
		}
	}
	s.logger.Info().Int("saved", sum.Saved).Int("skipped", sum.Skipped).Int("failed", sum.Failed).Msg("batch save complete")
	return sum
}

// SearchOptions filters Search. Empty fields do not filter.
type SearchOptions struct {
	// Query matches title or abstract as a case-insensitive substring.
	Query    string
	Category string
	Source   string
	Limit    int
	Offset   int
}

const paperColumns = `p.id, p.external_id, p.title, p.abstract, p.authors, p.journal, p.publication_date,
	p.doi, p.url, p.source, p.predicted_category, p.confidence, p.created_at`

// Search returns stored papers matching opts, newest first. A non-empty
// query is recorded in the search history.
func (s *Store) Search(ctx context.Context, opts SearchOptions) ([]PaperRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	var (
		where []string
		args  []any
	)
	from := `papers p`
	if q := strings.TrimSpace(opts.Query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		where = append(where, `(p.title LIKE ? ESCAPE '\' OR p.abstract LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if opts.Category != "" {
		from += ` JOIN paper_categories pc ON pc.paper_id = p.id JOIN categories c ON c.id = pc.category_id`
		where = append(where, `c.name = ?`)
		args = append(args, opts.Category)
	}
	if opts.Source != "" {
		where = append(where, `p.source = ?`)
		args = append(args, opts.Source)
	}

	query := `SELECT ` + paperColumns + ` FROM ` + from
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, max(opts.Offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching papers: %w", err)
	}
	defer rows.Close()

	var out []PaperRecord
	for rows.Next() {
		rec, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("searching papers: %w", err)
	}

	if strings.TrimSpace(opts.Query) != "" {
		s.recordSearch(ctx, opts, len(out))
	}
	return out, nil
}

func (s *Store) recordSearch(ctx context.Context, opts SearchOptions, n int) {
	filters := map[string]string{}
	if opts.Category != "" {
		filters["category"] = opts.Category
	}
	if opts.Source != "" {
		filters["source"] = opts.Source
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO search_history (query, filters, results_count, created_at) VALUES (?, ?, ?, ?)`,
		strings.TrimSpace(opts.Query), toJSON(filters), n, s.timestamp(),
	); err != nil {
		s.logger.Warn().Err(err).Msg("recording search history failed")
	}
}

// SearchHistoryEntry is a row of the search_history table.
type SearchHistoryEntry struct {
	Query        string            `json:"query"`
	Filters      map[string]string `json:"filters"`
	ResultsCount int               `json:"results_count"`
	CreatedAt    time.Time         `json:"created_at"`
}

// SearchHistory returns the most recent searches, newest first.
func (s *Store) SearchHistory(ctx context.Context, limit int) ([]SearchHistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT query, filters, results_count, created_at FROM search_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying search history: %w", err)
	}
	defer rows.Close()

	var out []SearchHistoryEntry
	for rows.Next() {
		var (
			e                SearchHistoryEntry
			filters, created string
		)
		if err := rows.Scan(&e.Query, &filters, &e.ResultsCount, &created); err != nil {
			return nil, fmt.Errorf("scanning search history: %w", err)
		}
		fromJSON(filters, &e.Filters)
		e.CreatedAt = parseTime(created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetPaper returns the stored paper with the given row ID.
func (s *Store) GetPaper(ctx context.Context, id int64) (PaperDetail, error) {
	var (
		d                                     PaperDetail
		subjects, original, extracted, kwCats string
		classified, updated                   string
		probs                                 sql.NullString
	)
	row := s.db.QueryRowContext(ctx, `SELECT `+paperColumns+`,
		p.subject_categories, p.probabilities, p.original_keywords, p.extracted_keywords,
		p.classified_keywords, p.keyword_categories, p.updated_at
		FROM papers p WHERE p.id = ?`, id)

	rec, err := scanPaper(row, &subjects, &probs, &original, &extracted, &classified, &kwCats, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return d, fmt.Errorf("paper %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return d, err
	}

	d.PaperRecord = rec
	fromJSON(subjects, &d.SubjectCategories)
	fromJSON(probs.String, &d.Probabilities)
	fromJSON(original, &d.OriginalKeywords)
	fromJSON(extracted, &d.ExtractedKeywords)
	fromJSON(classified, &d.ClassifiedKeywords)
	fromJSON(kwCats, &d.KeywordCategories)
	d.UpdatedAt = parseTime(updated)

	if d.Keywords, err = s.paperKeywords(ctx, id); err != nil {
		return d, err
	}
	if d.Categories, err = s.paperCategories(ctx, id); err != nil {
		return d, err
	}
	return d, nil
}

// GetPaperByExternalID returns the stored paper with the given source ID.
func (s *Store) GetPaperByExternalID(ctx context.Context, externalID string) (PaperDetail, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM papers WHERE external_id = ?`, externalID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return PaperDetail{}, fmt.Errorf("paper %s: %w", externalID, ErrNotFound)
	}
	if err != nil {
		return PaperDetail{}, fmt.Errorf("looking up paper %s: %w", externalID, err)
	}
	return s.GetPaper(ctx, id)
}

func (s *Store) paperKeywords(ctx context.Context, paperID int64) ([]KeywordRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT keyword, category, score, methods FROM keywords WHERE paper_id = ? ORDER BY id`, paperID)
	if err != nil {
		return nil, fmt.Errorf("querying keywords: %w", err)
	}
	defer rows.Close()

	var out []KeywordRecord
	for rows.Next() {
		var k KeywordRecord
		if err := rows.Scan(&k.Keyword, &k.Category, &k.Score, &k.Methods); err != nil {
			return nil, fmt.Errorf("scanning keyword: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (s *Store) paperCategories(ctx context.Context, paperID int64) ([]PaperCategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, c.display_name, pc.confidence, pc.is_primary
		FROM paper_categories pc JOIN categories c ON c.id = pc.category_id
		WHERE pc.paper_id = ? ORDER BY pc.is_primary DESC, pc.confidence DESC`, paperID)
	if err != nil {
		return nil, fmt.Errorf("querying paper categories: %w", err)
	}
	defer rows.Close()

	var out []PaperCategory
	for rows.Next() {
		var c PaperCategory
		if err := rows.Scan(&c.Name, &c.DisplayName, &c.Confidence, &c.IsPrimary); err != nil {
			return nil, fmt.Errorf("scanning paper category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanPaper scans the paperColumns prefix of a row followed by extra.
func scanPaper(row scanner, extra ...any) (PaperRecord, error) {
	var (
		rec        PaperRecord
		authors    string
		predicted  sql.NullString
		confidence sql.NullFloat64
		created    string
	)
	dest := []any{
		&rec.ID, &rec.ExternalID, &rec.Title, &rec.Abstract, &authors, &rec.Journal, &rec.PublicationDate,
		&rec.DOI, &rec.URL, &rec.Source, &predicted, &confidence, &created,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scanning paper: %w", err)
	}
	fromJSON(authors, &rec.Authors)
	rec.PredictedCategory = predicted.String
	rec.Confidence = confidence.Float64
	rec.CreatedAt = parseTime(created)
	return rec, nil
}

// escapeLike escapes LIKE wildcards so the query matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func sortedLabels(m map[string]float64) []string {
	labels := make([]string, 0, len(m))
	for k := range m {
		labels = append(labels, k)
	}
	slices.Sort(labels)
	return labels
}
