// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists papers, ranked keywords, category links, crawl
// sessions, search history and export records in SQLite. The schema is
// managed by embedded migrations applied on Open.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/pdiddy/medlit/pkg/types"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeLayout is the fixed-width UTC layout used for every timestamp column,
// so timestamps compare correctly as text.
const timeLayout = "2006-01-02 15:04:05"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store manages the literature SQLite database.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// Open opens or creates the database at path and applies pending
// migrations.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, logger: logger, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies the embedded migrations. The migrate instance is not
// closed because closing its database driver would close s.db.
func (s *Store) migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{MigrationsTable: "schema_migrations"})
	if err != nil {
		return fmt.Errorf("creating sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			s.logger.Debug().Msg("database schema up to date")
			return nil
		}
		return fmt.Errorf("running migrations: %w", err)
	}
	s.logger.Debug().Msg("database migrations applied")
	return nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func fromJSON(data string, v any) {
	if data == "" {
		return
	}
	_ = json.Unmarshal([]byte(data), v)
}

// CategoryRecord is a row of the categories table.
type CategoryRecord struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

// InitCategories inserts the configured categories, refreshing the display
// name and description of existing rows. It returns the number of
// categories written.
func (s *Store) InitCategories(ctx context.Context, cats []types.Category) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.timestamp()
	for _, c := range cats {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO categories (name, display_name, description, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				display_name = excluded.display_name,
				description  = excluded.description`,
			c.Name, c.DisplayName, c.Description, now,
		); err != nil {
			return 0, fmt.Errorf("inserting category %s: %w", c.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing categories: %w", err)
	}
	return len(cats), nil
}

// Categories returns every category ordered by ID.
func (s *Store) Categories(ctx context.Context) ([]CategoryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, display_name, description FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var out []CategoryRecord
	for rows.Next() {
		var c CategoryRecord
		if err := rows.Scan(&c.ID, &c.Name, &c.DisplayName, &c.Description); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Statistics summarizes the database contents.
type Statistics struct {
	TotalPapers          int            `json:"total_papers" yaml:"total_papers"`
	TotalKeywords        int            `json:"total_keywords" yaml:"total_keywords"`
	RecentPapers         int            `json:"recent_papers_7days" yaml:"recent_papers_7days"`
	SourceDistribution   map[string]int `json:"source_distribution" yaml:"source_distribution"`
	CategoryDistribution map[string]int `json:"category_distribution" yaml:"category_distribution"`
}

// Statistics returns paper and keyword totals, papers created in the last
// seven days, and source and category distributions. Categories are keyed
// by display name, falling back to the category name.
func (s *Store) Statistics(ctx context.Context) (Statistics, error) {
	st := Statistics{
		SourceDistribution:   map[string]int{},
		CategoryDistribution: map[string]int{},
	}
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM papers`).Scan(&st.TotalPapers); err != nil {
		return st, fmt.Errorf("counting papers: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM keywords`).Scan(&st.TotalKeywords); err != nil {
		return st, fmt.Errorf("counting keywords: %w", err)
	}
	since := s.now().UTC().AddDate(0, 0, -7).Format(timeLayout)
	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM papers WHERE created_at >= ?`, since,
	).Scan(&st.RecentPapers); err != nil {
		return st, fmt.Errorf("counting recent papers: %w", err)
	}

	if err := s.countInto(ctx, st.SourceDistribution,
		`SELECT source, count(*) FROM papers GROUP BY source`); err != nil {
		return st, fmt.Errorf("source distribution: %w", err)
	}
	if err := s.countInto(ctx, st.CategoryDistribution, `
		SELECT CASE WHEN c.display_name = '' THEN c.name ELSE c.display_name END, count(pc.id)
		FROM categories c JOIN paper_categories pc ON pc.category_id = c.id
		GROUP BY c.id`); err != nil {
		return st, fmt.Errorf("category distribution: %w", err)
	}
	return st, nil
}

func (s *Store) countInto(ctx context.Context, dst map[string]int, query string) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			k string
			n int
		)
		if err := rows.Scan(&k, &n); err != nil {
			return err
		}
		dst[k] = n
	}
	return rows.Err()
}
