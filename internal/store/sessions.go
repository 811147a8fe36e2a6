// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Crawl session statuses.
const (
	SessionRunning   = "running"
	SessionCompleted = "completed"
	SessionFailed    = "failed"
)

// SessionResult is the outcome recorded by FinishSession.
type SessionResult struct {
	Status  string
	Found   int
	Saved   int
	Skipped int
	Failed  int
	Err     error
}

// Session is a row of the crawl_sessions table.
type Session struct {
	ID            string        `json:"id"`
	Keywords      []string      `json:"keywords"`
	Sources       []string      `json:"sources"`
	Status        string        `json:"status"`
	TotalPapers   int           `json:"total_papers"`
	SavedPapers   int           `json:"saved_papers"`
	SkippedPapers int           `json:"skipped_papers"`
	FailedPapers  int           `json:"failed_papers"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
	CompletedAt   time.Time     `json:"completed_at"`
	Duration      time.Duration `json:"duration"`
}

// StartSession records a running crawl session and returns its ID.
func (s *Store) StartSession(ctx context.Context, keywords, sources []string) (string, error) {
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO crawl_sessions (id, keywords, sources, status, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		id, toJSON(nonNil(keywords)), toJSON(nonNil(sources)), SessionRunning, s.timestamp(),
	); err != nil {
		return "", fmt.Errorf("starting crawl session: %w", err)
	}
	return id, nil
}

// FinishSession records the outcome of a session. An empty status is
// derived from res.Err.
func (s *Store) FinishSession(ctx context.Context, id string, res SessionResult) error {
	status := res.Status
	if status == "" {
		status = SessionCompleted
		if res.Err != nil {
			status = SessionFailed
		}
	}
	var msg string
	if res.Err != nil {
		msg = res.Err.Error()
	}

	var started string
	err := s.db.QueryRowContext(ctx, `SELECT started_at FROM crawl_sessions WHERE id = ?`, id).Scan(&started)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("looking up session %s: %w", id, err)
	}

	now := s.now().UTC()
	duration := now.Sub(parseTime(started)).Seconds()
	if _, err := s.db.ExecContext(ctx, `
		UPDATE crawl_sessions SET
			status = ?, total_papers = ?, saved_papers = ?, skipped_papers = ?, failed_papers = ?,
			error_message = ?, completed_at = ?, duration_seconds = ?
		WHERE id = ?`,
		status, res.Found, res.Saved, res.Skipped, res.Failed, msg, now.Format(timeLayout), duration, id,
	); err != nil {
		return fmt.Errorf("finishing session %s: %w", id, err)
	}
	return nil
}

// Session returns the crawl session with the given ID.
func (s *Store) Session(ctx context.Context, id string) (Session, error) {
	var (
		sess                       Session
		keywords, sources, started string
		completed                  sql.NullString
		duration                   sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, keywords, sources, status, total_papers, saved_papers, skipped_papers, failed_papers,
			error_message, started_at, completed_at, duration_seconds
		FROM crawl_sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &keywords, &sources, &sess.Status, &sess.TotalPapers, &sess.SavedPapers,
		&sess.SkippedPapers, &sess.FailedPapers, &sess.ErrorMessage, &started, &completed, &duration)
	if errors.Is(err, sql.ErrNoRows) {
		return sess, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return sess, fmt.Errorf("reading session %s: %w", id, err)
	}
	fromJSON(keywords, &sess.Keywords)
	fromJSON(sources, &sess.Sources)
	sess.StartedAt = parseTime(started)
	if completed.Valid {
		sess.CompletedAt = parseTime(completed.String)
	}
	sess.Duration = time.Duration(duration.Float64 * float64(time.Second))
	return sess, nil
}

// ExportRecord describes a written export file.
type ExportRecord struct {
	ID         int64             `json:"id"`
	Format     string            `json:"format"`
	Path       string            `json:"file_path"`
	Filename   string            `json:"filename"`
	Filters    map[string]string `json:"filters,omitempty"`
	PaperCount int               `json:"paper_count"`
	FileSize   int64             `json:"file_size"`
	CreatedAt  time.Time         `json:"created_at"`
}

// RecordExport stores a row for an export written to rec.Path. The file
// size is read from disk.
func (s *Store) RecordExport(ctx context.Context, rec ExportRecord) (int64, error) {
	info, err := os.Stat(rec.Path)
	if err != nil {
		return 0, fmt.Errorf("reading export file: %w", err)
	}
	filters := rec.Filters
	if filters == nil {
		filters = map[string]string{}
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO exports (format, filename, file_path, filters, paper_count, file_size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Format, filepath.Base(rec.Path), rec.Path, toJSON(filters), rec.PaperCount, info.Size(), s.timestamp(),
	)
	if err != nil {
		return 0, fmt.Errorf("recording export: %w", err)
	}
	return res.LastInsertId()
}

// Exports returns the most recent export records, newest first.
func (s *Store) Exports(ctx context.Context, limit int) ([]ExportRecord, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, format, filename, file_path, filters, paper_count, file_size, created_at
		FROM exports ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exports: %w", err)
	}
	defer rows.Close()

	var out []ExportRecord
	for rows.Next() {
		var (
			r                ExportRecord
			filters, created string
		)
		if err := rows.Scan(&r.ID, &r.Format, &r.Filename, &r.Path, &filters, &r.PaperCount, &r.FileSize, &created); err != nil {
			return nil, fmt.Errorf("scanning export: %w", err)
		}
		fromJSON(filters, &r.Filters)
		r.CreatedAt = parseTime(created)
		out = append(out, r)
	}
	return out, rows.Err()
}
