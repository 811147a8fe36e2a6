// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes stored papers to CSV, Excel, JSON, YAML, PDF, a
// CSL-YAML bibliography and an HTML summary report.
package export

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/medlit/internal/store"
)

// Supported export formats.
const (
	FormatCSV    = "csv"
	FormatExcel  = "excel"
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatPDF    = "pdf"
	FormatReport = "report"
	FormatCSL    = "csl"
)

// Formats lists the supported formats in presentation order.
var Formats = []string{FormatCSV, FormatExcel, FormatJSON, FormatYAML, FormatPDF, FormatReport, FormatCSL}

const formatVersion = "1.0"

// Exporter writes export files into Dir.
type Exporter struct {
	Dir    string
	Logger zerolog.Logger

	// Now stamps default filenames and metadata. Defaults to time.Now.
	Now func() time.Time
}

// New returns an Exporter writing into dir.
func New(dir string, logger zerolog.Logger) *Exporter {
	return &Exporter{Dir: dir, Logger: logger, Now: time.Now}
}

// Export writes papers in the named format and returns the written path.
// An empty filename selects a timestamped default.
func (e *Exporter) Export(format string, papers []store.PaperRecord, filename string) (string, error) {
	switch format {
	case FormatCSV:
		return e.CSV(papers, filename)
	case FormatExcel, "xlsx":
		return e.Excel(papers, filename)
	case FormatJSON:
		return e.JSON(papers, filename)
	case FormatYAML, "yml":
		return e.YAML(papers, filename)
	case FormatPDF:
		return e.PDF(papers, filename)
	case FormatReport, "html":
		return e.Report(papers, filename)
	case FormatCSL:
		return e.CSL(papers, filename)
	default:
		return "", fmt.Errorf("unsupported export format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

func (e *Exporter) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// path resolves filename inside Dir, creating Dir. An empty filename becomes
// <prefix>_YYYYMMDD_HHMMSS.<ext>.
func (e *Exporter) path(filename, prefix, ext string) (string, error) {
	if filename == "" {
		filename = fmt.Sprintf("%s_%s.%s", prefix, e.now().Format("20060102_150405"), ext)
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	return filepath.Join(e.Dir, filename), nil
}

func (e *Exporter) done(format, path string, n int) {
	e.Logger.Info().Str("format", format).Str("path", path).Int("papers", n).Msg("export complete")
}

// document is the JSON and YAML export layout.
type document struct {
	Metadata metadata            `json:"metadata" yaml:"metadata"`
	Papers   []store.PaperRecord `json:"papers" yaml:"papers"`
}

type metadata struct {
	ExportTime    string `json:"export_time" yaml:"export_time"`
	TotalPapers   int    `json:"total_papers" yaml:"total_papers"`
	FormatVersion string `json:"format_version" yaml:"format_version"`
}

func (e *Exporter) document(papers []store.PaperRecord) document {
	if papers == nil {
		papers = []store.PaperRecord{}
	}
	return document{
		Metadata: metadata{
			ExportTime:    e.now().Format(time.RFC3339),
			TotalPapers:   len(papers),
			FormatVersion: formatVersion,
		},
		Papers: papers,
	}
}

// JSON writes papers with export metadata as indented JSON.
func (e *Exporter) JSON(papers []store.PaperRecord, filename string) (string, error) {
	path, err := e.path(filename, "papers_export", "json")
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(e.document(papers), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing JSON export: %w", err)
	}
	e.done(FormatJSON, path, len(papers))
	return path, nil
}

// YAML writes papers with export metadata as YAML.
func (e *Exporter) YAML(papers []store.PaperRecord, filename string) (string, error) {
	path, err := e.path(filename, "papers_export", "yaml")
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(e.document(papers))
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing YAML export: %w", err)
	}
	e.done(FormatYAML, path, len(papers))
	return path, nil
}

// Count is one row of a distribution.
type Count struct {
	Name    string
	Count   int
	Percent float64
}

// Summary holds the distributions shown in the statistics sheet and the
// HTML report.
type Summary struct {
	Total      int
	Sources    []Count
	Categories []Count
	Years      []Count
}

// Summarize computes source and category distributions ordered by count
// and a year distribution ordered newest first. Unclassified papers are
// left out of the category distribution.
func Summarize(papers []store.PaperRecord) Summary {
	sources := map[string]int{}
	categories := map[string]int{}
	years := map[string]int{}
	for _, p := range papers {
		src := p.Source
		if src == "" {
			src = "unknown"
		}
		sources[src]++
		if p.PredictedCategory != "" {
			categories[p.PredictedCategory]++
		}
		if len(p.PublicationDate) >= 4 {
			years[p.PublicationDate[:4]]++
		}
	}

	total := len(papers)
	byCount := func(m map[string]int) []Count {
		out := counts(m, total)
		slices.SortStableFunc(out, func(a, b Count) int {
			return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Name, b.Name))
		})
		return out
	}
	yearCounts := counts(years, total)
	slices.SortFunc(yearCounts, func(a, b Count) int { return cmp.Compare(b.Name, a.Name) })

	return Summary{
		Total:      total,
		Sources:    byCount(sources),
		Categories: byCount(categories),
		Years:      yearCounts,
	}
}

func counts(m map[string]int, total int) []Count {
	out := make([]Count, 0, len(m))
	for name, n := range m {
		c := Count{Name: name, Count: n}
		if total > 0 {
			c.Percent = float64(n) / float64(total) * 100
		}
		out = append(out, c)
	}
	return out
}
