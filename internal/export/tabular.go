// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/medlit/internal/store"
)

// columns is the fixed CSV and Excel column list.
var columns = []string{
	"id", "external_id", "title", "abstract", "authors",
	"journal", "publication_date", "doi", "url", "source",
	"predicted_category", "classification_confidence",
}

var excelHeaders = []string{
	"ID", "External ID", "Title", "Abstract", "Authors", "Journal",
	"Publication Date", "DOI", "URL", "Source", "Predicted Category", "Confidence",
}

var excelWidths = []float64{8, 15, 50, 80, 30, 25, 12, 20, 30, 10, 15, 12}

const (
	papersSheet = "Papers"
	statsSheet  = "Statistics"
	headerColor = "366092"
)

// row renders p in column order. Unclassified papers have an empty
// confidence.
func row(p store.PaperRecord) []string {
	var confidence string
	if p.PredictedCategory != "" {
		confidence = strconv.FormatFloat(p.Confidence, 'f', -1, 64)
	}
	return []string{
		strconv.FormatInt(p.ID, 10),
		p.ExternalID,
		p.Title,
		p.Abstract,
		strings.Join(p.Authors, "; "),
		p.Journal,
		p.PublicationDate,
		p.DOI,
		p.URL,
		p.Source,
		p.PredictedCategory,
		confidence,
	}
}

// CSV writes papers with a header row.
func (e *Exporter) CSV(papers []store.PaperRecord, filename string) (string, error) {
	path, err := e.path(filename, "papers_export", "csv")
	if err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating CSV export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return "", fmt.Errorf("writing CSV header: %w", err)
	}
	for _, p := range papers {
		if err := w.Write(row(p)); err != nil {
			return "", fmt.Errorf("writing CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("writing CSV export: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing CSV export: %w", err)
	}
	e.done(FormatCSV, path, len(papers))
	return path, nil
}

// Excel writes a workbook with a styled papers sheet and, when papers is
// non-empty, a statistics sheet.
func (e *Exporter) Excel(papers []store.PaperRecord, filename string) (string, error) {
	path, err := e.path(filename, "papers_export", "xlsx")
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", papersSheet); err != nil {
		return "", fmt.Errorf("naming sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerColor}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return "", fmt.Errorf("creating header style: %w", err)
	}

	for i, h := range excelHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(papersSheet, cell, h); err != nil {
			return "", fmt.Errorf("writing header: %w", err)
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(papersSheet, col, col, excelWidths[i]); err != nil {
			return "", fmt.Errorf("setting column width: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(excelHeaders), 1)
	if err := f.SetCellStyle(papersSheet, "A1", last, header); err != nil {
		return "", fmt.Errorf("styling header: %w", err)
	}

	for r, p := range papers {
		values := []any{
			p.ID, p.ExternalID, p.Title, p.Abstract, strings.Join(p.Authors, "; "), p.Journal,
			p.PublicationDate, p.DOI, p.URL, p.Source, p.PredictedCategory, nil,
		}
		if p.PredictedCategory != "" {
			values[len(values)-1] = p.Confidence
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(papersSheet, cell, &values); err != nil {
			return "", fmt.Errorf("writing row %d: %w", r+2, err)
		}
	}

	if len(papers) > 0 {
		if err := statisticsSheet(f, Summarize(papers)); err != nil {
			return "", err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving workbook: %w", err)
	}
	e.done(FormatExcel, path, len(papers))
	return path, nil
}

func statisticsSheet(f *excelize.File, sum Summary) error {
	if _, err := f.NewSheet(statsSheet); err != nil {
		return fmt.Errorf("creating statistics sheet: %w", err)
	}
	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return fmt.Errorf("creating title style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating section style: %w", err)
	}

	set := func(cell string, v any, style int) error {
		if err := f.SetCellValue(statsSheet, cell, v); err != nil {
			return err
		}
		if style != 0 {
			return f.SetCellStyle(statsSheet, cell, cell, style)
		}
		return nil
	}

	if err := set("A1", "Summary", title); err != nil {
		return fmt.Errorf("writing statistics: %w", err)
	}
	if err := set("A3", "Total papers", 0); err != nil {
		return fmt.Errorf("writing statistics: %w", err)
	}
	if err := set("B3", sum.Total, 0); err != nil {
		return fmt.Errorf("writing statistics: %w", err)
	}

	r := 5
	for _, section := range []struct {
		title string
		rows  []Count
	}{
		{"Sources", sum.Sources},
		{"Categories", sum.Categories},
	} {
		if err := set(fmt.Sprintf("A%d", r), section.title, bold); err != nil {
			return fmt.Errorf("writing statistics: %w", err)
		}
		r++
		for _, c := range section.rows {
			if err := set(fmt.Sprintf("A%d", r), c.Name, 0); err != nil {
				return fmt.Errorf("writing statistics: %w", err)
			}
			if err := set(fmt.Sprintf("B%d", r), c.Count, 0); err != nil {
				return fmt.Errorf("writing statistics: %w", err)
			}
			r++
		}
		r++
	}
	return nil
}
