// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/pdiddy/medlit/internal/store"
)

const (
	// pdfMaxPapers caps the paper list printed in a PDF export.
	pdfMaxPapers  = 50
	pdfMaxAuthors = 3
)

// PDF writes a report listing the first pdfMaxPapers papers with authors,
// journal, date and predicted category.
func (e *Exporter) PDF(papers []store.PaperRecord, filename string) (string, error) {
	path, err := e.path(filename, "papers_export", "pdf")
	if err != nil {
		return "", err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Medical Literature Export", true)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Medical Literature Export", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Statistics", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total papers: %d", len(papers)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Exported: "+e.now().Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Papers", "", 1, "L", false, 0, "")

	for i, p := range papers[:min(len(papers), pdfMaxPapers)] {
		title := p.Title
		if title == "" {
			title = "Untitled"
		}
		category := p.PredictedCategory
		if category == "" {
			category = "unclassified"
		}

		pdf.SetFont("Helvetica", "B", 10)
		pdf.MultiCell(0, 5, tr(fmt.Sprintf("%d. %s", i+1, title)), "", "L", false)
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, tr("Authors: "+authorLine(p.Authors)), "", "L", false)
		pdf.MultiCell(0, 5, tr(fmt.Sprintf("Journal: %s (%s)", p.Journal, p.PublicationDate)), "", "L", false)
		pdf.MultiCell(0, 5, tr("Category: "+category), "", "L", false)
		pdf.Ln(3)
	}
	if rest := len(papers) - pdfMaxPapers; rest > 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 6, fmt.Sprintf("... %d more papers not shown", rest), "", 1, "L", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("writing PDF export: %w", err)
	}
	e.done(FormatPDF, path, len(papers))
	return path, nil
}

// authorLine joins the first pdfMaxAuthors authors, marking truncation.
func authorLine(authors []string) string {
	if len(authors) <= pdfMaxAuthors {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:pdfMaxAuthors], ", ") + " et al."
}
