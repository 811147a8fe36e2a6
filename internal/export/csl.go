// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/medlit/internal/store"
	"github.com/pdiddy/medlit/pkg/types"
)

// CSLItem is a bibliography entry in CSL-YAML, the schema read by Pandoc
// and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
	PMID           string    `yaml:"PMID,omitempty"`
	Keyword        string    `yaml:"keyword,omitempty"`
}

// CSLName is a person's name in CSL form.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate holds one date as date-parts; partial dates have fewer parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// CSL writes papers as a CSL-YAML list.
func (e *Exporter) CSL(papers []store.PaperRecord, filename string) (string, error) {
	path, err := e.path(filename, "papers_export", "csl.yaml")
	if err != nil {
		return "", err
	}
	items := make([]CSLItem, len(papers))
	for i, p := range papers {
		items[i] = toCSLItem(p)
	}
	data, err := yaml.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshaling CSL: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing CSL export: %w", err)
	}
	e.done(FormatCSL, path, len(papers))
	return path, nil
}

func toCSLItem(p store.PaperRecord) CSLItem {
	item := CSLItem{
		ID:             p.Source + ":" + p.ExternalID,
		Type:           "article-journal",
		Title:          p.Title,
		ContainerTitle: p.Journal,
		Abstract:       p.Abstract,
		Issued:         cslDate(p.PublicationDate),
		DOI:            p.DOI,
		URL:            p.URL,
		Keyword:        p.PredictedCategory,
	}
	switch p.Source {
	case types.SourceArxiv:
		item.Type = "article"
		item.ContainerTitle = ""
	case types.SourcePubMed:
		item.PMID = p.ExternalID
	}
	for _, a := range p.Authors {
		if n := parseAuthorName(a); n != (CSLName{}) {
			item.Author = append(item.Author, n)
		}
	}
	return item
}

// cslDate converts "YYYY", "YYYY-MM" or "YYYY-MM-DD" to date-parts. Parts
// after the first unparseable one are dropped.
func cslDate(date string) *CSLDate {
	var parts []int
	for _, s := range strings.SplitN(date, "-", 3) {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			break
		}
		parts = append(parts, n)
	}
	if len(parts) == 0 {
		return nil
	}
	return &CSLDate{DateParts: [][]int{parts}}
}

// parseAuthorName splits a "Given Family" name on the last space.
// Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
