// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func TestToCSLItem_PubMed(t *testing.T) {
	item := toCSLItem(testPapers()[0])

	assert.Equal(t, "pubmed:111", item.ID)
	assert.Equal(t, "article-journal", item.Type)
	assert.Equal(t, "111", item.PMID)
	assert.Equal(t, "Cardiology Today", item.ContainerTitle)
	assert.Equal(t, "10.1/a", item.DOI)
	assert.Equal(t, []CSLName{{Given: "Jane", Family: "Doe"}, {Given: "John", Family: "Roe"}}, item.Author)
	require.NotNil(t, item.Issued)
	assert.Equal(t, [][]int{{2023, 3, 5}}, item.Issued.DateParts)
}

func TestToCSLItem_Arxiv(t *testing.T) {
	item := toCSLItem(testPapers()[1])

	assert.Equal(t, "article", item.Type)
	assert.Empty(t, item.PMID)
	assert.Empty(t, item.ContainerTitle)
	assert.Equal(t, []CSLName{{Literal: "A"}, {Literal: "B"}, {Literal: "C"}, {Literal: "D"}}, item.Author)
}

func TestCSLDate(t *testing.T) {
	tests := []struct {
		in   string
		want [][]int
	}{
		{"2023-03-05", [][]int{{2023, 3, 5}}},
		{"2023-03", [][]int{{2023, 3}}},
		{"2023", [][]int{{2023}}},
		{"2023-xx-01", [][]int{{2023}}},
	}
	for _, tt := range tests {
		d := cslDate(tt.in)
		require.NotNil(t, d, tt.in)
		assert.Equal(t, tt.want, d.DateParts, tt.in)
	}
	assert.Nil(t, cslDate(""))
	assert.Nil(t, cslDate("unknown"))
}

func TestParseAuthorName(t *testing.T) {
	assert.Equal(t, CSLName{Given: "Edgar A", Family: "Poe"}, parseAuthorName(" Edgar A Poe "))
	assert.Equal(t, CSLName{Literal: "Consortium"}, parseAuthorName("Consortium"))
	assert.Equal(t, CSLName{}, parseAuthorName("  "))
}

func TestCSL(t *testing.T) {
	path, err := testExporter(t).CSL(testPapers(), "")
	require.NoError(t, err)
	assert.Equal(t, "papers_export_20240601_143005.csl.yaml", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var items []CSLItem
	require.NoError(t, yaml.Unmarshal(data, &items))
	require.Len(t, items, 3)
	assert.Equal(t, "arxiv:2401.01234v2", items[1].ID)
	assert.Nil(t, items[2].Author)
	assert.Contains(t, string(data), "container-title: Cardiology Today")
}
