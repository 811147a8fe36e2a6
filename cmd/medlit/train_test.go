// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/medlit/internal/classifier"
	"github.com/pdiddy/medlit/pkg/types"
)

func testClassifier(t *testing.T) *classifier.Classifier {
	t.Helper()
	return classifier.New(types.ClassifierConfig{
		ModelDir: filepath.Join(t.TempDir(), "models"),
		Categories: []types.Category{
			{Name: "cardiology", DisplayName: "心脏病学"},
			{Name: "oncology", DisplayName: "肿瘤学"},
		},
		CategoryKeywords: map[string][]string{
			"cardiology": {"heart", "cardiac", "cardiovascular", "coronary", "myocardial"},
			"oncology":   {"cancer", "tumor", "malignant", "chemotherapy", "oncology"},
		},
	}, zerolog.Nop())
}

func TestTrainWithFallback_UnlabelledPapers(t *testing.T) {
	cls := testClassifier(t)
	papers := []types.Paper{
		{ID: "1", Title: "Sleep hygiene in shift workers", Abstract: "Survey of rest patterns."},
		{ID: "2", Title: "Dental enamel erosion", Abstract: "Acidic beverages and teeth."},
	}

	res := trainWithFallback(cls, papers, zerolog.Nop())

	require.True(t, res.Success, res.Error)
	assert.True(t, res.Bootstrap)
	assert.Equal(t, 2, res.CategoryCount)
	assert.True(t, cls.IsTrained())
}

func TestTrainWithFallback_NoPapers(t *testing.T) {
	res := trainWithFallback(testClassifier(t), nil, zerolog.Nop())
	require.True(t, res.Success, res.Error)
	assert.True(t, res.Bootstrap)
}
