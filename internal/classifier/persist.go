// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// Model artifact file names inside the model directory.
const (
	VectorizerFile = "vectorizer.json"
	ModelFile      = "classifier.json"
	MetadataFile   = "metadata.json"
)

// metadata is written alongside the vectorizer and model.
type metadata struct {
	Categories []string  `json:"categories"`
	IsTrained  bool      `json:"is_trained"`
	ModelType  string    `json:"model_type"`
	SavedAt    time.Time `json:"saved_at"`
}

// Save writes the vectorizer, model and metadata to the model directory.
func (c *Classifier) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.trained {
		return ErrNotTrained
	}
	if err := os.MkdirAll(c.modelDir, 0o755); err != nil {
		return fmt.Errorf("creating model directory: %w", err)
	}

	artifacts := []struct {
		name string
		v    any
	}{
		{VectorizerFile, c.vectorizer},
		{ModelFile, c.model},
		{MetadataFile, metadata{
			Categories: c.labels,
			IsTrained:  c.trained,
			ModelType:  ModelType,
			SavedAt:    time.Now().UTC(),
		}},
	}
	for _, a := range artifacts {
		if err := writeJSON(filepath.Join(c.modelDir, a.name), a.v); err != nil {
			return err
		}
	}
	c.logger.Info().Str("dir", c.modelDir).Msg("model saved")
	return nil
}

// Load restores the three artifacts. It returns false, leaving the current
// state unchanged, if any artifact is missing, unreadable or inconsistent.
func (c *Classifier) Load() bool {
	var (
		vec   Vectorizer
		model LogisticRegression
		meta  metadata
	)
	for _, a := range []struct {
		name string
		v    any
	}{
		{VectorizerFile, &vec},
		{ModelFile, &model},
		{MetadataFile, &meta},
	} {
		if err := readJSON(filepath.Join(c.modelDir, a.name), a.v); err != nil {
			c.logger.Warn().Err(err).Msg("loading model failed")
			return false
		}
	}
	if err := checkConsistent(&vec, &model); err != nil {
		c.logger.Warn().Err(err).Msg("loading model failed")
		return false
	}

	if !slices.Equal(meta.Categories, c.labels) {
		c.logger.Warn().Strs("saved", meta.Categories).Strs("configured", c.labels).
			Msg("saved model was trained on a different category set; retrain to pick up the configured categories")
	}

	c.mu.Lock()
	c.vectorizer, c.model, c.trained = &vec, &model, meta.IsTrained
	c.mu.Unlock()
	c.logger.Info().Str("dir", c.modelDir).Int("classes", len(model.Classes)).Msg("model loaded")
	return true
}

func checkConsistent(vec *Vectorizer, model *LogisticRegression) error {
	if len(vec.Vocabulary) != len(vec.IDF) {
		return fmt.Errorf("vectorizer has %d terms but %d idf weights", len(vec.Vocabulary), len(vec.IDF))
	}
	if len(model.Classes) == 0 || len(model.Weights) != len(model.Classes) || len(model.Intercepts) != len(model.Classes) {
		return fmt.Errorf("model has inconsistent class dimensions")
	}
	for _, w := range model.Weights {
		if len(w) != len(vec.IDF) {
			return fmt.Errorf("model weights have %d features, vectorizer has %d", len(w), len(vec.IDF))
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
