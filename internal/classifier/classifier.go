// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classifier predicts a medical specialty for a text with a TF-IDF
// vectorizer and a one-vs-rest logistic regression. When no labelled
// corpus is available it trains on synthetic sentences generated from the
// category keyword lists.
package classifier

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pdiddy/medlit/pkg/types"
)

// ModelType names the estimator in metadata and model info.
const ModelType = "LogisticRegression"

// Sentinel errors.
var (
	ErrNotTrained     = errors.New("model not trained")
	ErrNoTrainingData = errors.New("no training data")
)

// TrainResult is the outcome of Train. Failures are reported here rather
// than as an error so callers can surface them without aborting.
type TrainResult struct {
	Success       bool        `json:"success" yaml:"success"`
	Error         string      `json:"error,omitempty" yaml:"error,omitempty"`
	SampleCount   int         `json:"training_samples" yaml:"training_samples"`
	CategoryCount int         `json:"categories" yaml:"categories"`
	Bootstrap     bool        `json:"bootstrap" yaml:"bootstrap"`
	Evaluation    *Evaluation `json:"evaluation,omitempty" yaml:"evaluation,omitempty"`
}

// ModelInfo describes the classifier state.
type ModelInfo struct {
	IsTrained          bool     `json:"is_trained" yaml:"is_trained"`
	Categories         []string `json:"categories" yaml:"categories"`
	Classes            []string `json:"classes" yaml:"classes"`
	ModelType          string   `json:"model_type" yaml:"model_type"`
	VectorizerFeatures int      `json:"vectorizer_features" yaml:"vectorizer_features"`
	VocabularySize     int      `json:"vocabulary_size" yaml:"vocabulary_size"`
	ModelPath          string   `json:"model_path" yaml:"model_path"`
}

// Classifier is untrained until Train or Load succeeds. It is safe for
// concurrent use.
type Classifier struct {
	labels           []string
	categoryKeywords map[string][]string
	modelDir         string
	logger           zerolog.Logger

	mu         sync.RWMutex
	vectorizer *Vectorizer
	model      *LogisticRegression
	trained    bool
}

// New returns an untrained classifier over the configured categories.
func New(cfg types.ClassifierConfig, logger zerolog.Logger) *Classifier {
	return &Classifier{
		labels:           types.CategoryNames(cfg.Categories),
		categoryKeywords: cfg.CategoryKeywords,
		modelDir:         cfg.ModelDir,
		logger:           logger,
	}
}

// Labels returns the configured label set in order.
func (c *Classifier) Labels() []string {
	return append([]string(nil), c.labels...)
}

// IsTrained reports whether the classifier can classify.
func (c *Classifier) IsTrained() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.trained
}

// Train fits the classifier. With no papers it trains on bootstrap data;
// otherwise each paper is labelled by InferCategory. A failure leaves the
// previous state untouched. The fitted model is saved; a save error is
// logged only.
func (c *Classifier) Train(papers []types.Paper) TrainResult {
	var texts, labels []string
	bootstrap := len(papers) == 0
	if bootstrap {
		texts, labels = c.BootstrapData()
		c.logger.Info().Int("samples", len(texts)).Msg("training on keyword bootstrap data")
	} else {
		texts, labels = c.trainingData(papers)
		c.logger.Info().Int("papers", len(papers)).Int("samples", len(texts)).Msg("training on inferred paper labels")
	}

	if len(texts) == 0 {
		c.logger.Error().Msg("no training data")
		return TrainResult{Error: ErrNoTrainingData.Error(), Bootstrap: bootstrap}
	}

	docs := make([]string, len(texts))
	for i, t := range texts {
		docs[i] = Preprocess(t)
	}

	vec := NewVectorizer()
	X, err := vec.FitTransform(docs)
	if err != nil {
		c.logger.Error().Err(err).Msg("training failed")
		return TrainResult{Error: err.Error(), Bootstrap: bootstrap}
	}
	model := NewLogisticRegression()
	if err := model.Fit(X, labels, vec.NumFeatures()); err != nil {
		c.logger.Error().Err(err).Msg("training failed")
		return TrainResult{Error: err.Error(), Bootstrap: bootstrap}
	}

	c.mu.Lock()
	c.vectorizer, c.model, c.trained = vec, model, true
	c.mu.Unlock()

	res := TrainResult{
		Success:       true,
		SampleCount:   len(texts),
		CategoryCount: len(model.Classes),
		Bootstrap:     bootstrap,
	}
	if len(model.Classes) > 1 && len(texts) > 10 {
		ev, err := evaluate(X, labels, vec.NumFeatures())
		if err != nil {
			c.logger.Error().Err(err).Msg("model evaluation failed")
		} else {
			res.Evaluation = ev
		}
	}

	if err := c.Save(); err != nil {
		c.logger.Error().Err(err).Str("dir", c.modelDir).Msg("saving model failed")
	}
	c.logger.Info().Int("samples", res.SampleCount).Int("categories", res.CategoryCount).Msg("classifier trained")
	return res
}

// Classify predicts the category of text.
func (c *Classifier) Classify(text string) (types.ClassificationResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.trained {
		return types.ClassificationResult{}, ErrNotTrained
	}

	x := c.vectorizer.Transform(Preprocess(text))
	probs := c.model.PredictProba(x)

	res := types.ClassificationResult{
		Probabilities: make(map[string]float64, len(probs)),
	}
	ranked := make([]types.LabelProbability, len(probs))
	for k, class := range c.model.Classes {
		res.Probabilities[class] = probs[k]
		ranked[k] = types.LabelProbability{Label: class, Probability: probs[k]}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Probability > ranked[j].Probability })

	res.PredictedCategory = ranked[0].Label
	res.Confidence = ranked[0].Probability
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	res.Top = ranked
	return res, nil
}

// ClassifyPapers returns copies of papers with Classification set from
// title and abstract. When the classifier is not trained, or a paper fails
// to classify, Classification is left nil.
func (c *Classifier) ClassifyPapers(papers []types.EnrichedPaper) []types.EnrichedPaper {
	out := make([]types.EnrichedPaper, len(papers))
	for i, p := range papers {
		out[i] = p
		res, err := c.Classify(p.Text())
		if err != nil {
			c.logger.Debug().Err(err).Str("paper_id", p.ID).Msg("paper not classified")
			continue
		}
		out[i].Classification = &res
	}
	return out
}

// Info reports the classifier state.
func (c *Classifier) Info() ModelInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info := ModelInfo{
		IsTrained:          c.trained,
		Categories:         c.Labels(),
		ModelType:          ModelType,
		VectorizerFeatures: NewVectorizer().MaxFeatures,
		ModelPath:          c.modelDir,
	}
	if c.model != nil {
		info.Classes = append([]string(nil), c.model.Classes...)
	}
	if c.vectorizer != nil {
		info.VocabularySize = c.vectorizer.NumFeatures()
	}
	return info
}

func (r TrainResult) String() string {
	if !r.Success {
		return "training failed: " + r.Error
	}
	return fmt.Sprintf("trained on %d samples across %d categories", r.SampleCount, r.CategoryCount)
}
