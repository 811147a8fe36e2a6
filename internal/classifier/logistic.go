// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classifier

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// LogisticRegression is a one-vs-rest L2-regularised logistic regression
// trained by full-batch gradient descent.
type LogisticRegression struct {
	C            float64     `json:"c"`
	MaxIter      int         `json:"max_iter"`
	LearningRate float64     `json:"learning_rate"`
	Classes      []string    `json:"classes"`
	Weights      [][]float64 `json:"weights"`
	Intercepts   []float64   `json:"intercepts"`
}

// NewLogisticRegression returns a model with C=1 and a fixed iteration budget.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{C: 1.0, MaxIter: 500, LearningRate: 2.0}
}

// Fit trains one binary model per distinct label in y. Classes are sorted.
func (m *LogisticRegression) Fit(X []SparseVector, y []string, nFeatures int) error {
	if len(X) != len(y) {
		return fmt.Errorf("fitting model: %d rows but %d labels", len(X), len(y))
	}
	if len(X) == 0 {
		return errors.New("fitting model: no samples")
	}

	seen := make(map[string]bool)
	var classes []string
	for _, label := range y {
		if !seen[label] {
			seen[label] = true
			classes = append(classes, label)
		}
	}
	if len(classes) < 2 {
		return fmt.Errorf("fitting model: need samples of at least 2 classes, got %d", len(classes))
	}
	sort.Strings(classes)

	m.Classes = classes
	m.Weights = make([][]float64, len(classes))
	m.Intercepts = make([]float64, len(classes))
	for k, class := range classes {
		target := make([]float64, len(y))
		for i, label := range y {
			if label == class {
				target[i] = 1
			}
		}
		m.Weights[k], m.Intercepts[k] = m.fitBinary(X, target, nFeatures)
	}
	return nil
}

// fitBinary minimises mean log-loss plus ||w||^2/(2*C*n). The intercept is
// not regularised.
func (m *LogisticRegression) fitBinary(X []SparseVector, target []float64, d int) ([]float64, float64) {
	n := float64(len(X))
	w := make([]float64, d)
	grad := make([]float64, d)
	var b float64
	reg := 1 / (m.C * n)

	for iter := 0; iter < m.MaxIter; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		var gb float64
		for i, x := range X {
			e := sigmoid(b+x.Dot(w)) - target[i]
			for k, j := range x.Idx {
				grad[j] += e * x.Val[k]
			}
			gb += e
		}
		for j := range w {
			w[j] -= m.LearningRate * (grad[j]/n + reg*w[j])
		}
		b -= m.LearningRate * gb / n
	}
	return w, b
}

// PredictProba returns per-class probabilities aligned with Classes: each
// class sigmoid divided by their sum.
func (m *LogisticRegression) PredictProba(x SparseVector) []float64 {
	probs := make([]float64, len(m.Classes))
	var sum float64
	for k := range m.Classes {
		probs[k] = sigmoid(m.Intercepts[k] + x.Dot(m.Weights[k]))
		sum += probs[k]
	}
	if sum == 0 {
		for k := range probs {
			probs[k] = 1 / float64(len(probs))
		}
		return probs
	}
	for k := range probs {
		probs[k] /= sum
	}
	return probs
}

// Predict returns the most probable class. Ties go to the earlier class.
func (m *LogisticRegression) Predict(x SparseVector) string {
	probs := m.PredictProba(x)
	best := 0
	for k := 1; k < len(probs); k++ {
		if probs[k] > probs[best] {
			best = k
		}
	}
	return m.Classes[best]
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
