// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classifier

import (
	"math"
	"math/rand/v2"
)

const (
	evalSeed     = 42
	evalTestSize = 0.2
)

// Evaluation reports hold-out accuracy of a model fitted on a stratified
// 80% split.
type Evaluation struct {
	Accuracy         float64 `json:"accuracy" yaml:"accuracy"`
	TestSamples      int     `json:"test_samples" yaml:"test_samples"`
	CategoriesInTest int     `json:"categories_in_test" yaml:"categories_in_test"`
}

// stratifiedSplit partitions sample indices so each label keeps about 80%
// in train and 20% in test. Labels with a single sample stay in train.
// The split is deterministic for a given seed.
func stratifiedSplit(labels []string, testSize float64, seed uint64) (train, test []int) {
	byLabel := make(map[string][]int)
	var order []string
	for i, l := range labels {
		if _, ok := byLabel[l]; !ok {
			order = append(order, l)
		}
		byLabel[l] = append(byLabel[l], i)
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	for _, l := range order {
		idx := byLabel[l]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		nTest := int(math.Round(float64(len(idx)) * testSize))
		if nTest == 0 && len(idx) > 1 {
			nTest = 1
		}
		if nTest >= len(idx) {
			nTest = len(idx) - 1
		}
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}
	return train, test
}

// evaluate fits a fresh model on the training split of X and scores it on
// the test split.
func evaluate(X []SparseVector, y []string, nFeatures int) (*Evaluation, error) {
	trainIdx, testIdx := stratifiedSplit(y, evalTestSize, evalSeed)

	trainX := make([]SparseVector, len(trainIdx))
	trainY := make([]string, len(trainIdx))
	for k, i := range trainIdx {
		trainX[k], trainY[k] = X[i], y[i]
	}

	model := NewLogisticRegression()
	if err := model.Fit(trainX, trainY, nFeatures); err != nil {
		return nil, err
	}

	correct := 0
	present := make(map[string]bool)
	for _, i := range testIdx {
		present[y[i]] = true
		if model.Predict(X[i]) == y[i] {
			correct++
		}
	}
	ev := &Evaluation{TestSamples: len(testIdx), CategoriesInTest: len(present)}
	if len(testIdx) > 0 {
		ev.Accuracy = float64(correct) / float64(len(testIdx))
	}
	return ev, nil
}
