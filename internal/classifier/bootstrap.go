// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classifier

import (
	"fmt"
	"strings"

	"github.com/pdiddy/medlit/pkg/types"
)

// bootstrapTemplates produce five labelled sentences per category keyword.
var bootstrapTemplates = []string{
	"This study focuses on %s research and analysis.",
	"We investigated %s in clinical settings.",
	"The %s approach showed significant results.",
	"Novel %s methods were developed.",
	"Patient outcomes improved with %s treatment.",
}

// keywordsFor returns the representative keywords of label, or the label
// itself when none are configured.
func (c *Classifier) keywordsFor(label string) []string {
	if kws := c.categoryKeywords[label]; len(kws) > 0 {
		return kws
	}
	return []string{label}
}

// BootstrapData synthesises a label-balanced corpus from the category
// keyword lists, in label order.
func (c *Classifier) BootstrapData() (texts, labels []string) {
	for _, label := range c.labels {
		for _, kw := range c.keywordsFor(label) {
			for _, tmpl := range bootstrapTemplates {
				texts = append(texts, fmt.Sprintf(tmpl, kw))
				labels = append(labels, label)
			}
		}
	}
	return texts, labels
}

// InferCategory assigns a pseudo-label to an unlabelled paper. Each category
// scores +1 per category keyword found in the lowercase title and abstract
// and +2 per (paper keyword, category keyword) pair where the category
// keyword occurs in the paper keyword. The highest score wins; ties go to
// the earlier label. ok is false when every score is zero.
func (c *Classifier) InferCategory(p types.Paper) (label string, ok bool) {
	text := strings.ToLower(p.Title + " " + p.Abstract)
	best := 0
	for _, cat := range c.labels {
		score := 0
		kws := c.keywordsFor(cat)
		for _, kw := range kws {
			if strings.Contains(text, strings.ToLower(kw)) {
				score++
			}
		}
		for _, pk := range p.Keywords {
			pk = strings.ToLower(pk)
			for _, kw := range kws {
				if strings.Contains(pk, strings.ToLower(kw)) {
					score += 2
				}
			}
		}
		if score > best {
			best, label = score, cat
		}
	}
	return label, best > 0
}

// trainingData labels papers by inference, dropping blank and unscored papers.
func (c *Classifier) trainingData(papers []types.Paper) (texts, labels []string) {
	for _, p := range papers {
		text := p.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		label, ok := c.InferCategory(p)
		if !ok {
			continue
		}
		texts = append(texts, text)
		labels = append(labels, label)
	}
	return texts, labels
}
