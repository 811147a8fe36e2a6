// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/medlit/pkg/types"
)

// CategoryTerms is one dictionary category and its curated terms.
type CategoryTerms struct {
	Category string   `json:"category" yaml:"category"`
	Terms    []string `json:"terms" yaml:"terms"`
}

// Dictionary is an ordered list of categories. Order matters: keyword
// classification assigns the first matching category.
type Dictionary []CategoryTerms

// Categories returns the category names in order.
func (d Dictionary) Categories() []string {
	names := make([]string, len(d))
	for i, c := range d {
		names[i] = c.Category
	}
	return names
}

// LoadDictionary reads a category to terms mapping from a YAML (.yaml,
// .yml) or JSON (.json) file, keeping the file's category order.
func LoadDictionary(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseDictionaryYAML(data)
	case ".json":
		return ParseDictionaryJSON(data)
	default:
		return nil, fmt.Errorf("dictionary %s: unsupported extension (want .yaml, .yml or .json)", path)
	}
}

// ParseDictionaryYAML parses a YAML mapping of category to term list.
func ParseDictionaryYAML(data []byte) (Dictionary, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing dictionary YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return Dictionary{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing dictionary YAML: top level must be a mapping")
	}

	dict := make(Dictionary, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		var terms []string
		if err := root.Content[i+1].Decode(&terms); err != nil {
			return nil, fmt.Errorf("parsing dictionary category %q: %w", root.Content[i].Value, err)
		}
		dict = append(dict, CategoryTerms{Category: root.Content[i].Value, Terms: terms})
	}
	return dict, nil
}

// ParseDictionaryJSON parses a JSON object of category to term list.
func ParseDictionaryJSON(data []byte) (Dictionary, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing dictionary JSON: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("parsing dictionary JSON: top level must be an object")
	}

	dict := Dictionary{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing dictionary JSON: %w", err)
		}
		category, _ := tok.(string)
		var terms []string
		if err := dec.Decode(&terms); err != nil {
			return nil, fmt.Errorf("parsing dictionary category %q: %w", category, err)
		}
		dict = append(dict, CategoryTerms{Category: category, Terms: terms})
	}
	return dict, nil
}

// DictionaryFromConfig returns the built-in dictionary when no file is
// configured. A configured file that cannot be loaded is logged and yields
// an empty dictionary, which disables the dictionary pass.
func DictionaryFromConfig(cfg types.KeywordConfig, logger zerolog.Logger) Dictionary {
	if cfg.DictionaryFile == "" {
		return DefaultDictionary()
	}
	dict, err := LoadDictionary(cfg.DictionaryFile)
	if err != nil {
		logger.Error().Err(err).Str("file", cfg.DictionaryFile).Msg("loading medical keyword dictionary failed")
		return Dictionary{}
	}
	return dict
}

// DefaultDictionary returns the built-in medical term dictionary.
func DefaultDictionary() Dictionary {
	return Dictionary{
		{Category: "cardiology", Terms: []string{
			"heart failure", "myocardial infarction", "atrial fibrillation", "hypertension",
			"coronary artery disease", "arrhythmia", "cardiomyopathy", "atherosclerosis",
			"angina", "cardiac arrest",
		}},
		{Category: "oncology", Terms: []string{
			"cancer", "tumor", "carcinoma", "lymphoma", "leukemia", "metastasis",
			"chemotherapy", "radiotherapy", "immunotherapy", "melanoma", "sarcoma",
		}},
		{Category: "neurology", Terms: []string{
			"stroke", "epilepsy", "alzheimer", "parkinson", "multiple sclerosis",
			"dementia", "migraine", "neuropathy", "seizure", "neurodegeneration",
		}},
		{Category: "immunology", Terms: []string{
			"antibody", "antigen", "vaccine", "autoimmune", "cytokine", "t cell",
			"b cell", "inflammation", "immunodeficiency", "allergy",
		}},
		{Category: "pharmacology", Terms: []string{
			"pharmacokinetics", "pharmacodynamics", "drug interaction", "adverse event",
			"dosage", "bioavailability", "toxicity", "placebo", "drug resistance",
		}},
		{Category: "genetics", Terms: []string{
			"gene expression", "mutation", "genome", "dna", "rna", "polymorphism",
			"crispr", "sequencing", "epigenetic", "heredity",
		}},
		{Category: "infectious_diseases", Terms: []string{
			"covid-19", "sars-cov-2", "influenza", "hiv", "tuberculosis", "malaria",
			"sepsis", "antibiotic", "antimicrobial resistance", "pathogen",
		}},
		{Category: "surgery", Terms: []string{
			"laparoscopic", "transplantation", "resection", "anesthesia",
			"postoperative", "minimally invasive", "surgical site infection", "suture",
		}},
		{Category: "pediatrics", Terms: []string{
			"neonatal", "infant", "preterm", "childhood", "adolescent",
			"congenital", "pediatric", "birth weight",
		}},
		{Category: "psychiatry", Terms: []string{
			"depression", "anxiety", "schizophrenia", "bipolar disorder", "ptsd",
			"autism", "adhd", "substance use", "suicide",
		}},
		{Category: "radiology", Terms: []string{
			"mri", "computed tomography", "ultrasound", "x-ray", "pet scan",
			"imaging", "radiograph", "contrast agent",
		}},
		{Category: "epidemiology", Terms: []string{
			"cohort study", "incidence", "prevalence", "risk factor", "mortality",
			"case-control", "odds ratio", "meta-analysis",
		}},
		{Category: "clinical_trials", Terms: []string{
			"randomized controlled trial", "phase i", "phase ii", "phase iii",
			"double-blind", "primary endpoint", "efficacy", "enrollment",
		}},
	}
}
