// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Category is a medical specialty label with a display name.
type Category struct {
	// Name is the label used by the classifier (e.g. "oncology").
	Name string `json:"name" yaml:"name" mapstructure:"name" validate:"required"`

	// DisplayName is the human-readable name shown in reports.
	DisplayName string `json:"display_name" yaml:"display_name" mapstructure:"display_name"`

	// Description is optional free text.
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
}

// DefaultCategories returns the fixed label set in its canonical order.
func DefaultCategories() []Category {
	return []Category{
		{Name: "cardiology", DisplayName: "心脏病学"},
		{Name: "oncology", DisplayName: "肿瘤学"},
		{Name: "neurology", DisplayName: "神经学"},
		{Name: "immunology", DisplayName: "免疫学"},
		{Name: "pharmacology", DisplayName: "药理学"},
		{Name: "genetics", DisplayName: "遗传学"},
		{Name: "infectious_diseases", DisplayName: "传染病学"},
		{Name: "surgery", DisplayName: "外科学"},
		{Name: "pediatrics", DisplayName: "儿科学"},
		{Name: "psychiatry", DisplayName: "精神病学"},
		{Name: "radiology", DisplayName: "放射学"},
		{Name: "pathology", DisplayName: "病理学"},
		{Name: "epidemiology", DisplayName: "流行病学"},
		{Name: "public_health", DisplayName: "公共卫生"},
		{Name: "clinical_trials", DisplayName: "临床试验"},
	}
}

// CategoryNames returns the Name of each category in order.
func CategoryNames(cats []Category) []string {
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	return names
}

// DefaultCategoryKeywords returns the representative keywords used to build
// bootstrap training data and to infer categories of unlabeled papers.
// Categories absent from the map fall back to their own name.
func DefaultCategoryKeywords() map[string][]string {
	return map[string][]string{
		"cardiology":          {"heart", "cardiac", "cardiovascular", "coronary", "myocardial"},
		"oncology":            {"cancer", "tumor", "malignant", "chemotherapy", "oncology"},
		"neurology":           {"brain", "neurological", "stroke", "epilepsy", "neural"},
		"immunology":          {"immune", "immunology", "antibody", "antigen", "vaccination"},
		"pharmacology":        {"drug", "medication", "pharmaceutical", "therapy", "treatment"},
		"genetics":            {"genetic", "DNA", "gene", "genome", "hereditary"},
		"infectious_diseases": {"infection", "bacterial", "viral", "antibiotic", "pathogen"},
		"surgery":             {"surgery", "surgical", "operation", "procedure", "operative"},
		"pediatrics":          {"pediatric", "children", "infant", "child", "adolescent"},
		"psychiatry":          {"psychiatric", "mental", "depression", "anxiety", "psychological"},
	}
}
