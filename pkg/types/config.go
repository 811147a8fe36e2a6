// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by the source adapters.
type HTTPConfig struct {
	// Timeout is the fixed per-request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent" validate:"required"`

	// CrawlDelay is the minimum delay between consecutive requests to one source.
	CrawlDelay time.Duration `json:"crawl_delay" yaml:"crawl_delay" mapstructure:"crawl_delay" validate:"gte=0"`
}

// PubMedConfig holds settings for the PubMed E-utilities adapter.
type PubMedConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// BaseURL is the E-utilities base (esearch.fcgi and efetch.fcgi are appended).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url" validate:"required_if=Enabled true,omitempty,url"`

	// APIKey raises the NCBI rate limit. Optional.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Email identifies the caller to NCBI. Optional.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email" validate:"omitempty,email"`

	// BatchSize is the number of PMIDs per efetch call (default 200).
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size" validate:"gte=1,lte=10000"`
}

// ArxivConfig holds settings for the arXiv adapter.
type ArxivConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// BaseURL is the arXiv query endpoint.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url" validate:"required_if=Enabled true,omitempty,url"`

	// Categories restricts searches to these subject categories (OR filter).
	Categories []string `json:"categories" yaml:"categories" mapstructure:"categories"`
}

// CrawlConfig groups adapter and crawler settings.
type CrawlConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxPapersPerQuery is the default result cap when a caller passes none.
	MaxPapersPerQuery int `json:"max_papers_per_query" yaml:"max_papers_per_query" mapstructure:"max_papers_per_query" validate:"gte=1"`

	// Workers bounds the parallel multi-query crawl pool (default 3).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers" validate:"gte=1"`

	PubMed PubMedConfig `json:"pubmed" yaml:"pubmed" mapstructure:"pubmed"`
	Arxiv  ArxivConfig  `json:"arxiv" yaml:"arxiv" mapstructure:"arxiv"`
}

// KeywordConfig holds settings for the keyword extractor.
type KeywordConfig struct {
	// DictionaryFile is a YAML or JSON mapping of category to terms.
	// Empty selects the built-in dictionary.
	DictionaryFile string `json:"dictionary_file" yaml:"dictionary_file" mapstructure:"dictionary_file"`

	// MaxKeywords caps the ranked keyword list per paper (default 20).
	MaxKeywords int `json:"max_keywords" yaml:"max_keywords" mapstructure:"max_keywords" validate:"gte=1"`
}

// ClassifierConfig holds settings for the text classifier.
type ClassifierConfig struct {
	// ModelDir holds the vectorizer, classifier and metadata artifacts.
	ModelDir string `json:"model_dir" yaml:"model_dir" mapstructure:"model_dir" validate:"required"`

	// Categories is the fixed label set.
	Categories []Category `json:"categories" yaml:"categories" mapstructure:"categories" validate:"min=1,dive"`

	// CategoryKeywords maps a label to representative keywords used for
	// bootstrap data and category inference. Labels missing here fall back
	// to their own name.
	CategoryKeywords map[string][]string `json:"category_keywords" yaml:"category_keywords" mapstructure:"category_keywords"`
}

// StoreConfig holds settings for the SQLite store.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path" validate:"required"`
}

// ExportConfig holds settings for report export.
type ExportConfig struct {
	// Dir receives exported files.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir" validate:"required"`
}

// LoggingConfig selects the structured logger's level, format and output.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"omitempty,oneof=json console pretty"`

	// Output is stdout or stderr.
	Output string `json:"output" yaml:"output" mapstructure:"output" validate:"omitempty,oneof=stdout stderr"`
}

// Config is the full application configuration.
type Config struct {
	// DataDir is the root of papers/, keywords/, reports/, models/ and exports/.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir" validate:"required"`

	Crawl      CrawlConfig      `json:"crawl" yaml:"crawl" mapstructure:"crawl"`
	Keywords   KeywordConfig    `json:"keywords" yaml:"keywords" mapstructure:"keywords"`
	Classifier ClassifierConfig `json:"classifier" yaml:"classifier" mapstructure:"classifier"`
	Store      StoreConfig      `json:"store" yaml:"store" mapstructure:"store"`
	Export     ExportConfig     `json:"export" yaml:"export" mapstructure:"export"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging" mapstructure:"logging"`
}
