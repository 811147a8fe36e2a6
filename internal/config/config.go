// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config assembles types.Config from defaults, an optional YAML
// file, a .env file, MEDLIT_* environment variables and the secrets
// directory, then validates it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pdiddy/medlit/pkg/types"
)

// EnvPrefix prefixes every environment override, e.g. MEDLIT_STORE_PATH.
const EnvPrefix = "MEDLIT"

// ConfigName is the config file base name searched in . and ~/.config/medlit.
const ConfigName = "medlit"

// DataSubdirs are created under DataDir by EnsureDirs.
var DataSubdirs = []string{"papers", "keywords", "reports", "models", "exports"}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env")
// into the process environment. Missing files are ignored; variables that
// are already set are not overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Prepare registers defaults and environment binding on v and points it at
// cfgFile, or at the default search path when cfgFile is empty.
func Prepare(v *viper.Viper, cfgFile string) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", ConfigName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// ReadFile reads the configured file into v. A missing file is not an error.
func ReadFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}

// Load unmarshals v into a Config, fills list defaults and secrets, and
// validates the result.
func Load(v *viper.Viper, secrets map[string]string) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	applyFallbacks(&cfg)
	ApplySecrets(&cfg, secrets)

	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")

	v.SetDefault("crawl.timeout", 30*time.Second)
	v.SetDefault("crawl.user_agent", "MedLitAgent/1.0 (Medical Literature Crawler)")
	v.SetDefault("crawl.crawl_delay", time.Second)
	v.SetDefault("crawl.max_papers_per_query", 1000)
	v.SetDefault("crawl.workers", 3)

	v.SetDefault("crawl.pubmed.enabled", true)
	v.SetDefault("crawl.pubmed.base_url", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")
	v.SetDefault("crawl.pubmed.api_key", "")
	v.SetDefault("crawl.pubmed.email", "")
	v.SetDefault("crawl.pubmed.batch_size", 200)

	v.SetDefault("crawl.arxiv.enabled", true)
	v.SetDefault("crawl.arxiv.base_url", "http://export.arxiv.org/api/query")
	v.SetDefault("crawl.arxiv.categories", []string{"q-bio", "physics.med-ph"})

	v.SetDefault("keywords.dictionary_file", "")
	v.SetDefault("keywords.max_keywords", 20)

	v.SetDefault("classifier.model_dir", filepath.Join("data", "models"))

	v.SetDefault("store.path", "medlit.db")
	v.SetDefault("export.dir", filepath.Join("data", "exports"))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
}

// applyFallbacks fills structured defaults that viper cannot express as
// scalar keys.
func applyFallbacks(cfg *types.Config) {
	if len(cfg.Classifier.Categories) == 0 {
		cfg.Classifier.Categories = types.DefaultCategories()
	}
	if len(cfg.Classifier.CategoryKeywords) == 0 {
		cfg.Classifier.CategoryKeywords = types.DefaultCategoryKeywords()
	}
}

// Validate checks cfg against its struct tags.
func Validate(cfg types.Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// EnsureDirs creates DataDir and its standard subdirectories, the model
// directory and the export directory.
func EnsureDirs(cfg types.Config) error {
	dirs := []string{cfg.Classifier.ModelDir, cfg.Export.Dir}
	for _, sub := range DataSubdirs {
		dirs = append(dirs, filepath.Join(cfg.DataDir, sub))
	}
	for _, d := range dirs {
		if d == "" {
			continue
		}
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", d, err)
		}
	}
	return nil
}
