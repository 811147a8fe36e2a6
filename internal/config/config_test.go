// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/medlit/pkg/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func load(t *testing.T, cfgFile string, secrets map[string]string) (types.Config, error) {
	t.Helper()
	v := viper.New()
	Prepare(v, cfgFile)
	require.NoError(t, ReadFile(v))
	return Load(v, secrets)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "medlit.db", cfg.Store.Path)
	assert.Equal(t, time.Second, cfg.Crawl.CrawlDelay)
	assert.Equal(t, 1000, cfg.Crawl.MaxPapersPerQuery)
	assert.Equal(t, 3, cfg.Crawl.Workers)
	assert.Equal(t, "MedLitAgent/1.0 (Medical Literature Crawler)", cfg.Crawl.UserAgent)
	assert.Equal(t, []string{"q-bio", "physics.med-ph"}, cfg.Crawl.Arxiv.Categories)
	assert.Equal(t, 200, cfg.Crawl.PubMed.BatchSize)
	assert.Equal(t, 20, cfg.Keywords.MaxKeywords)
	assert.Len(t, cfg.Classifier.Categories, 15)
	assert.Equal(t, "cardiology", cfg.Classifier.Categories[0].Name)
	assert.Contains(t, cfg.Classifier.CategoryKeywords, "oncology")
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "medlit.yaml", `
data_dir: /tmp/medlit
crawl:
  crawl_delay: 250ms
  workers: 5
  arxiv:
    categories: [q-bio.GN]
classifier:
  categories:
    - name: oncology
      display_name: Oncology
    - name: cardiology
      display_name: Cardiology
`)
	t.Setenv("MEDLIT_STORE_PATH", "/tmp/env.db")

	cfg, err := load(t, path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/medlit", cfg.DataDir)
	assert.Equal(t, 250*time.Millisecond, cfg.Crawl.CrawlDelay)
	assert.Equal(t, 5, cfg.Crawl.Workers)
	assert.Equal(t, []string{"q-bio.GN"}, cfg.Crawl.Arxiv.Categories)
	assert.Equal(t, "/tmp/env.db", cfg.Store.Path)
	require.Len(t, cfg.Classifier.Categories, 2)
	assert.Equal(t, "Oncology", cfg.Classifier.Categories[0].DisplayName)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "medlit.yaml", "crawl:\n  workers: 0\nlogging:\n  level: loud\n")

	_, err := load(t, path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Workers")
	assert.Contains(t, err.Error(), "Level")
}

func TestLoad_SecretsFillBlanks(t *testing.T) {
	cfg, err := load(t, filepath.Join(t.TempDir(), "absent.yaml"), map[string]string{
		SecretPubMedAPIKey: "abc123",
		SecretPubMedEmail:  "me@example.org",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc123", cfg.Crawl.PubMed.APIKey)
	assert.Equal(t, "me@example.org", cfg.Crawl.PubMed.Email)
}

func TestApplySecrets_ConfigWins(t *testing.T) {
	cfg := types.Config{}
	cfg.Crawl.PubMed.APIKey = "from-config"
	ApplySecrets(&cfg, map[string]string{SecretPubMedAPIKey: "from-file"})
	assert.Equal(t, "from-config", cfg.Crawl.PubMed.APIKey)
}

func TestLoadSecrets(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, SecretPubMedAPIKey, "  key_abc  \n")
				writeFile(t, dir, SecretPubMedEmail, "user@example.com\n")
				return dir
			},
			want: map[string]string{
				SecretPubMedAPIKey: "key_abc",
				SecretPubMedEmail:  "user@example.com",
			},
		},
		{
			name: "missing directory is empty",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope")
			},
			want: map[string]string{},
		},
		{
			name: "skips dotfiles, blanks and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, "blank", "  \n")
				writeFile(t, dir, SecretPubMedAPIKey, "k")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
				return dir
			},
			want: map[string]string{SecretPubMedAPIKey: "k"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadSecrets(tt.setup(t), zerolog.Nop())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, t.TempDir(), ".env", "MEDLIT_TEST_DOTENV=hello\n")
	t.Setenv("MEDLIT_TEST_DOTENV", "")
	os.Unsetenv("MEDLIT_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "hello", os.Getenv("MEDLIT_TEST_DOTENV"))
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	cfg := types.Config{DataDir: filepath.Join(root, "data")}
	cfg.Classifier.ModelDir = filepath.Join(root, "models")
	cfg.Export.Dir = filepath.Join(root, "out")

	require.NoError(t, EnsureDirs(cfg))
	for _, sub := range DataSubdirs {
		assert.DirExists(t, filepath.Join(root, "data", sub))
	}
	assert.DirExists(t, cfg.Classifier.ModelDir)
	assert.DirExists(t, cfg.Export.Dir)
}
