// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/medlit/pkg/types"
)

// Secret file names recognised in the secrets directory.
const (
	SecretPubMedAPIKey = "pubmed-api-key"
	SecretPubMedEmail  = "pubmed-email"
)

// DefaultSecretsDir is the directory read at startup.
const DefaultSecretsDir = ".secrets"

// LoadSecrets reads every regular, non-hidden file in dir and returns a map
// of file name to trimmed contents. A missing directory yields an empty map.
// Unreadable files are logged and skipped.
func LoadSecrets(dir string, logger zerolog.Logger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn().Err(err).Str("secret", name).Msg("could not read secret")
			continue
		}
		if v := strings.TrimSpace(string(data)); v != "" {
			out[name] = v
		}
	}
	return out, nil
}

// ApplySecrets fills blank PubMed credentials from s. Values already set
// by the config file or environment win.
func ApplySecrets(cfg *types.Config, s map[string]string) {
	if cfg.Crawl.PubMed.APIKey == "" {
		cfg.Crawl.PubMed.APIKey = s[SecretPubMedAPIKey]
	}
	if cfg.Crawl.PubMed.Email == "" {
		cfg.Crawl.PubMed.Email = s[SecretPubMedEmail]
	}
}
