// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: anthropic-api-key, alphavantage-api-key, benzinga-api-key,
// internal-content-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/concierge-engine/pkg/types"
)

// Key file names recognized by Apply.
const (
	KeyAnthropic       = "anthropic-api-key"
	KeyAlphaVantage    = "alphavantage-api-key"
	KeyBenzinga        = "benzinga-api-key"
	KeyInternalContent = "internal-content-api-key"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply fills empty key fields in cfg from loaded secrets. Keys already set
// through configuration or environment are left alone.
func Apply(cfg *types.PipelineConfig, secrets map[string]string) {
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = secrets[KeyAnthropic]
	}
	if cfg.Provider.MarketDataAPIKey == "" {
		cfg.Provider.MarketDataAPIKey = secrets[KeyAlphaVantage]
	}
	if cfg.Provider.NewsAPIKey == "" {
		cfg.Provider.NewsAPIKey = secrets[KeyBenzinga]
	}
	if cfg.Provider.AnalystAPIKey == "" {
		cfg.Provider.AnalystAPIKey = secrets[KeyBenzinga]
	}
	if cfg.Provider.InternalContentAPIKey == "" {
		cfg.Provider.InternalContentAPIKey = secrets[KeyInternalContent]
	}
}
