// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package profile loads customer profiles from disk. Production deployments
// put a real profile service behind the same interface; the file source is
// what the CLI and tests run against.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/concierge-engine/pkg/types"
)

// FileSource reads one profile per customer from dir/<customer_id>.yaml,
// falling back to dir/<customer_id>.json.
type FileSource struct {
	dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Load reads and decodes the profile for one customer.
func (f *FileSource) Load(_ context.Context, customerID string) (types.Profile, error) {
	if customerID == "" {
		return types.Profile{}, types.ErrMissingIdentifier
	}

	yamlPath := filepath.Join(f.dir, customerID+".yaml")
	if data, err := os.ReadFile(yamlPath); err == nil {
		var p types.Profile
		if err := yaml.Unmarshal(data, &p); err != nil {
			return types.Profile{}, fmt.Errorf("parsing %s: %w", yamlPath, err)
		}
		return p, nil
	}

	jsonPath := filepath.Join(f.dir, customerID+".json")
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return types.Profile{}, fmt.Errorf("no profile for customer %s in %s: %w", customerID, f.dir, err)
	}
	var p types.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return types.Profile{}, fmt.Errorf("parsing %s: %w", jsonPath, err)
	}
	return p, nil
}

// ReadFile decodes a profile from an explicit path, YAML or JSON by
// extension. Used by the CLI's one-shot mode.
func ReadFile(path string) (types.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Profile{}, fmt.Errorf("reading profile %s: %w", path, err)
	}

	var p types.Profile
	switch filepath.Ext(path) {
	case ".json":
		err = json.Unmarshal(data, &p)
	default:
		err = yaml.Unmarshal(data, &p)
	}
	if err != nil {
		return types.Profile{}, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return p, nil
}
