// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/concierge-engine/pkg/types"
)

const yamlProfile = `identity:
  customer_id: cust-001
  full_name: Jordan Example
  experience_level: intermediate
wealth:
  total_investable_assets: 400000
holdings:
  - name: Apple Inc.
    ticker: AAPL
    current_market_value: 50000
`

const jsonProfile = `{
  "identity": {"customer_id": "cust-002", "experience_level": "beginner"},
  "wealth": {"total_investable_assets": 15000}
}`

func writeProfile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFileSource_LoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "cust-001.yaml", yamlProfile)

	p, err := NewFileSource(dir).Load(context.Background(), "cust-001")
	require.NoError(t, err)

	assert.Equal(t, "cust-001", p.Identity.CustomerID)
	assert.Equal(t, types.ExperienceIntermediate, p.Identity.ExperienceLevel)
	assert.Equal(t, 400000.0, p.Wealth.TotalInvestableAssets)
	require.Len(t, p.Holdings, 1)
	assert.Equal(t, "AAPL", p.Holdings[0].Ticker)
	assert.Equal(t, 50000.0, p.Holdings[0].MarketValue)
}

func TestFileSource_FallsBackToJSON(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "cust-002.json", jsonProfile)

	p, err := NewFileSource(dir).Load(context.Background(), "cust-002")
	require.NoError(t, err)
	assert.Equal(t, "cust-002", p.Identity.CustomerID)
	assert.Equal(t, 15000.0, p.Wealth.TotalInvestableAssets)
}

func TestFileSource_YAMLWinsOverJSON(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "cust-001.yaml", yamlProfile)
	writeProfile(t, dir, "cust-001.json", `{"identity": {"customer_id": "wrong"}}`)

	p, err := NewFileSource(dir).Load(context.Background(), "cust-001")
	require.NoError(t, err)
	assert.Equal(t, "cust-001", p.Identity.CustomerID)
}

func TestFileSource_MissingCustomer(t *testing.T) {
	_, err := NewFileSource(t.TempDir()).Load(context.Background(), "nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nobody")
}

func TestFileSource_EmptyID(t *testing.T) {
	_, err := NewFileSource(t.TempDir()).Load(context.Background(), "")
	assert.ErrorIs(t, err, types.ErrMissingIdentifier)
}

func TestFileSource_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "cust-003.yaml", "identity: [not a mapping")

	_, err := NewFileSource(dir).Load(context.Background(), "cust-003")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "snapshot.yaml", yamlProfile)
	writeProfile(t, dir, "snapshot.json", jsonProfile)

	p, err := ReadFile(filepath.Join(dir, "snapshot.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "cust-001", p.Identity.CustomerID)

	p, err = ReadFile(filepath.Join(dir, "snapshot.json"))
	require.NoError(t, err)
	assert.Equal(t, "cust-002", p.Identity.CustomerID)

	_, err = ReadFile(filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
}
