package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notastransf/notastransf/internal/model"
)

func TestFromEnv_MissingSheetID(t *testing.T) {
	t.Setenv(EnvSpreadsheetID, "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvSpreadsheetID)
}

func TestFromEnv_InlineCredentials(t *testing.T) {
	t.Setenv(EnvSpreadsheetID, "abc123")
	t.Setenv(EnvCredentials, `{"type":"service_account"}`)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "abc123", cfg.SpreadsheetID)
	assert.JSONEq(t, `{"type":"service_account"}`, string(cfg.Credentials))
}

func TestFromEnv_CredentialsFileFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600))

	t.Setenv(EnvSpreadsheetID, "abc123")
	t.Setenv(EnvCredentials, "")
	t.Setenv(EnvCredentialsFile, path)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Credentials)
}

func TestFromEnv_CredentialsUnreadable(t *testing.T) {
	t.Setenv(EnvSpreadsheetID, "abc123")
	t.Setenv(EnvCredentials, "")
	t.Setenv(EnvCredentialsFile, filepath.Join(t.TempDir(), "missing.json"))

	_, err := FromEnv()
	require.Error(t, err)
}

func TestPresets(t *testing.T) {
	p, err := Preset("pendencias")
	require.NoError(t, err)
	assert.Equal(t, 7, p.MinIssueDays)
	assert.False(t, p.KeepSentinel)
	assert.Equal(t, "info", p.Worksheets[model.BucketTransfer])
	assert.Equal(t, 1, p.Layout.Destination, "destination is a data column")

	tr, err := Preset("transferencias")
	require.NoError(t, err)
	assert.Zero(t, tr.MinIssueDays, "no cutoff in the consolidated report")
	assert.True(t, tr.KeepSentinel)
	assert.True(t, tr.Reconcile)
	assert.Equal(t, -1, tr.Layout.Destination, "destination comes from marker rows")

	_, err = Preset("nope")
	require.Error(t, err)
}

func TestOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	override := "min_issue_days: 3\nchunk_size: 100\nworksheets:\n  transfer: custom\n"
	require.NoError(t, os.WriteFile(path, []byte(override), 0o644))

	r := Pendencias()
	require.NoError(t, Overlay(path, &r))

	assert.Equal(t, 3, r.MinIssueDays)
	assert.Equal(t, 100, r.ChunkSize)
	assert.Equal(t, "custom", r.Worksheets[model.BucketTransfer])
	// Untouched keys keep preset values.
	assert.Equal(t, 10, r.UrgencyDays)
	assert.Equal(t, []string{".xls"}, r.Extensions)
}
