package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-ppm/random"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ppmfilter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint32(1), cfg.Pointillism.Seed)
	assert.Equal(t, random.KindGlibc, cfg.Pointillism.Source)
	assert.Equal(t, LogFormatText, cfg.Log.Format)
	assert.False(t, cfg.Blur.Parallel)
}

func TestLoadMergesDefaults(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
pointillism:
  seed: 7
blur:
  parallel: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, LogFormatText, cfg.Log.Format, "unset keys keep defaults")
	assert.Equal(t, uint32(7), cfg.Pointillism.Seed)
	assert.Equal(t, random.KindGlibc, cfg.Pointillism.Source)
	assert.True(t, cfg.Blur.Parallel)
	assert.Equal(t, "lanczos", cfg.Resize.Filter)
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"format", "log:\n  format: xml\n"},
		{"source", "pointillism:\n  source: dev-urandom\n"},
		{"filter", "resize:\n  filter: box\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "log: [unterminated"))
	assert.Error(t, err)
}
