package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_OverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pruner.yaml")
	data := []byte("max_depth: 40\nrecommendation:\n  min_shared_depth: 5\nthresholds:\n  main_text: 50\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 40, cfg.MaxDepth)
	assert.Equal(t, 5, cfg.Recommendation.MinSharedDepth)
	assert.Equal(t, 10, cfg.Recommendation.MinOutsideMainHits)
	assert.Equal(t, 50, cfg.Thresholds.MainText)
	assert.Equal(t, 20, cfg.Thresholds.MainTable)
	assert.Equal(t, 2000, cfg.FrameworkDataMaxChars)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_depth: [not, an, int"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}
