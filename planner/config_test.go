package planner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_MatchesSpecDefaults(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, 100, cfg.MaxStates)
	require.Equal(t, 1.0, cfg.LowerBoundLogFloor)
	require.Equal(t, 0.1, cfg.DefaultDensity)
}

func TestLoadConfig_OverridesOnlyDeclaredFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_states: 250\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 250, cfg.MaxStates)
	require.Equal(t, 1.0, cfg.LowerBoundLogFloor)
	require.Equal(t, 0.1, cfg.DefaultDensity)
}

func TestLoadConfig_MissingFileReturnsError(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
