package app

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigRequiresPath(t *testing.T) {
	_, err := NewConfig(Config{})
	assert.Error(t, err)

	cfg, err := NewConfig(Config{ConfigPath: "config.json"})
	require.NoError(t, err)
	assert.Equal(t, "config.json", cfg.ConfigPath)
}

func TestNewAppOpensDefaultStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg, err := NewConfig(Config{ConfigPath: path, LogLevel: "error"})
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	a, err := NewApp(&out, &errOut, cfg)
	require.NoError(t, err)

	assert.True(t, a.Store().Document().HasSection("project_info"))
	assert.NotNil(t, a.Registry())
	assert.NotNil(t, a.Slurm())
	assert.NotNil(t, a.Launcher())
	assert.NotNil(t, a.Fasta())
}

func TestApplyEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg, err := NewConfig(Config{ConfigPath: path, LogLevel: "error"})
	require.NoError(t, err)

	t.Setenv("CRYODL_API_KEY_PDB", "secret-token")

	var out, errOut bytes.Buffer
	a, err := NewApp(&out, &errOut, cfg)
	require.NoError(t, err)

	got, err := a.Store().Document().GetString("api_keys.pdb", "")
	require.NoError(t, err)
	assert.Equal(t, "secret-token", got)
}
