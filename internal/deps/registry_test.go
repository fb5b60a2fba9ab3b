package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cryodl/cryodl/internal/configstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	store := configstore.NewInMemory(path, configstore.DefaultDocument())
	return New(store)
}

// writeScript drops a file with the given mode and returns its path.
func writeScript(t *testing.T, dir, name string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), mode))
	return path
}

func TestValidateAbsentRecord(t *testing.T) {
	r := newTestRegistry(t)
	assert.False(t, r.Validate("no_such_tool"))
}

func TestValidateEmptyPath(t *testing.T) {
	r := newTestRegistry(t)
	// Supported tools start with empty paths in the default document.
	assert.False(t, r.Validate("topaz"))
}

func TestValidatePathStates(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	dir := t.TempDir()

	execPath := writeScript(t, dir, "topaz", 0o755)
	plainPath := writeScript(t, dir, "plain", 0o644)

	require.NoError(t, r.Update(ctx, "topaz", execPath, "0.2.5"))
	assert.True(t, r.Validate("topaz"))

	require.NoError(t, r.Update(ctx, "relion", plainPath, ""))
	assert.False(t, r.Validate("relion"), "non-executable file must not validate")

	require.NoError(t, r.Update(ctx, "eman2", filepath.Join(dir, "gone"), ""))
	assert.False(t, r.Validate("eman2"), "missing path must not validate")
}

func TestUpdateEnablesOnlyExistingPaths(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	dir := t.TempDir()
	execPath := writeScript(t, dir, "topaz", 0o755)

	require.NoError(t, r.Update(ctx, "topaz", execPath, "0.2.5"))
	require.NoError(t, r.Update(ctx, "relion", filepath.Join(dir, "missing"), "4.0"))
	require.NoError(t, r.Update(ctx, "cistem", "", ""))

	byName := make(map[string]Record)
	for _, rec := range r.List() {
		byName[rec.Name] = rec
	}
	assert.True(t, byName["topaz"].Enabled)
	assert.False(t, byName["relion"].Enabled)
	assert.False(t, byName["cistem"].Enabled)
	assert.Equal(t, "0.2.5", byName["topaz"].Version)
}

func TestListOrderIsStable(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	dir := t.TempDir()
	execPath := writeScript(t, dir, "tool", 0o755)

	// Two runtime additions after the fixed supported list.
	require.NoError(t, r.Update(ctx, "zz_custom", execPath, ""))
	require.NoError(t, r.Update(ctx, "aa_custom", execPath, ""))

	var names []string
	for _, rec := range r.List() {
		names = append(names, rec.Name)
	}
	want := append(append([]string{}, configstore.SupportedTools...), "zz_custom", "aa_custom")
	assert.Equal(t, want, names)
}

func TestEnabledFiltersDisabledRecords(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	dir := t.TempDir()
	execPath := writeScript(t, dir, "topaz", 0o755)

	require.NoError(t, r.Update(ctx, "topaz", execPath, ""))

	enabled := r.Enabled()
	require.Len(t, enabled, 1)
	assert.Equal(t, "topaz", enabled[0].Name)
}

func TestRequire(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	dir := t.TempDir()
	execPath := writeScript(t, dir, "topaz", 0o755)

	var invErr *InvalidError
	require.ErrorAs(t, r.Require("topaz"), &invErr)
	assert.Equal(t, "topaz", invErr.Name)

	require.NoError(t, r.Update(ctx, "topaz", execPath, ""))
	assert.NoError(t, r.Require("topaz"))
}
