package slurm

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cryodl/cryodl/internal/configstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	return New(configstore.NewInMemory(path, configstore.DefaultDocument()))
}

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

func TestRenderDefaultHeader(t *testing.T) {
	b := newTestBuilder(t)

	header, err := b.Render(Overrides{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(header, "\n"), "\n")
	want := []string{
		"#!/bin/bash",
		"#SBATCH --job-name=cryodl_job",
		"#SBATCH --output=%x_%j.out",
		"#SBATCH --error=%x_%j.err",
		"#SBATCH --time=12:00:00",
		"#SBATCH --nodes=1",
		"#SBATCH --ntasks=1",
		"#SBATCH --cpus-per-task=4",
		"#SBATCH --gres=gpu:1",
		"#SBATCH --mem=32G",
		"#SBATCH --partition=gpu",
	}
	assert.Equal(t, want, lines)
}

func TestRenderOverrides(t *testing.T) {
	b := newTestBuilder(t)

	header, err := b.Render(Overrides{
		JobName: strp("pick_run"),
		GresGPU: intp(0),
		Qos:     strp("high"),
		Account: strp("cryo-lab"),
		Time:    strp("02:30:00"),
	})
	require.NoError(t, err)

	assert.Contains(t, header, "#SBATCH --job-name=pick_run\n")
	assert.Contains(t, header, "#SBATCH --time=02:30:00\n")
	assert.Contains(t, header, "#SBATCH --qos=high\n")
	assert.Contains(t, header, "#SBATCH --account=cryo-lab\n")
	assert.NotContains(t, header, "--gres", "gpu line must vanish when the count is zero")
}

func TestRenderDirectiveOrderIsInvariant(t *testing.T) {
	b := newTestBuilder(t)

	// Two renders supplying the same overrides through differently-ordered
	// struct literals must produce identical text.
	a, err := b.Render(Overrides{Mem: strp("8G"), Nodes: intp(3), JobName: strp("x")})
	require.NoError(t, err)
	c, err := b.Render(Overrides{JobName: strp("x"), Nodes: intp(3), Mem: strp("8G")})
	require.NoError(t, err)
	assert.Equal(t, a, c)

	idx := func(s, sub string) int { return strings.Index(s, sub) }
	assert.Less(t, idx(a, "--job-name"), idx(a, "--output"))
	assert.Less(t, idx(a, "--output"), idx(a, "--error"))
	assert.Less(t, idx(a, "--error"), idx(a, "--time"))
	assert.Less(t, idx(a, "--time"), idx(a, "--nodes"))
	assert.Less(t, idx(a, "--nodes"), idx(a, "--ntasks"))
	assert.Less(t, idx(a, "--ntasks"), idx(a, "--cpus-per-task"))
	assert.Less(t, idx(a, "--cpus-per-task"), idx(a, "--mem"))
	assert.Less(t, idx(a, "--mem"), idx(a, "--partition"))
}

func TestRenderDoesNotMutateDefaults(t *testing.T) {
	b := newTestBuilder(t)

	_, err := b.Render(Overrides{Nodes: intp(9)})
	require.NoError(t, err)

	p, err := b.Defaults()
	require.NoError(t, err)
	assert.Equal(t, 1, p.Nodes, "a one-off render must not touch the baseline")
}

func TestUpdateDefaultsChangesBaseline(t *testing.T) {
	ctx := context.Background()
	b := newTestBuilder(t)

	require.NoError(t, b.UpdateDefaults(ctx, Overrides{Partition: strp("a100"), Nodes: intp(2)}))

	header, err := b.Render(Overrides{})
	require.NoError(t, err)
	assert.Contains(t, header, "#SBATCH --partition=a100\n")
	assert.Contains(t, header, "#SBATCH --nodes=2\n")

	// Untouched fields keep their previous defaults.
	assert.Contains(t, header, "#SBATCH --mem=32G\n")
}
