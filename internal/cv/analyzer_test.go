package cv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTable writes a training table for (n, fold) with the given epoch:auprc
// test rows, interleaving train-split rows the analyzer must ignore.
func writeTable(t *testing.T, dir string, n, fold int, epochs map[int]float64) {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("epoch\titer\tsplit\tprecision\tauprc\n")
	for epoch, auprc := range epochs {
		fmt.Fprintf(&sb, "%d\t1000\ttrain\t0.5\t%f\n", epoch, auprc/2)
		fmt.Fprintf(&sb, "%d\t1000\ttest\t0.5\t%f\n", epoch, auprc)
	}
	path := filepath.Join(dir, TableFileName(n, fold))
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
}

func TestAnalyzeMeansAndBestEpoch(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, 300, 0, map[int]float64{1: 0.5, 2: 0.8})
	writeTable(t, dir, 300, 1, map[int]float64{1: 0.6, 2: 0.7})
	writeTable(t, dir, 300, 2, map[int]float64{1: 0.4, 2: 0.9})

	res, err := Analyze(context.Background(), dir, []int{300}, 3)
	require.NoError(t, err)

	require.Len(t, res.Means, 2)
	assert.Equal(t, 1, res.Means[0].Epoch)
	assert.InDelta(t, 0.5, res.Means[0].AUPRC, 1e-9)
	assert.Equal(t, 2, res.Means[1].Epoch)
	assert.InDelta(t, 0.8, res.Means[1].AUPRC, 1e-9)

	assert.Equal(t, 300, res.BestN)
	assert.Equal(t, 2, res.BestEpoch)
	assert.InDelta(t, 0.8, res.BestAUPRC, 1e-9)
	assert.Empty(t, res.Incomplete)
}

func TestAnalyzeTieBreakPrefersSmallerEpoch(t *testing.T) {
	dir := t.TempDir()
	// Both epochs mean to exactly 0.8.
	writeTable(t, dir, 300, 0, map[int]float64{3: 0.8, 7: 0.9})
	writeTable(t, dir, 300, 1, map[int]float64{3: 0.8, 7: 0.7})

	res, err := Analyze(context.Background(), dir, []int{300}, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, res.BestEpoch)
	assert.InDelta(t, 0.8, res.BestAUPRC, 1e-9)
}

func TestAnalyzeTieBreakAcrossNPrefersSmallerN(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, 250, 0, map[int]float64{5: 0.8})
	writeTable(t, dir, 400, 0, map[int]float64{2: 0.8})

	res, err := Analyze(context.Background(), dir, []int{400, 250}, 1)
	require.NoError(t, err)
	assert.Equal(t, 250, res.BestN)
	assert.Equal(t, 5, res.BestEpoch)
}

func TestAnalyzeIncompleteFoldExcludedButOthersAggregate(t *testing.T) {
	dir := t.TempDir()
	// Epoch 3 for N=400 appears in 4 of 5 folds; epoch 1 in all 5.
	for fold := 0; fold < 5; fold++ {
		epochs := map[int]float64{1: 0.6}
		if fold != 4 {
			epochs[3] = 0.95
		}
		writeTable(t, dir, 400, fold, epochs)
	}

	res, err := Analyze(context.Background(), dir, []int{400}, 5)
	require.NoError(t, err)

	require.Len(t, res.Incomplete, 1)
	assert.Equal(t, 400, res.Incomplete[0].N)
	assert.Equal(t, 3, res.Incomplete[0].Epoch)
	assert.Equal(t, 4, res.Incomplete[0].Have)

	// The incomplete pair must not win despite its higher raw mean.
	assert.Equal(t, 1, res.BestEpoch)
	assert.InDelta(t, 0.6, res.BestAUPRC, 1e-9)
}

func TestAnalyzeMissingFileIsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, 100, 0, map[int]float64{1: 0.6})
	writeTable(t, dir, 100, 1, map[int]float64{1: 0.6})
	writeTable(t, dir, 300, 0, map[int]float64{1: 0.7})
	// fold 1's table for N=300 never written

	res, err := Analyze(context.Background(), dir, []int{100, 300}, 2)
	require.NoError(t, err)
	// The N=300 pair is incomplete and excluded; the complete N=100 sweep
	// still yields the recommendation.
	require.Len(t, res.Incomplete, 1)
	assert.Equal(t, 300, res.Incomplete[0].N)
	assert.Equal(t, 100, res.BestN)
	assert.Equal(t, 1, res.BestEpoch)
}

func TestAnalyzeRefusesToRecommendWithoutCompletePairs(t *testing.T) {
	dir := t.TempDir()
	// A single fold of a five-fold sweep: rows exist, but nothing to rank.
	writeTable(t, dir, 300, 0, map[int]float64{1: 0.7, 2: 0.8})

	res, err := Analyze(context.Background(), dir, []int{300}, 5)
	require.ErrorIs(t, err, ErrNoCompletePairs)
	assert.Nil(t, res)
	assert.NotContains(t, err.Error(), "N=0")
}

func TestAnalyzeNoResults(t *testing.T) {
	dir := t.TempDir()
	_, err := Analyze(context.Background(), dir, []int{300}, 2)
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestAnalyzeMissingDirectory(t *testing.T) {
	_, err := Analyze(context.Background(), filepath.Join(t.TempDir(), "nope"), []int{300}, 2)
	assert.Error(t, err)
}

func TestDuplicateEpochFailsAnalysis(t *testing.T) {
	dir := t.TempDir()
	table := "epoch\tsplit\tauprc\n" +
		"1\ttest\t0.5\n" +
		"1\ttest\t0.6\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, TableFileName(300, 0)), []byte(table), 0o644))

	_, err := Analyze(context.Background(), dir, []int{300}, 1)
	var dupErr *DuplicateEpochError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, 1, dupErr.Epoch)
	assert.Equal(t, 300, dupErr.N)
}

func TestWriteReports(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, 300, 0, map[int]float64{1: 0.5, 2: 0.8})
	writeTable(t, dir, 300, 1, map[int]float64{1: 0.7, 2: 0.8})

	res, err := Analyze(context.Background(), dir, []int{300}, 2)
	require.NoError(t, err)

	out := filepath.Join(dir, "analysis")
	require.NoError(t, WriteReports(context.Background(), out, res))

	summary, err := os.ReadFile(filepath.Join(out, SummaryFileName))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "N,epoch,auprc,folds")
	assert.Contains(t, string(summary), "300,2,0.800000,2")

	recs, err := os.ReadFile(filepath.Join(out, RecommendationsFileName))
	require.NoError(t, err)
	assert.Contains(t, string(recs), "Best N value: 300")
	assert.Contains(t, string(recs), "Best number of epochs: 2")

	_, err = os.Stat(filepath.Join(out, DetailedFileName))
	assert.NoError(t, err)
}
