// Package cv aggregates cross-validation training results and selects a
// recommended (N, epoch) operating point for the particle picker.
package cv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cryodl/cryodl/internal/ctxlog"
)

// ErrNoResults reports a cross-validation directory that yielded no usable
// validation rows at all.
var ErrNoResults = errors.New("no cross-validation results found")

// ErrNoCompletePairs reports a run where rows were read but every (N, epoch)
// pair fell short of the configured fold count. There is nothing sound to
// recommend from such a sweep, so no recommendation is produced.
var ErrNoCompletePairs = errors.New("no (N, epoch) pair reached the configured fold count")

// IncompleteFoldError reports an (N, epoch) pair backed by fewer than the
// configured number of folds. An incomplete fold set would bias the mean, so
// the pair is excluded from selection rather than averaged over what exists.
type IncompleteFoldError struct {
	N      int
	Epoch  int
	Have   int
	KFolds int
}

func (e *IncompleteFoldError) Error() string {
	return fmt.Sprintf("N=%d epoch=%d: only %d of %d folds present", e.N, e.Epoch, e.Have, e.KFolds)
}

// MeanRow is the fold-averaged AUPRC for one (N, epoch) pair.
type MeanRow struct {
	N     int
	Epoch int
	AUPRC float64
	Folds int
}

// Result is the full analyzer output. The numeric recommendation depends
// only on Rows; report writing and any plotting are side channels.
type Result struct {
	Rows       []FoldRow             // every validation row that was read
	Means      []MeanRow             // fold-averaged, complete pairs only
	BestPerN   []MeanRow             // best epoch for each N
	BestN      int
	BestEpoch  int
	BestAUPRC  float64
	Incomplete []*IncompleteFoldError // reported pairs excluded from selection
	Summary    string                 // textual recommendation
}

// Analyze reads one training table per (N, fold) under rootDir and selects
// the recommended hyperparameters. A missing table file is logged and
// skipped, matching the job layout's tolerance for partially finished sweeps;
// an unparseable one fails the analysis, and a sweep where no pair completes
// its folds fails with ErrNoCompletePairs.
//
// Selection: mean AUPRC per (N, epoch) across the k folds, best epoch per N
// by maximum mean, overall best across Ns. Ties prefer the smaller epoch
// (earlier convergence, less overfitting risk) and then the smaller N.
func Analyze(ctx context.Context, rootDir string, nValues []int, kFolds int) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	if _, err := os.Stat(rootDir); err != nil {
		return nil, fmt.Errorf("cross-validation directory: %w", err)
	}

	sorted := append([]int(nil), nValues...)
	sort.Ints(sorted)

	var rows []FoldRow
	for _, n := range sorted {
		for fold := 0; fold < kFolds; fold++ {
			path := filepath.Join(rootDir, TableFileName(n, fold))
			fileRows, err := readTrainingTable(path, n, fold)
			if err != nil {
				if os.IsNotExist(err) {
					logger.Warn("Training table not found, skipping.", "path", path)
					continue
				}
				return nil, err
			}
			logger.Debug("Loaded training table.", "n", n, "fold", fold, "rows", len(fileRows))
			rows = append(rows, fileRows...)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoResults, rootDir)
	}

	res := aggregate(rows, sorted, kFolds)
	for _, inc := range res.Incomplete {
		logger.Warn("Incomplete fold set for pair, excluded from selection.",
			"n", inc.N, "epoch", inc.Epoch, "have", inc.Have, "k_folds", inc.KFolds)
	}
	if len(res.Means) == 0 {
		return nil, fmt.Errorf("%w: %d incomplete pair(s) in %s", ErrNoCompletePairs, len(res.Incomplete), rootDir)
	}
	logger.Info("Cross-validation analysis complete.",
		"best_n", res.BestN, "best_epoch", res.BestEpoch, "best_auprc", res.BestAUPRC)
	return res, nil
}

// TableFileName is the fixed naming convention the training jobs write.
func TableFileName(n, fold int) string {
	return fmt.Sprintf("model_n%d_fold%d_training.txt", n, fold)
}

type pairKey struct{ n, epoch int }

// aggregate performs the pure numeric part of the analysis. nValues must be
// sorted ascending so the first-strictly-better scans below realise the
// smaller-epoch and smaller-N tie-breaks.
func aggregate(rows []FoldRow, nValues []int, kFolds int) *Result {
	res := &Result{Rows: rows}

	sums := map[pairKey]float64{}
	counts := map[pairKey]int{}
	for _, row := range rows {
		k := pairKey{row.N, row.Epoch}
		sums[k] += row.AUPRC
		counts[k]++
	}

	keys := make([]pairKey, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].n != keys[j].n {
			return keys[i].n < keys[j].n
		}
		return keys[i].epoch < keys[j].epoch
	})

	for _, k := range keys {
		if counts[k] < kFolds {
			res.Incomplete = append(res.Incomplete, &IncompleteFoldError{
				N: k.n, Epoch: k.epoch, Have: counts[k], KFolds: kFolds,
			})
			continue
		}
		res.Means = append(res.Means, MeanRow{
			N:     k.n,
			Epoch: k.epoch,
			AUPRC: sums[k] / float64(counts[k]),
			Folds: counts[k],
		})
	}

	// Best epoch per N. Means is sorted by (N, epoch), so keeping the first
	// strictly-better row implements the smaller-epoch tie-break.
	bestByN := map[int]MeanRow{}
	for _, m := range res.Means {
		cur, ok := bestByN[m.N]
		if !ok || m.AUPRC > cur.AUPRC {
			bestByN[m.N] = m
		}
	}
	for _, n := range nValues {
		if m, ok := bestByN[n]; ok {
			res.BestPerN = append(res.BestPerN, m)
		}
	}

	// Overall best across Ns; BestPerN follows nValues order, so the first
	// strictly-better row also implements the smaller-N tie-break.
	first := true
	for _, m := range res.BestPerN {
		if first || m.AUPRC > res.BestAUPRC {
			res.BestN, res.BestEpoch, res.BestAUPRC = m.N, m.Epoch, m.AUPRC
			first = false
		}
	}

	// With no complete pair there is nothing to recommend; the Summary stays
	// empty and Analyze refuses the result.
	if len(res.BestPerN) > 0 {
		res.Summary = fmt.Sprintf(
			"Train with N=%d for at least %d epochs (mean AUPRC %.4f). "+
				"Performance may continue to improve with longer training.",
			res.BestN, res.BestEpoch, res.BestAUPRC)
	}
	return res
}
