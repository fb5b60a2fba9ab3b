package cv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// FoldRow is one validation measurement: the AUPRC a model trained with a
// given N reached at a given epoch, measured on one held-out fold.
type FoldRow struct {
	N     int
	Fold  int
	Epoch int
	AUPRC float64
}

// DuplicateEpochError reports a training table carrying the same epoch twice
// for one (N, fold) combination. Duplicates are a data-quality failure and
// are never silently collapsed.
type DuplicateEpochError struct {
	Path  string
	N     int
	Fold  int
	Epoch int
}

func (e *DuplicateEpochError) Error() string {
	return fmt.Sprintf("%s: duplicate epoch %d for N=%d fold=%d", e.Path, e.Epoch, e.N, e.Fold)
}

// readTrainingTable parses one tab-separated Topaz training table and keeps
// only the held-out ("test") split rows. The header must name the epoch,
// split, and auprc columns; everything else in the table is ignored.
func readTrainingTable(path string, n, fold int) ([]FoldRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: reading header: %w", path, err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{"epoch", "split", "auprc"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", path, required)
		}
	}

	var rows []FoldRow
	seen := map[int]bool{}
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: reading row: %w", path, err)
		}
		line++
		if cols["split"] >= len(record) || record[cols["split"]] != "test" {
			continue
		}
		epoch, err := strconv.Atoi(record[cols["epoch"]])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad epoch: %w", path, line, err)
		}
		auprc, err := strconv.ParseFloat(record[cols["auprc"]], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad auprc: %w", path, line, err)
		}
		if seen[epoch] {
			return nil, &DuplicateEpochError{Path: path, N: n, Fold: fold, Epoch: epoch}
		}
		seen[epoch] = true
		rows = append(rows, FoldRow{N: n, Fold: fold, Epoch: epoch, AUPRC: auprc})
	}
	return rows, nil
}
