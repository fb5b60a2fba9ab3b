package cv

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cryodl/cryodl/internal/ctxlog"
)

// Report file names, fixed so downstream notebooks can find them.
const (
	SummaryFileName         = "cv_analysis_summary.csv"
	DetailedFileName        = "cv_detailed_results.csv"
	RecommendationsFileName = "cv_recommendations.txt"
)

// WriteReports writes the analysis summary CSVs and the operator-facing
// recommendation text into dir. This is a side channel: nothing written here
// feeds back into the numeric result.
func WriteReports(ctx context.Context, dir string, res *Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	if err := writeMeanCSV(filepath.Join(dir, SummaryFileName), res.BestPerN); err != nil {
		return err
	}
	if err := writeMeanCSV(filepath.Join(dir, DetailedFileName), res.Means); err != nil {
		return err
	}
	if err := writeRecommendations(filepath.Join(dir, RecommendationsFileName), res); err != nil {
		return err
	}

	ctxlog.FromContext(ctx).Info("Analysis reports written.", "dir", dir)
	return nil
}

func writeMeanCSV(path string, rows []MeanRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"N", "epoch", "auprc", "folds"}); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.N),
			strconv.Itoa(r.Epoch),
			strconv.FormatFloat(r.AUPRC, 'f', 6, 64),
			strconv.Itoa(r.Folds),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func writeRecommendations(path string, res *Result) error {
	var sb strings.Builder
	sb.WriteString("Cross-validation Analysis Recommendations\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")
	fmt.Fprintf(&sb, "Best N value: %d\n", res.BestN)
	fmt.Fprintf(&sb, "Best number of epochs: %d\n", res.BestEpoch)
	fmt.Fprintf(&sb, "Best AUPRC: %.4f\n\n", res.BestAUPRC)
	sb.WriteString("Recommendation:\n")
	sb.WriteString(res.Summary + "\n")

	if len(res.Incomplete) > 0 {
		sb.WriteString("\nExcluded (incomplete fold sets):\n")
		for _, inc := range res.Incomplete {
			sb.WriteString("  " + inc.Error() + "\n")
		}
	}

	return os.WriteFile(path, []byte(sb.String()), 0o644)
}
