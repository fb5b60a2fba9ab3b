package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cryodl/cryodl/internal/cv"
)

func (c *cli) newAnalyzeCVCmd() *cobra.Command {
	var nValues []int
	var kFolds int
	var reportDir string
	cmd := &cobra.Command{
		Use:   "analyze-cv <results-dir>",
		Short: "Aggregate k-fold training tables and recommend hyperparameters",
		Long:  "Reads one model_n{N}_fold{F}_training.txt table per sweep point under the\ngiven directory, averages test AUPRC across folds, and reports the best\n(N, epoch) pair. Summary and detail reports are written next to the data.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.app.Context()
			res, err := cv.Analyze(ctx, args[0], nValues, kFolds)
			if err != nil {
				return err
			}

			for _, inc := range res.Incomplete {
				fmt.Fprintf(c.errW, "warning: %v\n", inc)
			}
			fmt.Fprintln(c.outW, res.Summary)

			dir := reportDir
			if dir == "" {
				dir = args[0]
			}
			if err := cv.WriteReports(ctx, dir, res); err != nil {
				return err
			}
			fmt.Fprintf(c.outW, "Reports written to %s\n", dir)
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&nValues, "n", nil, "Particle counts of the sweep, e.g. --n 100,200,300.")
	cmd.Flags().IntVar(&kFolds, "k-folds", 5, "Fold count each (N, epoch) pair must reach to be ranked.")
	cmd.Flags().StringVar(&reportDir, "report-dir", "", "Directory for the report files. Defaults to the results directory.")
	cmd.MarkFlagRequired("n")
	return cmd
}
