package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) newFastaCmd() *cobra.Command {
	var outFile string
	cmd := &cobra.Command{
		Use:   "fasta <id>...",
		Short: "Fetch sequences by PDB or UniProt id into a multi-FASTA file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			written, errs := c.app.Fasta().BuildFile(c.app.Context(), args, outFile)
			for _, err := range errs {
				fmt.Fprintf(c.errW, "warning: %v\n", err)
			}
			if written == 0 {
				return fmt.Errorf("no sequences could be retrieved")
			}
			fmt.Fprintf(c.outW, "Wrote %d sequence(s) to %s\n", written, outFile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outFile, "output", "o", "sequences.fasta", "Output multi-FASTA file.")
	return cmd
}
