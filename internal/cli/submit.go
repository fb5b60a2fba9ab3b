package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cryodl/cryodl/internal/launch"
)

func (c *cli) newSubmitCmd() *cobra.Command {
	var local bool
	var tools []string
	cmd := &cobra.Command{
		Use:   "submit <script>",
		Short: "Submit a script to the scheduler, or run it locally",
		Long:  "By default the script is handed to sbatch and the acknowledged job id is\nreported. With --local the script runs as a direct subprocess and its\noutput streams to the console. Tools named with --requires are validated\nbefore anything is launched.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, tool := range tools {
				if err := c.app.Registry().Require(tool); err != nil {
					return err
				}
			}
			mode := launch.ModeBatch
			if local {
				mode = launch.ModeLocal
			}
			rec, err := c.app.Launcher().Submit(c.app.Context(), args[0], mode)
			if err != nil {
				return err
			}
			switch rec.Mode {
			case launch.ModeBatch:
				fmt.Fprintf(c.outW, "Submitted batch job %s\n", rec.JobID)
				fmt.Fprintf(c.outW, "Expected stdout: %s\n", rec.StdoutPath)
				fmt.Fprintf(c.outW, "Expected stderr: %s\n", rec.StderrPath)
			case launch.ModeLocal:
				fmt.Fprintf(c.outW, "Local run finished with exit code %d\n", rec.ExitCode)
				if rec.ExitCode != 0 {
					return &ExitError{Code: rec.ExitCode, Message: fmt.Sprintf("script exited with code %d", rec.ExitCode)}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "Run the script as a local subprocess instead of submitting it.")
	cmd.Flags().StringSliceVar(&tools, "requires", nil, "Tools the script invokes; each must be registered and executable.")
	return cmd
}
