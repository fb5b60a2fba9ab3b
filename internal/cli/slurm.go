package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cryodl/cryodl/internal/slurm"
)

// slurmFlags declares one flag per header parameter. Only flags the user
// actually passed become overrides; everything else keeps the stored default.
type slurmFlags struct {
	jobName     string
	nodes       int
	ntasks      int
	cpusPerTask int
	gresGPU     int
	time        string
	mem         string
	partition   string
	qos         string
	account     string
	output      string
	errFile     string
}

func (f *slurmFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.jobName, "job-name", "", "Job name.")
	fs.IntVar(&f.nodes, "nodes", 0, "Node count.")
	fs.IntVar(&f.ntasks, "ntasks", 0, "Task count.")
	fs.IntVar(&f.cpusPerTask, "cpus-per-task", 0, "CPUs per task.")
	fs.IntVar(&f.gresGPU, "gpus", 0, "GPU count for the gres directive. 0 omits it.")
	fs.StringVar(&f.time, "time", "", "Wall time limit, e.g. 12:00:00.")
	fs.StringVar(&f.mem, "mem", "", "Memory request, e.g. 32G.")
	fs.StringVar(&f.partition, "partition", "", "Partition name.")
	fs.StringVar(&f.qos, "qos", "", "Quality of service.")
	fs.StringVar(&f.account, "account", "", "Charge account.")
	fs.StringVar(&f.output, "output", "", "Stdout file pattern, %x and %j expand.")
	fs.StringVar(&f.errFile, "error", "", "Stderr file pattern, %x and %j expand.")
}

func (f *slurmFlags) overrides(fs *pflag.FlagSet) slurm.Overrides {
	var ov slurm.Overrides
	if fs.Changed("job-name") {
		ov.JobName = &f.jobName
	}
	if fs.Changed("nodes") {
		ov.Nodes = &f.nodes
	}
	if fs.Changed("ntasks") {
		ov.Ntasks = &f.ntasks
	}
	if fs.Changed("cpus-per-task") {
		ov.CpusPerTask = &f.cpusPerTask
	}
	if fs.Changed("gpus") {
		ov.GresGPU = &f.gresGPU
	}
	if fs.Changed("time") {
		ov.Time = &f.time
	}
	if fs.Changed("mem") {
		ov.Mem = &f.mem
	}
	if fs.Changed("partition") {
		ov.Partition = &f.partition
	}
	if fs.Changed("qos") {
		ov.Qos = &f.qos
	}
	if fs.Changed("account") {
		ov.Account = &f.account
	}
	if fs.Changed("output") {
		ov.Output = &f.output
	}
	if fs.Changed("error") {
		ov.Error = &f.errFile
	}
	return ov
}

func (c *cli) newSlurmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slurm",
		Short: "Generate and maintain SLURM batch script headers",
	}
	cmd.AddCommand(c.newSlurmShowCmd(), c.newSlurmGenerateCmd(), c.newSlurmUpdateCmd())
	return cmd
}

func (c *cli) newSlurmShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the header rendered from the stored defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			header, err := c.app.Slurm().Render(slurm.Overrides{})
			if err != nil {
				return err
			}
			fmt.Fprint(c.outW, header)
			return nil
		},
	}
}

func (c *cli) newSlurmGenerateCmd() *cobra.Command {
	var flags slurmFlags
	var outFile string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a batch header, optionally into an executable script file",
		RunE: func(cmd *cobra.Command, args []string) error {
			header, err := c.app.Slurm().Render(flags.overrides(cmd.Flags()))
			if err != nil {
				return err
			}
			if outFile == "" {
				fmt.Fprint(c.outW, header)
				return nil
			}
			if err := os.WriteFile(outFile, []byte(header), 0o755); err != nil {
				return fmt.Errorf("writing script: %w", err)
			}
			fmt.Fprintf(c.outW, "Wrote %s\n", outFile)
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&outFile, "file", "f", "", "Write the header to this script file instead of stdout.")
	return cmd
}

func (c *cli) newSlurmUpdateCmd() *cobra.Command {
	var flags slurmFlags
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Persist new default values for the passed header parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			ov := flags.overrides(cmd.Flags())
			if err := c.app.Slurm().UpdateDefaults(c.app.Context(), ov); err != nil {
				return err
			}
			fmt.Fprintln(c.outW, "Scheduler defaults updated.")
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
