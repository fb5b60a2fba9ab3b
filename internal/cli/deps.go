package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *cli) newAddDependencyCmd() *cobra.Command {
	var version string
	cmd := &cobra.Command{
		Use:   "add-dependency <name> <path>",
		Short: "Register an external tool by name and executable path",
		Long:  "Known tools (topaz, model_angelo, relion, cryosparc, eman2, cistem) and\narbitrary custom names are both accepted. The tool is enabled only when\nthe path resolves to an existing file.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Registry().Update(c.app.Context(), args[0], args[1], version); err != nil {
				return err
			}
			fmt.Fprintf(c.outW, "Registered %s -> %s\n", args[0], args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&version, "version", "", "Recorded version string for the tool.")
	return cmd
}

func (c *cli) newListDependenciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-dependencies",
		Short: "List every registered tool with its path and status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(c.outW, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tENABLED\tVERSION\tPATH")
			for _, rec := range c.app.Registry().List() {
				version := rec.Version
				if version == "" {
					version = "-"
				}
				path := rec.Path
				if path == "" {
					path = "-"
				}
				fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", rec.Name, rec.Enabled, version, path)
			}
			return tw.Flush()
		},
	}
}

func (c *cli) newValidateDependenciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-dependencies",
		Short: "Re-check that every enabled tool still resolves to an executable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := c.app.Registry()
			broken := 0
			for _, rec := range registry.List() {
				if !rec.Enabled {
					continue
				}
				if registry.Validate(rec.Name) {
					fmt.Fprintf(c.outW, "%s: ok\n", rec.Name)
				} else {
					fmt.Fprintf(c.outW, "%s: INVALID (%s)\n", rec.Name, rec.Path)
					broken++
				}
			}
			if broken > 0 {
				return fmt.Errorf("%d enabled tool(s) failed validation", broken)
			}
			fmt.Fprintln(c.outW, "All enabled tools validated.")
			return nil
		},
	}
}
