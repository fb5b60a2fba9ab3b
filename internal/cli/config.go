package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cryodl/cryodl/internal/configstore"
)

func (c *cli) newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.app.Context()
			store := c.app.Store()
			if store.Exists() && !force {
				return fmt.Errorf("%s already exists, pass --force to overwrite", store.Path())
			}
			store.Reset()
			if err := store.Save(ctx); err != nil {
				return err
			}
			fmt.Fprintf(c.outW, "Initialized %s\n", store.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file.")
	return cmd
}

func (c *cli) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "Print one configuration value by dotted path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.app.Store().Document().Get(args[0])
			if err != nil {
				return err
			}
			native, err := configstore.NativeValue(v)
			if err != nil {
				return err
			}
			return printValue(c.outW, native)
		},
	}
}

func (c *cli) newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <path> <value>",
		Short: "Set one configuration value and save",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := c.app.Store().Document()
			if err := doc.Set(args[0], configstore.ParseScalar(args[1])); err != nil {
				return err
			}
			if err := c.app.Store().Save(c.app.Context()); err != nil {
				return err
			}
			fmt.Fprintf(c.outW, "%s = %s\n", args[0], args[1])
			return nil
		},
	}
}

func (c *cli) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [section]",
		Short: "Print the configuration document, or one section of it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := c.app.Store().Document()
			var native any
			var err error
			if len(args) == 1 {
				v, getErr := doc.Get(args[0])
				if getErr != nil {
					return getErr
				}
				native, err = configstore.NativeValue(v)
			} else {
				native, err = doc.Native()
			}
			if err != nil {
				return err
			}
			return printValue(c.outW, native)
		},
	}
}

func (c *cli) newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore every section to its default values and save",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := c.app.Store()
			store.Reset()
			if err := store.Save(c.app.Context()); err != nil {
				return err
			}
			fmt.Fprintf(c.outW, "Configuration reset to defaults at %s\n", store.Path())
			return nil
		},
	}
}

func (c *cli) newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the configuration to a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Store().Export(c.app.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(c.outW, "Exported configuration to %s\n", args[0])
			return nil
		},
	}
}

func (c *cli) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the configuration from a JSON, YAML, or HCL file",
		Long:  "The imported document is validated before it replaces anything; a file\nmissing a required section leaves the current configuration untouched.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Store().Import(c.app.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(c.outW, "Imported configuration from %s\n", args[0])
			return nil
		},
	}
}

// printValue renders a scalar bare and anything structured as indented JSON.
func printValue(w io.Writer, v any) error {
	switch v.(type) {
	case map[string]any, []any:
		data, err := json.MarshalIndent(v, "", "    ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	default:
		fmt.Fprintln(w, v)
	}
	return nil
}
