// Package cli is the cobra-based command surface. Each subcommand recovers
// domain errors at this boundary and converts them into process exit codes.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cryodl/cryodl/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// cli carries the writers and the lazily constructed App shared by every
// subcommand.
type cli struct {
	outW io.Writer
	errW io.Writer
	cfg  app.Config
	app  *app.App
}

// New builds the root command and its full subcommand tree. The App is
// constructed once, in the persistent pre-run hook, so flag parsing and help
// output never touch the configuration file.
func New(outW, errW io.Writer) *cobra.Command {
	c := &cli{outW: outW, errW: errW}

	root := &cobra.Command{
		Use:           "cryodl",
		Short:         "Operator console for cryo-EM deep learning pipelines",
		Long:          "cryodl manages pipeline configuration, external tool registration,\nSLURM script generation and submission, cross-validation analysis,\nand FASTA sequence retrieval.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	root.SetOut(outW)
	root.SetErr(errW)

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfg.ConfigPath, "config", "config.json", "Path to the configuration file.")
	pf.StringVar(&c.cfg.EnvFile, "env-file", "", "Dotenv file with CRYODL_API_KEY_* overrides.")
	pf.StringVar(&c.cfg.LogLevel, "log-level", "info", "Logging level: 'debug', 'info', 'warn', or 'error'.")
	pf.StringVar(&c.cfg.LogFormat, "log-format", "text", "Log output format: 'text' or 'json'.")

	root.AddCommand(
		c.newInitCmd(),
		c.newGetCmd(),
		c.newSetCmd(),
		c.newShowCmd(),
		c.newResetCmd(),
		c.newExportCmd(),
		c.newImportCmd(),
		c.newAddDependencyCmd(),
		c.newListDependenciesCmd(),
		c.newValidateDependenciesCmd(),
		c.newSlurmCmd(),
		c.newSubmitCmd(),
		c.newAnalyzeCVCmd(),
		c.newFastaCmd(),
	)
	return root
}

// setup validates the persistent flags and constructs the App.
func (c *cli) setup() error {
	if c.app != nil {
		return nil
	}

	format := strings.ToLower(c.cfg.LogFormat)
	if format != "text" && format != "json" {
		return &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	level := strings.ToLower(c.cfg.LogLevel)
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	c.cfg.LogFormat = format
	c.cfg.LogLevel = level

	cfg, err := app.NewConfig(c.cfg)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	a, err := app.NewApp(c.outW, c.errW, cfg)
	if err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}
	c.app = a
	return nil
}
