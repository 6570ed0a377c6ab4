// Package cli implements the factorygen command line.
package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"objectfactory/internal/config"
	"objectfactory/internal/demo"
	"objectfactory/internal/engine"
	"objectfactory/internal/logging"
)

// Version is set at build time.
var Version = "dev"

type flags struct {
	config  string
	mapping string
	strict  bool
	policy  string
}

// NewRootCommand creates the factorygen command tree.
func NewRootCommand() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "factorygen",
		Short: "Build and inspect constructor-based object factories",
		Long: `factorygen builds object factories from a mapping file and the demo
store and warehouse types, prints their programs and converts JSON values.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.config, "config", "", "config file (default ./objectfactory.yaml when present)")
	pf.StringVar(&f.mapping, "mapping", "", "mapping file (default: the embedded demo mapping)")
	pf.BoolVar(&f.strict, "strict", false, "fail builds on per-field emission problems")
	pf.StringVar(&f.policy, "policy", "", "constructor policy: most-parameters or first-match")

	root.AddCommand(
		newDumpCommand(f),
		newCheckCommand(f),
		newConvertCommand(f),
		newVersionCommand(),
	)

	return root
}

// Execute runs the root command and prints the error, if any.
func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return err
	}

	return nil
}

// newEngine loads the configuration, applies flag overrides and builds an
// engine over the demo types with the warehouse constructors installed.
func newEngine(cmd *cobra.Command, f *flags) (*engine.Engine, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("strict") {
		cfg.Strict = f.strict
	}

	if f.policy != "" {
		cfg.Constructor.Policy = f.policy
	}

	opts := []engine.Option{
		engine.WithConfig(cfg),
		engine.WithLogger(logging.Must(cfg.Log)),
		engine.WithTypes(demo.Types()),
	}

	switch {
	case f.mapping != "":
		opts = append(opts, engine.WithMappingFile(f.mapping))
	case cfg.Mapping.File == "":
		opts = append(opts, engine.WithMapping(demo.Mapping))
	}

	e, err := engine.New(opts...)
	if err != nil {
		return nil, err
	}

	if err := demo.Install(e.ParamNames(), e.Constructors()); err != nil {
		_ = e.Close()
		return nil, err
	}

	return e, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			color.New(color.FgCyan, color.Bold).Fprint(cmd.OutOrStdout(), "factorygen version: ")
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
