package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"objectfactory/internal/diagnostic"
	"objectfactory/internal/engine"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

// errCheckFailed is returned by check when any factory failed to build.
var errCheckFailed = errors.New("some factories failed to build")

func newDumpCommand(f *flags) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "dump <target>",
		Short: "Build the factory of a target type and print its program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(cmd, f)
			if err != nil {
				return err
			}
			defer e.Close()

			target, err := e.Types().Resolve(args[0])
			if err != nil {
				return err
			}

			fac, err := e.FactoryFor(target)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if raw {
				sources := make([]string, 0, len(fac.Sources()))
				for _, s := range fac.Sources() {
					sources = append(sources, s.String())
				}

				spew.Fdump(out, struct {
					Target      string
					Sources     []string
					Diagnostics diagnostic.Diagnostics
				}{target.String(), sources, fac.Diagnostics()})

				return nil
			}

			fmt.Fprint(out, fac.Program())
			printDiagnostics(out, fac.Diagnostics())

			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "dump the build result instead of the program")

	return cmd
}

func newCheckCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Build every target of the mapping and report diagnostics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEngine(cmd, f)
			if err != nil {
				return err
			}
			defer e.Close()

			return check(cmd.OutOrStdout(), e)
		},
	}
}

func check(out io.Writer, e *engine.Engine) error {
	failed := false

	for _, target := range e.Mappings().Targets() {
		fac, err := e.FactoryFor(target)
		if err != nil {
			failed = true

			errColor.Fprintf(out, "FAIL %s\n", target)
			fmt.Fprintf(out, "  %v\n", err)

			continue
		}

		okColor.Fprintf(out, "ok   %s", target)
		dimColor.Fprintf(out, " (%d branches)\n", len(fac.Sources()))
		printDiagnostics(out, fac.Diagnostics())
	}

	if failed {
		return errCheckFailed
	}

	return nil
}

func newConvertCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <source> <target>",
		Short: "Read a JSON source value from stdin and print the created target as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(cmd, f)
			if err != nil {
				return err
			}
			defer e.Close()

			source, err := e.Types().Resolve(args[0])
			if err != nil {
				return err
			}

			target, err := e.Types().Resolve(args[1])
			if err != nil {
				return err
			}

			in := reflect.New(source)
			if err := json.NewDecoder(cmd.InOrStdin()).Decode(in.Interface()); err != nil {
				return fmt.Errorf("decoding %s: %w", source, err)
			}

			out, err := e.Map(in.Elem().Interface(), target)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(out)
		},
	}
}

func printDiagnostics(out io.Writer, d diagnostic.Diagnostics) {
	for _, diag := range d.Errors {
		errColor.Fprintf(out, "  %s\n", diag)
	}

	for _, diag := range d.Warnings {
		warnColor.Fprintf(out, "  %s\n", diag)
	}
}
