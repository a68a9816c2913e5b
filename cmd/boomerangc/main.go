// Command boomerangc drives the decompilation pipeline end to end: it
// loads a YAML-described program (pkg/fixture — real instruction
// decoding from a binary is out of scope, spec.md §1), runs every
// discovered procedure through pkg/driver, and writes one .c file per
// module via pkg/cemit.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/skyripley/boomerang/pkg/cemit"
	"github.com/skyripley/boomerang/pkg/driver"
	"github.com/skyripley/boomerang/pkg/fixture"
	"github.com/skyripley/boomerang/pkg/project"
	"github.com/spf13/cobra"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

var version = "0.1.0"

var settings project.Settings

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(out, errOut *os.File) *cobra.Command {
	settings = project.DefaultSettings()

	rootCmd := &cobra.Command{
		Use:           "boomerangc [fixture.yaml]",
		Short:         "boomerangc recovers C source from a decoded program",
		Long:          `boomerangc runs the decompilation pipeline over a program description and emits one .c file per module.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return decompileFile(context.Background(), args[0], out)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	flags := rootCmd.Flags()
	flags.BoolVar(&settings.PrintRTLs, "print-rtl", settings.PrintRTLs, "print each procedure's decoded RTL before running passes")
	flags.BoolVar(&settings.RemoveLabels, "remove-labels", settings.RemoveLabels, "prune labels never referenced by a goto")
	flags.BoolVarP(&settings.VerboseOutput, "verbose", "v", settings.VerboseOutput, "report per-procedure progress through the pipeline")
	flags.BoolVar(&settings.DecodeChildren, "decode-children", settings.DecodeChildren, "decode a callee's body eagerly rather than on first visit")
	flags.BoolVar(&settings.UsePromotion, "promote-signatures", settings.UsePromotion, "mark procedures as signature-promoted (the parameter list is not widened)")
	flags.BoolVar(&settings.ChangeSignatures, "change-signatures", settings.ChangeSignatures, "narrow a procedure's signature from FinalParameterSearch's result")
	flags.BoolVar(&settings.NameParameters, "name-parameters", settings.NameParameters, "bind human-readable names to recovered parameters")
	flags.BoolVar(&settings.DebugGen, "debug-gen", settings.DebugGen, "log pass-by-pass CFG mutation")
	flags.BoolVar(&settings.DebugSwitch, "debug-switch", settings.DebugSwitch, "log switch-table recovery decisions")
	flags.StringVarP(&settings.OutputDirectory, "output-dir", "o", settings.OutputDirectory, "directory to write recovered .c files into")

	return rootCmd
}

func decompileFile(ctx context.Context, path string, out *os.File) error {
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	doc, err := fixture.Load(path)
	if err != nil {
		return err
	}

	_, prog, err := fixture.Build(doc, settings)
	if err != nil {
		return err
	}
	if settings.VerboseOutput {
		prog.Alerts = project.TlogAlertSink{}
	}

	dec := driver.New(prog)
	for _, mod := range prog.Modules() {
		for _, proc := range mod.Procedures() {
			up, ok := proc.(*project.UserProc)
			if !ok {
				continue
			}
			dec.Decompile(ctx, up, driver.NewCallStack())
		}

		src := cemit.RenderModule(mod)
		if err := cemit.WriteModule(settings.OutputDirectory, mod, src); err != nil {
			return errors.Wrap(err, "write module %s", mod.Name)
		}
		fmt.Fprintf(out, "boomerangc: wrote %s/%s.c\n", settings.OutputDirectory, mod.Name)
	}

	return nil
}
