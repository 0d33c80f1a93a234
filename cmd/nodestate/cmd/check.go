package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/ssargent/nodestate/pkg/codec"
	"github.com/ssargent/nodestate/pkg/hvm"
	"github.com/ssargent/nodestate/pkg/input"
	"github.com/ssargent/nodestate/pkg/state"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <file|->",
	Short: "Parse and compile functions without deploying them",
	Long: `Parse and compile every function in a source file and print a summary
of each one, including the size of its on-disk function slot.

Examples:
  nodestate check funcs.hvm
  cat funcs.hvm | nodestate check -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := input.Parse(args[0])
		if in.Stdin {
			in = input.FromReader(cmd.InOrStdin())
		}
		return runCheck(cmd.OutOrStdout(), in)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// compileInput reads and compiles every function in in.
func compileInput(in input.Input) ([]hvm.CompFunc, error) {
	source, err := in.ReadString()
	if err != nil {
		return nil, err
	}

	funcs, err := hvm.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in, err)
	}
	if len(funcs) == 0 {
		return nil, fmt.Errorf("%s: no functions", in)
	}

	compiled := make([]hvm.CompFunc, 0, len(funcs))
	for _, fn := range funcs {
		comp, err := hvm.Compile(fn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in, err)
		}
		compiled = append(compiled, comp)
	}
	return compiled, nil
}

func runCheck(w io.Writer, in input.Input) error {
	compiled, err := compileInput(in)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tARITY\tRULES\tSTRICT\tSLOT BYTES")
	for _, comp := range compiled {
		slot, err := codec.EncodeToBytes(state.FuncCodec, comp)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%v\t%d\n", comp.Name(), comp.Arity(), len(comp.Rules()), comp.Redux(), len(slot))
	}
	return tw.Flush()
}
