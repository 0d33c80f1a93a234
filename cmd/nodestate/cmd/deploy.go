package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/ssargent/nodestate/pkg/input"
	"github.com/ssargent/nodestate/pkg/state"
	"go.uber.org/zap"
	"lukechampine.com/uint128"
)

// deployCmd represents the deploy command
var deployCmd = &cobra.Command{
	Use:   "deploy <file|->",
	Short: "Compile functions and install them into the heap",
	Long: `Compile every function in a source file and install it into the heap
saved at --data-dir, creating the heap if it does not exist. Nothing is saved
unless every function compiles and none is already deployed.

Examples:
  nodestate deploy funcs.hvm --owner 42
  nodestate deploy - --owner 42 --data-dir ./node/heap < funcs.hvm`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := settingsFrom(cmd)

		ownerFlag, _ := cmd.Flags().GetString("owner")
		owner, err := uint128.FromString(ownerFlag)
		if err != nil {
			return fmt.Errorf("invalid --owner %q: %w", ownerFlag, err)
		}

		in := input.Parse(args[0])
		if in.Stdin {
			in = input.FromReader(cmd.InOrStdin())
		}

		names, err := runDeploy(s, in, owner)
		if err != nil {
			return err
		}
		return printDeployed(cmd.OutOrStdout(), names, s.config.DataDir)
	},
}

func init() {
	rootCmd.AddCommand(deployCmd)

	deployCmd.Flags().String("owner", "0", "Owner id recorded for each deployed function")
}

func runDeploy(s *settings, in input.Input, owner uint128.Uint128) ([]string, error) {
	compiled, err := compileInput(in)
	if err != nil {
		return nil, err
	}

	heap := state.NewHeap()
	if state.Exists(s.config.DataDir) {
		heap, err = state.Load(s.config.DataDir)
		if err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(compiled))
	for i := range compiled {
		if err := heap.Deploy(&compiled[i], owner); err != nil {
			return nil, err
		}
		names = append(names, compiled[i].Name())
	}

	if err := heap.SaveWith(s.config.DataDir, sinkConfig(s.config)); err != nil {
		return nil, err
	}

	s.logger.Info("deployed functions", zap.Strings("names", names), zap.String("owner", owner.String()))
	return names, nil
}

func printDeployed(w io.Writer, names []string, dir string) error {
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "deployed %s\n", name); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "heap saved to %s\n", dir)
	return err
}
