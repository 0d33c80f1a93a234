package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ssargent/nodestate/pkg/api"
	"github.com/ssargent/nodestate/pkg/state"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Load the heap and print a summary",
	Long: `Load every field of the heap saved at --data-dir and print its tick,
block hash, field sizes, deployed functions and digest. Loading fails if any
field file is missing or malformed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := settingsFrom(cmd)
		asJSON, _ := cmd.Flags().GetBool("json")
		return runInspect(cmd.OutOrStdout(), s.config.DataDir, asJSON)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().Bool("json", false, "Print the summary as JSON")
}

func runInspect(w io.Writer, dir string, asJSON bool) error {
	heap, err := state.Load(dir)
	if err != nil {
		return err
	}
	summary, err := api.Summarize(heap)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Fprintf(w, "tick:      %s\n", summary.Tick)
	fmt.Fprintf(w, "hash:      %s\n", summary.Hash)
	fmt.Fprintf(w, "memo:      %d\n", summary.Memo)
	fmt.Fprintf(w, "disk:      %d\n", summary.Disk)
	fmt.Fprintf(w, "balances:  %d\n", summary.Balances)
	fmt.Fprintf(w, "functions: %s\n", strings.Join(summary.Functions, ", "))
	_, err = fmt.Fprintf(w, "digest:    %s\n", summary.Digest)
	return err
}
