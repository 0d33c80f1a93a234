package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"github.com/ssargent/nodestate/pkg/di"
	"github.com/ssargent/nodestate/pkg/state"
)

// archiveCmd groups the snapshot archive commands
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Move heap snapshots in and out of the archive",
	Long: `Archive snapshots of the heap at --data-dir, list them, restore them and
delete them. The archive lives at archive_dir from the config file.`,
}

var archivePutCmd = &cobra.Command{
	Use:   "put",
	Short: "Archive the current heap",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(cmd, func(s *settings, archive di.Archive) error {
			heap, err := state.Load(s.config.DataDir)
			if err != nil {
				return err
			}
			id, err := archive.Put(heap)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id.String())
			return err
		})
	},
}

var archiveGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Restore a snapshot into the heap directory",
	Long: `Restore a snapshot, replacing the heap at --data-dir, or at --out when
given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid snapshot id %q: %w", args[0], err)
		}
		return withArchive(cmd, func(s *settings, archive di.Archive) error {
			heap, err := archive.Get(id)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = s.config.DataDir
			}
			if err := heap.SaveWith(out, sinkConfig(s.config)); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "restored %s to %s\n", id, out)
			return err
		})
	},
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(cmd, func(s *settings, archive di.Archive) error {
			return printSnapshots(cmd.OutOrStdout(), archive)
		})
	},
}

var archiveDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an archived snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid snapshot id %q: %w", args[0], err)
		}
		return withArchive(cmd, func(s *settings, archive di.Archive) error {
			if err := archive.Delete(id); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archivePutCmd, archiveGetCmd, archiveListCmd, archiveDeleteCmd)

	archiveCmd.PersistentFlags().String("archive-dir", "", "Archive directory (overrides config)")
	archiveGetCmd.Flags().String("out", "", "Directory to restore into (default is --data-dir)")
}

// withArchive opens the configured archive for the duration of fn.
func withArchive(cmd *cobra.Command, fn func(s *settings, archive di.Archive) error) error {
	s := settingsFrom(cmd)

	dir := s.config.ArchiveDir
	if flag, _ := cmd.Flags().GetString("archive-dir"); flag != "" {
		dir = flag
	}
	options, err := archiveOptions(s.config)
	if err != nil {
		return err
	}

	archive, err := getContainer().GetArchiveOpener().OpenArchive(dir, options)
	if err != nil {
		return err
	}
	defer archive.Close()

	return fn(s, archive)
}

func printSnapshots(w io.Writer, archive di.Archive) error {
	manifests, err := archive.List()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tTICK\tBYTES")
	for _, m := range manifests {
		size := 0
		for _, field := range m.Fields {
			size += field.StoredSize
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", m.ID, m.CreatedAt().UTC().Format(time.RFC3339), m.Tick, size)
	}
	return tw.Flush()
}

func getContainer() *di.Container {
	if container == nil {
		container = di.NewContainer()
	}
	return container
}
