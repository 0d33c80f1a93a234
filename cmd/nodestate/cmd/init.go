/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/nodestate/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a default configuration file with the heap and archive under
the given root directory.

Examples:
  nodestate init --root ./node
  nodestate init --root ./node --config ./nodestate.yaml --force`,
	Args: cobra.NoArgs,
	// the config file may not exist yet
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}
		root, _ := cmd.Flags().GetString("root")
		force, _ := cmd.Flags().GetBool("force")

		out := cmd.OutOrStdout()
		if config.ConfigExists(configPath) && !force {
			fmt.Fprintf(out, "Config already exists at %s. Use --force to overwrite.\n", configPath)
			return nil
		}

		cfg, err := config.BootstrapConfig(configPath, root)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Wrote %s\n", configPath)
		fmt.Fprintf(out, "Heap directory:    %s\n", cfg.DataDir)
		fmt.Fprintf(out, "Archive directory: %s\n", cfg.ArchiveDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("root", "./data", "Root directory for the heap and archive")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}
