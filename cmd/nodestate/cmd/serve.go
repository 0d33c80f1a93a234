/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ssargent/nodestate/pkg/api"
	"github.com/ssargent/nodestate/pkg/di"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only inspection server",
	Long: `Start an HTTP server that reports on the heap at --data-dir and the
snapshot archive. Prometheus metrics are served at /metrics.

Examples:
  nodestate serve --port=8080
  nodestate serve --config ./nodestate.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().String("bind", "", "Address to bind (overrides config)")
	serveCmd.Flags().String("archive-dir", "", "Archive directory (overrides config)")
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	s := settingsFrom(cmd)

	config := api.ServerConfig{
		Bind:    s.config.Bind,
		Port:    s.config.Port,
		APIKey:  s.config.APIKey,
		HeapDir: s.config.DataDir,
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		config.Port = port
	}
	if bind, _ := cmd.Flags().GetString("bind"); bind != "" {
		config.Bind = bind
	}

	return withArchive(cmd, func(s *settings, archive di.Archive) error {
		return getContainer().GetServerStarter().StartServer(ctx, archive, config, s.logger)
	})
}
