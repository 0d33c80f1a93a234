/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ssargent/nodestate/pkg/config"
	"github.com/ssargent/nodestate/pkg/di"
	"github.com/ssargent/nodestate/pkg/state"
	"github.com/ssargent/nodestate/pkg/storage"
	"go.uber.org/zap"
)

var container *di.Container

// SetContainer injects the dependency container
func SetContainer(c *di.Container) {
	container = c
}

type settingsKey struct{}

// settings is the resolved configuration for one command run
type settings struct {
	config *config.Config
	logger *zap.Logger
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nodestate",
	Short: "nodestate - node heap persistence",
	Long: `nodestate compiles functions into a node's heap, saves the heap to disk
one file per field, and archives heap snapshots.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		state.SetLogger(logger)
		storage.SetLogger(logger)

		cmd.SetContext(context.WithValue(cmd.Context(), settingsKey{}, &settings{config: cfg, logger: logger}))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if s, ok := cmd.Context().Value(settingsKey{}).(*settings); ok {
			_ = s.logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if container == nil {
		container = di.NewContainer()
	}
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default is "+config.GetDefaultConfigPath()+")")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Heap directory (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
}

// resolveConfig loads the config file, if any, and applies flag overrides.
// An explicit --config must exist; the default path is optional.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	cfg := config.DefaultConfig()
	switch {
	case configPath != "":
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case config.ConfigExists(config.GetDefaultConfigPath()):
		loaded, err := config.LoadConfig(config.GetDefaultConfigPath())
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds a production logger writing to stderr at the
// configured level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.Encoding = "console"
	zapConfig.OutputPaths = []string{"stderr"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	return zapConfig.Build()
}

// settingsFrom returns the settings resolved by the root command, or
// defaults when a command is run on its own.
func settingsFrom(cmd *cobra.Command) *settings {
	if ctx := cmd.Context(); ctx != nil {
		if s, ok := ctx.Value(settingsKey{}).(*settings); ok {
			return s
		}
	}
	return &settings{config: config.DefaultConfig(), logger: zap.NewNop()}
}

func sinkConfig(cfg *config.Config) state.SinkConfig {
	return state.SinkConfig{BufferSize: cfg.Storage.BufferSize, Fsync: cfg.Storage.Fsync}
}

func archiveOptions(cfg *config.Config) (storage.Options, error) {
	compression, err := storage.ParseCompression(cfg.Storage.Compression)
	if err != nil {
		return storage.Options{}, err
	}
	return storage.Options{Compression: compression, Sync: cfg.Storage.Fsync}, nil
}
