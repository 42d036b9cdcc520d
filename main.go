package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"querygpt/config"
	"querygpt/logging"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath string
	backendURL string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "querygpt",
	Short: "QueryGPT - turn schema PDFs and plain questions into SQL",
	Long: `QueryGPT serves a small web frontend for a schema-aware SQL generation backend.

Upload a database schema PDF under an identifier, then ask questions in plain
language and get SQL back. The upload and query commands talk to the backend
directly, without the web frontend.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if backendURL != "" {
			cfg.BackendURL = backendURL
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		logger, err = logging.New(cfg.LogLevel, cfg.Dev)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	// Skip config loading so version works anywhere.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "querygpt %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "backend base URL (overrides config)")

	uploadCmd.Flags().StringVarP(&uploadFile, "file", "f", "", "schema PDF to upload")
	uploadCmd.Flags().StringVar(&uploadCollection, "collection", "", "schema identifier")
	_ = uploadCmd.MarkFlagRequired("file")
	_ = uploadCmd.MarkFlagRequired("collection")

	queryCmd.Flags().StringVar(&queryCollection, "collection", "", "schema identifier")
	_ = queryCmd.MarkFlagRequired("collection")

	rootCmd.AddCommand(serveCmd, uploadCmd, queryCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
