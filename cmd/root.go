package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cfaprep/cfaprep/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "cfaprep",
	Short: "CFA exam practice in the terminal",
	Long: "cfaprep runs timed and untimed CFA practice tests, a full mock exam and\n" +
		"spaced-repetition review of missed questions, against a local question bank\n" +
		"or a remote progress service.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, nil)
	},
}

// Execute runs the root command under ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("server", "", "Progress service URL; empty runs offline (overrides CFAPREP_SERVER)")
	f.String("token", "", "Bearer token for the progress service (overrides CFAPREP_TOKEN)")
	f.String("db", "", "SQLite file or Postgres DSN for the local store (overrides CFAPREP_DB)")
	f.String("db-driver", "", "Local store driver: sqlite or postgres (overrides CFAPREP_DB_DRIVER)")
	f.String("data", "", "Question bank directory (overrides CFAPREP_DATA)")
	f.String("log", "", "Log file path (overrides CFAPREP_LOG)")
	f.String("log-level", "", "Log level: debug, info, warn or error (overrides CFAPREP_LOG_LEVEL)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(mockCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(versionCmd)
}

// cfg is resolved once per invocation before any command runs.
var cfg config.Config

// loadConfig layers command-line flags over the environment.
func loadConfig(cmd *cobra.Command) error {
	cfg = config.FromEnv()
	override := func(flag string, dst *string) {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			*dst = v
		}
	}
	override("server", &cfg.ServerURL)
	override("token", &cfg.Token)
	override("db", &cfg.DBDSN)
	override("db-driver", &cfg.DBDriver)
	override("data", &cfg.DataDir)
	override("log", &cfg.LogPath)
	override("log-level", &cfg.LogLevel)
	return cfg.Validate()
}
