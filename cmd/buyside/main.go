package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/buyside/internal/config"
	_ "github.com/JonMunkholm/buyside/internal/core/tables" // Register all schemas
	"github.com/JonMunkholm/buyside/internal/logging"
)

var (
	cfg     *config.Config
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "buyside",
	Short: "Look up brands and companies across the Factbook and Pipeline",
	Long: "Loads the Factbook and Pipeline tables, matches a brand or company name against both, " +
		"and serves the results as a web UI, JSON API or CLI output.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load .env file if it exists (Overload overwrites existing env vars)
		if err := godotenv.Overload(envFile); err == nil {
			slog.Debug("loaded env file", "path", envFile)
		}

		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		// Logs go to stderr so command output on stdout stays clean
		logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
		slog.Debug("configuration loaded", "config", cfg.String())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file loaded before configuration")
	rootCmd.AddCommand(serveCmd, searchCmd, namesCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
