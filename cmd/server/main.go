package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/logging"
)

var (
	cfg    *config.Config
	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "FolioOS desktop session server",
	Long: `Serves the FolioOS desktop session: windows, boot sequence, guided tour
and notifications over HTTP and a WebSocket stream.

Configuration is read from the environment (PORT, STORAGE_BACKEND, DEVICE,
TIMING_PROFILE, ...); flags override it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		if dev, _ := cmd.Flags().GetBool("dev"); dev {
			cfg.Logging.Development = true
			cfg.Logging.Level = "debug"
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		logger = logging.FromConfig(cfg.Logging.Level, cfg.Logging.Development)
		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().Bool("dev", false, "development mode (colored logs, debug level)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (overrides LOG_LEVEL)")
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(simulateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
