package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/server"
)

func serveCmd() *cobra.Command {
	var port, host, storage string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if storage != "" {
				cfg.Storage.Backend = storage
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			logger.Info("============================================================")
			logger.Info("FolioOS - Desktop Session Server")
			logger.Info("============================================================")

			srv, err := server.NewServer(cfg, logger)
			if err != nil {
				logger.Error("Failed to create server", zap.Error(err))
				return err
			}
			defer func() {
				if err := srv.Close(); err != nil {
					logger.Error("Error during shutdown", zap.Error(err))
				}
			}()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := srv.Run(ctx); err != nil {
				logger.Error("Server error", zap.Error(err))
				return err
			}
			logger.Info("Shutting down gracefully...")
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "server port (overrides PORT)")
	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides HOST)")
	cmd.Flags().StringVar(&storage, "storage", "", "storage backend: memory, file or sqlite")
	return cmd
}
