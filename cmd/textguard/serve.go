package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/textguard/internal/adapters/web"
	"github.com/mikey/textguard/internal/di"
	"github.com/mikey/textguard/internal/ports"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web UI and JSON API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("listen", "", "listen address (default web.listen_address)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setupDaemon(cmd, flagBinding{"listen", "web.listen_address"})
	if err != nil {
		return err
	}
	defer logger.Sync()

	container, err := di.BuildContainer(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}
	return container.Invoke(func(server *web.Server, closers *di.Closers) error {
		return runUntilSignal(logger, server, closers)
	})
}

// runUntilSignal starts server and stops it on SIGINT or SIGTERM
func runUntilSignal(logger *zap.Logger, server ports.Server, closers *di.Closers) error {
	defer closers.Close()

	if err := server.Start(); err != nil {
		logger.Error("Failed to start server", zap.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("Shutting down...")

	if err := server.Stop(); err != nil {
		logger.Error("Failed to stop server", zap.Error(err))
	}
	logger.Info("Shutdown complete")
	return nil
}
