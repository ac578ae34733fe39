package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tsserver-gateway/src/internal/common"
	"tsserver-gateway/src/server"
)

// RunServer launches the backend and blocks until interrupted.
func RunServer(configPath string) error {
	cfg := LoadConfigWithFallback(configPath)

	gateway := server.NewGateway(cfg, server.FirstActionChooser{}, server.NewFileEditApplier())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := gateway.Start(ctx); err != nil {
		return fmt.Errorf("failed to start gateway: %w", err)
	}

	common.CLILogger.Info("tsserver-gateway started (backend: %s)", cfg.Backend.Command)
	common.CLILogger.Info("Backend protocol version: %s", gateway.Client().APIVersion())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	common.CLILogger.Info("Received shutdown signal, stopping gateway...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	done := make(chan error, 1)
	go func() {
		done <- gateway.Stop()
	}()

	select {
	case err := <-done:
		if err != nil {
			common.CLILogger.Warn("Gateway stopped with error: %v", err)
		} else {
			common.CLILogger.Info("Gateway stopped successfully")
		}
	case <-shutdownCtx.Done():
		common.CLILogger.Warn("Shutdown timeout exceeded")
		return fmt.Errorf("shutdown timeout")
	}

	return nil
}
