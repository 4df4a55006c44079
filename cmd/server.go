/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/api"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/config"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/container"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long: `Start the purchase request API server.
The server listens on the configured host and port, serves the REST
API, streams workflow events over websocket and runs the outbox
dispatcher in the background.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err := api.NewLoggerFromConfig(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		api.SetLogger(logger)

		// adjust the log level live when the config file changes
		if configPath != "" {
			watcher := config.NewWatcher(cfg, configPath)
			watcher.OnChange(func(next *config.Config) {
				level, err := logrus.ParseLevel(next.Log.Level)
				if err != nil {
					logger.WithError(err).Warn("ignoring invalid log level from config reload")
					return
				}
				logger.SetLevel(level)
				logger.Infof("log level set to %s", next.Log.Level)
			})
			if err := watcher.Start(); err != nil {
				logger.WithError(err).Warn("config watch disabled")
			} else {
				defer watcher.Stop()
			}
		}

		ctr, err := container.NewContainer(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		// background workers share one cancellable context
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go ctr.Hub().Run()
		go ctr.Dispatcher().Run(ctx)

		router := api.SetupRoutes(cfg, ctr.DB(), ctr.Hub(), ctr.Validator(), ctr.Services())

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:    addr,
			Handler: router,
		}

		go func() {
			logger.Infof("server starting on %s", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatalf("failed to start server: %v", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Fatalf("server forced to shutdown: %v", err)
		}

		logger.Info("server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().String("config", "", "Config file path (default: search in current directory, ./config, or $HOME/.compras)")
}
