package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"notas/internal/cache"
	"notas/internal/server"
	"notas/internal/storage"
)

func newServeCmd(a *app) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := a.cfg, a.logger
			if port != "" {
				cfg.ServerPort = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.InsecureSecret() {
				logger.Warn("JWT_SECRET is the development default; set it before exposing the server")
			}

			if cfg.ResetDB {
				logger.Warn("RESET_DB=true detected, dropping all tables")
			}
			gormDB, closeDB, err := a.openDB(cfg.ResetDB)
			if err != nil {
				return err
			}
			defer closeDB()

			cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
			defer cacheClient.Close()
			if err := cacheClient.Ping(ctx); err != nil {
				logger.Warn("redis unavailable, running without cache and logout revocation", "addr", cfg.RedisAddr, "err", err)
			}

			backend, err := storage.NewBackend(ctx, cfg.Storage)
			if err != nil {
				return err
			}

			e := server.New(cfg, logger, gormDB, cacheClient, backend)

			logger.Info("swagger documentation available", "url", swaggerURL(cfg.SwaggerHost, cfg.ServerPort))
			return server.Run(ctx, e, ":"+cfg.ServerPort, logger)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides SERVER_PORT)")
	return cmd
}

// swaggerURL accepts a host with or without scheme.
func swaggerURL(host, port string) string {
	if host == "" {
		host = "localhost:" + port
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/") + "/swagger/index.html"
}
