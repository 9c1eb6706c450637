// Package main is the entry point for the snippetbox server.
//
// main does four things: read configuration, build the shared dependencies
// (logger, server), start, and translate a fatal error into a non-zero
// exit. Everything with behaviour worth testing lives in the internal
// packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/snippetbox/internal/config"
	"github.com/sakif/snippetbox/internal/repository/sqlstore"
	"github.com/sakif/snippetbox/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// For the file-backed sqlite default, make sure the data directory
	// exists so first startup doesn't need manual setup.
	if cfg.DBDriver == sqlstore.DriverSQLite && cfg.DBDSN != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBDSN), 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", filepath.Dir(cfg.DBDSN)),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
