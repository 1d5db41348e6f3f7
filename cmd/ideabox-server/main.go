package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/existflow/ideabox/internal/config"
	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/internal/remote"
	"github.com/existflow/ideabox/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.ListenAddr = ":" + port
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.LogLevel)
	logCfg.FilePath = cfg.LogFile
	logCfg.Console = true
	lg, err := logger.New(logCfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer lg.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		docs     server.Documents
		accounts server.Accounts
	)
	if cfg.DatabaseURL == "memory" {
		lg.Warn("Running without a database, data is lost on exit")
		docs = remote.NewMemory()
		accounts = server.NewMemoryAccounts()
	} else {
		pg, err := server.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer func() {
			if err := pg.Close(); err != nil {
				lg.Error("Error closing database", logger.F("error", err))
			}
		}()
		docs, accounts = pg, pg
	}

	srv := server.New(docs, accounts, server.Options{
		PaletteSync: cfg.PaletteSync,
		SessionTTL:  cfg.SessionTTL,
		Logger:      lg.Named("server"),
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			lg.Error("Shutdown failed", logger.F("error", err))
		}
	}()

	if err := srv.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Error("Server failed", logger.F("error", err))
		os.Exit(1)
	}
	lg.Info("Sync server stopped")
}
