package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"helpdesk/internal/authserver"
	"helpdesk/internal/config"
	"helpdesk/internal/graph"
	"helpdesk/internal/storage"
	"helpdesk/internal/storage/pg"
	"helpdesk/internal/storage/stubs"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	var tokens storage.TokenStore
	if cfg.UseMockStore {
		logger.Info("Using in-memory token store")
		tokens = stubs.NewMockStore()
	} else {
		pgStore, err := pg.NewPostgresStore(context.Background(), cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("Failed to connect to Postgres", zap.Error(err))
		}
		tokens = pgStore
	}
	defer tokens.Close()

	oauth := graph.NewOAuth(cfg.ClientID, cfg.ClientSecret, cfg.TenantID, cfg.RedirectURI, "")
	server := authserver.NewServer(oauth, tokens, logger)

	httpServer := &http.Server{
		Addr:         cfg.CallbackAddr,
		Handler:      server.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting OAuth callback server", zap.String("addr", cfg.CallbackAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}
}
