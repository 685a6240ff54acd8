package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/botel-ai/pms-mcp-gateway/internal/config"
	"github.com/botel-ai/pms-mcp-gateway/internal/gateway"
	"github.com/botel-ai/pms-mcp-gateway/internal/pms"
	"github.com/botel-ai/pms-mcp-gateway/internal/tools"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Config file not loaded (%v), using defaults", err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if cfg.PMS.APIKey == "" {
		logger.Warn("PMS_API_KEY not set; upstream requests will be unauthenticated")
	}

	client := pms.NewClient(cfg.PMS, logger)

	registry := tools.NewRegistry()
	for _, t := range []*tools.Tool{
		tools.NewPropertyContextTool(client, logger),
		tools.NewAvailabilityTool(client, logger),
	} {
		if err := registry.Register(t); err != nil {
			log.Fatalf("Failed to register tool: %v", err)
		}
	}

	srv := gateway.NewServer(cfg, registry, logger)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	httpSrv := &http.Server{Addr: addr, Handler: srv.SetupRouter()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	logger.Info("gateway listening",
		"addr", addr,
		"sse", fmt.Sprintf("http://localhost%s/sse", addr),
		"messages", fmt.Sprintf("http://localhost%s/messages/", addr))

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		// Close sessions first so the SSE loops drain and finish before the
		// listener stops accepting.
		srv.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Fatalf("Shutdown failed: %v", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}
}
