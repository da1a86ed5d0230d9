package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Bhavik2205/news-sentiment/internal/app"
	"github.com/Bhavik2205/news-sentiment/internal/config"
	"github.com/Bhavik2205/news-sentiment/internal/logging"
	"github.com/Bhavik2205/news-sentiment/internal/server"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Println("❌ Error loading config:", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Println("❌ Error creating logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to build pipeline", "error", err)
	}
	defer p.Close()

	stopJanitor := p.StartJanitor(cfg.Audio.TTL)
	defer stopJanitor()

	origins := []string{"http://localhost" + cfg.UI.Addr}
	if cfg.Server.FrontendURL != "" {
		origins = append(origins, cfg.Server.FrontendURL)
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.NewRouter(p.Orchestrator, server.Options{StaticDir: cfg.Audio.StaticDir, AllowedOrigins: origins}, logger),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Infow("API listening", "addr", cfg.Server.Addr, "static_dir", cfg.Audio.StaticDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorw("Server failed", "error", err)
	}
}
