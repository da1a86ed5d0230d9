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

	"github.com/Bhavik2205/news-sentiment/internal/api"
	"github.com/Bhavik2205/news-sentiment/internal/app"
	"github.com/Bhavik2205/news-sentiment/internal/config"
	"github.com/Bhavik2205/news-sentiment/internal/logging"
	"github.com/Bhavik2205/news-sentiment/internal/ui"
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

	var source ui.Source
	local := cfg.UI.Mode == "local"
	if local {
		p, err := app.Build(ctx, cfg, logger)
		if err != nil {
			logger.Fatalw("Failed to build pipeline", "error", err)
		}
		defer p.Close()

		stopJanitor := p.StartJanitor(cfg.Audio.TTL)
		defer stopJanitor()

		source = ui.NewLocalSource(p.Orchestrator)
	} else {
		source = ui.NewRemoteSource(api.NewClient(cfg.UI.BackendURL))
	}

	h := ui.NewHandler(source, cfg.Audio.StaticDir, logger)
	srv := &http.Server{
		Addr:    cfg.UI.Addr,
		Handler: ui.NewRouter(h, local),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Infow("UI listening", "addr", cfg.UI.Addr, "mode", cfg.UI.Mode, "backend", cfg.UI.BackendURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorw("Server failed", "error", err)
	}
}
