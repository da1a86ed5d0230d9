package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Bhavik2205/news-sentiment/internal/api"
	"github.com/Bhavik2205/news-sentiment/internal/app"
	"github.com/Bhavik2205/news-sentiment/internal/config"
	"github.com/Bhavik2205/news-sentiment/internal/data"
	"github.com/Bhavik2205/news-sentiment/internal/logging"
	"github.com/Bhavik2205/news-sentiment/internal/pipeline"
	"github.com/Bhavik2205/news-sentiment/internal/report"
)

func main() {
	company := flag.String("company", "", "Company to fetch news for")
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "Optional YAML config file")
	format := flag.String("format", "markdown", "Output format: markdown, html or json")
	flag.Parse()

	if *company == "" {
		fmt.Println("Please set -company.")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
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

	res, err := p.Orchestrator.Run(ctx, *company, func(index, total int, ref data.ArticleRef) {
		fmt.Fprintf(os.Stderr, "Processing article %d/%d: %s\n", index, total, ref.Title)
	})
	if errors.Is(err, pipeline.ErrNoArticles) {
		fmt.Println("No news articles found for this company.")
		return
	}
	if err != nil {
		logger.Errorw("Digest failed", "company", *company, "error", err)
		os.Exit(1)
	}

	news := api.FromResult(res)

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(news); err != nil {
			logger.Errorw("Failed to encode result", "error", err)
			os.Exit(1)
		}
	case "html":
		html, err := report.HTML(report.Markdown(*company, news))
		if err != nil {
			logger.Errorw("Failed to render digest", "error", err)
			os.Exit(1)
		}
		fmt.Print(html)
	default:
		fmt.Print(report.Markdown(*company, news))
	}
}
