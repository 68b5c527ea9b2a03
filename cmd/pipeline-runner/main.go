// Package main 流水线批处理执行器入口（pipeline-runner）
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookdraft-api/internal/app"
	"bookdraft-api/internal/config"
	"bookdraft-api/pkg/logger"
	"bookdraft-api/pkg/tracer"

	"github.com/joho/godotenv"
)

func main() {
	interval := flag.Duration("interval", 0, "运行间隔；0 表示只执行一轮后退出")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "pipeline-runner",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	application, cleanup, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize app", err)
	}
	defer cleanup()

	runOnce := func() {
		stats, err := application.Orchestrator.Run(ctx)
		if err != nil {
			logger.Error(ctx, "pipeline run failed", err)
			return
		}
		logger.Info(ctx, "pipeline run finished",
			"outlines_generated", stats.OutlinesGenerated,
			"chapters_generated", stats.ChaptersGenerated,
			"books_compiled", stats.BooksCompiled,
			"errors", len(stats.Errors))
	}

	runOnce()
	if *interval <= 0 {
		return
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	logger.Info(ctx, "pipeline runner started", "interval", interval.String())
	for {
		select {
		case <-ticker.C:
			runOnce()
		case <-quit:
			logger.Info(ctx, "pipeline runner stopped")
			return
		}
	}
}
