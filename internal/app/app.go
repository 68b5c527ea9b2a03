// Package app 负责组装应用依赖
package app

import (
	"context"

	"bookdraft-api/internal/application/ingest"
	"bookdraft-api/internal/application/pipeline"
	"bookdraft-api/internal/config"
	"bookdraft-api/internal/infrastructure/export"
	"bookdraft-api/internal/infrastructure/llm"
	"bookdraft-api/internal/infrastructure/messaging"
	"bookdraft-api/internal/infrastructure/persistence/postgres"
	"bookdraft-api/internal/infrastructure/persistence/redis"
	"bookdraft-api/internal/interfaces/http/handler"
	"bookdraft-api/internal/interfaces/http/router"
	"bookdraft-api/internal/workflow/chain"
	"bookdraft-api/internal/workflow/retry"
	"bookdraft-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// App 已组装的应用
type App struct {
	cfg *config.Config

	Postgres *postgres.Client
	Redis    *redis.Client

	Ingestor     *ingest.Ingestor
	OutlineSvc   *pipeline.OutlineService
	ChapterSvc   *pipeline.ChapterService
	CompileSvc   *pipeline.CompileService
	Orchestrator *pipeline.Orchestrator

	router *router.Router
}

// New 组装应用依赖
// 返回的清理函数负责关闭数据库和 Redis 连接。
func New(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	pg, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}

	rdb, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		_ = pg.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := rdb.Close(); err != nil {
			logger.Warn(ctx, "failed to close redis client", "error", err)
		}
		if err := pg.Close(); err != nil {
			logger.Warn(ctx, "failed to close postgres client", "error", err)
		}
	}

	// 仓储
	bookRepo := postgres.NewBookRepository(pg)
	outlineRepo := postgres.NewOutlineRepository(pg)
	chapterRepo := postgres.NewChapterRepository(pg)
	summaryRepo := postgres.NewSummaryRepository(pg)
	notificationRepo := postgres.NewNotificationRepository(pg)
	txManager := postgres.NewTxManager(pg)

	// 缓存与事件流
	cache := redis.NewCache(rdb)
	producer := messaging.NewProducer(rdb.Redis(), cfg.Notifications.Stream, int64(cfg.Notifications.MaxLen))

	// 工作流
	factory := llm.NewEinoFactory(cfg)
	provider := factory.DefaultProvider()

	retryCfg := retry.DefaultConfig()
	if cfg.Pipeline.Retry.MaxAttempts > 0 {
		retryCfg.MaxAttempts = cfg.Pipeline.Retry.MaxAttempts
	}
	if cfg.Pipeline.Retry.InitialBackoff > 0 {
		retryCfg.InitialBackoff = cfg.Pipeline.Retry.InitialBackoff
	}

	outlineGen := pipeline.WithRetryOutline(chain.NewOutlineChain(factory), retryCfg, provider)
	chapterGen := pipeline.WithRetryChapter(chain.NewChapterChain(factory), retryCfg, provider)
	summaryGen := pipeline.WithRetrySummary(chain.NewSummaryChain(factory), retryCfg, provider)
	reviser := pipeline.WithRetryRevision(chain.NewRevisionChain(factory), retryCfg, provider)

	// 流水线服务
	notifier := pipeline.NewNotifier(notificationRepo, producer)
	contextChain := pipeline.NewContextChain(chapterRepo, summaryRepo, summaryGen, provider)
	exporter := export.NewRenderer(cfg.Pipeline.Output.Directory, cfg.Pipeline.Output.Formats)

	outlineSvc := pipeline.NewOutlineService(bookRepo, outlineRepo, txManager, outlineGen, reviser, notifier, provider)
	chapterSvc := pipeline.NewChapterService(
		bookRepo, outlineRepo, chapterRepo, summaryRepo, txManager,
		chapterGen, summaryGen, reviser, contextChain, notifier,
		provider, cfg.Pipeline.MaxChaptersPerBook,
	)
	compileSvc := pipeline.NewCompileService(bookRepo, outlineRepo, chapterRepo, exporter, notifier)
	orchestrator := pipeline.NewOrchestrator(
		bookRepo, outlineRepo, chapterRepo,
		outlineSvc, chapterSvc, compileSvc,
		cfg.Pipeline.AutoApproveOutlines, cfg.Pipeline.AutoApproveChapters,
	)
	ingestor := ingest.NewIngestor(bookRepo)

	// HTTP 层
	handlers := router.Handlers{
		Health:       handler.NewHealthHandler(pg, rdb),
		Book:         handler.NewBookHandler(bookRepo, ingestor, cache),
		Outline:      handler.NewOutlineHandler(outlineRepo, outlineSvc, cache),
		Chapter:      handler.NewChapterHandler(chapterRepo, chapterSvc, cache),
		Compile:      handler.NewCompileHandler(compileSvc, cache),
		Notification: handler.NewNotificationHandler(notificationRepo),
		Pipeline:     handler.NewPipelineHandler(orchestrator),
	}

	app := &App{
		cfg:          cfg,
		Postgres:     pg,
		Redis:        rdb,
		Ingestor:     ingestor,
		OutlineSvc:   outlineSvc,
		ChapterSvc:   chapterSvc,
		CompileSvc:   compileSvc,
		Orchestrator: orchestrator,
		router:       router.New(cfg, handlers),
	}
	return app, cleanup, nil
}

// Engine 返回 HTTP 引擎
func (a *App) Engine() *gin.Engine {
	return a.router.Engine()
}
