package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/custodia-labs/docucortex/internal/adapters/driven/ai"
	"github.com/custodia-labs/docucortex/internal/adapters/driven/auth"
	"github.com/custodia-labs/docucortex/internal/adapters/driven/memory"
	"github.com/custodia-labs/docucortex/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/docucortex/internal/adapters/driven/redis"
	"github.com/custodia-labs/docucortex/internal/adapters/driven/sqlite"
	"github.com/custodia-labs/docucortex/internal/adapters/driving/cli"
	httpadapter "github.com/custodia-labs/docucortex/internal/adapters/driving/http"
	"github.com/custodia-labs/docucortex/internal/config"
	"github.com/custodia-labs/docucortex/internal/core/ports/driven"
	"github.com/custodia-labs/docucortex/internal/core/services"
	"github.com/custodia-labs/docucortex/internal/extractors"
	"github.com/custodia-labs/docucortex/internal/metrics"
	"github.com/custodia-labs/docucortex/internal/postprocessors"
	"github.com/custodia-labs/docucortex/internal/prompts"
	"github.com/custodia-labs/docucortex/internal/runtime"
	"github.com/custodia-labs/docucortex/internal/worker"
	"github.com/redis/go-redis/v9"
)

// buildApp opens every backend named by cfg and assembles the services.
// Anything opened before a failure is closed again.
func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (app *cli.App, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	rt := runtime.NewServices(logger)
	defer func() {
		if err != nil {
			_ = rt.Close()
		}
	}()

	// ===== Metrics =====
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(registry)

	// ===== AI providers =====
	policy := ai.DefaultPolicy()
	policy.MaxAttempts = cfg.ProviderMaxAttempts
	policy.RetryDelay = cfg.ProviderRetryDelay
	policy.RPS = cfg.ProviderRPS
	policy.Metrics = recorder
	policy.Logger = logger

	providers, err := ai.NewFactory().CreateProviders(ai.Settings{
		Provider:        cfg.AIProvider,
		APIKey:          cfg.OpenAIAPIKey,
		BaseURL:         cfg.OpenAIBaseURL,
		LLMModel:        cfg.LLMModel,
		EmbeddingModel:  cfg.EmbeddingModel,
		ModerationModel: cfg.ModerationModel,
		Timeout:         cfg.ProviderTimeout,
		Policy:          policy,
	})
	if err != nil {
		return nil, fmt.Errorf("create AI providers: %w", err)
	}
	rt.OnClose("ai", providers.Close)
	logger.Info("AI providers ready",
		"provider", cfg.AIProvider,
		"llm", providers.LLM.Model(),
		"embedding", providers.Embedding.Model(),
		"moderation", providers.Moderation.Model())

	// ===== PostgreSQL (optional) =====
	var db *postgres.DB
	if cfg.UsesPostgres() {
		db, err = postgres.Connect(ctx, postgres.Config{
			URL:             cfg.DatabaseURL,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		rt.OnClose("postgres", db.Close)
		rt.AddCheck("postgres", db)

		if err = db.InitSchema(ctx); err != nil {
			return nil, fmt.Errorf("initialize schema: %w", err)
		}
		logger.Info("PostgreSQL connected and schema initialized")
	}

	// ===== Redis (optional) =====
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redisadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		rt.OnClose("redis", redisClient.Close)
		logger.Info("Redis connected")
	}

	// ===== Document store =====
	var documents driven.DocumentStore
	switch cfg.DocumentStore {
	case config.StoreSQLite:
		store, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		rt.OnClose("sqlite", store.Close)
		documents = store
	case config.StorePostgres:
		documents = postgres.NewDocumentStore(db)
	case config.StoreRedis:
		documents = redisadapter.NewDocumentStore(redisClient, cfg.DocumentTTL)
	default:
		documents = memory.NewDocumentStore()
	}
	rt.AddCheck("documents", documents)
	logger.Info("using document store", "backend", cfg.DocumentStore)

	// ===== Index provider =====
	var indexes driven.IndexProvider
	switch cfg.IndexProvider {
	case config.IndexPgvector:
		indexes = postgres.NewVectorIndex(db)
	default:
		indexes = memory.NewVectorIndex()
	}
	logger.Info("using index provider", "backend", cfg.IndexProvider)

	// ===== Distributed lock (Redis if available, otherwise PostgreSQL advisory locks) =====
	var lock driven.DistributedLock
	switch {
	case redisClient != nil:
		l := redisadapter.NewLock(redisClient)
		rt.AddCheck("redis", l)
		lock = l
		logger.Info("using Redis distributed lock")
	case db != nil:
		lock = postgres.NewAdvisoryLock(db)
		logger.Info("using PostgreSQL advisory lock")
	default:
		logger.Info("no distributed lock configured, index builds coordinate in-process only")
	}

	// ===== Prompts and extraction =====
	promptStore, err := prompts.Load(cfg.PromptsFile)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	pool := worker.NewPool(worker.PoolConfig{
		Concurrency: cfg.ExtractWorkers,
		Logger:      logger,
	})
	if err = pool.Start(ctx); err != nil {
		return nil, fmt.Errorf("start extraction pool: %w", err)
	}
	rt.OnClose("extraction pool", func() error {
		pool.Stop()
		return nil
	})

	// ===== Services (core business logic) =====
	documentService := services.NewDocumentService(services.DocumentServiceConfig{
		Store:      documents,
		Extractors: extractors.DefaultRegistry(),
		Executor:   pool,
		Metrics:    recorder,
		Logger:     logger,
	})

	indexBuilder := services.NewIndexBuilder(services.IndexBuilderConfig{
		Documents:    documents,
		Indexes:      indexes,
		Embeddings:   providers.Embedding,
		Lock:         lock,
		Chunks:       chunkPipeline(cfg),
		BuildTimeout: cfg.IndexBuildTimeout,
		Metrics:      recorder,
		Logger:       logger,
	})

	chatService := services.NewChatService(services.ChatConfig{
		Safety:      services.NewSafetyGate(providers.Moderation, logger),
		Indexes:     indexBuilder,
		Retriever:   services.NewRetriever(indexes, providers.Embedding),
		Synthesizer: services.NewAnswerSynthesizer(providers.LLM, promptStore),
		Metrics:     recorder,
		Logger:      logger,
	})

	analysisService := services.NewAnalysisService(documents, providers.LLM, promptStore, logger)

	// ===== Auth (optional) =====
	var tokens driven.TokenService
	if cfg.JWTSecret != "" {
		tokens, err = auth.NewAdapter(cfg.JWTSecret)
		if err != nil {
			return nil, fmt.Errorf("create token service: %w", err)
		}
		logger.Info("bearer auth enabled")
	}

	// ===== HTTP server =====
	checks := make(map[string]httpadapter.Pinger)
	for name, p := range rt.Checks() {
		checks[name] = p
	}

	server := httpadapter.NewServer(httpadapter.Config{
		Host:           cfg.Host,
		Port:           cfg.Port,
		AppName:        cfg.AppName,
		Version:        version,
		MaxUploadBytes: cfg.MaxUploadBytes,
		RequestTimeout: cfg.RequestTimeout,
		CORSOrigins:    cfg.CORSOrigins,
		Swagger:        cfg.Swagger,
	}, httpadapter.Services{
		Chat:      chatService,
		Documents: documentService,
		Analysis:  analysisService,
		Tokens:    tokens,
		Gatherer:  registry,
		Checks:    checks,
	}, logger)

	return &cli.App{
		Chat:      chatService,
		Documents: documentService,
		Analysis:  analysisService,
		Indexes:   indexes,
		Tokens:    tokens,
		Serve:     server.Start,
		Close:     rt.Close,
	}, nil
}

// chunkPipeline returns the child chunk cleanup pipeline, or nil so children
// are embedded exactly as split.
func chunkPipeline(cfg *config.Config) driven.PostProcessorPipeline {
	if !cfg.ChunkCleanup {
		return nil
	}
	return postprocessors.DefaultPipeline()
}
