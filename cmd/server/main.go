package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"lexcase-backend/config"
	"lexcase-backend/extract"
	"lexcase-backend/handlers"
	"lexcase-backend/lookup"
	"lexcase-backend/rag"
	"lexcase-backend/repository"
	"lexcase-backend/search"
	"lexcase-backend/service"
	"lexcase-backend/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// Load .env file from project root (relative to cmd/server/)
	// Try current directory first, then project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			slog.Warn("no .env file found, using environment variables")
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := initPostgres(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to initialize Postgres: %w", err)
	}
	defer db.Close()
	logger.Info("postgres connection established")

	fileStorage, err := initStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("storage initialized", "type", cfg.Storage.Type)

	index, err := initIndex(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize search index: %w", err)
	}
	logger.Info("search index initialized", "type", cfg.Search.Type)

	model, closeModel, err := initModel(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize %s model: %w", cfg.LLM.Provider, err)
	}
	defer closeModel()
	logger.Info("generative model initialized", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	caseRepo := repository.NewCaseRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	actRepo := repository.NewLegalActRepository(db)
	judgmentRepo := repository.NewJudgmentRepository(db)
	questionRepo := repository.NewQuestionRepository(db)

	// External legal databases
	lookupOpts := []lookup.Option{
		lookup.WithTimeout(cfg.LookupTimeout()),
		lookup.WithRateLimit(cfg.Lookup.RequestsPerSec, 1),
		lookup.WithLogger(logger),
	}
	isap := lookup.NewISAPClient(cfg.Lookup.ISAPBaseURL, lookupOpts...)
	saos := lookup.NewSAOSClient(cfg.Lookup.SAOSBaseURL, lookupOpts...)
	var actSearch, judgmentSearch lookup.Searcher = isap, saos
	if cfg.Lookup.RedisURL != "" {
		rdb, err := initRedis(ctx, cfg.Lookup.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, lookup results will not be cached", "error", err)
		} else {
			defer rdb.Close()
			actSearch = lookup.NewCachedSearcher(isap, rdb, "isap", cfg.CacheTTL(), logger)
			judgmentSearch = lookup.NewCachedSearcher(saos, rdb, "saos", cfg.CacheTTL(), logger)
			logger.Info("lookup cache enabled", "ttl", cfg.CacheTTL())
		}
	}

	// Initialize services
	indexer := service.NewIndexer(index,
		service.IndexerWithDocuments(docRepo),
		service.IndexerWithLegalActs(actRepo),
		service.IndexerWithJudgments(judgmentRepo),
		service.IndexerWithTimeout(cfg.SearchTimeout()),
		service.IndexerWithLogger(logger),
	)

	generator := rag.NewGenerator(model,
		rag.GeneratorWithMaxTokens(cfg.LLM.MaxOutputTokens),
		rag.GeneratorWithTemperature(cfg.LLM.Temperature),
		rag.GeneratorWithTimeout(cfg.LLMTimeout()),
		rag.GeneratorWithLogger(logger),
	)

	caseService := service.NewCaseService(
		service.CaseWithCaseStore(caseRepo),
		service.CaseWithDocumentStore(docRepo),
		service.CaseWithLegalActStore(actRepo),
		service.CaseWithJudgmentStore(judgmentRepo),
		service.CaseWithIndexer(indexer),
		service.CaseWithStorage(fileStorage),
		service.CaseWithLogger(logger),
	)

	documentService := service.NewDocumentService(
		service.DocumentWithCaseStore(caseRepo),
		service.DocumentWithDocumentStore(docRepo),
		service.DocumentWithStorage(fileStorage),
		service.DocumentWithExtractor(extract.NewExtractor(extract.WithLogger(logger))),
		service.DocumentWithIndexer(indexer),
		service.DocumentWithLogger(logger),
	)

	legalService := service.NewLegalSourceService(
		service.LegalWithCaseStore(caseRepo),
		service.LegalWithDocumentStore(docRepo),
		service.LegalWithLegalActStore(actRepo),
		service.LegalWithJudgmentStore(judgmentRepo),
		service.LegalWithIndexer(indexer),
		service.LegalWithActLookup(isap, actSearch),
		service.LegalWithJudgmentLookup(saos, judgmentSearch),
		service.LegalWithLogger(logger),
	)

	questionService := service.NewQuestionService(
		service.QuestionWithCaseStore(caseRepo),
		service.QuestionWithQuestionStore(questionRepo),
		service.QuestionWithIndexer(indexer),
		service.QuestionWithGenerator(generator),
		service.QuestionWithMaxResults(cfg.Search.MaxResults),
		service.QuestionWithLogger(logger),
	)

	// Setup Gin router
	router := handlers.NewRouter(handlers.RouterConfig{
		Cases:     handlers.NewCaseHandler(caseService),
		Documents: handlers.NewDocumentHandler(documentService),
		Legal:     handlers.NewLegalSourceHandler(legalService),
		Questions: handlers.NewQuestionHandler(questionService),
		Health: handlers.NewHealthHandler(map[string]handlers.Check{
			"database": db.Ping,
			"index":    index.Ping,
			"storage":  fileStorage.Ping,
		}),
		Users:  userRepo,
		Logger: logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func initPostgres(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func initStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	store, err := storage.NewStorage(ctx, storage.StorageConfig{
		Type:         storage.StorageType(cfg.Storage.Type),
		LocalPath:    cfg.Storage.LocalPath,
		S3Bucket:     cfg.Storage.Bucket,
		S3Region:     cfg.Storage.Region,
		S3Endpoint:   cfg.Storage.Endpoint,
		AWSAccessKey: cfg.Storage.AccessKey,
		AWSSecretKey: cfg.Storage.SecretKey,
	})
	if err != nil {
		return nil, err
	}
	if s3Store, ok := store.(*storage.S3Storage); ok {
		if err := s3Store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func initIndex(cfg *config.Config, logger *slog.Logger) (search.Index, error) {
	if cfg.Search.Type == "memory" {
		logger.Warn("using in-memory search index; contents are lost on restart")
		return search.Instrumented(search.NewMemoryIndex()), nil
	}

	es, err := search.NewElasticIndex(search.ElasticConfig{
		URL:         cfg.Search.URL,
		Username:    cfg.Search.Username,
		Password:    cfg.Search.Password,
		IndexPrefix: cfg.Search.IndexPrefix,
		Stempel:     cfg.Search.Stempel,
	}, logger)
	if err != nil {
		return nil, err
	}
	return search.Instrumented(es), nil
}

func initModel(ctx context.Context, cfg *config.Config) (rag.Model, func(), error) {
	if cfg.LLM.APIKey == "" {
		slog.Warn("llm api key not set; answers will fall back to the apology text")
	}

	switch cfg.LLM.Provider {
	case "openai":
		return rag.NewOpenAIModel(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL), func() {}, nil
	default:
		model, err := rag.NewGeminiModel(ctx, cfg.LLM.APIKey, cfg.LLM.Model, option.WithUserAgent("lexcase-backend"))
		if err != nil {
			return nil, nil, err
		}
		return model, func() { _ = model.Close() }, nil
	}
}

func initRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}
