package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"docrag/internal/config"
	"docrag/internal/handlers"
	"docrag/internal/http"
	"docrag/internal/ingest"
	"docrag/internal/llm"
	"docrag/internal/objectstore"
	"docrag/internal/rag"
	"docrag/internal/storage"
	"docrag/internal/templates"
	"docrag/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	projectRepo := storage.NewProjectRepo(db)
	assetRepo := storage.NewAssetRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	ctx := context.Background()

	// Object store for uploaded files
	objects, err := objectstore.NewStore(ctx, objectstore.FactoryOptions{
		Backend:       cfg.ObjectStoreBackend,
		FileStorePath: cfg.FileStorePath,
		Minio: objectstore.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		},
	})
	if err != nil {
		log.Fatalf("Failed to create object store: %v", err)
	}
	slog.Info("Object store ready", "backend", cfg.ObjectStoreBackend)

	// LLM provider for generation and embeddings
	provider, err := llm.NewProvider(cfg.LLMBackend, llm.Options{
		APIKey:                providerAPIKey(cfg),
		APIURL:                providerAPIURL(cfg),
		InputMaxCharacters:    cfg.InputMaxCharacters,
		GenerationMaxTokens:   cfg.GenerationMaxTokens,
		GenerationTemperature: cfg.GenerationTemperature,
		Timeout:               cfg.ProviderTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to create LLM provider: %v", err)
	}
	provider.SetGenerationModel(cfg.GenerationModel)
	provider.SetEmbeddingModel(cfg.EmbeddingModel, cfg.EmbeddingSize)
	slog.Info("LLM provider ready",
		"backend", cfg.LLMBackend,
		"generation_model", cfg.GenerationModel,
		"embedding_model", cfg.EmbeddingModel,
		"embedding_size", cfg.EmbeddingSize)

	// Vector store for semantic retrieval
	vectorStore, err := vectorstore.NewStore(cfg.VectorDBBackend, cfg.VectorDBURL, cfg.VectorDBDistance)
	if err != nil {
		log.Fatalf("Failed to create vector store: %v", err)
	}
	if err := vectorStore.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect to vector store: %v", err)
	}
	defer func() {
		_ = vectorStore.Disconnect()
	}()
	slog.Info("Vector store ready", "backend", cfg.VectorDBBackend, "distance", cfg.VectorDBDistance)

	parser := templates.NewParser(cfg.PrimaryLanguage, cfg.DefaultLanguage)

	indexer := rag.NewIndexer(chunkRepo, provider, vectorStore, cfg.IndexPageSize, cfg.VectorInsertBatchSize)
	engine := rag.NewEngine(provider, vectorStore, parser)
	slog.Info("RAG pipeline initialized", "language", parser.Language())

	deps := &http.Deps{
		Welcome: handlers.NewWelcomeHandler(cfg.AppName, cfg.AppVersion),
		Data: handlers.NewDataHandler(projectRepo, assetRepo, chunkRepo, objects, handlers.DataHandlerOptions{
			Policy: ingest.UploadPolicy{
				AllowedExtensions: cfg.FileAllowedExtensions,
				MaxSizeBytes:      cfg.FileMaxSizeBytes,
			},
			DefaultChunkSize: cfg.DefaultChunkSize,
			DefaultOverlap:   cfg.DefaultOverlapSize,
			InsertBatchSize:  cfg.ChunkInsertBatchSize,
		}),
		NLP:    handlers.NewNLPHandler(projectRepo, indexer, engine),
		Health: handlers.NewHealthHandler(db, vectorStore),
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr, "app", cfg.AppName, "version", cfg.AppVersion)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}

// providerAPIKey picks the credential matching the configured backend.
func providerAPIKey(cfg *config.Config) string {
	switch cfg.LLMBackend {
	case llm.BackendCohere:
		return cfg.CohereAPIKey
	case llm.BackendOllama:
		return ""
	default:
		return cfg.OpenAIAPIKey
	}
}

// providerAPIURL picks the base URL matching the configured backend.
func providerAPIURL(cfg *config.Config) string {
	switch cfg.LLMBackend {
	case llm.BackendOllama:
		return cfg.OllamaBaseURL
	case llm.BackendCohere:
		return ""
	default:
		return cfg.OpenAIAPIURL
	}
}
