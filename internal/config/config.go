package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	AppName    string
	AppVersion string
	APIPort    string
	LogLevel   slog.Level
	LogFormat  string

	DBPath string

	// LLM provider selection and credentials.
	LLMBackend            string // OPENAI, COHERE or OLLAMA
	OpenAIAPIKey          string
	OpenAIAPIURL          string
	CohereAPIKey          string
	OllamaBaseURL         string
	GenerationModel       string
	EmbeddingModel        string
	EmbeddingSize         int
	InputMaxCharacters    int
	GenerationMaxTokens   int
	GenerationTemperature float32
	ProviderTimeout       time.Duration

	// Vector database.
	VectorDBBackend  string // QDRANT or MEMORY
	VectorDBURL      string
	VectorDBDistance string // cosine or dot

	// Prompt templates.
	PrimaryLanguage string
	DefaultLanguage string

	// Object storage.
	ObjectStoreBackend string // FS or MINIO
	FileStorePath      string
	MinioEndpoint      string
	MinioAccessKey     string
	MinioSecretKey     string
	MinioBucket        string
	MinioUseSSL        bool

	// Upload and processing limits.
	FileAllowedExtensions []string
	FileMaxSizeBytes      int64
	DefaultChunkSize      int
	DefaultOverlapSize    int
	IndexPageSize         int
	ChunkInsertBatchSize  int
	VectorInsertBatchSize int
}

// Load reads configuration from environment variables and returns a Config.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it is
// loaded automatically; variables already set take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	// Walk up from the working directory looking for a .env next to go.mod.
	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		AppName:    getEnv("APP_NAME", "docrag"),
		AppVersion: getEnv("APP_VERSION", "0.1.0"),
		APIPort:    getEnv("API_PORT", "8000"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),

		DBPath: getEnv("DB_PATH", "./data/docrag.db"),

		LLMBackend:    strings.ToUpper(getEnv("LLM_BACKEND", "OPENAI")),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIAPIURL:  getEnv("OPENAI_API_URL", ""),
		CohereAPIKey:  getEnv("COHERE_API_KEY", ""),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),

		GenerationModel: getEnv("GENERATION_MODEL_ID", ""),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL_ID", ""),

		VectorDBBackend:  strings.ToUpper(getEnv("VECTOR_DB_BACKEND", "QDRANT")),
		VectorDBURL:      getEnv("VECTOR_DB_URL", "http://localhost:6333"),
		VectorDBDistance: strings.ToLower(getEnv("VECTOR_DB_DISTANCE_METHOD", "cosine")),

		PrimaryLanguage: getEnv("PRIMARY_LANG", "en"),
		DefaultLanguage: getEnv("DEFAULT_LANG", "en"),

		ObjectStoreBackend: strings.ToUpper(getEnv("OBJECT_STORE_BACKEND", "FS")),
		FileStorePath:      getEnv("FILE_STORE_PATH", "./data/files"),
		MinioEndpoint:      getEnv("MINIO_URL", ""),
		MinioAccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:     getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:        getEnv("MINIO_BUCKET_NAME", "docrag"),
	}

	var err error
	if cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}

	if cfg.EmbeddingSize, err = getEnvInt("EMBEDDING_SIZE", 0); err != nil {
		return nil, err
	}
	if cfg.EmbeddingSize <= 0 {
		return nil, fmt.Errorf("EMBEDDING_SIZE is required and must be greater than 0")
	}

	if cfg.InputMaxCharacters, err = getEnvInt("INPUT_DEFAULT_MAX_CHARACTERS", 1024); err != nil {
		return nil, err
	}
	if cfg.GenerationMaxTokens, err = getEnvInt("GENERATION_DEFAULT_MAX_TOKENS", 1000); err != nil {
		return nil, err
	}

	temp, err := strconv.ParseFloat(getEnv("GENERATION_DEFAULT_TEMPERATURE", "0.1"), 32)
	if err != nil {
		return nil, fmt.Errorf("GENERATION_DEFAULT_TEMPERATURE must be a valid float: %w", err)
	}
	cfg.GenerationTemperature = float32(temp)

	timeoutSecs, err := getEnvInt("PROVIDER_TIMEOUT_SECS", 60)
	if err != nil {
		return nil, err
	}
	if timeoutSecs <= 0 {
		return nil, fmt.Errorf("PROVIDER_TIMEOUT_SECS must be greater than 0")
	}
	cfg.ProviderTimeout = time.Duration(timeoutSecs) * time.Second

	if cfg.FileMaxSizeBytes, err = getEnvInt64("FILE_MAX_SIZE", 10*1024*1024); err != nil {
		return nil, err
	}
	cfg.FileAllowedExtensions = splitList(getEnv("FILE_ALLOWED_EXTENSIONS", ".txt,.md"))

	if cfg.DefaultChunkSize, err = getEnvInt("DEFAULT_CHUNK_SIZE", 100); err != nil {
		return nil, err
	}
	if cfg.DefaultOverlapSize, err = getEnvInt("DEFAULT_OVERLAP_SIZE", 20); err != nil {
		return nil, err
	}
	if cfg.DefaultOverlapSize >= cfg.DefaultChunkSize {
		return nil, fmt.Errorf("DEFAULT_OVERLAP_SIZE must be smaller than DEFAULT_CHUNK_SIZE")
	}
	if cfg.IndexPageSize, err = getEnvInt("INDEX_PAGE_SIZE", 50); err != nil {
		return nil, err
	}
	if cfg.ChunkInsertBatchSize, err = getEnvInt("CHUNK_INSERT_BATCH_SIZE", 2); err != nil {
		return nil, err
	}
	if cfg.VectorInsertBatchSize, err = getEnvInt("VECTOR_INSERT_BATCH_SIZE", 50); err != nil {
		return nil, err
	}

	switch cfg.VectorDBDistance {
	case "cosine", "dot":
	default:
		return nil, fmt.Errorf("VECTOR_DB_DISTANCE_METHOD must be cosine or dot, got %q", cfg.VectorDBDistance)
	}

	if cfg.ObjectStoreBackend == "MINIO" && cfg.MinioEndpoint == "" {
		return nil, fmt.Errorf("MINIO_URL is required when OBJECT_STORE_BACKEND=MINIO")
	}
	cfg.MinioUseSSL = getEnv("MINIO_USE_SSL", "true") == "true"

	// Create local data directories up front.
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if cfg.ObjectStoreBackend == "FS" {
		if err := os.MkdirAll(cfg.FileStorePath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create file store directory: %w", err)
		}
	}

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", s)
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}
