package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setEnv sets an environment variable, ignoring errors (for test setup)
func setEnv(key, value string) {
	_ = os.Setenv(key, value)
}

// unsetEnv unsets an environment variable, ignoring errors (for test cleanup)
func unsetEnv(key string) {
	_ = os.Unsetenv(key)
}

var configEnvVars = []string{
	"APP_NAME", "APP_VERSION", "API_PORT", "LOG_LEVEL", "LOG_FORMAT",
	"DB_PATH",
	"LLM_BACKEND", "OPENAI_API_KEY", "OPENAI_API_URL", "COHERE_API_KEY",
	"OLLAMA_BASE_URL", "GENERATION_MODEL_ID", "EMBEDDING_MODEL_ID",
	"EMBEDDING_SIZE", "INPUT_DEFAULT_MAX_CHARACTERS",
	"GENERATION_DEFAULT_MAX_TOKENS", "GENERATION_DEFAULT_TEMPERATURE",
	"PROVIDER_TIMEOUT_SECS",
	"VECTOR_DB_BACKEND", "VECTOR_DB_URL", "VECTOR_DB_DISTANCE_METHOD",
	"PRIMARY_LANG", "DEFAULT_LANG",
	"OBJECT_STORE_BACKEND", "FILE_STORE_PATH",
	"MINIO_URL", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET_NAME", "MINIO_USE_SSL",
	"FILE_MAX_SIZE", "FILE_ALLOWED_EXTENSIONS",
	"DEFAULT_CHUNK_SIZE", "DEFAULT_OVERLAP_SIZE",
	"INDEX_PAGE_SIZE", "CHUNK_INSERT_BATCH_SIZE", "VECTOR_INSERT_BATCH_SIZE",
}

// saveEnv snapshots the config env vars and returns a restore func.
func saveEnv(t *testing.T) func() {
	t.Helper()
	original := make(map[string]string, len(configEnvVars))
	for _, key := range configEnvVars {
		original[key] = os.Getenv(key)
		unsetEnv(key)
	}
	return func() {
		for key, value := range original {
			if value != "" {
				setEnv(key, value)
			} else {
				unsetEnv(key)
			}
		}
	}
}

func TestLoad(t *testing.T) {
	restore := saveEnv(t)
	defer restore()

	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*Config) bool
	}{
		{
			name: "valid config with required fields",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_SIZE", "768")
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "data", "docrag.db"))
				setEnv("FILE_STORE_PATH", t.TempDir())
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.EmbeddingSize == 768
			},
		},
		{
			name: "missing EMBEDDING_SIZE",
			setupEnv: func(t *testing.T) {
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "data", "docrag.db"))
			},
			wantErr: true,
		},
		{
			name: "invalid EMBEDDING_SIZE",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_SIZE", "invalid")
			},
			wantErr: true,
		},
		{
			name: "zero EMBEDDING_SIZE",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_SIZE", "0")
			},
			wantErr: true,
		},
		{
			name: "negative EMBEDDING_SIZE",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_SIZE", "-1")
			},
			wantErr: true,
		},
		{
			name: "default values for optional fields",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_SIZE", "768")
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "data", "docrag.db"))
				setEnv("FILE_STORE_PATH", t.TempDir())
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.AppName == "docrag" &&
					cfg.APIPort == "8000" &&
					cfg.LogLevel == slog.LevelInfo &&
					cfg.LogFormat == "text" &&
					cfg.LLMBackend == "OPENAI" &&
					cfg.VectorDBBackend == "QDRANT" &&
					cfg.VectorDBURL == "http://localhost:6333" &&
					cfg.VectorDBDistance == "cosine" &&
					cfg.ObjectStoreBackend == "FS" &&
					cfg.PrimaryLanguage == "en" &&
					cfg.DefaultLanguage == "en" &&
					cfg.InputMaxCharacters == 1024 &&
					cfg.GenerationMaxTokens == 1000 &&
					cfg.GenerationTemperature == float32(0.1) &&
					cfg.ProviderTimeout == 60*time.Second &&
					cfg.FileMaxSizeBytes == 10*1024*1024 &&
					len(cfg.FileAllowedExtensions) == 2 &&
					cfg.FileAllowedExtensions[0] == ".txt" &&
					cfg.FileAllowedExtensions[1] == ".md" &&
					cfg.DefaultChunkSize == 100 &&
					cfg.DefaultOverlapSize == 20 &&
					cfg.IndexPageSize == 50 &&
					cfg.ChunkInsertBatchSize == 2 &&
					cfg.VectorInsertBatchSize == 50
			},
		},
		{
			name: "custom optional values",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_SIZE", "1536")
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "custom", "db.db"))
				setEnv("FILE_STORE_PATH", t.TempDir())
				setEnv("LLM_BACKEND", "ollama")
				setEnv("GENERATION_MODEL_ID", "llama3")
				setEnv("FILE_ALLOWED_EXTENSIONS", " .TXT , .md ,")
				setEnv("LOG_LEVEL", "debug")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.LLMBackend == "OLLAMA" &&
					cfg.GenerationModel == "llama3" &&
					cfg.LogLevel == slog.LevelDebug &&
					len(cfg.FileAllowedExtensions) == 2 &&
					cfg.FileAllowedExtensions[0] == ".txt" &&
					filepath.Base(cfg.DBPath) == "db.db"
			},
		},
		{
			name: "invalid log level",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_SIZE", "768")
				setEnv("LOG_LEVEL", "verbose")
			},
			wantErr: true,
		},
		{
			name: "invalid distance method",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_SIZE", "768")
				setEnv("VECTOR_DB_DISTANCE_METHOD", "euclid")
			},
			wantErr: true,
		},
		{
			name: "overlap must be smaller than chunk size",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_SIZE", "768")
				setEnv("DEFAULT_CHUNK_SIZE", "50")
				setEnv("DEFAULT_OVERLAP_SIZE", "50")
			},
			wantErr: true,
		},
		{
			name: "minio backend requires an endpoint",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_SIZE", "768")
				setEnv("OBJECT_STORE_BACKEND", "MINIO")
			},
			wantErr: true,
		},
		{
			name: "invalid temperature",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_SIZE", "768")
				setEnv("GENERATION_DEFAULT_TEMPERATURE", "warm")
			},
			wantErr: true,
		},
		{
			name: "non-positive provider timeout",
			setupEnv: func(t *testing.T) {
				setEnv("EMBEDDING_SIZE", "768")
				setEnv("PROVIDER_TIMEOUT_SECS", "0")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Change to a temp directory without .env file to avoid loading it
			tmpDir := t.TempDir()
			originalWd, _ := os.Getwd()
			_ = os.Chdir(tmpDir)
			defer func() {
				_ = os.Chdir(originalWd)
			}()

			for _, key := range configEnvVars {
				unsetEnv(key)
			}

			tt.setupEnv(t)

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error: %v", err)
				return
			}

			if cfg == nil {
				t.Fatal("Load() returned nil config")
			}

			if tt.checkConfig != nil && !tt.checkConfig(cfg) {
				t.Errorf("Load() config validation failed")
			}
		})
	}
}

func TestLoad_CreatesDataDirectories(t *testing.T) {
	restore := saveEnv(t)
	defer restore()

	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	_ = os.Chdir(tmpDir)
	defer func() {
		_ = os.Chdir(originalWd)
	}()

	dbPath := filepath.Join(tmpDir, "state", "docrag.db")
	filesPath := filepath.Join(tmpDir, "files")

	setEnv("EMBEDDING_SIZE", "768")
	setEnv("DB_PATH", dbPath)
	setEnv("FILE_STORE_PATH", filesPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
		t.Errorf("Load() should create database directory: %v", err)
	}
	if _, err := os.Stat(filesPath); os.IsNotExist(err) {
		t.Errorf("Load() should create file store directory: %v", err)
	}

	if cfg.DBPath != dbPath {
		t.Errorf("Load() DBPath = %v, want %v", cfg.DBPath, dbPath)
	}
}

func TestGetEnv(t *testing.T) {
	originalValue := os.Getenv("TEST_ENV_VAR")
	defer func() {
		if originalValue != "" {
			setEnv("TEST_ENV_VAR", originalValue)
		} else {
			unsetEnv("TEST_ENV_VAR")
		}
	}()

	tests := []struct {
		name         string
		setupEnv     func()
		key          string
		defaultValue string
		want         string
	}{
		{
			name: "env var set",
			setupEnv: func() {
				setEnv("TEST_ENV_VAR", "set-value")
			},
			key:          "TEST_ENV_VAR",
			defaultValue: "default",
			want:         "set-value",
		},
		{
			name: "env var not set",
			setupEnv: func() {
				unsetEnv("TEST_ENV_VAR")
			},
			key:          "TEST_ENV_VAR",
			defaultValue: "default",
			want:         "default",
		},
		{
			name: "empty env var uses default",
			setupEnv: func() {
				setEnv("TEST_ENV_VAR", "")
			},
			key:          "TEST_ENV_VAR",
			defaultValue: "default",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupEnv()
			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "trace", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLogLevel(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseLogLevel(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseLogLevel(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
