package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Ai        AIConfig
	Structure StructureConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	WorkerLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider   string // "ollama", "huggingface"
	LLMModel      string // e.g. "llama3", "qwen2.5"
	OllamaBaseURL string
	HfAPIKey      string
}

// StructureConfig tunes the document structuring pipeline.
type StructureConfig struct {
	CharsPerToken        float64
	MaxTokensPerCall     int
	MaxChunkChars        int
	OverlapChars         int
	PromptOverheadTokens int
	AggressiveChunking   bool
	EmergencyChunking    bool
	ForceChunkAboveChars int
	MaxRetries           int
	TreeCacheTTLSeconds  int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			WorkerLogFilePath:  getEnv("WORKER_LOG_FILE_PATH", "structure_worker.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:      getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			HfAPIKey:      getEnv("HF_API_KEY", ""),
		},
		Structure: StructureConfig{
			CharsPerToken:        getEnvAsFloat("STRUCTURE_CHARS_PER_TOKEN", 4.0),
			MaxTokensPerCall:     getEnvAsInt("STRUCTURE_MAX_TOKENS_PER_CALL", 8000),
			MaxChunkChars:        getEnvAsInt("STRUCTURE_MAX_CHUNK_CHARS", 30000),
			OverlapChars:         getEnvAsInt("STRUCTURE_OVERLAP_CHARS", 1000),
			PromptOverheadTokens: getEnvAsInt("STRUCTURE_PROMPT_OVERHEAD_TOKENS", 1200),
			AggressiveChunking:   getEnvAsBool("STRUCTURE_AGGRESSIVE_CHUNKING", false),
			EmergencyChunking:    getEnvAsBool("STRUCTURE_EMERGENCY_CHUNKING", true),
			ForceChunkAboveChars: getEnvAsInt("STRUCTURE_FORCE_CHUNK_ABOVE_CHARS", 200000),
			MaxRetries:           getEnvAsInt("STRUCTURE_MAX_RETRIES", 3),
			TreeCacheTTLSeconds:  getEnvAsInt("STRUCTURE_TREE_CACHE_TTL_SECONDS", 300),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
