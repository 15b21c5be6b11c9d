package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// Database設定
	Database DatabaseConfig

	// OpenAI設定（Embeddings + 回答生成LLM）
	OpenAI OpenAIConfig

	// YouTube Data API設定
	YouTube YouTubeConfig

	// トランスクリプト取り込み設定
	Ingestion IngestionConfig

	// 質問応答設定
	Ask AskConfig
}

// DatabaseConfig はデータベース接続設定
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

// OpenAIConfig はOpenAI API設定（Embeddings + LLM）
type OpenAIConfig struct {
	APIKey             string
	EmbeddingModel     string
	EmbeddingDimension int
	LLMModel           string // 回答生成に使用するモデル名
}

// YouTubeConfig はYouTube Data API設定
type YouTubeConfig struct {
	APIKey    string
	ChannelID string // 取り込み対象のデフォルトチャンネル
}

// IngestionConfig はトランスクリプト取り込み設定
type IngestionConfig struct {
	ChunkDuration int // チャンク分割の時間幅（秒）
	UpsertWorkers int // インデックス登録の並列数
}

// AskConfig は質問応答設定
type AskConfig struct {
	TopK int // 検索で取得するチャンク数
}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "tuberag"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "tuberag"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 0),
		},
		OpenAI: OpenAIConfig{
			APIKey:             getEnv("OPENAI_API_KEY", ""),
			EmbeddingModel:     getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimension: getEnvAsInt("OPENAI_EMBEDDING_DIMENSION", 1536),
			LLMModel:           getEnv("OPENAI_LLM_MODEL", "gpt-4o-mini"),
		},
		YouTube: YouTubeConfig{
			APIKey:    getEnv("YOUTUBE_API_KEY", ""),
			ChannelID: getEnv("YOUTUBE_CHANNEL_ID", ""),
		},
		Ingestion: IngestionConfig{
			ChunkDuration: getEnvAsInt("INGEST_CHUNK_DURATION", 30),
			UpsertWorkers: getEnvAsInt("INGEST_UPSERT_WORKERS", 4),
		},
		Ask: AskConfig{
			TopK: getEnvAsInt("ASK_TOP_K", 3),
		},
	}

	return cfg, nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
