package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jinford/tube-rag/internal/core/ask"
	"github.com/jinford/tube-rag/internal/core/ingestion"
	"github.com/jinford/tube-rag/internal/infra/openai"
	"github.com/jinford/tube-rag/internal/infra/postgres"
	"github.com/jinford/tube-rag/internal/infra/youtube"
	"github.com/jinford/tube-rag/pkg/config"
	"github.com/jinford/tube-rag/pkg/db"
)

// ServiceContainer はアプリケーションの依存関係を保持する
type ServiceContainer struct {
	IngestService *ingestion.IngestService
	AskService    *ask.AskService
	ChunkIndex    *postgres.ChunkIndex

	logger   *slog.Logger
	database *db.DB
}

type containerOptions struct {
	logger           *slog.Logger
	embedder         postgres.Embedder
	transcriptSource ingestion.TranscriptSource
	llmClient        ask.LLMClient
}

// ContainerOption は ServiceContainer 構築時のオプション
type ContainerOption func(*containerOptions)

// WithContainerLogger はロガーを差し替える
func WithContainerLogger(logger *slog.Logger) ContainerOption {
	return func(opts *containerOptions) {
		opts.logger = logger
	}
}

// WithContainerEmbedder はカスタム Embedder を注入する
func WithContainerEmbedder(embedder postgres.Embedder) ContainerOption {
	return func(opts *containerOptions) {
		opts.embedder = embedder
	}
}

// WithContainerTranscriptSource は TranscriptSource を差し替える
func WithContainerTranscriptSource(source ingestion.TranscriptSource) ContainerOption {
	return func(opts *containerOptions) {
		opts.transcriptSource = source
	}
}

// WithContainerLLMClient は LLM クライアントを差し替える
func WithContainerLLMClient(client ask.LLMClient) ContainerOption {
	return func(opts *containerOptions) {
		opts.llmClient = client
	}
}

// NewContainer は設定からコンテナを生成する
func NewContainer(ctx context.Context, cfg *config.Config, opts ...ContainerOption) (*ServiceContainer, error) {
	database, err := db.New(ctx, db.ConnectionParams{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("データベース初期化に失敗しました: %w", err)
	}

	return NewContainerWithDB(cfg, database, opts...)
}

// NewContainerWithDB は既存のデータベース接続を受け取りコンテナを生成する
func NewContainerWithDB(cfg *config.Config, database *db.DB, opts ...ContainerOption) (*ServiceContainer, error) {
	options := containerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	// Embedder (OpenAI)
	embedder := options.embedder
	if embedder == nil {
		openaiEmbedder, err := openai.NewEmbedder(
			cfg.OpenAI.APIKey,
			openai.WithEmbeddingModel(cfg.OpenAI.EmbeddingModel),
			openai.WithEmbeddingDimension(cfg.OpenAI.EmbeddingDimension),
		)
		if err != nil {
			return nil, fmt.Errorf("Embedder 初期化に失敗しました: %w", err)
		}
		embedder = openaiEmbedder
	}

	// ベクトルインデックス (PostgreSQL + pgvector)
	chunkIndex := postgres.NewChunkIndex(database.Pool, embedder, cfg.OpenAI.EmbeddingDimension)

	// TranscriptSource (YouTube)
	transcriptSource := options.transcriptSource
	if transcriptSource == nil {
		youtubeClient, err := youtube.NewClient(cfg.YouTube.APIKey)
		if err != nil {
			return nil, fmt.Errorf("YouTubeクライアント初期化に失敗しました: %w", err)
		}
		transcriptSource = youtube.NewProvider(youtubeClient, youtube.NewTranscriptClient())
	}

	// LLMClient (OpenAI)
	llmClient := options.llmClient
	if llmClient == nil {
		openaiLLMClient, err := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.LLMModel)
		if err != nil {
			return nil, fmt.Errorf("OpenAI LLMクライアント初期化に失敗しました: %w", err)
		}
		llmClient = openaiLLMClient
	}

	// IngestService
	ingestService := ingestion.NewIngestService(
		transcriptSource,
		chunkIndex,
		ingestion.WithIngestLogger(options.logger),
		ingestion.WithUpsertWorkerCount(cfg.Ingestion.UpsertWorkers),
	)

	// AskService
	askService := ask.NewAskService(
		chunkIndex,
		llmClient,
		ask.WithAskLogger(options.logger),
	)

	return &ServiceContainer{
		IngestService: ingestService,
		AskService:    askService,
		ChunkIndex:    chunkIndex,
		logger:        options.logger,
		database:      database,
	}, nil
}

// Logger はコンテナのロガーを返す
func (c *ServiceContainer) Logger() *slog.Logger {
	return c.logger
}

// Close はコンテナが保持するリソースを解放する
func (c *ServiceContainer) Close() {
	if c.database != nil {
		c.database.Close()
	}
}
