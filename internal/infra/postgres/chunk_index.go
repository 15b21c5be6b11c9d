package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/samber/mo"

	"github.com/jinford/tube-rag/internal/core/ask"
	"github.com/jinford/tube-rag/internal/core/errs"
	"github.com/jinford/tube-rag/internal/core/ingestion"
)

// Embedder はテキストのEmbedding生成インターフェース
// Embedding計算はベクトルインデックス境界の内側に閉じる
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChunkIndex は pgvector を使用したベクトルインデックス実装
// ingestion.VectorIndex と ask.VectorIndex の両方を提供する
type ChunkIndex struct {
	pool      *pgxpool.Pool
	embedder  Embedder
	dimension int
}

// NewChunkIndex は新しい ChunkIndex を作成する
func NewChunkIndex(pool *pgxpool.Pool, embedder Embedder, dimension int) *ChunkIndex {
	return &ChunkIndex{
		pool:      pool,
		embedder:  embedder,
		dimension: dimension,
	}
}

// EnsureSchema は pgvector 拡張とチャンクテーブルを作成する
func (x *ChunkIndex) EnsureSchema(ctx context.Context) error {
	if _, err := x.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return errs.NewUpstreamError(errs.OriginVectorIndex, true, fmt.Errorf("failed to create vector extension: %w", err))
	}

	tableQuery := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS transcript_chunks (
			chunk_id   TEXT PRIMARY KEY,
			video_id   TEXT NOT NULL,
			title      TEXT NOT NULL,
			start_time INTEGER NOT NULL,
			content    TEXT NOT NULL,
			excerpt    TEXT NOT NULL,
			embedding  vector(%d) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, x.dimension)
	if _, err := x.pool.Exec(ctx, tableQuery); err != nil {
		return errs.NewUpstreamError(errs.OriginVectorIndex, true, fmt.Errorf("failed to create transcript_chunks table: %w", err))
	}

	indexQuery := `
		CREATE INDEX IF NOT EXISTS transcript_chunks_embedding_idx
		ON transcript_chunks USING hnsw (embedding vector_cosine_ops)`
	if _, err := x.pool.Exec(ctx, indexQuery); err != nil {
		return errs.NewUpstreamError(errs.OriginVectorIndex, true, fmt.Errorf("failed to create embedding index: %w", err))
	}

	return nil
}

// UpsertChunk はチャンクをインデックスに登録する
// 同一 chunk_id への再登録は上書き（last-write-wins）となり、冪等
func (x *ChunkIndex) UpsertChunk(ctx context.Context, chunk *ingestion.Chunk) error {
	vector, err := x.embedder.Embed(ctx, chunk.Text)
	if err != nil {
		return errs.NewUpstreamError(errs.OriginVectorIndex, true, fmt.Errorf("failed to embed chunk %s: %w", chunk.ChunkID, err))
	}

	query := `
		INSERT INTO transcript_chunks (chunk_id, video_id, title, start_time, content, excerpt, embedding, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (chunk_id) DO UPDATE SET
			video_id   = EXCLUDED.video_id,
			title      = EXCLUDED.title,
			start_time = EXCLUDED.start_time,
			content    = EXCLUDED.content,
			excerpt    = EXCLUDED.excerpt,
			embedding  = EXCLUDED.embedding,
			updated_at = now()`

	_, err = x.pool.Exec(ctx, query,
		chunk.ChunkID,
		chunk.VideoID,
		chunk.Title,
		chunk.StartTime,
		chunk.Text,
		chunk.Excerpt,
		pgvector.NewVector(vector),
	)
	if err != nil {
		return errs.NewUpstreamError(errs.OriginVectorIndex, true, fmt.Errorf("failed to upsert chunk %s: %w", chunk.ChunkID, err))
	}

	return nil
}

// Search はクエリに類似するチャンクをスコア降順で最大 k 件返す
// スコアはコサイン類似度（1 - コサイン距離）
func (x *ChunkIndex) Search(ctx context.Context, query string, k int) ([]*ask.RetrievedMatch, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive: %d", k)
	}

	queryVector, err := x.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errs.NewUpstreamError(errs.OriginVectorIndex, true, fmt.Errorf("failed to embed query: %w", err))
	}

	rows, err := x.pool.Query(ctx, `
		SELECT chunk_id, video_id, title, start_time, excerpt,
		       1 - (embedding <=> $1) AS score
		FROM transcript_chunks
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pgvector.NewVector(queryVector), k)
	if err != nil {
		return nil, errs.NewUpstreamError(errs.OriginVectorIndex, true, fmt.Errorf("failed to search chunks: %w", err))
	}
	defer rows.Close()

	matches := make([]*ask.RetrievedMatch, 0, k)
	for rows.Next() {
		var (
			chunkID   string
			videoID   string
			title     string
			startTime int
			excerpt   string
			score     float64
		)
		if err := rows.Scan(&chunkID, &videoID, &title, &startTime, &excerpt, &score); err != nil {
			return nil, errs.NewUpstreamError(errs.OriginVectorIndex, false, fmt.Errorf("failed to scan match: %w", err))
		}
		matches = append(matches, &ask.RetrievedMatch{
			ChunkID: chunkID,
			Score:   score,
			Metadata: ask.ChunkMetadata{
				VideoID:     videoID,
				Title:       title,
				StartTime:   mo.Some(startTime),
				TextExcerpt: excerpt,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewUpstreamError(errs.OriginVectorIndex, true, fmt.Errorf("failed to read matches: %w", err))
	}

	return matches, nil
}

// インターフェース実装の確認
var (
	_ ingestion.VectorIndex = (*ChunkIndex)(nil)
	_ ask.VectorIndex       = (*ChunkIndex)(nil)
)
